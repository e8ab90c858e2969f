package reasoner

import (
	"fmt"
	"strings"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
)

// trustedComplaintSources mirrors websearch's trusted-source list
// closely enough to recognize a boosted result without reaching into
// that package's internals.
var trustedComplaintSources = map[string]bool{
	"reddit.com": true, "bbb.org": true, "ftc.gov": true, "consumer.ftc.gov": true,
	"trustpilot.com": true, "consumeraffairs.com": true, "complaintsboard.com": true,
	"ripoffreport.com": true, "ic3.gov": true, "scamwarners.com": true, "scamalert.sg": true,
}

// heuristicVerdict implements Mode B, spec §4.7.3: a deterministic,
// additive rule ladder over successful evidence only, capped at 100.
func heuristicVerdict(evidence []models.AgentEvidence) (level string, confidence int, explanation string) {
	score := 0
	var satisfied []string

	for _, e := range evidence {
		if !e.Success {
			continue
		}
		switch v := e.Payload.(type) {
		case models.ScamLookupResult:
			if !v.Found {
				continue
			}
			if v.Verified {
				score += 50
				satisfied = append(satisfied, "registry report is verified")
			} else {
				score += 40
				satisfied = append(satisfied, fmt.Sprintf("registry shows %d unverified report(s)", v.ReportCount))
			}
		case domainrep.Result:
			if v.RiskLevel == "high" {
				score += 30
				satisfied = append(satisfied, "domain reputation risk is high")
			}
			if v.AgeDays != nil && *v.AgeDays < 30 {
				score += 10
				satisfied = append(satisfied, fmt.Sprintf("domain is only %d day(s) old", *v.AgeDays))
			}
		case phonevalidator.Result:
			if v.Suspicious {
				score += 25
				satisfied = append(satisfied, "phone number matches a suspicious pattern: "+v.SuspiciousReason)
			}
		case websearch.Response:
			if len(v.Results) >= 3 && hasTrustedResult(v.Results) {
				score += 20
				satisfied = append(satisfied, "three or more web search results including a trusted complaint source")
			}
		}
	}

	if score > 100 {
		score = 100
	}
	confidence = score

	level = "low"
	if score >= 70 {
		level = "high"
	} else if score >= 40 {
		level = "medium"
	}

	explanation = "no corroborating evidence found"
	if len(satisfied) > 0 {
		explanation = strings.Join(satisfied, "; ")
	}
	return level, confidence, explanation
}

func hasTrustedResult(results []websearch.Result) bool {
	for _, r := range results {
		if trustedComplaintSources[r.Domain] {
			return true
		}
	}
	return false
}
