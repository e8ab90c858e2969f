package reasoner

import (
	"fmt"
	"strings"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
)

const ocrExcerptLen = 500

const systemPreamble = `You are a fraud analyst. Weigh evidence by reliability, highest to lowest:
1. registry-verified reports (this number has been confirmed as a scam by human review)
2. AV-aggregator / domain-reputation signals (VirusTotal, Safe Browsing, domain age, SSL posture)
3. web-search user complaints (forum posts, FTC/BBB reports, Reddit threads)
4. offline pattern indicators (vanity-number patterns, department-variant company names, and similar heuristics)

Respond with strict JSON only, no prose before or after, no markdown fences:
{"risk_level": "low"|"medium"|"high", "confidence": <0-100 integer>, "explanation": "<at least 10 characters, must cite the evidence that drove the verdict>"}`

// buildPrompt assembles the Mode A prompt (spec §4.7.3): the evidence
// reliability hierarchy, a truncated OCR excerpt, compact entity counts,
// and one line per piece of evidence.
func buildPrompt(ocrText string, entities models.ExtractedEntities, evidence []models.AgentEvidence) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nMessage excerpt:\n")
	b.WriteString(truncate(ocrText, ocrExcerptLen))

	b.WriteString("\n\nEntities found:\n")
	summary := entities.Summary(3)
	for _, key := range []string{"phones", "urls", "emails", "payments", "amounts", "companies"} {
		fmt.Fprintf(&b, "- %s: %s\n", key, summary[key])
	}

	b.WriteString("\nEvidence collected:\n")
	if len(evidence) == 0 {
		b.WriteString("(none)\n")
	}
	for _, e := range evidence {
		b.WriteString("- ")
		b.WriteString(evidenceLine(e))
		b.WriteString("\n")
	}

	return b.String()
}

// evidenceLine renders one AgentEvidence as the compact human-readable
// form the reasoner prompt expects, e.g. "scam_db: verified=true, reports=47".
func evidenceLine(e models.AgentEvidence) string {
	if !e.Success {
		return fmt.Sprintf("%s (%s %s): failed — %s", e.ToolName, e.EntityType, e.EntityValue, e.ErrorMessage)
	}
	switch v := e.Payload.(type) {
	case models.ScamLookupResult:
		if !v.Found {
			return fmt.Sprintf("%s: no registry match for %s", e.ToolName, e.EntityValue)
		}
		return fmt.Sprintf("%s: verified=%t, reports=%d, risk_score=%d", e.ToolName, v.Verified, v.ReportCount, v.RiskScore)
	case websearch.Response:
		top := "none"
		if len(v.Results) > 0 {
			top = v.Results[0].Domain
		}
		return fmt.Sprintf("%s: %d results, top: %s", e.ToolName, len(v.Results), top)
	case domainrep.Result:
		age := "unknown"
		if v.AgeDays != nil {
			age = fmt.Sprintf("%d", *v.AgeDays)
		}
		return fmt.Sprintf("%s: risk=%s, age_days=%s", e.ToolName, v.RiskLevel, age)
	case phonevalidator.Result:
		if v.Suspicious {
			return fmt.Sprintf("%s: suspicious, reason=%q", e.ToolName, v.SuspiciousReason)
		}
		return fmt.Sprintf("%s: valid=%t, type=%s", e.ToolName, v.Valid, v.Type)
	default:
		return fmt.Sprintf("%s (%s %s): %v", e.ToolName, e.EntityType, e.EntityValue, e.Payload)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
