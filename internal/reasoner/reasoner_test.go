package reasoner

import (
	"context"
	"testing"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
	"github.com/stretchr/testify/assert"
)

func TestHeuristicVerdict_NoEvidence_IsLow(t *testing.T) {
	level, confidence, explanation := heuristicVerdict(nil)
	assert.Equal(t, "low", level)
	assert.Equal(t, 0, confidence)
	assert.Contains(t, explanation, "no corroborating evidence")
}

func TestHeuristicVerdict_VerifiedRegistryHit_IsMedium(t *testing.T) {
	evidence := []models.AgentEvidence{
		{ToolName: "scam_db", Success: true, Payload: models.ScamLookupResult{Found: true, Verified: true, ReportCount: 12, RiskScore: 90}},
	}
	level, confidence, _ := heuristicVerdict(evidence)
	assert.Equal(t, "medium", level)
	assert.Equal(t, 50, confidence)
}

func TestHeuristicVerdict_CapsAtHundred(t *testing.T) {
	ageDays := 5
	evidence := []models.AgentEvidence{
		{ToolName: "scam_db", Success: true, Payload: models.ScamLookupResult{Found: true, Verified: true, ReportCount: 5}},
		{ToolName: "domain_reputation", Success: true, Payload: domainrep.Result{RiskLevel: "high", AgeDays: &ageDays}},
		{ToolName: "phone_validator", Success: true, Payload: phonevalidator.Result{Suspicious: true, SuspiciousReason: "all zeros"}},
		{ToolName: "exa_search", Success: true, Payload: websearch.Response{Results: []websearch.Result{
			{Domain: "reddit.com"}, {Domain: "example.com"}, {Domain: "example.org"},
		}}},
	}
	_, confidence, explanation := heuristicVerdict(evidence)
	assert.Equal(t, 100, confidence)
	assert.Contains(t, explanation, "verified")
}

func TestHeuristicVerdict_FailedEvidenceIsIgnored(t *testing.T) {
	evidence := []models.AgentEvidence{
		{ToolName: "scam_db", Success: false, ErrorMessage: "timeout"},
	}
	level, confidence, _ := heuristicVerdict(evidence)
	assert.Equal(t, "low", level)
	assert.Equal(t, 0, confidence)
}

func TestValidateVerdict_RejectsUnknownRiskLevel(t *testing.T) {
	_, ok := validateVerdict(verdictResponse{RiskLevel: "critical", Confidence: 90, Explanation: "long enough explanation"})
	assert.False(t, ok)
}

func TestValidateVerdict_RejectsShortExplanation(t *testing.T) {
	_, ok := validateVerdict(verdictResponse{RiskLevel: "high", Confidence: 90, Explanation: "too short"})
	assert.False(t, ok)
}

func TestValidateVerdict_ClampsConfidence(t *testing.T) {
	v, ok := validateVerdict(verdictResponse{RiskLevel: "high", Confidence: 150, Explanation: "citing registry report and domain age"})
	assert.True(t, ok)
	assert.Equal(t, 100, v.Confidence)
}

func TestReason_NoGenkit_FallsBackToHeuristic(t *testing.T) {
	r := New(nil, "")
	result, err := r.Reason(context.Background(), "some text", models.ExtractedEntities{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ReasoningHeuristic, result.ReasoningMethod)
}
