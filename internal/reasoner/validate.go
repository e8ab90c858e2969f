package reasoner

// validateVerdict checks and clamps an LLM-produced verdict per
// spec §4.7.3: risk_level must be one of the recognized values,
// confidence is clamped to [0,100], and explanation must carry at
// least 10 characters of substance.
func validateVerdict(v verdictResponse) (verdictResponse, bool) {
	switch v.RiskLevel {
	case "low", "medium", "high":
	default:
		return v, false
	}
	if len(v.Explanation) < 10 {
		return v, false
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 100 {
		v.Confidence = 100
	}
	return v, true
}
