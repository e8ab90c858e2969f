package models

import "time"

// ScamReport is a persistent registry record keyed by (EntityType, EntityValue).
type ScamReport struct {
	ID           string    `json:"id"`
	EntityType   string    `json:"entity_type"`
	EntityValue  string    `json:"entity_value"`
	ReportCount  int       `json:"report_count"`
	RiskScore    int       `json:"risk_score"`
	FirstSeen    time.Time `json:"first_seen"`
	LastReported time.Time `json:"last_reported"`
	Evidence     []string  `json:"evidence"`
	Verified     bool      `json:"verified"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScamLookupResult is the outcome of a single registry lookup.
type ScamLookupResult struct {
	Found        bool      `json:"found"`
	EntityType   string    `json:"entity_type"`
	EntityValue  string    `json:"entity_value"`
	ReportCount  int       `json:"report_count,omitempty"`
	RiskScore    int       `json:"risk_score,omitempty"`
	Evidence     []string  `json:"evidence,omitempty"`
	Verified     bool      `json:"verified,omitempty"`
	FirstSeen    time.Time `json:"first_seen,omitempty"`
	LastReported time.Time `json:"last_reported,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// ArchiveEligible reports whether a report should move to the archive
// table under the policy in spec §3: last_reported older than maxAge AND
// NOT (verified AND risk_score > highRiskThreshold).
func (r ScamReport) ArchiveEligible(now time.Time, maxAge time.Duration, highRiskThreshold int) bool {
	if now.Sub(r.LastReported) < maxAge {
		return false
	}
	if r.Verified && r.RiskScore > highRiskThreshold {
		return false
	}
	return true
}
