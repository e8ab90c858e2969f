// Package registry implements the scam-report lookup and ingestion tool:
// an indexed store of previously reported phones, URLs, emails, and
// payment identifiers, queried synchronously by the orchestrator.
package registry

import (
	"context"
	"math"
	"time"

	"github.com/scamshield/agent/internal/models"
)

// EntityType is the normalized registry key's type component.
type EntityType string

const (
	EntityPhone   EntityType = "phone"
	EntityURL     EntityType = "url"
	EntityEmail   EntityType = "email"
	EntityBitcoin EntityType = "bitcoin"
	EntityPayment EntityType = "payment"
)

// LookupRequest is one entry of a bulk lookup, carrying the type and the
// already-normalized value to look up.
type LookupRequest struct {
	EntityType  EntityType
	EntityValue string
}

// ScamRegistry is the indexed lookup + ingestion contract of spec C2.
// Implementations must answer single lookups in well under 10ms p95 and
// must make add_report safe under concurrent callers racing on the same
// (entity_type, entity_value) key.
type ScamRegistry interface {
	CheckPhone(ctx context.Context, e164 string) (models.ScamLookupResult, error)
	CheckURL(ctx context.Context, domain string) (models.ScamLookupResult, error)
	CheckEmail(ctx context.Context, email string) (models.ScamLookupResult, error)
	CheckPayment(ctx context.Context, value string, kind EntityType) (models.ScamLookupResult, error)
	CheckBulk(ctx context.Context, reqs []LookupRequest) ([]models.ScamLookupResult, error)
	AddReport(ctx context.Context, entityType EntityType, entityValue string, evidence []string, notes string) (models.ScamReport, error)
}

// computeRiskScore implements spec §4.2's deterministic risk function:
// a base of 30, a logarithmic bonus for repeated reports, a flat bonus
// for verified reports, a recency bonus that decays linearly to zero by
// day 365, and a source-count weight. Clamped to [0,100].
func computeRiskScore(reportCount int, verified bool, lastReported time.Time, evidenceCount int) int {
	if reportCount < 1 {
		reportCount = 1
	}

	score := 30.0 + 10.0*math.Log2(float64(reportCount))
	if verified {
		score += 20
	}
	score += recencyBonus(lastReported)
	score += sourceWeight(evidenceCount)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// recencyBonus is 15 within the last 30 days, decaying linearly to 0 at
// 365 days, and 0 beyond that.
func recencyBonus(lastReported time.Time) float64 {
	days := time.Since(lastReported).Hours() / 24
	if days <= 30 {
		return 15
	}
	if days >= 365 {
		return 0
	}
	return 15 * (1 - (days-30)/(365-30))
}

// sourceWeight gives a small additive bonus for corroborating evidence
// entries, capped so it cannot dominate the score on its own.
func sourceWeight(evidenceCount int) float64 {
	w := float64(evidenceCount) * 2
	if w > 10 {
		w = 10
	}
	return w
}
