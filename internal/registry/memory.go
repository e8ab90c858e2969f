package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield/agent/internal/models"
)

type recordKey struct {
	entityType  EntityType
	entityValue string
}

// MemoryRegistry is an in-process ScamRegistry used in tests and as the
// fallback when no persistence connection string is configured. Grounded
// on the teacher's mutex-guarded map storage idiom.
type MemoryRegistry struct {
	mu      sync.RWMutex
	reports map[recordKey]*models.ScamReport
}

// NewMemoryRegistry returns an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{reports: make(map[recordKey]*models.ScamReport)}
}

func (r *MemoryRegistry) lookup(entityType EntityType, value string) models.ScamLookupResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[recordKey{entityType, value}]
	if !ok {
		return models.ScamLookupResult{Found: false, EntityType: string(entityType), EntityValue: value}
	}

	return models.ScamLookupResult{
		Found:        true,
		EntityType:   string(entityType),
		EntityValue:  value,
		ReportCount:  rep.ReportCount,
		RiskScore:    rep.RiskScore,
		Evidence:     append([]string(nil), rep.Evidence...),
		Verified:     rep.Verified,
		FirstSeen:    rep.FirstSeen,
		LastReported: rep.LastReported,
		Notes:        rep.Notes,
	}
}

func (r *MemoryRegistry) CheckPhone(ctx context.Context, e164 string) (models.ScamLookupResult, error) {
	return r.lookup(EntityPhone, e164), nil
}

func (r *MemoryRegistry) CheckURL(ctx context.Context, domain string) (models.ScamLookupResult, error) {
	return r.lookup(EntityURL, domain), nil
}

func (r *MemoryRegistry) CheckEmail(ctx context.Context, email string) (models.ScamLookupResult, error) {
	return r.lookup(EntityEmail, email), nil
}

func (r *MemoryRegistry) CheckPayment(ctx context.Context, value string, kind EntityType) (models.ScamLookupResult, error) {
	return r.lookup(kind, value), nil
}

// CheckBulk looks each request up in turn (each lookup takes its own
// read lock) and returns results aligned to the input order.
func (r *MemoryRegistry) CheckBulk(ctx context.Context, reqs []LookupRequest) ([]models.ScamLookupResult, error) {
	out := make([]models.ScamLookupResult, len(reqs))
	for i, req := range reqs {
		out[i] = r.lookup(req.EntityType, req.EntityValue)
	}
	return out, nil
}

// AddReport upserts by (entity_type, entity_value): a new key inserts
// with report_count=1; an existing key increments, appends evidence, and
// recomputes the risk score.
func (r *MemoryRegistry) AddReport(ctx context.Context, entityType EntityType, entityValue string, evidence []string, notes string) (models.ScamReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{entityType, entityValue}
	now := time.Now().UTC()

	rep, exists := r.reports[key]
	if !exists {
		rep = &models.ScamReport{
			ID:           uuid.NewString(),
			EntityType:   string(entityType),
			EntityValue:  entityValue,
			ReportCount:  0,
			FirstSeen:    now,
			Notes:        notes,
			CreatedAt:    now,
		}
		r.reports[key] = rep
	}

	rep.ReportCount++
	rep.Evidence = append(rep.Evidence, evidence...)
	rep.LastReported = now
	rep.UpdatedAt = now
	if notes != "" {
		rep.Notes = notes
	}
	rep.RiskScore = computeRiskScore(rep.ReportCount, rep.Verified, rep.LastReported, len(rep.Evidence))

	return *rep, nil
}
