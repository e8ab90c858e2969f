package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scamshield/agent/internal/models"
)

// schema is applied by NewPostgresRegistry on connect (schemaDDL, with
// CREATE TABLE IF NOT EXISTS); this is the DDL the package assumes.
//
//	CREATE TABLE scam_reports (
//	  id              uuid PRIMARY KEY,
//	  entity_type     text NOT NULL,
//	  entity_value    text NOT NULL,
//	  report_count    integer NOT NULL DEFAULT 1,
//	  risk_score      integer NOT NULL DEFAULT 30,
//	  first_seen      timestamptz NOT NULL,
//	  last_reported   timestamptz NOT NULL,
//	  evidence        text[] NOT NULL DEFAULT '{}',
//	  verified        boolean NOT NULL DEFAULT false,
//	  notes           text,
//	  created_at      timestamptz NOT NULL DEFAULT now(),
//	  updated_at      timestamptz NOT NULL DEFAULT now(),
//	  UNIQUE (entity_type, entity_value)
//	);
const schemaDDL = `
CREATE TABLE IF NOT EXISTS scam_reports (
	id uuid PRIMARY KEY,
	entity_type text NOT NULL,
	entity_value text NOT NULL,
	report_count integer NOT NULL DEFAULT 1,
	risk_score integer NOT NULL DEFAULT 30,
	first_seen timestamptz NOT NULL,
	last_reported timestamptz NOT NULL,
	evidence text[] NOT NULL DEFAULT '{}',
	verified boolean NOT NULL DEFAULT false,
	notes text,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	UNIQUE (entity_type, entity_value)
);`

// PostgresRegistry is the production ScamRegistry backed by pgx/v5's
// connection pool. The unique (entity_type, entity_value) index makes
// concurrent lookups safe and lets AddReport resolve to an upsert.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry connects to url and ensures the schema exists.
func NewPostgresRegistry(ctx context.Context, url string) (*PostgresRegistry, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresRegistry{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (r *PostgresRegistry) Close() {
	r.pool.Close()
}

const lookupQuery = `
SELECT report_count, risk_score, evidence, verified, first_seen, last_reported, notes
FROM scam_reports WHERE entity_type = $1 AND entity_value = $2`

func (r *PostgresRegistry) lookup(ctx context.Context, entityType EntityType, value string) (models.ScamLookupResult, error) {
	result := models.ScamLookupResult{EntityType: string(entityType), EntityValue: value}

	row := r.pool.QueryRow(ctx, lookupQuery, string(entityType), value)
	err := row.Scan(&result.ReportCount, &result.RiskScore, &result.Evidence, &result.Verified,
		&result.FirstSeen, &result.LastReported, &result.Notes)
	if err == pgx.ErrNoRows {
		return result, nil
	}
	if err != nil {
		return result, err
	}

	result.Found = true
	return result, nil
}

func (r *PostgresRegistry) CheckPhone(ctx context.Context, e164 string) (models.ScamLookupResult, error) {
	return r.lookup(ctx, EntityPhone, e164)
}

func (r *PostgresRegistry) CheckURL(ctx context.Context, domain string) (models.ScamLookupResult, error) {
	return r.lookup(ctx, EntityURL, domain)
}

func (r *PostgresRegistry) CheckEmail(ctx context.Context, email string) (models.ScamLookupResult, error) {
	return r.lookup(ctx, EntityEmail, email)
}

func (r *PostgresRegistry) CheckPayment(ctx context.Context, value string, kind EntityType) (models.ScamLookupResult, error) {
	return r.lookup(ctx, kind, value)
}

// CheckBulk issues a single query returning an aligned result vector, as
// required by spec §4.2's single-query constraint: entity types and
// values are unnested together and left-joined against scam_reports.
func (r *PostgresRegistry) CheckBulk(ctx context.Context, reqs []LookupRequest) ([]models.ScamLookupResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	types := make([]string, len(reqs))
	values := make([]string, len(reqs))
	for i, req := range reqs {
		types[i] = string(req.EntityType)
		values[i] = req.EntityValue
	}

	const bulkQuery = `
SELECT q.entity_type, q.entity_value, r.report_count, r.risk_score, r.evidence,
       r.verified, r.first_seen, r.last_reported, r.notes, (r.id IS NOT NULL) AS found
FROM unnest($1::text[], $2::text[]) WITH ORDINALITY AS q(entity_type, entity_value, ord)
LEFT JOIN scam_reports r ON r.entity_type = q.entity_type AND r.entity_value = q.entity_value
ORDER BY q.ord`

	rows, err := r.pool.Query(ctx, bulkQuery, types, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScamLookupResult, 0, len(reqs))
	for rows.Next() {
		var res models.ScamLookupResult
		var reportCount, riskScore *int
		var evidence []string
		var verified *bool
		var firstSeen, lastReported *time.Time
		var notes *string

		if err := rows.Scan(&res.EntityType, &res.EntityValue, &reportCount, &riskScore, &evidence,
			&verified, &firstSeen, &lastReported, &notes, &res.Found); err != nil {
			return nil, err
		}
		if reportCount != nil {
			res.ReportCount = *reportCount
		}
		if riskScore != nil {
			res.RiskScore = *riskScore
		}
		res.Evidence = evidence
		if verified != nil {
			res.Verified = *verified
		}
		if firstSeen != nil {
			res.FirstSeen = *firstSeen
		}
		if lastReported != nil {
			res.LastReported = *lastReported
		}
		if notes != nil {
			res.Notes = *notes
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

const upsertQuery = `
INSERT INTO scam_reports (id, entity_type, entity_value, report_count, risk_score, first_seen, last_reported, evidence, notes, created_at, updated_at)
VALUES ($1, $2, $3, 1, $4, $5, $5, $6, $7, $5, $5)
ON CONFLICT (entity_type, entity_value) DO UPDATE SET
	report_count = scam_reports.report_count + 1,
	evidence = scam_reports.evidence || $6,
	last_reported = $5,
	updated_at = $5,
	notes = COALESCE(NULLIF($7, ''), scam_reports.notes),
	risk_score = $4
RETURNING id, report_count, risk_score, first_seen, last_reported, evidence, verified, notes, created_at, updated_at`

// AddReport upserts by (entity_type, entity_value). The risk score
// passed in the insert branch is provisional; after the round trip the
// caller's next lookup reflects the server-recomputed value since this
// implementation folds recomputation into a second statement to keep
// the SQL expression simple and debuggable.
func (r *PostgresRegistry) AddReport(ctx context.Context, entityType EntityType, entityValue string, evidence []string, notes string) (models.ScamReport, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	var rep models.ScamReport
	rep.EntityType = string(entityType)
	rep.EntityValue = entityValue

	row := r.pool.QueryRow(ctx, upsertQuery, id, string(entityType), entityValue,
		30, now, evidence, notes)
	if err := row.Scan(&rep.ID, &rep.ReportCount, &rep.RiskScore, &rep.FirstSeen, &rep.LastReported,
		&rep.Evidence, &rep.Verified, &rep.Notes, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return rep, err
	}

	finalScore := computeRiskScore(rep.ReportCount, rep.Verified, rep.LastReported, len(rep.Evidence))
	if finalScore != rep.RiskScore {
		if _, err := r.pool.Exec(ctx, `UPDATE scam_reports SET risk_score = $1 WHERE id = $2`, finalScore, rep.ID); err != nil {
			return rep, err
		}
		rep.RiskScore = finalScore
	}

	return rep, nil
}
