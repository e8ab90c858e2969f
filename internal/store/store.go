// Package store persists agent scan results and sessions (spec §6),
// backed by Postgres via pgx, and runs the 7-day retention sweep
// (spec §6) as a background ticker routine.
//
// The ticker-based scheduler shape is grounded on the teacher's
// SiteContextManager.startCleanupRoutine (internal/driven/context_manager.go):
// a ticker goroutine selecting on the ticker channel and a stop channel.
package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scamshield/agent/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id   TEXT PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agent_scan_results (
	task_id            TEXT PRIMARY KEY,
	session_id         TEXT NOT NULL,
	entities_found     JSONB NOT NULL,
	tool_results       JSONB NOT NULL,
	risk_level         TEXT NOT NULL,
	confidence         INT NOT NULL,
	reasoning_text     TEXT NOT NULL,
	reasoning_method   TEXT NOT NULL,
	tools_used         JSONB NOT NULL,
	processing_time_ms BIGINT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_results_session_id ON agent_scan_results (session_id);
CREATE INDEX IF NOT EXISTS idx_scan_results_risk_level ON agent_scan_results (risk_level);
CREATE INDEX IF NOT EXISTS idx_scan_results_entities_gin ON agent_scan_results USING GIN (entities_found);
CREATE INDEX IF NOT EXISTS idx_scan_results_tools_gin ON agent_scan_results USING GIN (tool_results);
`

const retentionPeriod = 7 * 24 * time.Hour

// Store is the Postgres-backed persistence layer for agent scan
// results and sessions.
type Store struct {
	pool          *pgxpool.Pool
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
}

// New connects to Postgres and ensures the schema exists.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, stopChan: make(chan struct{})}, nil
}

// Close releases the connection pool and stops the retention sweep.
func (s *Store) Close() {
	s.StopRetentionSweep()
	s.pool.Close()
}

// SaveResult implements orchestrator.ResultStore: upsert the session
// touch and insert (or replace, on a retried task) the scan result.
func (s *Store) SaveResult(ctx context.Context, result models.AgentResult) error {
	entitiesJSON, err := json.Marshal(result.EntitiesFound)
	if err != nil {
		return err
	}
	toolResultsJSON, err := json.Marshal(result.Evidence)
	if err != nil {
		return err
	}
	toolsUsedJSON, err := json.Marshal(result.ToolsUsed)
	if err != nil {
		return err
	}

	if result.SessionID != "" {
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO sessions (session_id) VALUES ($1)
			ON CONFLICT (session_id) DO UPDATE SET last_seen_at = now()
		`, result.SessionID); err != nil {
			return err
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO agent_scan_results
			(task_id, session_id, entities_found, tool_results, risk_level, confidence,
			 reasoning_text, reasoning_method, tools_used, processing_time_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (task_id) DO UPDATE SET
			entities_found = EXCLUDED.entities_found,
			tool_results = EXCLUDED.tool_results,
			risk_level = EXCLUDED.risk_level,
			confidence = EXCLUDED.confidence,
			reasoning_text = EXCLUDED.reasoning_text,
			reasoning_method = EXCLUDED.reasoning_method,
			tools_used = EXCLUDED.tools_used,
			processing_time_ms = EXCLUDED.processing_time_ms
	`, result.TaskID, result.SessionID, entitiesJSON, toolResultsJSON, string(result.RiskLevel),
		result.Confidence, result.ReasoningText, string(result.ReasoningMethod), toolsUsedJSON,
		result.ProcessingTimeMS, result.CreatedAt)
	return err
}

// Result fetches one persisted scan result by task id.
func (s *Store) Result(ctx context.Context, taskID string) (models.AgentResult, error) {
	var r models.AgentResult
	var entitiesJSON, toolResultsJSON, toolsUsedJSON []byte
	var riskLevel, reasoningMethod string

	err := s.pool.QueryRow(ctx, `
		SELECT task_id, session_id, entities_found, tool_results, risk_level, confidence,
		       reasoning_text, reasoning_method, tools_used, processing_time_ms, created_at
		FROM agent_scan_results WHERE task_id = $1
	`, taskID).Scan(&r.TaskID, &r.SessionID, &entitiesJSON, &toolResultsJSON, &riskLevel, &r.Confidence,
		&r.ReasoningText, &reasoningMethod, &toolsUsedJSON, &r.ProcessingTimeMS, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.AgentResult{}, ErrNotFound
		}
		return models.AgentResult{}, err
	}

	r.RiskLevel = models.RiskLevel(riskLevel)
	r.ReasoningMethod = models.ReasoningMethod(reasoningMethod)
	_ = json.Unmarshal(entitiesJSON, &r.EntitiesFound)
	_ = json.Unmarshal(toolResultsJSON, &r.Evidence)
	_ = json.Unmarshal(toolsUsedJSON, &r.ToolsUsed)
	return r, nil
}

// ErrNotFound is returned by Result when no row matches the task id.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "scan result not found" }

// StartRetentionSweep launches the background deletion of
// agent_scan_results rows older than 7 days (spec §6), on a ticker
// running at the given interval.
func (s *Store) StartRetentionSweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	s.cleanupTicker = ticker
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.sweepExpiredResults(context.Background()); err != nil {
					log.Printf("store: retention sweep failed: %v", err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
}

// StopRetentionSweep idempotently stops the ticker routine.
func (s *Store) StopRetentionSweep() {
	if s.cleanupTicker == nil {
		return
	}
	close(s.stopChan)
	s.cleanupTicker.Stop()
	s.cleanupTicker = nil
}

func (s *Store) sweepExpiredResults(ctx context.Context) error {
	cutoff := time.Now().Add(-retentionPeriod)
	tag, err := s.pool.Exec(ctx, `DELETE FROM agent_scan_results WHERE created_at < $1`, cutoff)
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("store: retention sweep deleted %d expired scan result(s)", n)
	}
	return nil
}
