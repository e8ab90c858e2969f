// Package orchestrator implements the task state machine and execution
// pipeline (spec C7, §4.7): it extracts entities, fans tool calls out
// per entity, invokes the reasoner, and persists the verdict.
//
// Grounded directly on AditS-H-VIGILUM's scanner.Orchestrator.ScanAll:
// same shape — register participants, fan out per unit of work with
// errgroup, tolerate individual failures, aggregate — applied to scam
// entities and tools instead of contracts and scanners.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield/agent/internal/entity"
	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/registry"
)

// State is the task's lifecycle state (spec §4.7.1).
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Task is one unit of work submitted to the orchestrator.
type Task struct {
	TaskID    string
	SessionID string
	OCRText   string
	State     State
}

const (
	hardBudget = 60 * time.Second
	softBudget = 55 * time.Second
	perToolTimeout = 8 * time.Second
)

// Reasoner produces the final verdict from accumulated evidence.
type Reasoner interface {
	Reason(ctx context.Context, ocrText string, entities models.ExtractedEntities, evidence []models.AgentEvidence) (models.AgentResult, error)
}

// ResultStore persists the final AgentResult.
type ResultStore interface {
	SaveResult(ctx context.Context, result models.AgentResult) error
}

// ProgressPublisher is the subset of progress.Hub the orchestrator uses.
type ProgressPublisher interface {
	Publish(ctx context.Context, taskID string, msg models.ProgressMessage)
}

// Orchestrator wires together the entity extractor, the four tool
// fan-outs, the reasoner, and persistence. One instance is shared across
// all concurrently running tasks; it holds no per-task state itself.
type Orchestrator struct {
	registry       registry.ScamRegistry
	webSearch      searchTool
	domainRep      domainTool
	phoneValidator phoneTool
	companyLookup  CompanyLookup
	reasoner       Reasoner
	store          ResultStore
	progress       ProgressPublisher
	defaultRegion  string
}

// searchTool/domainTool/phoneTool are the narrow interfaces actually
// used, matching websearch.Tool / domainrep.Tool / phonevalidator.Tool's
// real method signatures (defined in deps.go to keep this file readable).

// New builds an Orchestrator. companyLookup may be nil — company
// registry lookup is optional by country (spec §4.7.2).
func New(reg registry.ScamRegistry, search searchTool, domain domainTool, phone phoneTool,
	companyLookup CompanyLookup, reasoner Reasoner, store ResultStore, progress ProgressPublisher, defaultRegion string) *Orchestrator {
	return &Orchestrator{
		registry:       reg,
		webSearch:      search,
		domainRep:      domain,
		phoneValidator: phone,
		companyLookup:  companyLookup,
		reasoner:       reasoner,
		store:          store,
		progress:       progress,
		defaultRegion:  defaultRegion,
	}
}

// Execute runs the full pipeline for one task (spec §4.7.2), enforcing
// the hard 60s wall-clock budget. On failure it publishes a `failed`
// progress message, persists a minimal AgentResult, and returns that
// result together with the error.
func (o *Orchestrator) Execute(ctx context.Context, task Task) (models.AgentResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, hardBudget)
	defer cancel()

	result, err := o.run(ctx, task, start)
	if err != nil {
		o.progress.Publish(ctx, task.TaskID, models.ProgressMessage{
			Step: models.StepFailed, Percent: 100, Message: err.Error(), Error: true, Timestamp: time.Now(),
		})
		minimal := minimalFailureResult(task, start, err)
		if o.store != nil {
			if saveErr := o.store.SaveResult(context.Background(), minimal); saveErr != nil {
				log.Printf("orchestrator: failed to persist minimal failure result for task %s: %v", task.TaskID, saveErr)
			}
		}
		return minimal, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, task Task, start time.Time) (models.AgentResult, error) {
	publish := func(msg models.ProgressMessage) {
		msg.Timestamp = time.Now()
		o.progress.Publish(ctx, task.TaskID, msg)
	}

	publish(models.ProgressMessage{Step: models.StepEntityExtraction, Message: "Extracting entities…", Percent: 10})

	entities := entity.Extract(task.OCRText, entity.Options{DefaultRegion: o.defaultRegion})

	publish(models.ProgressMessage{
		Step:    models.StepEntityExtraction,
		Percent: 20,
		Message: fmt.Sprintf("Found %d entities: %d phones, %d urls, %d emails, %d companies",
			entities.Count(), len(entities.Phones), len(entities.URLs), len(entities.Emails), len(entities.Companies)),
	})

	var evidence []models.AgentEvidence
	toolsUsed := make(map[string]bool)

	if entities.HasEntities() {
		publish(models.ProgressMessage{Step: models.StepToolExecution, Percent: 30})
		evidence = o.fanOutAllEntities(ctx, entities, publish, toolsUsed)
	}

	publish(models.ProgressMessage{Step: models.StepReasoning, Percent: 90, Message: "Analyzing evidence…"})

	result, err := o.reasoner.Reason(ctx, task.OCRText, entities, evidence)
	if err != nil {
		return models.AgentResult{}, fmt.Errorf("reasoning failed: %w", err)
	}
	result.TaskID = task.TaskID
	result.SessionID = task.SessionID
	result.EntitiesFound = entities
	result.Evidence = evidence
	result.ToolsUsed = toolNames(toolsUsed)
	result.ProcessingTimeMS = time.Since(start).Milliseconds()
	result.CreatedAt = time.Now()

	if o.store != nil {
		if err := o.store.SaveResult(ctx, result); err != nil {
			return result, fmt.Errorf("persisting result: %w", err)
		}
	}

	publish(models.ProgressMessage{Step: models.StepCompleted, Percent: 100, Message: "Analysis complete!"})
	return result, nil
}

func toolNames(used map[string]bool) []string {
	out := make([]string, 0, len(used))
	for name := range used {
		out = append(out, name)
	}
	return out
}

func minimalFailureResult(task Task, start time.Time, cause error) models.AgentResult {
	return models.AgentResult{
		TaskID:           task.TaskID,
		SessionID:        task.SessionID,
		RiskLevel:        models.RiskLow,
		Confidence:       0,
		ReasoningText:    "timeout: " + cause.Error(),
		ReasoningMethod:  models.ReasoningHeuristic,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		CreatedAt:        time.Now(),
	}
}

// newTaskID generates a fresh task identifier for inline (non-queued)
// callers.
func newTaskID() string { return uuid.NewString() }
