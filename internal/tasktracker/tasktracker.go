// Package tasktracker holds the in-process record of a task's lifecycle
// state (spec §4.7.1) between dispatch and persistence, so the status
// endpoint can answer "pending"/"processing" before a result exists in
// the store. Grounded on the mutex-guarded map idiom used throughout
// the pack for in-memory singletons (e.g. registry.MemoryRegistry).
package tasktracker

import (
	"context"
	"sync"

	"github.com/scamshield/agent/internal/ingress"
	"github.com/scamshield/agent/internal/models"
)

// Status mirrors the recognized values of spec §6's task-status endpoint.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type entry struct {
	status   string
	progress int
	result   *models.AgentResult
	errMsg   string
}

// Tracker is an in-memory map from task id to lifecycle state. The map
// has no size bound and entries are never evicted.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New builds an empty Tracker.
func New() *Tracker {
	return &Tracker{entries: make(map[string]*entry)}
}

// MarkPending registers a freshly dispatched task.
func (t *Tracker) MarkPending(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[taskID] = &entry{status: StatusPending}
}

// MarkProgress records the orchestrator's latest percent-complete for
// a running task, promoting it to "processing" on the first update.
func (t *Tracker) MarkProgress(taskID string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[taskID]
	if !ok {
		e = &entry{}
		t.entries[taskID] = e
	}
	e.status = StatusProcessing
	e.progress = percent
}

// MarkCompleted records the final successful result.
func (t *Tracker) MarkCompleted(taskID string, result models.AgentResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[taskID] = &entry{status: StatusCompleted, result: &result, progress: 100}
}

// MarkFailed records a terminal failure.
func (t *Tracker) MarkFailed(taskID, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[taskID] = &entry{status: StatusFailed, errMsg: errMsg, progress: 100}
}

// Status implements ingress.TaskStatusStore.
func (t *Tracker) Status(ctx context.Context, taskID string) (ingress.TaskStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[taskID]
	if !ok {
		return ingress.TaskStatus{}, errUnknownTask
	}

	out := ingress.TaskStatus{TaskID: taskID, Status: e.status}
	if e.status == StatusProcessing || e.status == StatusPending {
		progress := e.progress
		out.Progress = &progress
	}
	if e.result != nil {
		out.Result = e.result
	}
	if e.errMsg != "" {
		out.Error = e.errMsg
	}
	return out, nil
}

var errUnknownTask = unknownTaskError{}

type unknownTaskError struct{}

func (unknownTaskError) Error() string { return "unknown task id" }
