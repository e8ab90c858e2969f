// Package dispatch bridges the ingress routing gate to the
// orchestrator: it hands a task off to a background goroutine, tracks
// in-flight task count for the worker health check, and records the
// task's lifecycle into a tasktracker.Tracker so the status endpoint
// can answer before persistence completes.
package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/scamshield/agent/internal/ingress"
	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/orchestrator"
	"github.com/scamshield/agent/internal/progress"
	"github.com/scamshield/agent/internal/tasktracker"
)

var (
	_ ingress.TaskDispatcher      = (*Dispatcher)(nil)
	_ ingress.WorkerHealthChecker = (*Dispatcher)(nil)
	_ orchestrator.ProgressPublisher = (*TrackingPublisher)(nil)
)

// Orchestrator is the subset of orchestrator.Orchestrator the dispatcher
// depends on.
type Orchestrator interface {
	Execute(ctx context.Context, task orchestrator.Task) (models.AgentResult, error)
}

// Dispatcher implements ingress.TaskDispatcher and ingress.WorkerHealthChecker
// for a single-process deployment with no external task queue: tasks run
// in a goroutine within this process rather than being handed to a
// broker (spec §5's queue-backed model is the out-of-process extension
// point; this is the in-process default).
type Dispatcher struct {
	orch        Orchestrator
	tracker     *tasktracker.Tracker
	inFlight    int64
	maxInFlight int64
}

// New builds a Dispatcher. maxInFlight bounds how many tasks may run
// concurrently before the worker health check reports unavailable.
func New(orch Orchestrator, tracker *tasktracker.Tracker, maxInFlight int64) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 10
	}
	return &Dispatcher{orch: orch, tracker: tracker, maxInFlight: maxInFlight}
}

// Dispatch implements ingress.TaskDispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, ocrText string) (string, error) {
	taskID := uuid.NewString()
	d.tracker.MarkPending(taskID)
	atomic.AddInt64(&d.inFlight, 1)

	go func() {
		defer atomic.AddInt64(&d.inFlight, -1)
		result, err := d.orch.Execute(context.Background(), orchestrator.Task{
			TaskID: taskID, SessionID: sessionID, OCRText: ocrText, State: orchestrator.StateQueued,
		})
		if err != nil {
			d.tracker.MarkFailed(taskID, "agent analysis failed")
			return
		}
		d.tracker.MarkCompleted(taskID, result)
	}()

	return taskID, nil
}

// HealthCheck implements ingress.WorkerHealthChecker: this process is
// always "a worker", and is reported unavailable once in-flight tasks
// reach the configured concurrency cap.
func (d *Dispatcher) HealthCheck(ctx context.Context) (bool, int, error) {
	n := atomic.LoadInt64(&d.inFlight)
	return n < d.maxInFlight, int(n), nil
}

// TrackingPublisher implements orchestrator.ProgressPublisher, forwarding
// every message to the websocket/Redis hub and mirroring its percent
// into the tasktracker so the status endpoint reflects live progress.
type TrackingPublisher struct {
	Hub     *progress.Hub
	Tracker *tasktracker.Tracker
}

func (p *TrackingPublisher) Publish(ctx context.Context, taskID string, msg models.ProgressMessage) {
	p.Hub.Publish(ctx, taskID, msg)
	if msg.Step == models.StepFailed {
		p.Tracker.MarkFailed(taskID, msg.Message)
		return
	}
	p.Tracker.MarkProgress(taskID, msg.Percent)
}
