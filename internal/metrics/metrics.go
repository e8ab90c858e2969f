// Package metrics records the routing gate's decision counts and
// latency distributions (spec §4.7.5) without any third-party client:
// no metrics library appears anywhere in the retrieved pack, so this
// is a deliberate stdlib exception (see DESIGN.md).
package metrics

import (
	"sort"
	"sync"
	"time"
)

const ringSize = 1024

// ring is a fixed-size circular buffer of latency samples. Once full it
// overwrites the oldest sample, bounding memory while keeping a recent
// window for percentile computation.
type ring struct {
	mu      sync.Mutex
	samples [ringSize]time.Duration
	count   int
	next    int
}

func (r *ring) add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[r.next] = d
	r.next = (r.next + 1) % ringSize
	if r.count < ringSize {
		r.count++
	}
}

// percentiles returns p50/p95/p99 over the current window. Returns
// zero values when no samples have been recorded yet.
func (r *ring) percentiles() Percentiles {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return Percentiles{}
	}
	sorted := make([]time.Duration, r.count)
	copy(sorted, r.samples[:r.count])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Percentiles{
		P50: percentileOf(sorted, 0.50),
		P95: percentileOf(sorted, 0.95),
		P99: percentileOf(sorted, 0.99),
	}
}

func percentileOf(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// Percentiles is a snapshot of a latency distribution.
type Percentiles struct {
	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// Recorder accumulates gate-decision counts and the three routing-gate
// latency distributions named in spec §4.7.5.
type Recorder struct {
	mu              sync.Mutex
	decisionReasons map[string]int

	gateLatency  ring
	fastLatency  ring
	agentLatency ring
}

// NewRecorder builds an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{decisionReasons: make(map[string]int)}
}

// RecordGateDecision records one routing decision (e.g. "agent" or
// "fast") together with the reason that produced it (e.g.
// "no_worker_available") and the time the gate itself took.
func (r *Recorder) RecordGateDecision(decision, reason string, d time.Duration) {
	r.mu.Lock()
	r.decisionReasons[decision+":"+reason]++
	r.mu.Unlock()
	r.gateLatency.add(d)
}

// RecordFastPath records one fast-path classification's latency.
func (r *Recorder) RecordFastPath(d time.Duration) { r.fastLatency.add(d) }

// RecordAgentPath records one agent-dispatch call's latency.
func (r *Recorder) RecordAgentPath(d time.Duration) { r.agentLatency.add(d) }

// Snapshot returns the current counters and latency percentiles for
// diagnostics/health reporting.
type Snapshot struct {
	DecisionCounts map[string]int
	GateLatency    Percentiles
	FastLatency    Percentiles
	AgentLatency   Percentiles
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	counts := make(map[string]int, len(r.decisionReasons))
	for k, v := range r.decisionReasons {
		counts[k] = v
	}
	r.mu.Unlock()

	return Snapshot{
		DecisionCounts: counts,
		GateLatency:    r.gateLatency.percentiles(),
		FastLatency:    r.fastLatency.percentiles(),
		AgentLatency:   r.agentLatency.percentiles(),
	}
}
