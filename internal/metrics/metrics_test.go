package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_SnapshotEmpty(t *testing.T) {
	r := NewRecorder()
	snap := r.Snapshot()
	assert.Equal(t, time.Duration(0), snap.GateLatency.P50)
	assert.Empty(t, snap.DecisionCounts)
}

func TestRecorder_RecordsCountsAndLatency(t *testing.T) {
	r := NewRecorder()
	r.RecordGateDecision("agent", "entities_found", 5*time.Millisecond)
	r.RecordGateDecision("fast", "no_entities", 2*time.Millisecond)
	r.RecordFastPath(10 * time.Millisecond)
	r.RecordAgentPath(20 * time.Millisecond)

	snap := r.Snapshot()
	assert.Equal(t, 1, snap.DecisionCounts["agent:entities_found"])
	assert.Equal(t, 1, snap.DecisionCounts["fast:no_entities"])
	assert.Greater(t, snap.GateLatency.P50, time.Duration(0))
	assert.Greater(t, snap.FastLatency.P50, time.Duration(0))
	assert.Greater(t, snap.AgentLatency.P50, time.Duration(0))
}

func TestRing_PercentilesOverWindow(t *testing.T) {
	var r ring
	for i := 1; i <= 100; i++ {
		r.add(time.Duration(i) * time.Millisecond)
	}
	p := r.percentiles()
	assert.InDelta(t, 50, p.P50.Milliseconds(), 2)
	assert.InDelta(t, 95, p.P95.Milliseconds(), 2)
}
