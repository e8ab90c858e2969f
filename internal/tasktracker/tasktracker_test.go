package tasktracker

import (
	"context"
	"testing"

	"github.com/scamshield/agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_UnknownTask_ReturnsError(t *testing.T) {
	tr := New()
	_, err := tr.Status(context.Background(), "nope")
	assert.Error(t, err)
}

func TestMarkPending_ThenStatus_ReportsPending(t *testing.T) {
	tr := New()
	tr.MarkPending("t1")

	status, err := tr.Status(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status.Status)
	require.NotNil(t, status.Progress)
	assert.Equal(t, 0, *status.Progress)
}

func TestMarkProgress_PromotesToProcessing(t *testing.T) {
	tr := New()
	tr.MarkPending("t1")
	tr.MarkProgress("t1", 45)

	status, err := tr.Status(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status.Status)
	require.NotNil(t, status.Progress)
	assert.Equal(t, 45, *status.Progress)
}

func TestMarkCompleted_ReportsResultAndNoProgressField(t *testing.T) {
	tr := New()
	tr.MarkPending("t1")
	result := models.AgentResult{TaskID: "t1", RiskLevel: models.RiskHigh, Confidence: 90}
	tr.MarkCompleted("t1", result)

	status, err := tr.Status(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Nil(t, status.Progress)
	require.NotNil(t, status.Result)
	assert.Equal(t, models.RiskHigh, status.Result.RiskLevel)
}

func TestMarkFailed_ReportsError(t *testing.T) {
	tr := New()
	tr.MarkPending("t1")
	tr.MarkFailed("t1", "tool budget exceeded")

	status, err := tr.Status(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Equal(t, "tool budget exceeded", status.Error)
}
