package limits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultResourceLimits(t *testing.T) {
	l := DefaultResourceLimits()

	assert.Equal(t, 50, l.MaxProgressHistory)
	assert.Equal(t, 20, l.MaxEvidencePerReport)
	assert.Equal(t, 1000, l.MaxRecentTasks)
	assert.Equal(t, 365*24*time.Hour, l.MaxReportAge)
	assert.Equal(t, 100, l.MaxURLPatterns)
}

func TestNewResourceLimiter(t *testing.T) {
	limiter := NewResourceLimiter(nil)
	require.NotNil(t, limiter)
	require.NotNil(t, limiter.limits)

	custom := &ResourceLimits{
		MaxProgressHistory:   100,
		MaxEvidencePerReport: 50,
		MaxRecentTasks:       2000,
		MaxReportAge:         180 * 24 * time.Hour,
		MaxURLPatterns:       200,
		MaxNotesLength:       500,
	}

	limiter = NewResourceLimiter(custom)
	require.NotNil(t, limiter)
	assert.Equal(t, custom.MaxProgressHistory, limiter.GetLimits().MaxProgressHistory)
}

func TestResourceLimiter_UpdateLimits(t *testing.T) {
	limiter := NewResourceLimiter(nil)

	valid := &ResourceLimits{
		MaxProgressHistory:   25,
		MaxEvidencePerReport: 15,
		MaxRecentTasks:       500,
		MaxReportAge:         48 * time.Hour,
		MaxURLPatterns:       80,
		MaxNotesLength:       100,
	}

	err := limiter.UpdateLimits(valid)
	assert.NoError(t, err)
	assert.Equal(t, valid.MaxProgressHistory, limiter.GetLimits().MaxProgressHistory)

	invalid := &ResourceLimits{MaxProgressHistory: -1}
	err = limiter.UpdateLimits(invalid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MaxProgressHistory must be positive")
}

func TestResourceLimiter_ShouldArchive(t *testing.T) {
	limiter := NewResourceLimiter(&ResourceLimits{
		MaxProgressHistory: 1, MaxEvidencePerReport: 1, MaxRecentTasks: 1,
		MaxReportAge: 24 * time.Hour, MaxURLPatterns: 1, MaxNotesLength: 1,
	})

	assert.False(t, limiter.ShouldArchive(time.Now()))
	assert.True(t, limiter.ShouldArchive(time.Now().Add(-25*time.Hour)))
}

func TestResourceLimiter_ValidateLimits(t *testing.T) {
	limiter := NewResourceLimiter(nil)
	assert.NoError(t, limiter.ValidateLimits())

	limiter.limits = &ResourceLimits{
		MaxProgressHistory: 2000, MaxEvidencePerReport: 20, MaxRecentTasks: 1000,
		MaxReportAge: 24 * time.Hour, MaxURLPatterns: 100, MaxNotesLength: 100,
	}
	err := limiter.ValidateLimits()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MaxProgressHistory too large")
}

func TestResourceLimiter_GetMemoryUsage(t *testing.T) {
	limiter := NewResourceLimiter(nil)
	usage := limiter.GetMemoryUsage()

	assert.Greater(t, usage, int64(0))
	assert.Greater(t, usage, int64(1000))
}

func TestCapStrings(t *testing.T) {
	items := make([]string, 100)
	for i := range items {
		items[i] = "x"
	}
	capped := CapStrings(items, 20)
	assert.Len(t, capped, 20)
}

func TestCapMessages(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}
	capped := CapMessages(items, 3)
	assert.Equal(t, []int{7, 8, 9}, capped)
}
