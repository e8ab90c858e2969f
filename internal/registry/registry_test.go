package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_MissNotFound(t *testing.T) {
	reg := NewMemoryRegistry()
	res, err := reg.CheckPhone(context.Background(), "+18005550199")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestMemoryRegistry_AddThenFound(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	_, err := reg.AddReport(ctx, EntityPhone, "+18005550199", []string{"user complaint"}, "robocall")
	require.NoError(t, err)

	res, err := reg.CheckPhone(ctx, "+18005550199")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.ReportCount)
	assert.Equal(t, "robocall", res.Notes)
}

func TestMemoryRegistry_AddReport_IncrementsOnRepeat(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	_, err := reg.AddReport(ctx, EntityURL, "scam.example.com", []string{"report 1"}, "")
	require.NoError(t, err)
	rep, err := reg.AddReport(ctx, EntityURL, "scam.example.com", []string{"report 2"}, "")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.ReportCount)
	assert.Len(t, rep.Evidence, 2)
}

func TestMemoryRegistry_CheckBulk_AlignedOrder(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	_, _ = reg.AddReport(ctx, EntityEmail, "a@example.com", nil, "")

	results, err := reg.CheckBulk(ctx, []LookupRequest{
		{EntityType: EntityEmail, EntityValue: "a@example.com"},
		{EntityType: EntityEmail, EntityValue: "b@example.com"},
		{EntityType: EntityEmail, EntityValue: "a@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Found)
	assert.False(t, results[1].Found)
	assert.True(t, results[2].Found)
}

func TestComputeRiskScore_Bounds(t *testing.T) {
	score := computeRiskScore(1, false, time.Now().Add(-400*24*time.Hour), 0)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)

	maxed := computeRiskScore(1000000, true, time.Now(), 100)
	assert.Equal(t, 100, maxed)
}

func TestComputeRiskScore_RecencyDecays(t *testing.T) {
	recent := computeRiskScore(5, false, time.Now(), 0)
	old := computeRiskScore(5, false, time.Now().Add(-400*24*time.Hour), 0)
	assert.Greater(t, recent, old)
}

func TestComputeRiskScore_VerifiedBonus(t *testing.T) {
	now := time.Now().Add(-400 * 24 * time.Hour)
	unverified := computeRiskScore(3, false, now, 0)
	verified := computeRiskScore(3, true, now, 0)
	assert.Equal(t, 20, verified-unverified)
}
