package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-dev/mentat/internal/models"
)

func makeEntries(prefix string, tier models.Tier, n int, start time.Time) []models.MemoryEntry {
	entries := make([]models.MemoryEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.MemoryEntry{
			ID:        fmt.Sprintf("%s_%03d", prefix, i),
			Tier:      tier,
			Type:      models.EntryTypeTaskResult,
			SessionID: "sess-1",
			Content:   fmt.Sprintf("%s content %d", prefix, i),
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Agents:    []string{"analyst"},
		})
	}
	return entries
}

func testPolicy() RotationPolicy {
	return RotationPolicy{
		HotKeep:          20,
		WarmMaxCount:     300,
		ColdMaxCount:     1000,
		WarmRetention:    21 * 24 * time.Hour,
		CompressionRatio: 0.85,
	}
}

func TestRotate_MovesExcessHotToWarm(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hot := makeEntries("hot", models.TierHot, 30, now.Add(-time.Hour))

	res := Rotate(hot, nil, nil, 0, testPolicy(), now)

	assert.Len(t, res.Hot, 20)
	assert.Len(t, res.Warm, 10)
	assert.Equal(t, 10, res.MovedToWarm)
	assert.Equal(t, 0, res.Pruned)

	// Oldest entries moved; newest stayed hot.
	assert.Equal(t, "hot_000", res.Warm[0].ID)
	assert.Equal(t, "hot_010", res.Hot[0].ID)
	for _, e := range res.Warm {
		assert.Equal(t, models.TierWarm, e.Tier)
	}
}

func TestRotate_BelowKeepCountIsNoop(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hot := makeEntries("hot", models.TierHot, 5, now.Add(-time.Hour))

	res := Rotate(hot, nil, nil, 0.2, testPolicy(), now)

	assert.Len(t, res.Hot, 5)
	assert.Empty(t, res.Warm)
	assert.Zero(t, res.MovedToWarm)
}

func TestRotate_UsageRatioTriggersCompaction(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pol := testPolicy()
	pol.HotKeep = 3
	hot := makeEntries("hot", models.TierHot, 5, now.Add(-time.Hour))

	res := Rotate(hot, nil, nil, 0.9, pol, now)

	assert.Len(t, res.Hot, 3)
	assert.Equal(t, 2, res.MovedToWarm)
}

func TestRotate_ConservationAcrossTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pol := testPolicy()
	pol.HotKeep = 10
	pol.WarmMaxCount = 15

	hot := makeEntries("hot", models.TierHot, 25, now.Add(-2*time.Hour))
	warm := makeEntries("warm", models.TierWarm, 12, now.Add(-3*time.Hour))

	res := Rotate(hot, warm, nil, 0, pol, now)

	total := len(res.Hot) + len(res.Warm) + len(res.Cold)
	assert.Equal(t, 25+12, total, "no entries lost below the cold cap")
	assert.Len(t, res.Hot, 10)
	assert.LessOrEqual(t, len(res.Warm), pol.WarmMaxCount)
}

func TestRotate_WarmRetentionAgesOut(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := makeEntries("old", models.TierWarm, 4, now.Add(-40*24*time.Hour))
	fresh := makeEntries("fresh", models.TierWarm, 3, now.Add(-time.Hour))

	res := Rotate(nil, append(old, fresh...), nil, 0, testPolicy(), now)

	assert.Len(t, res.Warm, 3)
	assert.Len(t, res.Cold, 4)
	assert.Equal(t, 4, res.MovedToCold)
	for _, e := range res.Cold {
		assert.Equal(t, models.TierCold, e.Tier)
	}
}

func TestRotate_ColdCapPrunesOldest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pol := testPolicy()
	pol.ColdMaxCount = 10
	cold := makeEntries("cold", models.TierCold, 14, now.Add(-100*24*time.Hour))

	res := Rotate(nil, nil, cold, 0, pol, now)

	require.Len(t, res.Cold, 10)
	assert.Equal(t, 4, res.Pruned)
	assert.Equal(t, "cold_004", res.Cold[0].ID, "oldest pruned first")
}

func TestRotate_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pol := testPolicy()
	pol.HotKeep = 8

	hot := makeEntries("hot", models.TierHot, 20, now.Add(-2*time.Hour))
	warm := makeEntries("warm", models.TierWarm, 30, now.Add(-30*24*time.Hour))

	first := Rotate(hot, warm, nil, 0, pol, now)
	second := Rotate(first.Hot, first.Warm, first.Cold, 0, pol, now)

	assert.Equal(t, first.Hot, second.Hot)
	assert.Equal(t, first.Warm, second.Warm)
	assert.Equal(t, first.Cold, second.Cold)
	assert.Zero(t, second.MovedToWarm)
	assert.Zero(t, second.MovedToCold)
	assert.Zero(t, second.Pruned)
}

func TestRotate_DedupDropsLaterDuplicate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pol := testPolicy()
	pol.HotKeep = 0

	ts := now.Add(-time.Hour)
	entry := models.MemoryEntry{
		ID: "mem_a", Tier: models.TierHot, Type: models.EntryTypeTaskResult,
		SessionID: "sess-1", Content: "same event", Timestamp: ts,
	}
	duplicate := entry
	duplicate.ID = "mem_b"
	duplicate.Tier = models.TierWarm

	res := Rotate([]models.MemoryEntry{entry}, []models.MemoryEntry{duplicate}, nil, 0, pol, now)

	assert.Len(t, res.Warm, 1)
	assert.Equal(t, "mem_b", res.Warm[0].ID)
	assert.Zero(t, res.MovedToWarm)
}
