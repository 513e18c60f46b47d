package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-dev/mentat/internal/models"
)

func TestScoreSimilarity_PositiveAndNegativeOutcomes(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := models.TaskContext{
		Intent:     "research",
		Project:    "mentat",
		Complexity: models.ComplexityMedium,
		ToolsUsed:  []string{"grep", "read"},
		PromptText: "investigate retention behavior of the warm tier",
	}
	rows := []models.HistoryEntry{
		{
			Intent: "research", Project: "mentat", Complexity: models.ComplexityMedium,
			Agents: []string{"analyst"}, ToolsUsed: []string{"grep", "read"},
			Result: "investigated warm tier retention behavior in depth",
			Rating: 9, Status: models.HistoryCompleted, Timestamp: now.Add(-24 * time.Hour),
		},
		{
			Intent: "research", Project: "mentat", Complexity: models.ComplexityMedium,
			Agents: []string{"critic"}, ToolsUsed: []string{"grep", "read"},
			Result: "warm tier retention investigation went nowhere",
			Rating: 2, Status: models.HistoryFailed, Timestamp: now.Add(-24 * time.Hour),
		},
	}

	res := ScoreSimilarity(ctx, rows, now)

	assert.Positive(t, res.Boost["analyst"])
	assert.Negative(t, res.Boost["critic"])
	assert.NotEmpty(t, res.TopCases)
}

func TestScoreSimilarity_CrossIntentRowFallsBelowFloor(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := models.TaskContext{Intent: "research", PromptText: "summarize findings"}
	rows := []models.HistoryEntry{
		{
			Intent: "coding", Agents: []string{"engineer"},
			Result: "implemented the storage migration",
			Rating: 10, Status: models.HistoryCompleted, Timestamp: now.Add(-time.Hour),
		},
	}

	res := ScoreSimilarity(ctx, rows, now)

	assert.Empty(t, res.Boost, "cross-intent damping drops dissimilar rows")
	assert.Empty(t, res.TopCases)
}

func TestScoreSimilarity_StatusSignalWithoutRating(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := models.TaskContext{
		Intent: "debugging", ToolsUsed: []string{"bash"},
		PromptText: "fix the flaky startup race in the watcher",
	}
	failed := models.HistoryEntry{
		Intent: "debugging", Agents: []string{"engineer", "reviewer"},
		ToolsUsed: []string{"bash"},
		Result:    "startup race fix attempt in the watcher stalled",
		Status:    models.HistoryFailed, Timestamp: now.Add(-48 * time.Hour),
	}

	res := ScoreSimilarity(ctx, []models.HistoryEntry{failed}, now)

	require.Contains(t, res.Boost, "engineer")
	require.Contains(t, res.Boost, "reviewer")
	assert.Negative(t, res.Boost["engineer"])
	assert.InDelta(t, res.Boost["engineer"], res.Boost["reviewer"], 1e-9,
		"contribution split evenly across roles")
}

func TestScoreSimilarity_RecencyDampensOldRows(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := models.TaskContext{
		Intent: "research", Project: "mentat",
		ToolsUsed:  []string{"grep"},
		PromptText: "investigate retention behavior",
	}
	row := models.HistoryEntry{
		Intent: "research", Project: "mentat", Agents: []string{"analyst"},
		ToolsUsed: []string{"grep"},
		Result:    "investigated retention behavior",
		Rating:    9, Status: models.HistoryCompleted,
	}
	fresh := row
	fresh.Timestamp = now.Add(-24 * time.Hour)
	old := row
	old.Timestamp = now.Add(-90 * 24 * time.Hour)

	freshRes := ScoreSimilarity(ctx, []models.HistoryEntry{fresh}, now)
	oldRes := ScoreSimilarity(ctx, []models.HistoryEntry{old}, now)

	require.Contains(t, freshRes.Boost, "analyst")
	require.Contains(t, oldRes.Boost, "analyst")
	assert.Greater(t, freshRes.Boost["analyst"], oldRes.Boost["analyst"])
}

func TestScoreSimilarity_TopCasesOrderedByContribution(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := models.TaskContext{
		Intent: "research", Project: "mentat",
		ToolsUsed:  []string{"grep"},
		PromptText: "investigate retention behavior of tiers",
	}
	var rows []models.HistoryEntry
	for _, rating := range []int{6, 10, 7, 9} {
		rows = append(rows, models.HistoryEntry{
			Intent: "research", Project: "mentat", Agents: []string{"analyst"},
			ToolsUsed: []string{"grep"},
			Result:    "investigated retention behavior of tiers",
			Rating:    rating, Status: models.HistoryCompleted,
			Timestamp: now.Add(-24 * time.Hour),
		})
	}

	res := ScoreSimilarity(ctx, rows, now)

	require.Len(t, res.TopCases, 3)
	assert.Contains(t, res.TopCases[0], "rated 10/10")
	assert.Contains(t, res.TopCases[1], "rated 9/10")
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Fix the DB, re-check I/O paths!")
	assert.Contains(t, tokens, "fix")
	assert.Contains(t, tokens, "db")
	assert.Contains(t, tokens, "paths")
	assert.NotContains(t, tokens, "i", "single-character tokens dropped")
	assert.NotContains(t, tokens, "o")
}

func TestTokenize_CountsRunesNotBytes(t *testing.T) {
	tokens := tokenize("修复 解析器 の bug")
	assert.Contains(t, tokens, "修复")
	assert.Contains(t, tokens, "解析器")
	assert.Contains(t, tokens, "bug")
	assert.NotContains(t, tokens, "の", "one rune is one character even at three bytes")
}
