package store

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-dev/mentat/internal/models"
)

func TestAppendHistory_TruncatesResult(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	long := strings.Repeat("r", 800)
	h, err := AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-1",
		Intent:    "research",
		Agents:    []string{"analyst"},
		Result:    long,
		Status:    models.HistoryCompleted,
	})
	require.NoError(t, err)
	assert.Positive(t, h.ID)
	assert.Len(t, h.Result, 500)

	rows, err := ListHistoryAsc(db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Result, 500)
}

func TestAppendHistory_TruncatesOnRuneBoundary(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// 200 three-byte runes = 600 bytes; a byte cut at 500 would land
	// mid-rune.
	long := strings.Repeat("分", 200)
	h, err := AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-cjk",
		Intent:    "writing",
		Agents:    []string{"writer"},
		Result:    long,
		Status:    models.HistoryCompleted,
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(h.Result))
	assert.LessOrEqual(t, len(h.Result), 500)
	assert.Equal(t, strings.Repeat("分", 166), h.Result)

	rows, err := ListHistoryAsc(db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, utf8.ValidString(rows[0].Result))
}

func TestHistoryCounts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for i, rating := range []int{0, 7, 0, 9} {
		_, err := AppendHistory(db, models.HistoryEntry{
			Intent: "coding", Agents: []string{"engineer"},
			Status: models.HistoryCompleted, Rating: rating,
			Timestamp: time.Date(2026, 7, 1, i, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	c, err := HistoryCounts(db)
	require.NoError(t, err)
	assert.Equal(t, 4, c.History)
	assert.Equal(t, 2, c.Rated)
}

func TestAttachRating_PrefersSessionThenFallsBack(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err := AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-a", Intent: "research", Agents: []string{"analyst"},
		Status: models.HistoryCompleted, Timestamp: base,
	})
	require.NoError(t, err)
	_, err = AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-b", Intent: "coding", Agents: []string{"engineer"},
		Status: models.HistoryCompleted, Timestamp: base.Add(time.Hour),
	})
	require.NoError(t, err)

	// Session-filtered: the older sess-a row gets the rating, not the newer row.
	updated, found, err := AttachRating(db, "sess-a", 8, "nice work")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sess-a", updated.SessionID)
	assert.Equal(t, 8, updated.Rating)
	assert.Equal(t, "nice work", updated.Feedback)

	// Unknown session falls back to the most recent completed row anywhere.
	updated, found, err = AttachRating(db, "sess-zzz", 6, "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sess-b", updated.SessionID)
}

func TestAttachRating_OverwritesPreviousRating(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-a", Intent: "research", Agents: []string{"analyst"},
		Status: models.HistoryCompleted, Timestamp: time.Now(),
	})
	require.NoError(t, err)

	_, found, err := AttachRating(db, "sess-a", 4, "meh")
	require.NoError(t, err)
	require.True(t, found)

	// A later correction lands on the same row and replaces the rating.
	updated, found, err := AttachRating(db, "sess-a", 9, "actually great")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 9, updated.Rating)
	assert.Equal(t, "actually great", updated.Feedback)

	rows, err := ListHistoryAsc(db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 9, rows[0].Rating)
}

func TestAttachRating_IgnoresFailedRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := AppendHistory(db, models.HistoryEntry{
		SessionID: "sess-a", Intent: "research", Agents: []string{"analyst"},
		Status: models.HistoryFailed, Timestamp: time.Now(),
	})
	require.NoError(t, err)

	_, found, err := AttachRating(db, "sess-a", 5, "")
	require.NoError(t, err)
	assert.False(t, found, "ratings only attach to completed rows")
}

func TestListRecentHistory_NewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := AppendHistory(db, models.HistoryEntry{
			Intent: "research", Agents: []string{"analyst"},
			Status: models.HistoryCompleted, Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	rows, err := ListRecentHistory(db, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Timestamp.After(rows[1].Timestamp))
}
