package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-dev/mentat/internal/models"
)

func TestCreateWorkItem_Defaults(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	w, err := CreateWorkItem(db, models.WorkItem{
		SessionID: "sess-1",
		Prompt:    "investigate the cache regression",
		Intent:    "debugging",
		Agents:    []string{"engineer", "reviewer"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, models.WorkItemInProgress, w.Status)
	assert.False(t, w.CreatedAt.IsZero())

	got, found, err := GetWorkItem(db, w.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"engineer", "reviewer"}, got.Agents)
}

func TestFindOpenWorkItem_SessionPreferredThenFallback(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	a, err := CreateWorkItem(db, models.WorkItem{
		SessionID: "sess-a", Prompt: "first", Intent: "analysis",
		CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	b, err := CreateWorkItem(db, models.WorkItem{
		SessionID: "sess-b", Prompt: "second", Intent: "analysis",
		CreatedAt: time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, found, err := FindOpenWorkItem(db, "sess-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, a.ID, got.ID)

	// No open item in this session: newest open item anywhere wins.
	got, found, err = FindOpenWorkItem(db, "sess-zzz")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, b.ID, got.ID)
}

func TestFinalizeWorkItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	w, err := CreateWorkItem(db, models.WorkItem{SessionID: "sess-1", Intent: "coding"})
	require.NoError(t, err)

	exec := &models.Execution{ExecutionTime: 12.5, ToolsUsed: []string{"bash"}, ModelCalls: 3, Success: true}
	done, err := FinalizeWorkItem(db, w.ID, models.WorkItemCompleted, "shipped the fix", exec)
	require.NoError(t, err)
	assert.Equal(t, models.WorkItemCompleted, done.Status)
	assert.Equal(t, "shipped the fix", done.ResultSummary)

	got, found, err := GetWorkItem(db, w.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.Execution)
	assert.Equal(t, []string{"bash"}, got.Execution.ToolsUsed)
	assert.True(t, got.Execution.Success)

	// The item is no longer open.
	_, found, err = FindOpenWorkItem(db, "sess-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFinalizeWorkItem_RejectsDoubleFinalize(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	w, err := CreateWorkItem(db, models.WorkItem{SessionID: "sess-1", Intent: "coding"})
	require.NoError(t, err)

	_, err = FinalizeWorkItem(db, w.ID, models.WorkItemFailed, "gave up", nil)
	require.NoError(t, err)

	_, err = FinalizeWorkItem(db, w.ID, models.WorkItemCompleted, "retry", nil)
	assert.Error(t, err)
}

func TestFinalizeWorkItem_RejectsNonTerminalStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	w, err := CreateWorkItem(db, models.WorkItem{SessionID: "sess-1"})
	require.NoError(t, err)

	_, err = FinalizeWorkItem(db, w.ID, models.WorkItemInProgress, "", nil)
	assert.Error(t, err)
}
