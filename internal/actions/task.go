package actions

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/store"
)

// StartTaskInput describes a task turn beginning.
type StartTaskInput struct {
	SessionID  string
	Prompt     string
	Intent     string
	Project    string
	Complexity string
	Agents     []string
}

// StartTask opens a work item and records the task start as a hot memory
// event. A missing session id gets a generated one so later feedback can
// still find the right ledger rows.
func StartTask(db *sql.DB, in StartTaskInput) (models.WorkItem, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return models.WorkItem{}, errors.New("prompt is required")
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	w, err := store.CreateWorkItem(db, models.WorkItem{
		SessionID:  in.SessionID,
		Prompt:     in.Prompt,
		Intent:     in.Intent,
		Project:    in.Project,
		Complexity: models.NormalizeComplexity(in.Complexity),
		Agents:     in.Agents,
	})
	if err != nil {
		return models.WorkItem{}, err
	}

	// Ambient event append never fails the caller.
	if _, err := store.AppendEntry(db, models.TierHot, models.MemoryEntry{
		Type:      models.EntryTypeTaskStart,
		SessionID: w.SessionID,
		Intent:    w.Intent,
		Agents:    w.Agents,
		Content:   w.Prompt,
		Source:    "task",
		Metadata:  taskMetadata(w.Project, w.Complexity, nil),
	}); err != nil {
		slog.Warn("task start event not recorded", "work_item", w.ID, "error", err)
	}
	return w, nil
}

// FinishTaskInput finalizes a task turn.
type FinishTaskInput struct {
	SessionID  string
	WorkItemID string
	Success    bool
	Result     string

	ToolsUsed     []string
	ModelCalls    int
	ExecutionTime float64 // seconds
	ErrorMessage  string

	// ForceRecompute bypasses the trigger thresholds (but not the
	// empty-history guard).
	ForceRecompute bool
}

// FinishTaskResult reports what the finalization changed.
type FinishTaskResult struct {
	WorkItem  models.WorkItem     `json:"work_item"`
	HistoryID int64               `json:"history_id"`
	Patterns  int                 `json:"patterns"`
	Recompute engine.Decision     `json:"recompute"`
	Entry     *models.MemoryEntry `json:"entry,omitempty"`
}

// FinishTask closes a work item and feeds the outcome through the learning
// chain: ledger append, incremental pattern update, recompute trigger check,
// and (maybe) a full recompute.
func FinishTask(db *sql.DB, in FinishTaskInput) (*FinishTaskResult, error) {
	w, err := resolveWorkItem(db, in)
	if err != nil {
		return nil, err
	}

	status := models.WorkItemFailed
	hStatus := models.HistoryFailed
	if in.Success {
		status = models.WorkItemCompleted
		hStatus = models.HistoryCompleted
	}
	exec := &models.Execution{
		ExecutionTime: in.ExecutionTime,
		ToolsUsed:     in.ToolsUsed,
		ModelCalls:    in.ModelCalls,
		Success:       in.Success,
		ErrorMessage:  in.ErrorMessage,
	}
	w, err = store.FinalizeWorkItem(db, w.ID, status, in.Result, exec)
	if err != nil {
		return nil, err
	}

	h, err := store.AppendHistory(db, models.HistoryEntry{
		SessionID:     w.SessionID,
		Intent:        w.Intent,
		Project:       w.Project,
		Complexity:    w.Complexity,
		Agents:        w.Agents,
		Result:        in.Result,
		Status:        hStatus,
		Timestamp:     time.Now(),
		WorkItemID:    w.ID,
		ToolsUsed:     in.ToolsUsed,
		ModelCalls:    in.ModelCalls,
		ExecutionTime: in.ExecutionTime,
	})
	if err != nil {
		return nil, err
	}

	res := &FinishTaskResult{WorkItem: w, HistoryID: h.ID}

	// Learning is best-effort from here: the outcome is durably recorded,
	// a failed model update must not fail the turn.
	patterns, err := applyOutcome(db, engine.OutcomeFromHistory(h))
	if err != nil {
		slog.Warn("pattern update skipped", "history_id", h.ID, "error", err)
	} else {
		res.Patterns = len(patterns)
	}

	res.Recompute = maybeRecompute(db, in.ForceRecompute)

	if entry, err := store.AppendEntry(db, models.TierHot, models.MemoryEntry{
		Type:      models.EntryTypeTaskResult,
		SessionID: w.SessionID,
		Intent:    w.Intent,
		Agents:    w.Agents,
		Content:   resultContent(in),
		Source:    "task",
		Metadata:  taskMetadata(w.Project, w.Complexity, in.ToolsUsed),
	}); err != nil {
		slog.Warn("task result event not recorded", "work_item", w.ID, "error", err)
	} else {
		res.Entry = &entry
	}
	return res, nil
}

func resolveWorkItem(db *sql.DB, in FinishTaskInput) (models.WorkItem, error) {
	if in.WorkItemID != "" {
		w, found, err := store.GetWorkItem(db, in.WorkItemID)
		if err != nil {
			return models.WorkItem{}, err
		}
		if !found {
			return models.WorkItem{}, fmt.Errorf("work item %s not found", in.WorkItemID)
		}
		return w, nil
	}
	w, found, err := store.FindOpenWorkItem(db, in.SessionID)
	if err != nil {
		return models.WorkItem{}, err
	}
	if !found {
		return models.WorkItem{}, errors.New("no open work item to finish")
	}
	return w, nil
}

// applyOutcome runs one incremental success-pattern update and persists the
// resulting set.
func applyOutcome(db *sql.DB, o engine.Outcome) ([]models.SuccessPattern, error) {
	patterns, err := store.LoadPatterns(db)
	if err != nil {
		return nil, err
	}
	patterns = engine.UpdatePatterns(patterns, o, maxPatterns(), time.Now())
	if err := store.ReplacePatterns(db, patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

// maybeRecompute evaluates the trigger and, when it fires, replaces the
// whole pattern set from the full ledger and stamps the bookkeeping row.
// Returns the decision either way; failures degrade to "not run".
func maybeRecompute(db *sql.DB, force bool) engine.Decision {
	counts, err := store.HistoryCounts(db)
	if err != nil {
		slog.Warn("recompute check skipped", "error", err)
		return engine.Decision{}
	}
	meta, err := store.LoadRecomputeMeta(db)
	if err != nil {
		slog.Warn("recompute check skipped", "error", err)
		return engine.Decision{}
	}

	now := time.Now()
	dec := engine.DecideRecompute(counts, meta, now, force, triggerPolicy())
	if !dec.Run {
		return dec
	}

	history, err := store.ListHistoryAsc(db)
	if err != nil {
		slog.Warn("recompute aborted", "error", err)
		return engine.Decision{Run: false, Reason: dec.Reason}
	}
	patterns := engine.RecomputePatterns(history, maxPatterns())
	if err := store.ReplacePatterns(db, patterns); err != nil {
		slog.Warn("recompute aborted", "error", err)
		return engine.Decision{Run: false, Reason: dec.Reason}
	}
	if err := store.SaveRecomputeMeta(db, models.RecomputeMeta{
		LastRunAt:        &now,
		LastHistoryCount: counts.History,
		LastRatedCount:   counts.Rated,
		LastReason:       dec.Reason,
	}); err != nil {
		slog.Warn("recompute meta not saved", "error", err)
	}
	return dec
}

func resultContent(in FinishTaskInput) string {
	if in.Result != "" {
		return in.Result
	}
	if in.Success {
		return "completed"
	}
	if in.ErrorMessage != "" {
		return "failed: " + in.ErrorMessage
	}
	return "failed"
}

func taskMetadata(project string, complexity models.Complexity, tools []string) map[string]string {
	m := map[string]string{}
	if project != "" {
		m["project"] = project
	}
	if complexity != "" {
		m["complexity"] = string(complexity)
	}
	if combo := models.NormalizeToolCombo(tools); combo != "" {
		m["tools"] = combo
	}
	return m
}
