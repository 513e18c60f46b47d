package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentat-dev/mentat/internal/models"
)

// CreateWorkItem inserts a new in-progress work item. A missing id is
// generated.
func CreateWorkItem(db *sql.DB, w models.WorkItem) (models.WorkItem, error) {
	if w.ID == "" {
		w.ID = newID("task")
	}
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	if w.Status == "" {
		w.Status = models.WorkItemInProgress
	}

	err := RetryWithBackoff(func() error {
		_, err := db.Exec(`
			INSERT INTO work_items
				(id, session_id, prompt, intent, project, complexity, status, agents,
				 execution, result_summary, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
			w.ID, w.SessionID, w.Prompt, w.Intent, w.Project, string(w.Complexity),
			string(w.Status), marshalStrings(w.Agents), w.ResultSummary,
			formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
		return err
	})
	if err != nil {
		return models.WorkItem{}, fmt.Errorf("create work item: %w", err)
	}
	return w, nil
}

// FindOpenWorkItem returns the most recent in-progress item, preferring the
// given session; with no session match it falls back to the most recent
// in-progress item anywhere. found=false when nothing is open.
func FindOpenWorkItem(q Querier, sessionID string) (models.WorkItem, bool, error) {
	if sessionID != "" {
		w, found, err := queryOneWorkItem(q, `
			SELECT id, session_id, prompt, intent, project, complexity, status, agents,
			       execution, result_summary, created_at, updated_at
			FROM work_items
			WHERE status = 'in-progress' AND session_id = ?
			ORDER BY created_at DESC, id DESC LIMIT 1`, sessionID)
		if err != nil || found {
			return w, found, err
		}
	}
	return queryOneWorkItem(q, `
		SELECT id, session_id, prompt, intent, project, complexity, status, agents,
		       execution, result_summary, created_at, updated_at
		FROM work_items
		WHERE status = 'in-progress'
		ORDER BY created_at DESC, id DESC LIMIT 1`)
}

// GetWorkItem fetches a work item by id.
func GetWorkItem(q Querier, id string) (models.WorkItem, bool, error) {
	return queryOneWorkItem(q, `
		SELECT id, session_id, prompt, intent, project, complexity, status, agents,
		       execution, result_summary, created_at, updated_at
		FROM work_items WHERE id = ?`, id)
}

// FinalizeWorkItem moves a work item to a terminal status and records how it
// ran. Finalizing an already-terminal item is an error.
func FinalizeWorkItem(db *sql.DB, id string, status models.WorkItemStatus, result string, exec *models.Execution) (models.WorkItem, error) {
	if !status.IsTerminal() {
		return models.WorkItem{}, fmt.Errorf("finalize work item %s: %q is not a terminal status", id, status)
	}
	execJSON := sql.NullString{}
	if exec != nil {
		b, err := json.Marshal(exec)
		if err == nil {
			execJSON = sql.NullString{String: string(b), Valid: true}
		}
	}

	var out models.WorkItem
	err := Transact(db, func(tx *sql.Tx) error {
		w, found, err := GetWorkItem(tx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("finalize work item: %s not found", id)
		}
		if w.Status.IsTerminal() {
			return fmt.Errorf("finalize work item: %s already %s", id, w.Status)
		}
		now := time.Now()
		if _, err := tx.Exec(`
			UPDATE work_items
			SET status = ?, result_summary = ?, execution = ?, updated_at = ?
			WHERE id = ?`,
			string(status), result, execJSON, formatTime(now), id); err != nil {
			return err
		}
		w.Status = status
		w.ResultSummary = result
		w.Execution = exec
		w.UpdatedAt = now
		out = w
		return nil
	})
	if err != nil {
		return models.WorkItem{}, err
	}
	return out, nil
}

func queryOneWorkItem(q Querier, query string, args ...any) (models.WorkItem, bool, error) {
	var w models.WorkItem
	var complexity, status, agents, created, updated string
	var execution sql.NullString

	err := q.QueryRow(query, args...).Scan(&w.ID, &w.SessionID, &w.Prompt, &w.Intent,
		&w.Project, &complexity, &status, &agents, &execution, &w.ResultSummary,
		&created, &updated)
	if err == sql.ErrNoRows {
		return models.WorkItem{}, false, nil
	}
	if err != nil {
		return models.WorkItem{}, false, fmt.Errorf("query work item: %w", err)
	}

	w.Complexity = models.Complexity(complexity)
	w.Status = models.WorkItemStatus(status)
	if parsed, ok := unmarshalStrings(agents); ok {
		w.Agents = parsed
	}
	if t, ok := parseTime(created); ok {
		w.CreatedAt = t
	}
	if t, ok := parseTime(updated); ok {
		w.UpdatedAt = t
	}
	if execution.Valid {
		var exec models.Execution
		if json.Unmarshal([]byte(execution.String), &exec) == nil {
			w.Execution = &exec
		}
	}
	return w, true, nil
}
