package store

import (
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
)

// maxResultLength bounds the stored result text per ledger row.
const maxResultLength = 500

// AppendHistory appends one outcome row to the ledger and returns it with
// the assigned id. Result text is truncated to keep rows bounded.
func AppendHistory(db *sql.DB, h models.HistoryEntry) (models.HistoryEntry, error) {
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now()
	}
	h.Result = truncateResult(h.Result)
	h.Rating = clampStoredRating(h.Rating)

	err := RetryWithBackoff(func() error {
		res, err := db.Exec(`
			INSERT INTO history
				(session_id, intent, project, complexity, agents, result, status, timestamp,
				 work_item_id, tools_used, model_calls, execution_time, rating, feedback)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.SessionID, h.Intent, h.Project, string(h.Complexity),
			marshalStrings(h.Agents), h.Result, string(h.Status), formatTime(h.Timestamp),
			h.WorkItemID, marshalStrings(h.ToolsUsed), h.ModelCalls, h.ExecutionTime,
			h.Rating, h.Feedback)
		if err != nil {
			return err
		}
		h.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("append history: %w", err)
	}
	return h, nil
}

// ListHistoryAsc returns the full ledger in chronological order, for a full
// recompute pass. Corrupt rows are skipped.
func ListHistoryAsc(q Querier) ([]models.HistoryEntry, error) {
	return queryHistory(q, `
		SELECT id, session_id, intent, project, complexity, agents, result, status, timestamp,
		       work_item_id, tools_used, model_calls, execution_time, rating, feedback
		FROM history
		ORDER BY timestamp ASC, id ASC`)
}

// ListRecentHistory returns the most recent limit rows, newest first.
func ListRecentHistory(q Querier, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return queryHistory(q, `
		SELECT id, session_id, intent, project, complexity, agents, result, status, timestamp,
		       work_item_id, tools_used, model_calls, execution_time, rating, feedback
		FROM history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
}

// HistoryCounts returns the total and rated ledger sizes for the recompute
// trigger.
func HistoryCounts(q Querier) (engine.Counts, error) {
	var c engine.Counts
	err := q.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN rating > 0 THEN 1 ELSE 0 END), 0)
		FROM history`).Scan(&c.History, &c.Rated)
	if err != nil {
		return engine.Counts{}, fmt.Errorf("history counts: %w", err)
	}
	return c, nil
}

// AttachRating attaches a rating (and optional feedback text) to the most
// recent completed ledger row, preferring rows from the given session. A
// later correction overwrites any previous rating on the same row. Returns
// the updated row, or found=false when no completed row exists.
func AttachRating(db *sql.DB, sessionID string, rating int, feedback string) (models.HistoryEntry, bool, error) {
	rating = clampStoredRating(rating)

	var updated models.HistoryEntry
	found := false
	err := Transact(db, func(tx *sql.Tx) error {
		id, ok, err := findRatingTarget(tx, sessionID)
		if err != nil || !ok {
			return err
		}
		if _, err := tx.Exec(`UPDATE history SET rating = ?, feedback = ? WHERE id = ?`,
			rating, feedback, id); err != nil {
			return fmt.Errorf("attach rating: %w", err)
		}
		rows, err := queryHistory(tx, `
			SELECT id, session_id, intent, project, complexity, agents, result, status, timestamp,
			       work_item_id, tools_used, model_calls, execution_time, rating, feedback
			FROM history WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if len(rows) == 1 {
			updated = rows[0]
			found = true
		}
		return nil
	})
	return updated, found, err
}

// findRatingTarget picks the row a rating should land on: the latest
// completed row in the session, else the latest completed row anywhere.
func findRatingTarget(q Querier, sessionID string) (int64, bool, error) {
	var id int64
	if sessionID != "" {
		err := q.QueryRow(`
			SELECT id FROM history
			WHERE status = 'completed' AND session_id = ?
			ORDER BY timestamp DESC, id DESC LIMIT 1`, sessionID).Scan(&id)
		if err == nil {
			return id, true, nil
		}
		if err != sql.ErrNoRows {
			return 0, false, err
		}
	}
	err := q.QueryRow(`
		SELECT id FROM history
		WHERE status = 'completed'
		ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func queryHistory(q Querier, query string, args ...any) ([]models.HistoryEntry, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		var complexity, agents, status, ts, tools string
		if err := rows.Scan(&h.ID, &h.SessionID, &h.Intent, &h.Project, &complexity,
			&agents, &h.Result, &status, &ts, &h.WorkItemID, &tools,
			&h.ModelCalls, &h.ExecutionTime, &h.Rating, &h.Feedback); err != nil {
			continue
		}
		var ok bool
		if h.Agents, ok = unmarshalStrings(agents); !ok {
			continue
		}
		if h.ToolsUsed, ok = unmarshalStrings(tools); !ok {
			continue
		}
		if h.Timestamp, ok = parseTime(ts); !ok {
			continue
		}
		h.Complexity = models.Complexity(complexity)
		h.Status = models.HistoryStatus(status)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func clampStoredRating(r int) int {
	if r == 0 {
		return 0
	}
	return models.ClampRating(r)
}

// truncateResult cuts result text to maxResultLength bytes without
// splitting a rune, so CJK tails stay valid UTF-8.
func truncateResult(s string) string {
	if len(s) <= maxResultLength {
		return s
	}
	cut := maxResultLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
