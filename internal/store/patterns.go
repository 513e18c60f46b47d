package store

import (
	"database/sql"
	"fmt"

	"github.com/mentat-dev/mentat/internal/models"
)

// LoadPatterns returns all stored success patterns, best rate first.
func LoadPatterns(q Querier) ([]models.SuccessPattern, error) {
	rows, err := q.Query(`
		SELECT task, method, tool_combo, project, complexity, success_rate, last_used, sample_size
		FROM success_patterns
		ORDER BY success_rate DESC, last_used DESC`)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []models.SuccessPattern
	for rows.Next() {
		var p models.SuccessPattern
		var complexity, lastUsed string
		if err := rows.Scan(&p.Task, &p.Method, &p.ToolCombo, &p.Project, &complexity,
			&p.SuccessRate, &lastUsed, &p.SampleSize); err != nil {
			continue
		}
		var ok bool
		if p.LastUsed, ok = parseTime(lastUsed); !ok {
			continue
		}
		p.Complexity = models.Complexity(complexity)
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// ReplacePatterns swaps the entire stored pattern set for the given one in a
// single transaction. Both incremental updates and full recomputes persist
// through here; the set is small (bounded by the pattern cap).
func ReplacePatterns(db *sql.DB, patterns []models.SuccessPattern) error {
	return Transact(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM success_patterns`); err != nil {
			return fmt.Errorf("clear patterns: %w", err)
		}
		for _, p := range patterns {
			if _, err := tx.Exec(`
				INSERT INTO success_patterns
					(task, method, tool_combo, project, complexity, success_rate, last_used, sample_size)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.Task, p.Method, p.ToolCombo, p.Project, string(p.Complexity),
				p.SuccessRate, formatTime(p.LastUsed), p.SampleSize); err != nil {
				return fmt.Errorf("insert pattern %s/%s: %w", p.Task, p.Method, err)
			}
		}
		return nil
	})
}

// LoadRecomputeMeta reads the single bookkeeping row for the recompute
// trigger. A missing row means no recompute has ever run.
func LoadRecomputeMeta(q Querier) (models.RecomputeMeta, error) {
	var meta models.RecomputeMeta
	var lastRun sql.NullString
	err := q.QueryRow(`
		SELECT last_run_at, last_history_count, last_rated_count, last_reason
		FROM recompute_meta WHERE id = 1`).
		Scan(&lastRun, &meta.LastHistoryCount, &meta.LastRatedCount, &meta.LastReason)
	if err == sql.ErrNoRows {
		return models.RecomputeMeta{}, nil
	}
	if err != nil {
		return models.RecomputeMeta{}, fmt.Errorf("load recompute meta: %w", err)
	}
	if lastRun.Valid {
		if t, ok := parseTime(lastRun.String); ok {
			meta.LastRunAt = &t
		}
	}
	return meta, nil
}

// SaveRecomputeMeta upserts the bookkeeping row after a completed recompute.
func SaveRecomputeMeta(db *sql.DB, meta models.RecomputeMeta) error {
	return RetryWithBackoff(func() error {
		_, err := db.Exec(`
			INSERT INTO recompute_meta (id, last_run_at, last_history_count, last_rated_count, last_reason)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_run_at = excluded.last_run_at,
				last_history_count = excluded.last_history_count,
				last_rated_count = excluded.last_rated_count,
				last_reason = excluded.last_reason`,
			formatNullableTime(meta.LastRunAt), meta.LastHistoryCount,
			meta.LastRatedCount, meta.LastReason)
		return err
	})
}
