package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
)

// AppendEntry normalizes and appends one memory entry to the given tier.
// A missing id is generated; the entry's tier field is overridden.
func AppendEntry(db *sql.DB, tier models.Tier, entry models.MemoryEntry) (models.MemoryEntry, error) {
	entry.Tier = tier
	entry.Normalize(time.Now())
	if entry.ID == "" {
		entry.ID = newID("mem")
	}

	err := RetryWithBackoff(func() error {
		_, err := db.Exec(`
			INSERT INTO memory_entries
				(id, tier, type, session_id, intent, agents, content, rating, tags, source, timestamp, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.Tier), entry.Type, entry.SessionID, entry.Intent,
			marshalStrings(entry.Agents), entry.Content, entry.Rating,
			marshalStrings(entry.Tags), entry.Source, formatTime(entry.Timestamp),
			marshalStringMap(entry.Metadata))
		return err
	})
	if err != nil {
		return models.MemoryEntry{}, fmt.Errorf("append memory entry: %w", err)
	}
	return entry, nil
}

// ReadTier returns the most recent limit entries of a tier in chronological
// order. Corrupt rows are skipped, never surfaced.
func ReadTier(q Querier, tier models.Tier, limit int) ([]models.MemoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.Query(`
		SELECT id, tier, type, session_id, intent, agents, content, rating, tags, source, timestamp, metadata
		FROM memory_entries
		WHERE tier = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, string(tier), limit)
	if err != nil {
		return nil, fmt.Errorf("read tier %s: %w", tier, err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	// reverse to oldest-first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// LoadAllTiers returns the full contents of every tier, oldest-first, for a
// rotation pass.
func LoadAllTiers(q Querier) (hot, warm, cold []models.MemoryEntry, err error) {
	rows, err := q.Query(`
		SELECT id, tier, type, session_id, intent, agents, content, rating, tags, source, timestamp, metadata
		FROM memory_entries
		ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tiers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, e := range entries {
		switch e.Tier {
		case models.TierHot:
			hot = append(hot, e)
		case models.TierWarm:
			warm = append(warm, e)
		case models.TierCold:
			cold = append(cold, e)
		}
	}
	return hot, warm, cold, nil
}

// ListRatedEntries returns the most recent entries carrying an explicit
// rating, newest first, across all tiers.
func ListRatedEntries(q Querier, limit int) ([]models.MemoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := q.Query(`
		SELECT id, tier, type, session_id, intent, agents, content, rating, tags, source, timestamp, metadata
		FROM memory_entries
		WHERE rating > 0
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rated entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectEntries(rows)
}

// TierCounts reports how many entries each tier currently holds.
func TierCounts(q Querier) (map[models.Tier]int, error) {
	rows, err := q.Query(`SELECT tier, COUNT(*) FROM memory_entries GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("tier counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := map[models.Tier]int{models.TierHot: 0, models.TierWarm: 0, models.TierCold: 0}
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[models.Tier(tier)] = n
	}
	return counts, rows.Err()
}

// ApplyRotation replaces the entire tier store with a planned rotation
// result in one transaction. Callers are expected to serialize rotation
// passes; concurrent rewriters are not safe against each other.
func ApplyRotation(db *sql.DB, res engine.RotationResult) error {
	return Transact(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM memory_entries`); err != nil {
			return fmt.Errorf("clear memory entries: %w", err)
		}
		for _, group := range [][]models.MemoryEntry{res.Hot, res.Warm, res.Cold} {
			for _, e := range group {
				if _, err := tx.Exec(`
					INSERT INTO memory_entries
						(id, tier, type, session_id, intent, agents, content, rating, tags, source, timestamp, metadata)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					e.ID, string(e.Tier), e.Type, e.SessionID, e.Intent,
					marshalStrings(e.Agents), e.Content, e.Rating,
					marshalStrings(e.Tags), e.Source, formatTime(e.Timestamp),
					marshalStringMap(e.Metadata)); err != nil {
					return fmt.Errorf("reinsert entry %s: %w", e.ID, err)
				}
			}
		}
		return nil
	})
}

// collectEntries scans memory entry rows, silently skipping any row whose
// stored fields cannot be decoded.
func collectEntries(rows *sql.Rows) ([]models.MemoryEntry, error) {
	var entries []models.MemoryEntry
	for rows.Next() {
		var e models.MemoryEntry
		var tier, agents, tags, ts, metadata string
		if err := rows.Scan(&e.ID, &tier, &e.Type, &e.SessionID, &e.Intent, &agents,
			&e.Content, &e.Rating, &tags, &e.Source, &ts, &metadata); err != nil {
			continue
		}
		var ok bool
		if e.Agents, ok = unmarshalStrings(agents); !ok {
			continue
		}
		if e.Tags, ok = unmarshalStrings(tags); !ok {
			continue
		}
		if e.Metadata, ok = unmarshalStringMap(metadata); !ok {
			continue
		}
		if e.Timestamp, ok = parseTime(ts); !ok {
			continue
		}
		e.Tier = models.Tier(tier)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
