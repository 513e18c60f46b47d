package actions

import (
	"database/sql"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/store"
)

// StatusResult is a snapshot of everything the engine has learned so far.
type StatusResult struct {
	Tiers         map[models.Tier]int  `json:"tiers"`
	History       engine.Counts        `json:"history"`
	Patterns      int                  `json:"patterns"`
	Recompute     models.RecomputeMeta `json:"recompute"`
	SchemaCurrent int64                `json:"schema_current"`
	SchemaLatest  int64                `json:"schema_latest"`
}

// Status reports tier sizes, ledger counts, pattern count, recompute
// bookkeeping, and schema version.
func Status(db *sql.DB) (*StatusResult, error) {
	tiers, err := store.TierCounts(db)
	if err != nil {
		return nil, err
	}
	counts, err := store.HistoryCounts(db)
	if err != nil {
		return nil, err
	}
	patterns, err := store.LoadPatterns(db)
	if err != nil {
		return nil, err
	}
	meta, err := store.LoadRecomputeMeta(db)
	if err != nil {
		return nil, err
	}
	current, latest, err := store.SchemaVersion(db)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Tiers:         tiers,
		History:       counts,
		Patterns:      len(patterns),
		Recompute:     meta,
		SchemaCurrent: current,
		SchemaLatest:  latest,
	}, nil
}

// ListPatterns returns the stored success patterns, best first.
func ListPatterns(db *sql.DB) ([]models.SuccessPattern, error) {
	return store.LoadPatterns(db)
}

// ForceRecompute runs the trigger with force semantics and returns the
// decision (empty history still blocks the run).
func ForceRecompute(db *sql.DB) engine.Decision {
	return maybeRecompute(db, true)
}
