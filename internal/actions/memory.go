package actions

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/store"
)

// RecordMemoryInput describes one ambient event to remember.
type RecordMemoryInput struct {
	Tier      string
	Type      string
	SessionID string
	Intent    string
	Agents    []string
	Content   string
	Rating    int
	Tags      []string
	Source    string
	Metadata  map[string]string
}

// RecordMemory appends one event to a tier (hot by default).
func RecordMemory(db *sql.DB, in RecordMemoryInput) (models.MemoryEntry, error) {
	if in.Content == "" {
		return models.MemoryEntry{}, errors.New("content is required")
	}
	if in.Type == "" {
		return models.MemoryEntry{}, errors.New("type is required")
	}
	tier := models.Tier(in.Tier)
	if in.Tier == "" {
		tier = models.TierHot
	}
	if !tier.IsValid() {
		return models.MemoryEntry{}, fmt.Errorf("unknown tier %q", in.Tier)
	}

	return store.AppendEntry(db, tier, models.MemoryEntry{
		Type:      in.Type,
		SessionID: in.SessionID,
		Intent:    in.Intent,
		Agents:    in.Agents,
		Content:   in.Content,
		Rating:    in.Rating,
		Tags:      in.Tags,
		Source:    in.Source,
		Metadata:  in.Metadata,
	})
}

// RecentMemory returns the most recent entries of one tier in chronological
// order.
func RecentMemory(db *sql.DB, tier string, limit int) ([]models.MemoryEntry, error) {
	t := models.Tier(tier)
	if tier == "" {
		t = models.TierHot
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}
	return store.ReadTier(db, t, limit)
}

// RotateResult reports one rotation pass.
type RotateResult struct {
	Counts      map[models.Tier]int `json:"counts"`
	MovedToWarm int                 `json:"moved_to_warm"`
	MovedToCold int                 `json:"moved_to_cold"`
	Pruned      int                 `json:"pruned"`
}

// RotateMemory runs one full hot->warm->cold rotation pass and persists the
// result. usageRatio is the caller's current context usage in [0,1]; pass 0
// when unknown.
func RotateMemory(db *sql.DB, usageRatio float64) (*RotateResult, error) {
	hot, warm, cold, err := store.LoadAllTiers(db)
	if err != nil {
		return nil, err
	}

	res := engine.Rotate(hot, warm, cold, usageRatio, rotationPolicy(), time.Now())
	if err := store.ApplyRotation(db, res); err != nil {
		return nil, err
	}

	return &RotateResult{
		Counts: map[models.Tier]int{
			models.TierHot:  len(res.Hot),
			models.TierWarm: len(res.Warm),
			models.TierCold: len(res.Cold),
		},
		MovedToWarm: res.MovedToWarm,
		MovedToCold: res.MovedToCold,
		Pruned:      res.Pruned,
	}, nil
}
