// Package engine holds the pure computations of the adaptive
// memory-and-selection core: tier rotation planning, the decayed
// success-rate model, the recompute trigger, the context-similarity
// scorer, and agent scoring/composition. Nothing here touches the clock
// or storage; callers inject "now" and persist results.
package engine

import (
	"sort"
	"time"

	"github.com/mentat-dev/mentat/internal/models"
)

// RotationPolicy bounds the three memory tiers.
type RotationPolicy struct {
	HotKeep          int
	WarmMaxCount     int
	ColdMaxCount     int
	WarmRetention    time.Duration
	CompressionRatio float64 // token-usage ratio at which hot compaction triggers
}

// RotationResult is the planned post-rotation state of all three tiers plus
// the movement report. Entries are conserved hot->warm and warm->cold;
// entries may only be lost at the cold boundary (bounded retention).
type RotationResult struct {
	Hot  []models.MemoryEntry
	Warm []models.MemoryEntry
	Cold []models.MemoryEntry

	MovedToWarm int
	MovedToCold int
	Pruned      int
}

// Rotate plans one hot->warm->cold rotation pass. usageRatio is the current
// context token-usage ratio in [0,1]; a ratio at or above the policy's
// compression ratio triggers hot compaction even below the keep count.
//
// Running Rotate twice with no new entries is a no-op: deduplication
// prevents re-insertion and nothing remains eligible to move twice.
func Rotate(hot, warm, cold []models.MemoryEntry, usageRatio float64, pol RotationPolicy, now time.Time) RotationResult {
	hot = sortedByTime(hot)
	warm = sortedByTime(warm)
	cold = sortedByTime(cold)

	res := RotationResult{}

	// Step 1: move the oldest hot entries beyond the keep count into warm.
	excess := len(hot) - pol.HotKeep
	triggered := len(hot) > pol.HotKeep || usageRatio >= pol.CompressionRatio
	var toWarm []models.MemoryEntry
	if triggered && excess > 0 {
		toWarm = hot[:excess]
		hot = hot[excess:]
	}

	// Step 2: merge into warm, dropping later duplicates.
	warm, moved := mergeDedup(warm, toWarm, models.TierWarm)
	res.MovedToWarm = moved

	// Step 3: age out warm entries past the retention window, then trim the
	// still-within-window set down to the warm cap (oldest first).
	cutoff := now.Add(-pol.WarmRetention)
	var toCold, kept []models.MemoryEntry
	for _, e := range warm {
		if e.Timestamp.Before(cutoff) {
			toCold = append(toCold, e)
		} else {
			kept = append(kept, e)
		}
	}
	if overflow := len(kept) - pol.WarmMaxCount; overflow > 0 {
		toCold = append(toCold, kept[:overflow]...)
		kept = kept[overflow:]
	}
	warm = kept

	// Step 4: merge into cold; prune the oldest past the cold cap.
	cold, moved = mergeDedup(cold, toCold, models.TierCold)
	res.MovedToCold = moved
	cold = sortedByTime(cold)
	if overflow := len(cold) - pol.ColdMaxCount; overflow > 0 {
		cold = cold[overflow:]
		res.Pruned = overflow
	}

	res.Hot = hot
	res.Warm = warm
	res.Cold = cold
	return res
}

// mergeDedup appends incoming entries onto existing, dropping any incoming
// entry whose identity tuple already exists. The merged entries are retagged
// with the destination tier. Returns the merged set and how many entries
// actually moved in.
func mergeDedup(existing, incoming []models.MemoryEntry, tier models.Tier) ([]models.MemoryEntry, int) {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Identity()] = true
	}

	moved := 0
	for _, e := range incoming {
		id := e.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		e.Tier = tier
		existing = append(existing, e)
		moved++
	}
	return sortedByTime(existing), moved
}

// sortedByTime returns a copy ordered oldest-first, ties broken by id so the
// order is deterministic across runs.
func sortedByTime(entries []models.MemoryEntry) []models.MemoryEntry {
	out := make([]models.MemoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
