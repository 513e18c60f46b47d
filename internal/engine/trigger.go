package engine

import (
	"time"

	"github.com/mentat-dev/mentat/internal/models"
)

// Recompute decision reasons, reported for explainability.
const (
	ReasonEmptyHistory     = "empty-history"
	ReasonForce            = "force"
	ReasonHistoryForce     = "history-force-threshold"
	ReasonRatingForce      = "rating-force-threshold"
	ReasonCooldown         = "cooldown"
	ReasonHistoryReset     = "history-reset"
	ReasonHistoryThreshold = "history-threshold"
	ReasonRatingThreshold  = "rating-threshold"
	ReasonThresholdNotMet  = "threshold-not-met"
)

// ratingForceFactor scales the rated-delta threshold for the cooldown bypass.
const ratingForceFactor = 3

// TriggerPolicy holds the thresholds governing full recomputes.
type TriggerPolicy struct {
	HistoryDeltaThreshold     int
	RatedDeltaThreshold       int
	MinInterval               time.Duration
	ForceDeltaWithoutInterval int // history delta that bypasses the cooldown
}

// Counts is the current ledger size snapshot.
type Counts struct {
	History int
	Rated   int
}

// Decision is the trigger verdict.
type Decision struct {
	Run    bool   `json:"run"`
	Reason string `json:"reason"`
}

// DecideRecompute decides whether a full recompute of the success-rate model
// should run now. The cooldown is wall-clock based; callers inject now so
// the decision is testable without real delays.
func DecideRecompute(c Counts, meta models.RecomputeMeta, now time.Time, force bool, pol TriggerPolicy) Decision {
	if c.History == 0 {
		return Decision{Run: false, Reason: ReasonEmptyHistory}
	}
	if force {
		return Decision{Run: true, Reason: ReasonForce}
	}

	deltaHistory := c.History - meta.LastHistoryCount
	deltaRated := c.Rated - meta.LastRatedCount
	historyReset := deltaHistory < 0 || deltaRated < 0
	if deltaHistory < 0 {
		deltaHistory = 0
	}
	if deltaRated < 0 {
		deltaRated = 0
	}

	// Large backlogs bypass the cooldown entirely.
	if deltaHistory >= pol.ForceDeltaWithoutInterval {
		return Decision{Run: true, Reason: ReasonHistoryForce}
	}
	if deltaRated >= ratingForceFactor*pol.RatedDeltaThreshold {
		return Decision{Run: true, Reason: ReasonRatingForce}
	}

	if meta.LastRunAt != nil && now.Sub(*meta.LastRunAt) < pol.MinInterval {
		return Decision{Run: false, Reason: ReasonCooldown}
	}

	if historyReset {
		return Decision{Run: true, Reason: ReasonHistoryReset}
	}
	if deltaHistory >= pol.HistoryDeltaThreshold {
		return Decision{Run: true, Reason: ReasonHistoryThreshold}
	}
	if deltaRated >= pol.RatedDeltaThreshold {
		return Decision{Run: true, Reason: ReasonRatingThreshold}
	}
	return Decision{Run: false, Reason: ReasonThresholdNotMet}
}
