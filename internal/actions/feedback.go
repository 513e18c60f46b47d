package actions

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/store"
)

// FeedbackResult reports where a feedback utterance landed.
type FeedbackResult struct {
	Rating    int                 `json:"rating,omitempty"`
	HistoryID int64               `json:"history_id,omitempty"`
	Patterns  int                 `json:"patterns,omitempty"`
	Entry     *models.MemoryEntry `json:"entry,omitempty"`

	// NoRating is set when the text carried no recognizable 1..10 rating;
	// the utterance is still remembered as a feedback event.
	NoRating bool `json:"no_rating,omitempty"`
}

// ApplyFeedback extracts a rating from free text, attaches it to the most
// recent completed outcome (preferring the session), and pushes the
// corrected outcome through the success-pattern update. Text without a
// rating is recorded as an unrated feedback event only.
func ApplyFeedback(db *sql.DB, sessionID, text string) (*FeedbackResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("feedback text is required")
	}

	res := &FeedbackResult{}
	rating, ok := engine.ExtractRating(text)
	if !ok {
		res.NoRating = true
		res.Entry = recordFeedbackEntry(db, sessionID, text, 0, nil, "")
		return res, nil
	}
	res.Rating = rating

	updated, found, err := store.AttachRating(db, sessionID, rating, text)
	if err != nil {
		return nil, err
	}
	if !found {
		// Nothing to rate yet; keep the signal as a rated memory event so
		// scoring can still use it.
		res.Entry = recordFeedbackEntry(db, sessionID, text, rating, nil, "")
		return res, nil
	}
	res.HistoryID = updated.ID

	patterns, err := applyOutcome(db, engine.OutcomeFromHistory(updated))
	if err != nil {
		slog.Warn("feedback pattern update skipped", "history_id", updated.ID, "error", err)
	} else {
		res.Patterns = len(patterns)
	}

	res.Entry = recordFeedbackEntry(db, sessionID, text, rating, updated.Agents, updated.Intent)
	return res, nil
}

// recordFeedbackEntry appends the feedback memory event; failures are
// logged, never surfaced.
func recordFeedbackEntry(db *sql.DB, sessionID, text string, rating int, agents []string, intentLabel string) *models.MemoryEntry {
	entry, err := store.AppendEntry(db, models.TierHot, models.MemoryEntry{
		Type:      models.EntryTypeFeedback,
		SessionID: sessionID,
		Intent:    intentLabel,
		Agents:    agents,
		Content:   text,
		Rating:    rating,
		Source:    "feedback",
	})
	if err != nil {
		slog.Warn("feedback event not recorded", "error", err)
		return nil
	}
	return &entry
}
