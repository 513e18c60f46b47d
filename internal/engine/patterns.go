package engine

import (
	"math"
	"sort"
	"time"

	"github.com/mentat-dev/mentat/internal/models"
)

// Success-pattern update constants. Decay pulls aged estimates toward the
// neutral rate 0.5; an explicit rating carries more weight than a bare
// success/failure flag.
const (
	neutralRate    = 0.5
	dailyDecayBase = 0.985

	ratingSignalWeight  = 0.45
	successSignalWeight = 0.25
	successScore        = 0.9
	failureScore        = 0.2
)

// Outcome is one learnable task result feeding the success-rate model.
type Outcome struct {
	Task       string
	Agents     []string
	ToolCombo  string
	Project    string
	Complexity models.Complexity

	Rating     int  // 0 = no explicit rating
	HasSuccess bool // whether Success carries meaning
	Success    bool

	When time.Time
}

// OutcomeFromHistory converts a ledger row into an Outcome.
func OutcomeFromHistory(h models.HistoryEntry) Outcome {
	return Outcome{
		Task:       h.Intent,
		Agents:     h.Agents,
		ToolCombo:  models.NormalizeToolCombo(h.ToolsUsed),
		Project:    h.Project,
		Complexity: h.Complexity,
		Rating:     h.Rating,
		HasSuccess: h.Status == models.HistoryCompleted || h.Status == models.HistoryFailed,
		Success:    h.Status == models.HistoryCompleted,
		When:       h.Timestamp,
	}
}

// Signal is the (score, weight) pair derived from an outcome.
type Signal struct {
	Score  float64
	Weight float64
}

// DeriveSignal extracts the learnable signal from an outcome. An explicit
// rating beats the success flag; with neither there is nothing to learn and
// ok is false.
func DeriveSignal(o Outcome) (Signal, bool) {
	if o.Rating != 0 {
		return Signal{Score: float64(models.ClampRating(o.Rating)) / 10.0, Weight: ratingSignalWeight}, true
	}
	if o.HasSuccess {
		score := failureScore
		if o.Success {
			score = successScore
		}
		return Signal{Score: score, Weight: successSignalWeight}, true
	}
	return Signal{}, false
}

// DecayRate pulls a stored success rate toward the neutral 0.5 by
// 0.985^days. Negative elapsed time is treated as zero.
func DecayRate(rate float64, days float64) float64 {
	if days < 0 {
		days = 0
	}
	return neutralRate + (rate-neutralRate)*math.Pow(dailyDecayBase, days)
}

// UpdatePatterns applies one outcome to the pattern set: decay the existing
// estimate by the time since it was last used, blend in the new signal, bump
// the sample size, then re-sort and truncate to maxPatterns. A no-op when
// the outcome has no task, no roles, or no learnable signal.
func UpdatePatterns(patterns []models.SuccessPattern, o Outcome, maxPatterns int, now time.Time) []models.SuccessPattern {
	method := models.MethodFromAgents(o.Agents)
	if o.Task == "" || method == "" {
		return patterns
	}
	sig, ok := DeriveSignal(o)
	if !ok {
		return patterns
	}

	key := (&models.SuccessPattern{
		Task: o.Task, Method: method, ToolCombo: o.ToolCombo,
		Project: o.Project, Complexity: o.Complexity,
	}).Key()

	out := make([]models.SuccessPattern, len(patterns))
	copy(out, patterns)

	found := false
	for i := range out {
		if out[i].Key() != key {
			continue
		}
		days := now.Sub(out[i].LastUsed).Hours() / 24
		decayed := DecayRate(out[i].SuccessRate, days)
		out[i].SuccessRate = clamp01(decayed*(1-sig.Weight) + sig.Score*sig.Weight)
		out[i].SampleSize++
		out[i].LastUsed = now
		found = true
		break
	}
	if !found {
		out = append(out, models.SuccessPattern{
			Task:        o.Task,
			Method:      method,
			SuccessRate: clamp01(sig.Score),
			LastUsed:    now,
			SampleSize:  1,
			ToolCombo:   o.ToolCombo,
			Project:     o.Project,
			Complexity:  o.Complexity,
		})
	}

	return rankPatterns(out, maxPatterns)
}

// RecomputePatterns rebuilds the pattern set by replaying the full outcome
// ledger in chronological order through the same decay/blend step, using
// each outcome's own timestamp as "now". The result is equivalent to having
// applied UpdatePatterns to every historical event in order. Pure: the
// output depends only on the ledger contents.
func RecomputePatterns(history []models.HistoryEntry, maxPatterns int) []models.SuccessPattern {
	ordered := make([]models.HistoryEntry, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var patterns []models.SuccessPattern
	for _, h := range ordered {
		o := OutcomeFromHistory(h)
		// Truncate only at the end so mid-replay eviction cannot lose a key
		// that later events would have revived.
		patterns = UpdatePatterns(patterns, o, len(patterns)+1, o.When)
	}
	return rankPatterns(patterns, maxPatterns)
}

// rankPatterns sorts by success rate descending, tie-broken by recency, and
// truncates to the cap.
func rankPatterns(patterns []models.SuccessPattern, maxPatterns int) []models.SuccessPattern {
	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].SuccessRate != patterns[j].SuccessRate {
			return patterns[i].SuccessRate > patterns[j].SuccessRate
		}
		return patterns[i].LastUsed.After(patterns[j].LastUsed)
	})
	if maxPatterns > 0 && len(patterns) > maxPatterns {
		patterns = patterns[:maxPatterns]
	}
	return patterns
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
