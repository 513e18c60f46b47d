package actions

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/mentat-dev/mentat/internal/app"
	"github.com/mentat-dev/mentat/internal/engine"
	"github.com/mentat-dev/mentat/internal/intent"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/profile"
	"github.com/mentat-dev/mentat/internal/roles"
	"github.com/mentat-dev/mentat/internal/store"
)

// ratedMemoryLimit bounds how many rated entries feed scoring per turn.
const ratedMemoryLimit = 100

// historyScanLimit bounds how many ledger rows the similarity scorer sees.
const historyScanLimit = 200

// SelectInput describes one team-selection turn.
type SelectInput struct {
	SessionID  string
	Prompt     string
	Project    string
	Complexity string
	Tools      []string

	// Classifier is optional; nil means keyword fallback only.
	Classifier intent.Classifier
}

// SelectResult is the selected team plus everything needed to explain it.
type SelectResult struct {
	Team      []string             `json:"team"`
	Intent    string               `json:"intent"`
	Scores    []engine.ScoredAgent `json:"scores,omitempty"`
	Injected  []string             `json:"injected,omitempty"`
	Replaced  []string             `json:"replaced,omitempty"`
	TopCases  []string             `json:"top_cases,omitempty"`
	Boost     map[string]float64   `json:"boost,omitempty"`
	Directive engine.Directive     `json:"directive,omitempty"`

	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// SelectTeam runs the full selection pipeline: classify intent, score
// history and memory signals, compose a team, apply per-turn overrides.
// It never fails the caller: any internal error degrades to the default
// two-role team with an empty context.
func SelectTeam(ctx context.Context, db *sql.DB, in SelectInput) SelectResult {
	label := intent.Resolve(ctx, in.Classifier, in.Prompt)

	catalog := roles.Load()
	baseline := catalog.Baseline(label)
	known := catalog.KnownRoles()
	prof := profile.Load()

	taskCtx := models.TaskContext{
		Intent:     label,
		Project:    in.Project,
		Complexity: models.NormalizeComplexity(in.Complexity),
		ToolsUsed:  in.Tools,
		PromptText: in.Prompt,
	}
	directive := engine.ParseDirective(in.Prompt, known)

	res := SelectResult{Intent: label, Directive: directive}

	history, err := store.ListRecentHistory(db, historyScanLimit)
	if err != nil {
		return degradedSelection(res, directive, baseline, known, "history unavailable", err)
	}
	patterns, err := store.LoadPatterns(db)
	if err != nil {
		return degradedSelection(res, directive, baseline, known, "patterns unavailable", err)
	}
	rated, err := store.ListRatedEntries(db, ratedMemoryLimit)
	if err != nil {
		return degradedSelection(res, directive, baseline, known, "rated memory unavailable", err)
	}

	sim := engine.ScoreSimilarity(taskCtx, history, time.Now())
	ranked := engine.ScoreAgents(engine.ScoringInput{
		Context:        taskCtx,
		BaselineRoles:  baseline,
		PreferredRoles: prof.PreferredRoles,
		Patterns:       patterns,
		RatedMemories:  rated,
		Boost:          sim.Boost,
	})
	composed := engine.Compose(ranked, sim.Boost, compositionConfig())

	selectedRoles := make([]string, 0, len(composed.Selected))
	for _, a := range composed.Selected {
		selectedRoles = append(selectedRoles, a.Role)
	}

	res.Team = engine.ApplyConstraints(selectedRoles, directive, baseline, known)
	res.Scores = ranked
	res.Injected = composed.Injected
	res.Replaced = composed.Replaced
	res.TopCases = sim.TopCases
	res.Boost = sim.Boost
	if len(res.Team) == 0 {
		// Only possible when no role id is known anywhere in the system.
		res.Team = append([]string{}, roles.DefaultTeam...)
		res.Degraded = true
		res.DegradedReason = "no known roles"
	}
	return res
}

// degradedSelection is the single failure boundary for selection: log the
// cause, fall back to constrained baseline roles, and still honor the
// per-turn directive.
func degradedSelection(res SelectResult, d engine.Directive, baseline, known []string, reason string, err error) SelectResult {
	slog.Warn("team selection degraded", "reason", reason, "error", err)
	res.Team = engine.ApplyConstraints(baseline, d, baseline, known)
	if len(res.Team) == 0 {
		res.Team = append([]string{}, roles.DefaultTeam...)
	}
	res.Degraded = true
	res.DegradedReason = reason
	return res
}

func compositionConfig() engine.CompositionConfig {
	return engine.DefaultCompositionConfig()
}

// rotationPolicy builds the engine policy from validated settings.
func rotationPolicy() engine.RotationPolicy {
	s := app.EffectiveEngineSettings()
	return engine.RotationPolicy{
		HotKeep:          s.HotKeepCount,
		WarmMaxCount:     s.WarmMaxCount,
		ColdMaxCount:     s.ColdMaxCount,
		WarmRetention:    time.Duration(s.WarmRetentionDays) * 24 * time.Hour,
		CompressionRatio: s.CompressionRatio,
	}
}

// triggerPolicy builds the recompute trigger policy from validated settings.
func triggerPolicy() engine.TriggerPolicy {
	s := app.EffectiveEngineSettings()
	return engine.TriggerPolicy{
		HistoryDeltaThreshold:     s.HistoryDeltaThreshold,
		RatedDeltaThreshold:       s.RatedDeltaThreshold,
		MinInterval:               time.Duration(s.MinIntervalMinutes) * time.Minute,
		ForceDeltaWithoutInterval: s.ForceDeltaWithoutInterval,
	}
}

func maxPatterns() int {
	return app.EffectiveEngineSettings().MaxPatterns
}
