package engine

import (
	"math"
	"sort"
)

// CompositionConfig tunes the replacement/injection pass.
type CompositionConfig struct {
	MaxAgents           int
	MinBaseAgents       int
	ReplacementDelta    float64
	InjectionMinScore   float64
	MinSimilarityBoost  float64
	ForceInjectionScore float64
}

// DefaultCompositionConfig returns the standard tuning.
func DefaultCompositionConfig() CompositionConfig {
	return CompositionConfig{
		MaxAgents:           4,
		MinBaseAgents:       1,
		ReplacementDelta:    1.0,
		InjectionMinScore:   3.0,
		MinSimilarityBoost:  0.8,
		ForceInjectionScore: 7.5,
	}
}

// CompositionResult is the selected team plus what changed against the
// plain baseline ranking, for explainability.
type CompositionResult struct {
	Selected []ScoredAgent `json:"selected"`
	Injected []string      `json:"injected,omitempty"`
	Replaced []string      `json:"replaced,omitempty"`
}

// Compose turns the ranked candidate list into a final team. Baseline roles
// seed the selection; strong non-baseline candidates are injected into free
// slots or replace weak incumbents. The top-scored baseline role is the
// anchor and is never removed.
func Compose(ranked []ScoredAgent, boost map[string]float64, cfg CompositionConfig) CompositionResult {
	if cfg.MaxAgents < 1 {
		cfg = DefaultCompositionConfig()
	}

	var baseline, extras []ScoredAgent
	for _, a := range ranked {
		if a.Baseline {
			baseline = append(baseline, a)
		} else {
			extras = append(extras, a)
		}
	}

	var selected []ScoredAgent
	for i := 0; i < len(baseline) && i < cfg.MaxAgents; i++ {
		selected = append(selected, baseline[i])
	}
	anchor := ""
	if len(baseline) > 0 {
		anchor = baseline[0].Role
	}

	res := CompositionResult{}
	for _, cand := range extras {
		if cand.Score < cfg.InjectionMinScore {
			continue
		}
		if boost[cand.Role] < cfg.MinSimilarityBoost && math.Abs(cand.Score) < cfg.ForceInjectionScore {
			continue
		}
		if containsRole(selected, cand.Role) {
			continue
		}
		if len(selected) < cfg.MaxAgents {
			selected = append(selected, cand)
			res.Injected = append(res.Injected, cand.Role)
			continue
		}
		victim := replaceableIncumbent(selected, anchor, cfg.MinBaseAgents)
		if victim < 0 {
			continue
		}
		if cand.Score < selected[victim].Score+cfg.ReplacementDelta {
			continue
		}
		if selected[victim].Baseline {
			res.Replaced = append(res.Replaced, selected[victim].Role)
		}
		selected[victim] = cand
		res.Injected = append(res.Injected, cand.Role)
	}

	// Restore minimum baseline representation if the pass eroded it.
	if baselineCount(selected) < cfg.MinBaseAgents {
		if sub := strongestUnusedBaseline(baseline, selected); sub != nil {
			if weakest := weakestNonBaseline(selected); weakest >= 0 {
				selected[weakest] = *sub
			}
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Score != selected[j].Score {
			return selected[i].Score > selected[j].Score
		}
		return selected[i].Role < selected[j].Role
	})
	if len(selected) > cfg.MaxAgents {
		selected = selected[:cfg.MaxAgents]
	}
	res.Selected = selected
	return res
}

// replaceableIncumbent finds the lowest-scoring member that may be swapped
// out without removing the anchor or dropping baseline count below the
// minimum. Returns -1 when nobody is eligible.
func replaceableIncumbent(selected []ScoredAgent, anchor string, minBase int) int {
	baseCount := baselineCount(selected)
	victim := -1
	for i, a := range selected {
		if a.Role == anchor {
			continue
		}
		if a.Baseline && baseCount-1 < minBase {
			continue
		}
		if victim < 0 || a.Score < selected[victim].Score {
			victim = i
		}
	}
	return victim
}

func baselineCount(selected []ScoredAgent) int {
	n := 0
	for _, a := range selected {
		if a.Baseline {
			n++
		}
	}
	return n
}

func strongestUnusedBaseline(baseline, selected []ScoredAgent) *ScoredAgent {
	for _, b := range baseline {
		if !containsRole(selected, b.Role) {
			return &b
		}
	}
	return nil
}

func weakestNonBaseline(selected []ScoredAgent) int {
	idx := -1
	for i, a := range selected {
		if a.Baseline {
			continue
		}
		if idx < 0 || a.Score < selected[idx].Score {
			idx = i
		}
	}
	return idx
}

func containsRole(agents []ScoredAgent, role string) bool {
	for _, a := range agents {
		if a.Role == role {
			return true
		}
	}
	return false
}
