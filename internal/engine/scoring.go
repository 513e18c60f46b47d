package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/mentat-dev/mentat/internal/models"
)

const (
	preferredRoleBonus = 1.5
	feedbackTypeFactor = 1.5
	nonBaselineCutoff  = 2.0

	intentMatchFactor    = 1.4
	intentMismatchFactor = 0.5

	projectMatchFactor    = 1.25
	projectMismatchFactor = 0.75

	complexityMatchFactor    = 1.2
	complexityMismatchFactor = 0.85

	toolMatchFactor    = 1.35
	toolMismatchFactor = 0.65
)

// ScoringInput bundles everything scoreAgents draws on for one task turn.
type ScoringInput struct {
	Context        models.TaskContext
	BaselineRoles  []string
	PreferredRoles []string
	Patterns       []models.SuccessPattern
	RatedMemories  []models.MemoryEntry
	Boost          map[string]float64
}

// ScoredAgent is one ranked candidate role.
type ScoredAgent struct {
	Role     string  `json:"role"`
	Score    float64 `json:"score"`
	Baseline bool    `json:"baseline"`
}

// ScoreAgents ranks candidate roles for the current context. Baseline roles
// always appear, ordered by score with the original baseline order as the
// tie-break; other candidates make the list only when they score above the
// cutoff.
func ScoreAgents(in ScoringInput) []ScoredAgent {
	baselineIdx := make(map[string]int, len(in.BaselineRoles))
	for i, role := range in.BaselineRoles {
		if _, seen := baselineIdx[role]; !seen {
			baselineIdx[role] = i
		}
	}

	scores := make(map[string]float64)
	for role := range baselineIdx {
		scores[role] = 0
	}
	for _, p := range in.Patterns {
		for _, role := range p.MethodAgents() {
			if _, ok := scores[role]; !ok {
				scores[role] = 0
			}
		}
	}
	for _, m := range in.RatedMemories {
		if m.Rating == 0 {
			continue
		}
		for _, role := range m.Agents {
			if _, ok := scores[role]; !ok {
				scores[role] = 0
			}
		}
	}
	for role := range in.Boost {
		if _, ok := scores[role]; !ok {
			scores[role] = 0
		}
	}

	preferred := make(map[string]struct{}, len(in.PreferredRoles))
	for _, role := range in.PreferredRoles {
		preferred[role] = struct{}{}
	}
	for role := range scores {
		if _, ok := preferred[role]; ok {
			scores[role] += preferredRoleBonus
		}
	}

	ctxTools := models.NormalizeToolCombo(in.Context.ToolsUsed)
	for _, m := range in.RatedMemories {
		if m.Rating == 0 || len(m.Agents) == 0 {
			continue
		}
		contribution := float64(models.ClampRating(m.Rating)) - 5.5
		contribution *= intentFactor(in.Context.Intent, m.Intent)
		if m.Type == models.EntryTypeFeedback {
			contribution *= feedbackTypeFactor
		}
		contribution *= memoryAgreement(in.Context, ctxTools, m)
		for _, role := range m.Agents {
			if _, ok := scores[role]; ok {
				scores[role] += contribution
			}
		}
	}

	for _, p := range in.Patterns {
		roles := p.MethodAgents()
		if len(roles) == 0 {
			continue
		}
		contribution := (p.SuccessRate - 0.5) * 6
		contribution *= intentFactor(in.Context.Intent, p.Task)
		contribution *= agreementFactor(in.Context.Project, p.Project, projectMatchFactor, projectMismatchFactor)
		contribution *= complexityAgreement(in.Context.Complexity, p.Complexity)
		contribution *= agreementFactor(ctxTools, p.ToolCombo, toolMatchFactor, toolMismatchFactor)
		contribution *= patternConfidence(p.SampleSize)
		for _, role := range roles {
			if _, ok := scores[role]; ok {
				scores[role] += contribution
			}
		}
	}

	for role, b := range in.Boost {
		scores[role] += b
	}

	var baseline, extra []ScoredAgent
	for role, score := range scores {
		sa := ScoredAgent{Role: role, Score: score}
		if _, ok := baselineIdx[role]; ok {
			sa.Baseline = true
			baseline = append(baseline, sa)
		} else if score > nonBaselineCutoff {
			extra = append(extra, sa)
		}
	}

	sort.SliceStable(baseline, func(i, j int) bool {
		if baseline[i].Score != baseline[j].Score {
			return baseline[i].Score > baseline[j].Score
		}
		return baselineIdx[baseline[i].Role] < baselineIdx[baseline[j].Role]
	})
	sort.SliceStable(extra, func(i, j int) bool {
		if extra[i].Score != extra[j].Score {
			return extra[i].Score > extra[j].Score
		}
		return extra[i].Role < extra[j].Role
	})
	return append(baseline, extra...)
}

func intentFactor(want, got string) float64 {
	switch {
	case got == "" || want == "":
		return 1.0
	case want == got:
		return intentMatchFactor
	default:
		return intentMismatchFactor
	}
}

// agreementFactor is neutral when either side is unrecorded.
func agreementFactor(want, got string, match, mismatch float64) float64 {
	if want == "" || got == "" {
		return 1.0
	}
	if strings.EqualFold(want, got) {
		return match
	}
	return mismatch
}

func complexityAgreement(want, got models.Complexity) float64 {
	if want.Level() < 0 || got.Level() < 0 {
		return 1.0
	}
	if want == got {
		return complexityMatchFactor
	}
	return complexityMismatchFactor
}

// memoryAgreement reads the contextual hints a memory entry carries in its
// metadata and scales the contribution by how well they agree with the
// current task.
func memoryAgreement(ctx models.TaskContext, ctxTools string, m models.MemoryEntry) float64 {
	factor := 1.0
	factor *= agreementFactor(ctx.Project, m.Metadata["project"], projectMatchFactor, projectMismatchFactor)
	factor *= complexityAgreement(ctx.Complexity, models.Complexity(m.Metadata["complexity"]))
	if tools := m.Metadata["tools"]; tools != "" {
		factor *= agreementFactor(ctxTools, models.NormalizeToolCombo(strings.Split(tools, "+")), toolMatchFactor, toolMismatchFactor)
	}
	return factor
}

// patternConfidence grows with sample size and saturates so a huge sample
// can never dominate on volume alone.
func patternConfidence(sampleSize int) float64 {
	if sampleSize < 1 {
		sampleSize = 1
	}
	return math.Min(1.5, 0.5+math.Log10(float64(sampleSize)))
}
