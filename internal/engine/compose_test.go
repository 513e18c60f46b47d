package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_BaselineOnlyUnderCap(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "analyst", Score: 3, Baseline: true},
		{Role: "researcher", Score: 1, Baseline: true},
	}

	res := Compose(ranked, nil, DefaultCompositionConfig())

	require.Len(t, res.Selected, 2)
	assert.Equal(t, "analyst", res.Selected[0].Role)
	assert.Empty(t, res.Injected)
	assert.Empty(t, res.Replaced)
}

func TestCompose_InjectsIntoFreeSlot(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "analyst", Score: 4, Baseline: true},
		{Role: "researcher", Score: 2, Baseline: true},
		{Role: "engineer", Score: 8},
	}
	boost := map[string]float64{"engineer": 1.2}

	res := Compose(ranked, boost, DefaultCompositionConfig())

	require.Len(t, res.Selected, 3)
	assert.Equal(t, []string{"engineer"}, res.Injected)
	assert.Empty(t, res.Replaced)
	assert.Equal(t, "engineer", res.Selected[0].Role, "re-sorted by score")
}

func TestCompose_WeakOutsiderRejected(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "analyst", Score: 4, Baseline: true},
		{Role: "engineer", Score: 3.5}, // clears min score but has no boost and is not forceful
	}

	res := Compose(ranked, nil, DefaultCompositionConfig())

	require.Len(t, res.Selected, 1)
	assert.Equal(t, "analyst", res.Selected[0].Role)
}

func TestCompose_ForceInjectionScoreOverridesBoostGate(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "analyst", Score: 4, Baseline: true},
		{Role: "engineer", Score: 8}, // no boost, but above force threshold
	}

	res := Compose(ranked, nil, DefaultCompositionConfig())

	assert.Equal(t, []string{"engineer"}, res.Injected)
}

func TestCompose_ReplacementRespectsAnchorAndDelta(t *testing.T) {
	cfg := DefaultCompositionConfig()
	cfg.MaxAgents = 2

	ranked := []ScoredAgent{
		{Role: "analyst", Score: 6, Baseline: true}, // anchor
		{Role: "researcher", Score: 3, Baseline: true},
		{Role: "engineer", Score: 8},
	}
	boost := map[string]float64{"engineer": 2.0}

	res := Compose(ranked, boost, cfg)

	require.Len(t, res.Selected, 2)
	_, hasAnchor := findAgent(res.Selected, "analyst")
	assert.True(t, hasAnchor, "anchor is never removed")
	_, hasEngineer := findAgent(res.Selected, "engineer")
	assert.True(t, hasEngineer)
	assert.Equal(t, []string{"researcher"}, res.Replaced)
}

func TestCompose_ReplacementDeltaTooSmall(t *testing.T) {
	cfg := DefaultCompositionConfig()
	cfg.MaxAgents = 2

	ranked := []ScoredAgent{
		{Role: "analyst", Score: 6, Baseline: true},
		{Role: "researcher", Score: 3.5, Baseline: true},
		{Role: "engineer", Score: 4}, // only +0.5 over the incumbent
	}
	boost := map[string]float64{"engineer": 2.0}

	res := Compose(ranked, boost, cfg)

	_, hasEngineer := findAgent(res.Selected, "engineer")
	assert.False(t, hasEngineer)
	assert.Empty(t, res.Replaced)
}

func TestCompose_MinBaselinePreserved(t *testing.T) {
	cfg := DefaultCompositionConfig()
	cfg.MaxAgents = 2
	cfg.MinBaseAgents = 1

	ranked := []ScoredAgent{
		{Role: "analyst", Score: 5, Baseline: true},
		{Role: "engineer", Score: 9},
		{Role: "writer", Score: 8},
	}
	boost := map[string]float64{"engineer": 2.0, "writer": 2.0}

	res := Compose(ranked, boost, cfg)

	require.Len(t, res.Selected, 2)
	count := 0
	for _, a := range res.Selected {
		if a.Baseline {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 1, "baseline representation never drops below the minimum")
	_, hasAnchor := findAgent(res.Selected, "analyst")
	assert.True(t, hasAnchor)
}

func TestCompose_CapEnforced(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "analyst", Score: 9, Baseline: true},
		{Role: "researcher", Score: 8, Baseline: true},
		{Role: "engineer", Score: 7, Baseline: true},
		{Role: "reviewer", Score: 6, Baseline: true},
		{Role: "writer", Score: 5, Baseline: true},
	}

	res := Compose(ranked, nil, DefaultCompositionConfig())

	require.Len(t, res.Selected, 4)
	assert.Equal(t, "analyst", res.Selected[0].Role)
	_, hasWriter := findAgent(res.Selected, "writer")
	assert.False(t, hasWriter)
}

func TestCompose_TiesBrokenLexicographically(t *testing.T) {
	ranked := []ScoredAgent{
		{Role: "researcher", Score: 2, Baseline: true},
		{Role: "analyst", Score: 2, Baseline: true},
	}

	res := Compose(ranked, nil, DefaultCompositionConfig())

	require.Len(t, res.Selected, 2)
	assert.Equal(t, "analyst", res.Selected[0].Role)
}
