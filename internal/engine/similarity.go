package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mentat-dev/mentat/internal/models"
)

const (
	intentWeight     = 0.35
	projectWeight    = 0.20
	complexityWeight = 0.15
	toolWeight       = 0.15
	textWeight       = 0.15

	crossIntentDamping = 0.55
	similarityFloor    = 0.22

	recencyHalfLifeDays = 45.0
	noTimestampWeight   = 0.65

	contributionScale = 4.5
	contributionCap   = 4.0
	contributionFloor = 0.15
)

// SimilarityResult carries the per-role influence values derived from past
// outcomes plus the evidence rows behind the strongest contributions.
type SimilarityResult struct {
	Boost    map[string]float64 `json:"agentScoreBoost"`
	TopCases []string           `json:"topCases"`
}

type scoredRow struct {
	row          models.HistoryEntry
	similarity   float64
	contribution float64
}

// ScoreSimilarity scores historical outcome rows against the current task
// context and aggregates a per-role boost. Rows with too little similarity
// or no learnable outcome signal drop out.
func ScoreSimilarity(ctx models.TaskContext, rows []models.HistoryEntry, now time.Time) SimilarityResult {
	res := SimilarityResult{Boost: make(map[string]float64)}
	ctxTools := lowerSet(ctx.ToolsUsed)
	ctxTokens := tokenize(ctx.PromptText)

	var surviving []scoredRow
	for _, row := range rows {
		if len(row.Agents) == 0 {
			continue
		}
		intentMatch := ctx.Intent != "" && row.Intent == ctx.Intent

		sim := intentWeight*intentSimilarity(ctx.Intent, row.Intent) +
			projectWeight*projectSimilarity(ctx.Project, row.Project, intentMatch) +
			complexityWeight*complexitySimilarity(ctx.Complexity, row.Complexity) +
			toolWeight*jaccardWithDefaults(ctxTools, lowerSet(row.ToolsUsed), 0.4, 0.25) +
			textWeight*textSimilarity(ctxTokens, tokenize(row.Result))
		if !intentMatch {
			sim *= crossIntentDamping
		}
		if sim < similarityFloor {
			continue
		}

		signal := outcomeSignal(row)
		if math.Abs(signal) < 0.01 {
			continue
		}

		recency := noTimestampWeight
		if !row.Timestamp.IsZero() {
			ageDays := now.Sub(row.Timestamp).Hours() / 24
			if ageDays < 0 {
				ageDays = 0
			}
			recency = math.Pow(0.5, ageDays/recencyHalfLifeDays)
		}

		contribution := sim * signal * recency * contributionScale
		if contribution > contributionCap {
			contribution = contributionCap
		} else if contribution < -contributionCap {
			contribution = -contributionCap
		}
		if math.Abs(contribution) < contributionFloor {
			continue
		}

		perRole := contribution / math.Sqrt(float64(len(row.Agents)))
		for _, role := range row.Agents {
			res.Boost[role] += perRole
		}
		surviving = append(surviving, scoredRow{row: row, similarity: sim, contribution: contribution})
	}

	sort.SliceStable(surviving, func(i, j int) bool {
		ai, aj := math.Abs(surviving[i].contribution), math.Abs(surviving[j].contribution)
		if ai != aj {
			return ai > aj
		}
		return surviving[i].similarity > surviving[j].similarity
	})
	for i := 0; i < len(surviving) && i < 3; i++ {
		res.TopCases = append(res.TopCases, evidenceLine(surviving[i]))
	}
	return res
}

func intentSimilarity(want, got string) float64 {
	switch {
	case got == "":
		return 0.25
	case want != "" && want == got:
		return 1.0
	default:
		return 0.08
	}
}

func projectSimilarity(want, got string, intentMatch bool) float64 {
	var s float64
	switch {
	case want != "" && got != "" && want == got:
		s = 1.0
	case want != "" && got != "":
		s = 0.05
	default:
		s = 0.35
	}
	if !intentMatch && s > 0.2 {
		s = 0.2
	}
	return s
}

func complexitySimilarity(want, got models.Complexity) float64 {
	gl := got.Level()
	if gl < 0 {
		return 0.45
	}
	wl := want.Level()
	if wl < 0 {
		wl = 1
	}
	switch abs(wl - gl) {
	case 0:
		return 1.0
	case 1:
		return 0.6
	default:
		return 0.25
	}
}

func textSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.2
	}
	return jaccard(a, b)
}

// outcomeSignal converts a row's outcome into a signed learning signal.
// An explicit rating dominates; otherwise the terminal status decides.
func outcomeSignal(row models.HistoryEntry) float64 {
	if row.Rating > 0 {
		return (float64(models.ClampRating(row.Rating)) - 5.5) / 4.5
	}
	switch row.Status {
	case models.HistoryCompleted:
		return 0.35
	case models.HistoryFailed:
		return -0.55
	default:
		return 0
	}
}

func evidenceLine(s scoredRow) string {
	outcome := string(s.row.Status)
	if s.row.Rating > 0 {
		outcome = fmt.Sprintf("rated %d/10", models.ClampRating(s.row.Rating))
	}
	task := s.row.Intent
	if task == "" {
		task = "unknown intent"
	}
	return fmt.Sprintf("%s via %s: %s (similarity %.2f, weight %+.2f)",
		task, strings.Join(s.row.Agents, "+"), outcome, s.similarity, s.contribution)
}

func jaccardWithDefaults(a, b map[string]struct{}, bothEmpty, oneEmpty float64) float64 {
	switch {
	case len(a) == 0 && len(b) == 0:
		return bothEmpty
	case len(a) == 0 || len(b) == 0:
		return oneEmpty
	default:
		return jaccard(a, b)
	}
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}

// tokenize splits free text into case-folded words of at least two
// characters, dropping punctuation.
func tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	word := strings.Builder{}
	flush := func() {
		if w := word.String(); utf8.RuneCountInString(w) >= 2 {
			set[w] = struct{}{}
		}
		word.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return set
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
