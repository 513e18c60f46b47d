package models

import (
	"strings"
	"time"
)

// ID Strategy:
// - History rows use int64 (monotonic ordering, auto-increment)
// - Memory entries and work items use string ids (distributed generation,
//   e.g., "mem_1234567890_a3f9")
//
// Append-only logs benefit from sequential ids; records created by
// concurrent sessions benefit from collision-free string ids.

// Tier is one of the three retention buckets for ambient memory entries,
// ordered from most to least recently active.
type Tier string

// Tier constants.
const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Tiers lists all tiers in rotation order (hot -> warm -> cold).
func Tiers() []Tier {
	return []Tier{TierHot, TierWarm, TierCold}
}

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	return t == TierHot || t == TierWarm || t == TierCold
}

// Complexity is the coarse difficulty estimate attached to a task.
type Complexity string

// Complexity constants. Empty string means unknown.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Level maps a complexity to an ordinal (low=0, medium=1, high=2).
// Returns -1 for unknown values.
func (c Complexity) Level() int {
	switch c {
	case ComplexityLow:
		return 0
	case ComplexityMedium:
		return 1
	case ComplexityHigh:
		return 2
	}
	return -1
}

// NormalizeComplexity maps free-form input onto a known complexity or
// empty. Common synonyms are accepted so callers can say "simple" or
// "complex" without losing the signal.
func NormalizeComplexity(s string) Complexity {
	switch Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case ComplexityLow, "simple", "easy", "trivial":
		return ComplexityLow
	case ComplexityMedium, "moderate", "normal":
		return ComplexityMedium
	case ComplexityHigh, "complex", "hard", "difficult":
		return ComplexityHigh
	}
	return ""
}

// WorkItemStatus is the lifecycle state of a work item.
type WorkItemStatus string

// Work item status constants.
const (
	WorkItemInProgress WorkItemStatus = "in-progress"
	WorkItemCompleted  WorkItemStatus = "completed"
	WorkItemFailed     WorkItemStatus = "failed"
)

// IsTerminal reports whether the work item has been finalized.
func (s WorkItemStatus) IsTerminal() bool {
	return s == WorkItemCompleted || s == WorkItemFailed
}

// MemoryEntry is one observed event in the tiered ambient memory.
type MemoryEntry struct {
	ID        string            `json:"id"`
	Tier      Tier              `json:"tier"`
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Intent    string            `json:"intent,omitempty"`
	Agents    []string          `json:"agents"`
	Content   string            `json:"content"`
	Rating    int               `json:"rating,omitempty"` // 0 = unrated; otherwise clamped to [1,10]
	Tags      []string          `json:"tags,omitempty"`
	Source    string            `json:"source,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Normalize enforces the entry invariants in place: rating clamped to [1,10]
// (zero stays zero, meaning unrated), zero timestamps replaced with now,
// unknown tiers mapped to hot, nil collections allocated.
func (e *MemoryEntry) Normalize(now time.Time) {
	if e.Rating != 0 {
		e.Rating = ClampRating(e.Rating)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if !e.Tier.IsValid() {
		e.Tier = TierHot
	}
	if e.Agents == nil {
		e.Agents = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
}

// Identity returns the deduplication key used during tier rotation.
// Two entries with the same identity tuple are considered the same event.
func (e *MemoryEntry) Identity() string {
	return strings.Join([]string{
		e.Type,
		e.SessionID,
		e.Intent,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Content,
	}, "\x1f")
}

// Execution captures how a finalized work item actually ran.
type Execution struct {
	ExecutionTime float64  `json:"execution_time,omitempty"` // seconds
	ToolsUsed     []string `json:"tools_used,omitempty"`
	ModelCalls    int      `json:"model_calls,omitempty"`
	Success       bool     `json:"success"`
	ErrorMessage  string   `json:"error_message,omitempty"`
}

// WorkItem is one in-flight or completed task attempt. At most one
// in-progress item per session is considered "open" for finalization.
type WorkItem struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	Prompt        string         `json:"prompt"`
	Intent        string         `json:"intent"`
	Project       string         `json:"project,omitempty"`
	Complexity    Complexity     `json:"complexity,omitempty"`
	Status        WorkItemStatus `json:"status"`
	Agents        []string       `json:"agents"`
	Execution     *Execution     `json:"execution,omitempty"`
	ResultSummary string         `json:"result_summary,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HistoryStatus is the terminal state recorded in the outcome ledger.
type HistoryStatus string

// History status constants.
const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
)

// HistoryEntry is an append-only outcome ledger row derived from a finalized
// work item. Identity fields (session, timestamp, agents) are immutable once
// appended; only rating/feedback may be attached later.
type HistoryEntry struct {
	ID            int64         `json:"id"`
	SessionID     string        `json:"session_id"`
	Intent        string        `json:"intent"`
	Project       string        `json:"project,omitempty"`
	Complexity    Complexity    `json:"complexity,omitempty"`
	Agents        []string      `json:"agents"`
	Result        string        `json:"result"`
	Status        HistoryStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	WorkItemID    string        `json:"work_item_id,omitempty"`
	ToolsUsed     []string      `json:"tools_used,omitempty"`
	ModelCalls    int           `json:"model_calls,omitempty"`
	ExecutionTime float64       `json:"execution_time,omitempty"`
	Rating        int           `json:"rating,omitempty"` // 0 = unrated
	Feedback      string        `json:"feedback,omitempty"`
}

// MethodSeparator joins role ids into a success-pattern method string.
const MethodSeparator = " + "

// SuccessPattern is a decayed outcome aggregate keyed by
// (task, method, tool combo, project, complexity).
type SuccessPattern struct {
	Task        string     `json:"task"`
	Method      string     `json:"method"` // role ids joined by " + "
	SuccessRate float64    `json:"success_rate"`
	LastUsed    time.Time  `json:"last_used"`
	SampleSize  int        `json:"sample_size"`
	ToolCombo   string     `json:"tool_combo,omitempty"`
	Project     string     `json:"project,omitempty"`
	Complexity  Complexity `json:"complexity,omitempty"`
}

// Key returns the composite bucket key for this pattern.
func (p *SuccessPattern) Key() string {
	return strings.Join([]string{p.Task, p.Method, p.ToolCombo, p.Project, string(p.Complexity)}, "\x1f")
}

// MethodAgents splits the method string back into role ids.
func (p *SuccessPattern) MethodAgents() []string {
	if p.Method == "" {
		return nil
	}
	return strings.Split(p.Method, MethodSeparator)
}

// MethodFromAgents builds a method string from an ordered role list.
func MethodFromAgents(agents []string) string {
	return strings.Join(agents, MethodSeparator)
}

// RecomputeMeta is the bookkeeping row for the recompute trigger. It is
// written only as a side effect of a completed full recompute.
type RecomputeMeta struct {
	LastRunAt        *time.Time `json:"last_run_at,omitempty"`
	LastHistoryCount int        `json:"last_history_count"`
	LastRatedCount   int        `json:"last_rated_count"`
	LastReason       string     `json:"last_reason,omitempty"`
}

// TaskContext describes the current request for similarity scoring and
// pattern matching.
type TaskContext struct {
	Intent     string     `json:"intent"`
	Project    string     `json:"project,omitempty"`
	Complexity Complexity `json:"complexity,omitempty"`
	ToolsUsed  []string   `json:"tools_used,omitempty"`
	PromptText string     `json:"prompt_text,omitempty"`
}

// ClampRating bounds a rating to [1,10].
func ClampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 10 {
		return 10
	}
	return r
}

// NormalizeToolCombo lowercases, dedups, sorts and joins tool names so that
// equal tool sets always produce the same combo string.
func NormalizeToolCombo(tools []string) string {
	if len(tools) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(tools))
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	// insertion sort; tool sets are tiny
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return strings.Join(out, "+")
}
