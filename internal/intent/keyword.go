package intent

import (
	"context"
	"strings"
)

// KeywordClassifier is the zero-dependency fallback classifier: first intent
// whose keyword list matches the prompt wins, in a fixed priority order.
type KeywordClassifier struct{}

// intentKeywords is checked in order; more specific intents come before
// broader ones so "fix the failing test" lands on debugging, not coding.
var intentKeywords = []struct {
	label    string
	keywords []string
}{
	{"debugging", []string{"debug", "fix", "bug", "crash", "error", "failing", "broken", "regression", "stack trace"}},
	{"review", []string{"review", "critique", "audit", "check this", "look over", "feedback on"}},
	{"coding", []string{"implement", "code", "refactor", "build", "write a function", "add a", "migrate", "api"}},
	{"research", []string{"research", "investigate", "find out", "look up", "compare", "explore", "survey"}},
	{"writing", []string{"write", "draft", "document", "summarize", "blog", "readme", "email"}},
	{"planning", []string{"plan", "roadmap", "break down", "milestones", "schedule", "scope out"}},
}

// Classify never fails; prompts matching nothing get the default intent.
func (KeywordClassifier) Classify(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.label, nil
			}
		}
	}
	return DefaultIntent, nil
}
