package intent

import (
	"context"
	"strings"
)

// DefaultIntent is the label used whenever classification cannot produce a
// confident answer. Selection must always proceed.
const DefaultIntent = "analysis"

// Known intent labels.
var Known = []string{
	"analysis",
	"research",
	"coding",
	"review",
	"writing",
	"planning",
	"debugging",
}

// Classifier maps a free-text prompt to an intent label.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Resolve classifies a prompt and absorbs every failure mode: empty prompt,
// classifier error, or an unknown label all resolve to the default intent.
func Resolve(ctx context.Context, c Classifier, prompt string) string {
	if c == nil || strings.TrimSpace(prompt) == "" {
		return DefaultIntent
	}
	label, err := c.Classify(ctx, prompt)
	if err != nil {
		return DefaultIntent
	}
	label = strings.ToLower(strings.TrimSpace(label))
	for _, known := range Known {
		if label == known {
			return known
		}
	}
	return DefaultIntent
}
