package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClassifier struct {
	label string
	err   error
}

func (f fakeClassifier) Classify(context.Context, string) (string, error) {
	return f.label, f.err
}

func TestResolve_DefaultsOnEveryFailureMode(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "analysis", Resolve(ctx, nil, "do something"))
	assert.Equal(t, "analysis", Resolve(ctx, fakeClassifier{label: "coding"}, "   "))
	assert.Equal(t, "analysis", Resolve(ctx, fakeClassifier{err: errors.New("cli not found")}, "do something"))
	assert.Equal(t, "analysis", Resolve(ctx, fakeClassifier{label: "astrology"}, "do something"))
}

func TestResolve_NormalizesKnownLabels(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "coding", Resolve(ctx, fakeClassifier{label: " Coding \n"}, "implement it"))
	assert.Equal(t, "debugging", Resolve(ctx, fakeClassifier{label: "debugging"}, "fix it"))
}

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"fix the failing test in the parser", "debugging"},
		{"please review this pull request", "review"},
		{"implement a rate limiter", "coding"},
		{"investigate why latency doubled", "research"},
		{"draft a readme for the project", "writing"},
		{"break down the migration into milestones", "planning"},
		{"hello there", "analysis"},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got, err := KeywordClassifier{}.Classify(context.Background(), tt.prompt)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
