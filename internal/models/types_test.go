package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeComplexity(t *testing.T) {
	cases := []struct {
		in   string
		want Complexity
	}{
		{"low", ComplexityLow},
		{"medium", ComplexityMedium},
		{"high", ComplexityHigh},
		{"  High ", ComplexityHigh},
		{"simple", ComplexityLow},
		{"easy", ComplexityLow},
		{"trivial", ComplexityLow},
		{"moderate", ComplexityMedium},
		{"normal", ComplexityMedium},
		{"complex", ComplexityHigh},
		{"hard", ComplexityHigh},
		{"Complex", ComplexityHigh},
		{"", Complexity("")},
		{"galactic", Complexity("")},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeComplexity(tc.in), "input %q", tc.in)
	}
}

func TestComplexityLevel(t *testing.T) {
	assert.Equal(t, 0, ComplexityLow.Level())
	assert.Equal(t, 1, ComplexityMedium.Level())
	assert.Equal(t, 2, ComplexityHigh.Level())
	assert.Equal(t, -1, Complexity("weird").Level())
}
