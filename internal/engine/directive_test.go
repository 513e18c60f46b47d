package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var knownRoles = []string{"analyst", "researcher", "engineer", "reviewer", "writer"}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Directive
	}{
		{
			name: "only clause",
			text: "use only researcher and writer for this",
			want: Directive{Only: true, Include: []string{"researcher", "writer"}},
		},
		{
			name: "exclude clause",
			text: "do this without the reviewer",
			want: Directive{Exclude: []string{"reviewer"}},
		},
		{
			name: "include clause",
			text: "bring in the engineer on this one",
			want: Directive{Include: []string{"engineer"}},
		},
		{
			name: "mixed include and exclude",
			text: "use the analyst but skip the writer",
			want: Directive{Include: []string{"analyst"}, Exclude: []string{"writer"}},
		},
		{
			name: "bare role mention is not a directive",
			text: "the researcher said the data looked fine",
			want: Directive{},
		},
		{
			name: "unknown roles ignored",
			text: "only use the wizard",
			want: Directive{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDirective(tt.text, knownRoles)
			assert.Equal(t, tt.want.Only, got.Only)
			assert.Equal(t, tt.want.Include, got.Include)
			assert.Equal(t, tt.want.Exclude, got.Exclude)
		})
	}
}

func TestApplyConstraints_ExcludeBeatsOnly(t *testing.T) {
	d := Directive{
		Only:    true,
		Include: []string{"researcher", "writer"},
		Exclude: []string{"researcher"},
	}

	got := ApplyConstraints([]string{"analyst", "engineer"}, d, []string{"analyst"}, knownRoles)

	assert.Equal(t, []string{"writer"}, got, "exclude applies before the only short-circuit")
}

func TestApplyConstraints_OnlyWinsOutright(t *testing.T) {
	d := Directive{Only: true, Include: []string{"writer", "editor"}}

	got := ApplyConstraints([]string{"analyst", "engineer", "reviewer"}, d, []string{"analyst"}, knownRoles)

	assert.Equal(t, []string{"writer", "editor"}, got)
}

func TestApplyConstraints_IncludePrepended(t *testing.T) {
	d := Directive{Include: []string{"writer"}}

	got := ApplyConstraints([]string{"analyst", "engineer"}, d, []string{"analyst"}, knownRoles)

	assert.Equal(t, []string{"writer", "analyst", "engineer"}, got)
}

func TestApplyConstraints_ExcludeFiltersComposed(t *testing.T) {
	d := Directive{Exclude: []string{"engineer"}}

	got := ApplyConstraints([]string{"analyst", "engineer", "reviewer"}, d, []string{"analyst"}, knownRoles)

	assert.Equal(t, []string{"analyst", "reviewer"}, got)
}

func TestApplyConstraints_FallbackChain(t *testing.T) {
	d := Directive{Exclude: []string{"analyst"}}

	// Composed team entirely excluded: fall back to the baseline.
	got := ApplyConstraints([]string{"analyst"}, d, []string{"analyst", "researcher"}, knownRoles)
	assert.Equal(t, []string{"researcher"}, got)

	// Baseline also excluded: fall back to the known-role list.
	got = ApplyConstraints([]string{"analyst"}, d, []string{"analyst"}, knownRoles)
	assert.Equal(t, []string{"researcher", "engineer", "reviewer", "writer"}, got)
}

func TestApplyConstraints_CapsAtFour(t *testing.T) {
	got := ApplyConstraints([]string{"analyst", "researcher", "engineer", "reviewer", "writer"}, Directive{}, nil, knownRoles)
	assert.Len(t, got, 4)
}

func TestExtractRating(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"that was a 9/10", 9, true},
		{"solid 10/10 work", 10, true},
		{"9分", 9, true},
		{"这次9分不错", 9, true},
		{"I'd rate this 7", 7, true},
		{"rating: 8", 8, true},
		{"scored a 6 overall", 6, true},
		{"8", 8, true},
		{" 10 ", 10, true},
		{"great job, thanks!", 0, false},
		{"11/10 hyperbole", 0, false},
		{"version 2.0 shipped in 2024", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ExtractRating(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
