package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Directive is a parsed per-turn override for team selection.
type Directive struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Only    bool     `json:"only,omitempty"`
}

// IsZero reports whether the directive carries no constraints.
func (d Directive) IsZero() bool {
	return !d.Only && len(d.Include) == 0 && len(d.Exclude) == 0
}

var excludeCues = map[string]bool{
	"without": true, "exclude": true, "excluding": true,
	"no": true, "not": true, "skip": true, "drop": true, "remove": true,
}

var onlyCues = map[string]bool{
	"only": true, "just": true, "solely": true,
}

var includeCues = map[string]bool{
	"include": true, "with": true, "add": true, "use": true, "using": true,
	"want": true, "need": true, "bring": true,
}

// ParseDirective scans free text for known role names and classifies each
// mention by the cue words immediately before it. Mentions with no cue are
// ignored so ordinary prose that happens to contain a role name does not
// constrain selection.
func ParseDirective(text string, known []string) Directive {
	var d Directive
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	})
	knownSet := make(map[string]bool, len(known))
	for _, role := range known {
		knownSet[strings.ToLower(role)] = true
	}

	for i, tok := range tokens {
		if !knownSet[tok] {
			continue
		}
		exclude, only, include := false, false, false
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			cue := tokens[j]
			switch {
			case excludeCues[cue]:
				exclude = true
			case onlyCues[cue]:
				only = true
			case includeCues[cue]:
				include = true
			case knownSet[cue]:
				// role lists share the nearest cue: "only researcher writer"
				continue
			}
			if exclude || only || include {
				break
			}
		}
		switch {
		case exclude:
			d.Exclude = appendUnique(d.Exclude, tok)
		case only:
			d.Only = true
			d.Include = appendUnique(d.Include, tok)
		case include:
			d.Include = appendUnique(d.Include, tok)
		}
	}
	return d
}

// ApplyConstraints enforces a directive over the composed team. Exclusions
// apply at every stage; an only-directive that survives exclusion wins
// outright; otherwise includes are prepended to the composed ranking. The
// fallback chain is baseline roles, then known roles, both exclusion
// filtered. The result is capped to four roles.
func ApplyConstraints(composed []string, d Directive, baseline, known []string) []string {
	const maxTeam = 4
	excluded := make(map[string]bool, len(d.Exclude))
	for _, role := range d.Exclude {
		excluded[strings.ToLower(role)] = true
	}
	keep := func(roles []string) []string {
		out := make([]string, 0, len(roles))
		for _, role := range roles {
			if !excluded[strings.ToLower(role)] {
				out = appendUnique(out, role)
			}
		}
		return out
	}

	if d.Only {
		if only := keep(d.Include); len(only) > 0 {
			return truncate(only, maxTeam)
		}
	}

	result := keep(append(append([]string{}, d.Include...), composed...))
	if len(result) == 0 {
		result = keep(baseline)
	}
	if len(result) == 0 {
		result = keep(known)
	}
	return truncate(result, maxTeam)
}

// Rating extraction patterns, checked in order of specificity.
var (
	ratingSlashRe = regexp.MustCompile(`\b(10|[1-9])\s*/\s*10\b`)
	ratingCJKRe   = regexp.MustCompile(`(10|[1-9])\s*分`)
	ratingCueRe   = regexp.MustCompile(`(?i)\b(?:rate|rated|rating|score|scored)\b\D{0,12}?\b(10|[1-9])\b`)
	ratingBareRe  = regexp.MustCompile(`^\s*(10|[1-9])\s*$`)
)

// ExtractRating pulls an explicit 1..10 rating out of a feedback utterance.
// Returns false when the text carries no recognizable rating.
func ExtractRating(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{ratingSlashRe, ratingCJKRe, ratingCueRe, ratingBareRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 1 && n <= 10 {
				return n, true
			}
		}
	}
	return 0, false
}

func appendUnique(roles []string, role string) []string {
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}

func truncate(roles []string, n int) []string {
	if len(roles) > n {
		return roles[:n]
	}
	return roles
}
