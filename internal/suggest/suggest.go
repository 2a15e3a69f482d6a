package suggest

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// DefaultThreshold is the minimum similarity of a suggestion.
const DefaultThreshold = 0.5

// Candidate is a known name scored against a misspelled one.
type Candidate struct {
	Name  string
	Score float64
}

// Normalize folds case and drops '_', '-' and spaces, so that
// "light_color", "LightColor" and "light-color" compare equal.
func Normalize(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// Rank scores every known name against name, best first. Ties keep known
// order.
func Rank(name string, known []string) []Candidate {
	target := Normalize(name)

	candidates := make([]Candidate, 0, len(known))
	for _, k := range known {
		candidates = append(candidates, Candidate{Name: k, Score: Similarity(target, Normalize(k))})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return candidates
}

// Suggest returns up to limit known names whose similarity to name reaches
// DefaultThreshold.
func Suggest(name string, known []string, limit int) []string {
	var out []string

	for _, c := range Rank(name, known) {
		if c.Score < DefaultThreshold || len(out) == limit {
			break
		}

		out = append(out, c.Name)
	}

	return out
}
