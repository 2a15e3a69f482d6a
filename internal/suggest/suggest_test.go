package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "a", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a), "symmetry")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("abcd", "abce"), 1e-9)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "lightcolor", Normalize("Light_Color"))
	assert.Equal(t, "lightcolor", Normalize("light-color"))
	assert.Equal(t, "lightcolor", Normalize("LightColor"))
}

func TestSuggest(t *testing.T) {
	known := []string{"Name", "Strings", "Values", "Parts"}

	assert.Equal(t, []string{"Strings"}, Suggest("Strngs", known, 3))
	assert.Equal(t, []string{"Name"}, Suggest("name", known, 3))
	assert.Empty(t, Suggest("Completely", known, 3))
	assert.Empty(t, Suggest("Name", known, 0))

	ranked := Rank("Valeus", known)
	assert.Equal(t, "Values", ranked[0].Name)
	assert.Len(t, ranked, len(known))
}
