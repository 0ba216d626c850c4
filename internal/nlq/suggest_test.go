package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"大于", "大雨", 1},
		{"大于", "大于等于", 2},
		{"等于", "等于", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "%s/%s", tt.b, tt.a)
	}
}

func TestSuggester_FindSimilar(t *testing.T) {
	s := NewSuggester(keyword.Defaults().Operators)

	hits := s.FindSimilar("大雨", 3)
	require.NotEmpty(t, hits)
	assert.Equal(t, "大于", hits[0])
	assert.LessOrEqual(t, len(hits), 3)
	for _, h := range hits {
		assert.LessOrEqual(t, Levenshtein("大雨", h), similarityThreshold)
	}

	assert.LessOrEqual(t, len(s.FindSimilar("大雨", 10)), 3)
	assert.Empty(t, s.FindSimilar("完全无关的一句话", 3))
	assert.Empty(t, s.FindSimilar("大雨", 0))
}

func TestSuggester_SameScript(t *testing.T) {
	s := NewSuggester(keyword.Defaults().Operators)

	for _, h := range s.FindSimilar("大雨", 3) {
		assert.False(t, isASCII(h), "suggested %q for a Chinese word", h)
	}
	hits := s.FindSimilar("gtee", 3)
	require.NotEmpty(t, hits)
	assert.Equal(t, "gte", hits[0])
	for _, h := range hits {
		assert.True(t, isASCII(h), "suggested %q for an English word", h)
	}
}

func TestSuggester_FindMostSimilar(t *testing.T) {
	s := NewSuggester(keyword.Defaults().Operators)

	kw, ok := s.FindMostSimilar("小鱼")
	require.True(t, ok)
	assert.Equal(t, "小于", kw)

	_, ok = s.FindMostSimilar("完全无关的一句话")
	assert.False(t, ok)

	assert.True(t, s.IsPossibleTypo("包涵"))
	assert.False(t, s.IsPossibleTypo("完全无关的一句话"))
}

func TestSuggester_PlausibleTypo(t *testing.T) {
	s := NewSuggester(keyword.Defaults().Operators)

	hits, ok := s.plausibleTypo("大雨")
	require.True(t, ok)
	assert.Equal(t, "大于", hits[0])

	// Two-rune field names are two edits from every two-rune operator.
	_, ok = s.plausibleTypo("城市")
	assert.False(t, ok)
}
