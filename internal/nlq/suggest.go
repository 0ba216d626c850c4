package nlq

import (
	"sort"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

const (
	// similarityThreshold is the largest edit distance still suggested.
	similarityThreshold = 2
	maxSuggestions      = 3
)

// Suggester finds operator keywords close to a misspelt word.
type Suggester struct {
	keywords []string
}

// NewSuggester snapshots the operator keywords of ops.
func NewSuggester(ops *keyword.Dict[keyword.Operator]) *Suggester {
	return &Suggester{keywords: ops.Keywords()}
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

type scored struct {
	keyword  string
	distance int
}

// FindSimilar returns up to min(limit, 3) keywords within the similarity
// threshold, nearest first. Only keywords written in the same script as
// input are considered: every one-rune symbol is within two edits of any
// two-rune Chinese word.
func (s *Suggester) FindSimilar(input string, limit int) []string {
	if limit <= 0 || input == "" {
		return nil
	}
	limit = min(limit, maxSuggestions)

	var hits []scored
	ascii := isASCII(input)
	for _, kw := range s.keywords {
		if isASCII(kw) != ascii {
			continue
		}
		if d := Levenshtein(input, kw); d <= similarityThreshold {
			hits = append(hits, scored{keyword: kw, distance: d})
		}
	}
	// keywords are sorted, so ties stay alphabetical.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.keyword
	}
	return out
}

// FindMostSimilar returns the nearest keyword, if any is close enough.
func (s *Suggester) FindMostSimilar(input string) (string, bool) {
	hits := s.FindSimilar(input, 1)
	if len(hits) == 0 {
		return "", false
	}
	return hits[0], true
}

// IsPossibleTypo reports whether input is close to some operator keyword.
func (s *Suggester) IsPossibleTypo(input string) bool {
	_, ok := s.FindMostSimilar(input)
	return ok
}

// plausibleTypo is the guard used during parsing: the nearest keyword must
// be closer than the word is long, so two-rune field names do not all look
// like misspelt two-rune operators.
func (s *Suggester) plausibleTypo(word string) ([]string, bool) {
	hits := s.FindSimilar(word, maxSuggestions)
	if len(hits) == 0 {
		return nil, false
	}
	if Levenshtein(word, hits[0]) >= runeLen(word) {
		return nil, false
	}
	return hits, true
}
