package nlq

import (
	"sort"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// sortParser reads "年龄降序", "按年龄排序", "order by age desc, name" and
// field-less "最新".
type sortParser struct{}

type sortAt struct {
	at   int
	sort intent.Sort
}

func (sortParser) Parse(tokens []Token) []intent.Sort {
	used := make([]bool, len(tokens))
	var found []sortAt

	for i, tok := range tokens {
		if tok.Type != TokenSort {
			continue
		}
		used[i] = true
		s := intent.Sort{Order: tok.Sort}
		switch {
		case sortField(tokens, used, i-1):
			s.FieldHint = tokens[i-1].Text
			used[i-1] = true
		case i >= 2 && isSortMarker(tokens[i-1]) && sortField(tokens, used, i-2):
			s.FieldHint = tokens[i-2].Text
			used[i-1], used[i-2] = true, true
		}
		found = append(found, sortAt{at: i, sort: s})
	}

	// Markers left without a direction sort ascending.
	for i, tok := range tokens {
		if used[i] || !isSortMarker(tok) {
			continue
		}
		used[i] = true
		if !isASCII(tok.Text) && sortField(tokens, used, i-1) {
			used[i-1] = true
			found = append(found, sortAt{at: i - 1, sort: intent.Sort{FieldHint: tokens[i-1].Text, Order: keyword.SortAsc}})
			continue
		}
		// "order by age desc, name": skip fields that already have a
		// direction and continue across delimiters.
	list:
		for j := i + 1; j < len(tokens); j++ {
			switch {
			case used[j]:
			case tokens[j].Type == TokenDelimiter:
			case sortField(tokens, used, j):
				if j+1 < len(tokens) && tokens[j+1].Type == TokenOperator {
					break list
				}
				used[j] = true
				found = append(found, sortAt{at: j, sort: intent.Sort{FieldHint: tokens[j].Text, Order: keyword.SortAsc}})
				if j+1 < len(tokens) && !used[j+1] && tokens[j+1].Type != TokenDelimiter {
					break list
				}
			default:
				break list
			}
		}
	}

	if len(found) == 0 {
		return nil
	}
	sort.SliceStable(found, func(a, b int) bool { return found[a].at < found[b].at })
	out := make([]intent.Sort, len(found))
	for i, f := range found {
		out[i] = f.sort
	}
	return out
}

func isSortMarker(t Token) bool {
	return t.Type == TokenUnknown && sortMarkers.has(t.Text)
}

// sortField reports whether tokens[j] is a free field term. A term right
// after an operator is a condition value.
func sortField(tokens []Token, used []bool, j int) bool {
	if j < 0 || j >= len(tokens) || used[j] || !isFieldToken(tokens[j]) {
		return false
	}
	return j == 0 || tokens[j-1].Type != TokenOperator
}
