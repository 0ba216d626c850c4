package nlq

import (
	"github.com/matthewbaird/nlquery/internal/intent"
)

// paginationParser resolves one pagination mode: search-after, page/size
// or offset/limit.
type paginationParser struct{}

func (paginationParser) Parse(tokens []Token) (*intent.Pagination, error) {
	var (
		page, perPage, size, limit, offset int
		searchAfter                        []any
		cont                               bool
	)
	used := make([]bool, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !isWord(tok) {
			continue
		}
		text := tok.Text

		switch {
		case continueWords.has(text):
			cont = true
			used[i] = true

		case searchAfterWords.has(text):
			used[i] = true
			for j := i + 1; j < len(tokens) && isValueToken(tokens[j]); j += 2 {
				searchAfter = append(searchAfter, tokenValue(tokens[j]))
				used[j] = true
				i = j
				if j+1 >= len(tokens) || tokens[j+1].Type != TokenDelimiter {
					break
				}
			}

		case pageWords.has(text), perPageWords.has(text), sizeWords.has(text), limitWords.has(text), offsetWords.has(text):
			if i+1 >= len(tokens) || !isCount(tokens[i+1]) {
				continue
			}
			allowZero := offsetWords.has(text)
			n, err := positive(tokens[i+1], allowZero)
			if err != nil {
				return nil, err
			}
			used[i], used[i+1] = true, true
			switch {
			case pageWords.has(text):
				page = n
			case perPageWords.has(text):
				perPage = n
			case sizeWords.has(text):
				size = n
			case limitWords.has(text):
				limit = n
			default:
				offset = n
			}
			i++
		}
	}

	// "10条" without a marker.
	if size == 0 && perPage == 0 && limit == 0 {
		for i := 0; i+1 < len(tokens); i++ {
			if used[i] || tokens[i].Type != TokenNumber || !isCountUnit(tokens[i+1]) || tokens[i+1].Text == "页" {
				continue
			}
			// "大于18个" is a condition value, not a size.
			if i > 0 && tokens[i-1].Type == TokenOperator {
				continue
			}
			n, err := positive(tokens[i], false)
			if err != nil {
				return nil, err
			}
			size = n
			break
		}
	}

	switch {
	case len(searchAfter) > 0 || cont:
		return &intent.Pagination{SearchAfter: searchAfter, ContinueSearch: true}, nil
	case page > 0 || perPage > 0:
		if page == 0 {
			page = 1
		}
		if perPage == 0 {
			perPage = size
		}
		return &intent.Pagination{Page: page, Size: perPage}, nil
	case limit > 0 || offset > 0:
		if limit == 0 {
			limit = size
		}
		return &intent.Pagination{Offset: offset, Limit: limit}, nil
	case size > 0:
		return &intent.Pagination{Page: 1, Size: size}, nil
	}
	return nil, nil
}

func isCount(t Token) bool {
	if t.Type == TokenNumber {
		return true
	}
	_, ok := tokenInt(t)
	return ok
}

func isCountUnit(t Token) bool {
	return t.Type == TokenUnknown && countUnits.has(t.Text)
}

// positive reads a count that must be an integer above zero (or at least
// zero for offsets).
func positive(t Token, allowZero bool) (int, error) {
	n, ok := tokenInt(t)
	if !ok || n < 0 || (n == 0 && !allowZero) {
		want := "a positive integer"
		if allowZero {
			want = "a non-negative integer"
		}
		return 0, newTypeMismatch(t, "pagination", want)
	}
	return n, nil
}
