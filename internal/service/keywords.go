package service

import (
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// KeywordTable maps dictionary name to surface to enum value.
func KeywordTable(kw *keyword.Set) map[string]map[string]string {
	return map[string]map[string]string{
		kw.Operators.Name():  table(kw.Operators),
		kw.Logic.Name():      table(kw.Logic),
		kw.Aggs.Name():       table(kw.Aggs),
		kw.Sorts.Name():      table(kw.Sorts),
		kw.TimeRanges.Name(): table(kw.TimeRanges),
	}
}

func table[T ~string](d *keyword.Dict[T]) map[string]string {
	out := make(map[string]string, d.Len())
	for k, v := range d.All() {
		out[k] = string(v)
	}
	return out
}

// TokenView is the wire form of a token.
type TokenView struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Pos   int    `json:"pos"`
	Value any    `json:"value,omitempty"`
}

// Tokens returns the token stream of text in wire form.
func (s *Service) Tokens(text string) []TokenView {
	tokens := s.parser.Tokenize(text)
	out := make([]TokenView, len(tokens))
	for i, t := range tokens {
		out[i] = TokenView{Type: t.Type.String(), Text: t.Text, Pos: t.Pos, Value: t.Value()}
	}
	return out
}
