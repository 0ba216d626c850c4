// Package nlq turns Chinese/English natural-language queries into intents.
package nlq

import (
	"fmt"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

// TokenType classifies a token.
type TokenType int

const (
	TokenUnknown TokenType = iota
	TokenOperator
	TokenLogic
	TokenAggregation
	TokenSort
	TokenNumber
	TokenStopWord
	TokenDelimiter
	TokenFieldCandidate
	TokenValue
)

func (t TokenType) String() string {
	switch t {
	case TokenUnknown:
		return "Unknown"
	case TokenOperator:
		return "Operator"
	case TokenLogic:
		return "Logic"
	case TokenAggregation:
		return "Aggregation"
	case TokenSort:
		return "Sort"
	case TokenNumber:
		return "Number"
	case TokenStopWord:
		return "StopWord"
	case TokenDelimiter:
		return "Delimiter"
	case TokenFieldCandidate:
		return "FieldCandidate"
	case TokenValue:
		return "Value"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is one classified lexical unit. Pos is a rune offset into the
// query. At most one of the decoded payload fields is set, matching Type.
type Token struct {
	Type TokenType
	Text string
	Pos  int

	Operator keyword.Operator
	Logic    keyword.Logic
	Agg      keyword.Agg
	Sort     keyword.SortOrder
	// Number holds an int64 or a float64.
	Number any
}

// IsTerm reports whether the token can name a field or carry a value.
func (t Token) IsTerm() bool {
	switch t.Type {
	case TokenUnknown, TokenFieldCandidate, TokenValue:
		return true
	}
	return false
}

// Value returns the decoded payload, or nil.
func (t Token) Value() any {
	switch t.Type {
	case TokenOperator:
		return t.Operator
	case TokenLogic:
		return t.Logic
	case TokenAggregation:
		return t.Agg
	case TokenSort:
		return t.Sort
	case TokenNumber:
		return t.Number
	}
	return nil
}

// End is the rune offset just past the token.
func (t Token) End() int {
	return t.Pos + runeLen(t.Text)
}

func (t Token) String() string {
	if v := t.Value(); v != nil {
		return fmt.Sprintf("%s(%q=%v)@%d", t.Type, t.Text, v, t.Pos)
	}
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Text, t.Pos)
}

func runeLen(s string) int {
	return len([]rune(s))
}
