package nlq

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
)

// ErrorType classifies parse failures. Callers switch on it rather than on
// message text.
type ErrorType int

const (
	ErrMissingValue ErrorType = iota + 1
	ErrMissingOperator
	ErrUnrecognizedOperator
	ErrEmptyQuery
	ErrTypeMismatch
	ErrSyntax
)

func (t ErrorType) String() string {
	switch t {
	case ErrMissingValue:
		return "MISSING_VALUE"
	case ErrMissingOperator:
		return "MISSING_OPERATOR"
	case ErrUnrecognizedOperator:
		return "UNRECOGNIZED_OPERATOR"
	case ErrEmptyQuery:
		return "EMPTY_QUERY"
	case ErrTypeMismatch:
		return "TYPE_MISMATCH"
	case ErrSyntax:
		return "SYNTAX_ERROR"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// ParseError is the only error Parse returns. Pos is a rune offset into
// Query, or -1 when unknown.
type ParseError struct {
	Type       ErrorType
	Message    string
	Query      string
	Pos        int
	Token      string
	Suggestion string
}

// Error renders the type label, the query with a caret under the failing
// column, the offending token and the suggestion, one per line.
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if e.Query != "" {
		fmt.Fprintf(&b, "\n  %s", e.Query)
		if col := e.Column(); col >= 0 {
			fmt.Fprintf(&b, "\n  %s^", strings.Repeat(" ", col))
		}
	}
	if e.Token != "" {
		fmt.Fprintf(&b, "\n  token: %s", e.Token)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// Column is the display column of Pos in Query, counting CJK runes as two
// cells, or -1 when there is no position.
func (e *ParseError) Column() int {
	if e.Pos < 0 || e.Query == "" {
		return -1
	}
	runes := []rune(e.Query)
	if e.Pos > len(runes) {
		return -1
	}
	return runewidth.StringWidth(string(runes[:e.Pos]))
}

// withQuery returns a copy of e carrying the query text. Errors that
// already have one are returned unchanged.
func (e *ParseError) withQuery(q string) *ParseError {
	if e.Query != "" {
		return e
	}
	cp := *e
	cp.Query = q
	return &cp
}

// AsParseError unwraps err to a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsErrorType reports whether err is a ParseError of type t.
func IsErrorType(err error, t ErrorType) bool {
	pe, ok := AsParseError(err)
	return ok && pe.Type == t
}

// ── Factories ────────────────────────────────────────────────────────────────

func newEmptyQuery(query string) *ParseError {
	return &ParseError{
		Type:       ErrEmptyQuery,
		Message:    "query is empty",
		Query:      query,
		Pos:        -1,
		Suggestion: `try something like "年龄大于18" or "age > 18"`,
	}
}

func newMissingValue(op Token, field string) *ParseError {
	return &ParseError{
		Type:       ErrMissingValue,
		Message:    fmt.Sprintf("operator %q on %q has no value", op.Text, field),
		Pos:        op.End(),
		Token:      op.Text,
		Suggestion: fmt.Sprintf("add a value after %q, e.g. %s%s18", op.Text, field, op.Text),
	}
}

func newMissingOperator(field, value Token) *ParseError {
	return &ParseError{
		Type:       ErrMissingOperator,
		Message:    fmt.Sprintf("no operator between %q and %q", field.Text, value.Text),
		Pos:        value.Pos,
		Token:      value.Text,
		Suggestion: fmt.Sprintf("insert an operator, e.g. %s等于%s or %s大于%s", field.Text, value.Text, field.Text, value.Text),
	}
}

func newUnrecognizedOperator(word string, pos int, similar []string) *ParseError {
	e := &ParseError{
		Type:    ErrUnrecognizedOperator,
		Message: fmt.Sprintf("unrecognized operator %q", word),
		Pos:     pos,
		Token:   word,
	}
	if len(similar) > 0 {
		quoted := make([]string, len(similar))
		for i, s := range similar {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		e.Suggestion = "did you mean " + strings.Join(quoted, ", ") + "?"
	} else {
		e.Suggestion = "supported operators: " + strings.Join(supportedOperators, ", ")
	}
	return e
}

var supportedOperators = []string{
	"=", "!=", ">", ">=", "<", "<=", "等于", "不等于", "大于", "大于等于", "小于", "小于等于",
	"包含", "不包含", "属于", "不属于", "介于", "为空", "不为空",
}

func newTypeMismatch(tok Token, op, expected string) *ParseError {
	return &ParseError{
		Type:    ErrTypeMismatch,
		Message: fmt.Sprintf("%s expects %s, got %q", op, expected, tok.Text),
		Pos:     tok.Pos,
		Token:   tok.Text,
	}
}

func newSyntaxError(tok Token, format string, args ...any) *ParseError {
	return &ParseError{
		Type:    ErrSyntax,
		Message: fmt.Sprintf(format, args...),
		Pos:     tok.Pos,
		Token:   tok.Text,
	}
}
