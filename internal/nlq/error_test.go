package nlq

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_Format(t *testing.T) {
	e := &ParseError{
		Type:       ErrUnrecognizedOperator,
		Message:    `unrecognized operator "大雨"`,
		Query:      "年龄大雨18",
		Pos:        2,
		Token:      "大雨",
		Suggestion: `did you mean "大于"?`,
	}

	lines := strings.Split(e.Error(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `[UNRECOGNIZED_OPERATOR] unrecognized operator "大雨"`, lines[0])
	assert.Equal(t, "  年龄大雨18", lines[1])
	// "年龄" is four cells wide.
	assert.Equal(t, "      ^", lines[2])
	assert.Equal(t, "  token: 大雨", lines[3])
	assert.Equal(t, `  suggestion: did you mean "大于"?`, lines[4])
	assert.Equal(t, 4, e.Column())
}

func TestParseError_NoPosition(t *testing.T) {
	e := newEmptyQuery("")
	assert.Equal(t, -1, e.Column())
	assert.NotContains(t, e.Error(), "^")
	assert.True(t, strings.HasPrefix(e.Error(), "[EMPTY_QUERY]"))
}

func TestParseError_WithQuery(t *testing.T) {
	e := newSyntaxError(Token{Text: "大于", Pos: 0}, "operator %q has no field", "大于")
	assert.Empty(t, e.Query)

	withText := e.withQuery("大于18")
	assert.Equal(t, "大于18", withText.Query)
	assert.Empty(t, e.Query, "original is not modified")

	// Errors that already carry text pass through.
	assert.Same(t, withText, withText.withQuery("other"))
}

func TestParseError_As(t *testing.T) {
	var err error = errors.Wrap(newTypeMismatch(Token{Text: "abc"}, "GT", "a number"), "parsing")
	pe, ok := AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, ErrTypeMismatch, pe.Type)
	assert.True(t, IsErrorType(err, ErrTypeMismatch))
	assert.False(t, IsErrorType(err, ErrSyntax))
	assert.False(t, IsErrorType(errors.New("x"), ErrSyntax))
}

func TestUnrecognizedOperator_GenericSuggestion(t *testing.T) {
	e := newUnrecognizedOperator("xyz", 0, nil)
	assert.Contains(t, e.Suggestion, "supported operators")
	assert.Contains(t, e.Suggestion, "大于")
}
