package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/schema"
)

func testEngine() *Engine {
	reg := schema.NewRegistry()
	reg.Register(&schema.IndexSchema{
		Name:    "users",
		Aliases: []string{"用户"},
		Fields: map[string]*schema.FieldMeta{
			"age":  {Type: schema.FieldInt, Aliases: []string{"年龄"}},
			"city": {Type: schema.FieldString, Aliases: []string{"城市"}},
		},
	})
	return New(keyword.Defaults(), reg)
}

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestEngine_ChineseSuffix(t *testing.T) {
	e := testEngine()
	// "年龄大" ends in "大", a prefix of 大于 and 大于等于.
	items := e.Complete("年龄大", -1)
	require.NotEmpty(t, items)
	assert.Contains(t, labels(items), "大于")
	assert.Contains(t, labels(items), "大于等于")
	for _, it := range items {
		if it.Label == "大于" {
			assert.Equal(t, "operator", it.Kind)
			assert.Equal(t, string(keyword.OpGT), it.Detail)
			assert.Equal(t, "于", it.InsertText)
		}
	}
}

func TestEngine_Fields(t *testing.T) {
	e := testEngine()
	items := e.Complete("查询年", -1)
	assert.Contains(t, labels(items), "年龄")

	items = e.Complete("ci", -1)
	require.NotEmpty(t, items)
	assert.Equal(t, "city", items[0].Label)
	assert.Equal(t, "field", items[0].Kind)
	assert.Equal(t, "ty", items[0].InsertText)
}

func TestEngine_Cursor(t *testing.T) {
	e := testEngine()
	// Only the text before the cursor counts.
	items := e.Complete("ci 年龄", 2)
	assert.Contains(t, labels(items), "city")
}

func TestEngine_Meta(t *testing.T) {
	e := testEngine()
	items := e.Complete(":h", -1)
	assert.Equal(t, []string{":help", ":history"}, labels(items))

	items = e.Complete(":t", -1)
	assert.Equal(t, []string{":target", ":tokens"}, labels(items))
}

func TestEngine_NoMatch(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.Complete("", -1))
	assert.Empty(t, e.Complete("年龄 ", -1))
	assert.Empty(t, e.Complete("zzz", -1))
}

func TestEngine_NilRegistry(t *testing.T) {
	e := New(keyword.Defaults(), nil)
	assert.Contains(t, labels(e.Complete("降", -1)), "降序")
}
