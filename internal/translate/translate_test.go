package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/schema"
)

func testContext() Context {
	r := schema.NewRegistry()
	r.Register(&schema.IndexSchema{
		Name:      "users",
		Table:     "t_users",
		Aliases:   []string{"用户"},
		TimeField: "created_at",
		Fields: map[string]*schema.FieldMeta{
			"age":        {Type: schema.FieldInt, Aliases: []string{"年龄"}},
			"created_at": {Column: "ctime", Type: schema.FieldTime, Aliases: []string{"创建时间"}},
		},
	})
	return Context{Registry: r, DefaultIndex: "users"}.Defaults()
}

func TestContext_Defaults(t *testing.T) {
	ctx := Context{}.Defaults()
	assert.Equal(t, "created_at", ctx.TimeField)
	assert.Equal(t, 10, ctx.DefaultSize)
	assert.Equal(t, 1000, ctx.MaxSize)
}

func TestContext_Index(t *testing.T) {
	ctx := testContext()

	tgt, err := ctx.Index("用户")
	require.NoError(t, err)
	assert.Equal(t, "users", tgt.Name)
	assert.Equal(t, "t_users", tgt.Table)

	tgt, err = ctx.Index("")
	require.NoError(t, err)
	assert.Equal(t, "users", tgt.Name)

	tgt, err = ctx.Index("orders")
	require.NoError(t, err)
	assert.Equal(t, Target{Name: "orders", Table: "orders"}, tgt)

	_, err = Context{}.Index("")
	assert.Error(t, err)
}

func TestTarget_Field(t *testing.T) {
	ctx := testContext()
	tgt, _ := ctx.Index("users")

	assert.Equal(t, "age", tgt.Field("年龄"))
	assert.Equal(t, "ctime", tgt.Field("创建时间"))
	assert.Equal(t, "城市", tgt.Field("城市"))
	assert.Equal(t, schema.FieldInt, tgt.FieldType("年龄"))
	assert.Equal(t, schema.FieldString, tgt.FieldType("城市"))

	assert.Equal(t, "ctime", tgt.TimeField("", ctx))
	assert.Equal(t, "age", tgt.TimeField("年龄", ctx))
	assert.Equal(t, "created_at", Target{Name: "x"}.TimeField("", ctx))
}

func TestPageWindow(t *testing.T) {
	ctx := Context{}.Defaults()

	tests := []struct {
		name string
		p    *intent.Pagination
		want Window
	}{
		{"none", nil, Window{Size: 10}},
		{"page", &intent.Pagination{Page: 3, Size: 20}, Window{From: 40, Size: 20}},
		{"page without size", &intent.Pagination{Page: 2}, Window{From: 10, Size: 10}},
		{"offset", &intent.Pagination{Offset: 5, Limit: 15}, Window{From: 5, Size: 15}},
		{"search after", &intent.Pagination{SearchAfter: []any{int64(1)}, ContinueSearch: true}, Window{Size: 10, SearchAfter: []any{int64(1)}}},
		{"capped", &intent.Pagination{Page: 1, Size: 5000}, Window{Size: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.p, ctx))
		})
	}
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(18), Coerce("18", schema.FieldInt))
	assert.Equal(t, 1.5, Coerce("1.5", schema.FieldFloat))
	assert.Equal(t, true, Coerce("是", schema.FieldBool))
	assert.Equal(t, false, Coerce("false", schema.FieldBool))
	assert.Equal(t, "2024-01-02T00:00:00Z", Coerce("2024-01-02", schema.FieldTime))
	assert.Equal(t, "18", Coerce(int64(18), schema.FieldKeyword))
	assert.Equal(t, "abc", Coerce("abc", schema.FieldInt))
	assert.Equal(t, []any{int64(1), int64(2)}, Values([]any{"1", int64(2)}, schema.FieldInt))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%北京%", LikePattern("北京", "%"))
	assert.Equal(t, "北%", LikePattern("北%", "%"))
	assert.Equal(t, "*18*", LikePattern(int64(18), "*"))
}
