package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/translate"
)

func testRegistry() *schema.Registry {
	r := schema.NewRegistry()
	r.Register(&schema.IndexSchema{
		Name:    "users",
		Aliases: []string{"用户"},
		Fields: map[string]*schema.FieldMeta{
			"name": {Aliases: []string{"姓名"}},
			"age":  {Type: schema.FieldInt, Aliases: []string{"年龄"}},
			"city": {Type: schema.FieldKeyword, Aliases: []string{"城市"}},
		},
		FieldOrder: []string{"name", "age", "city"},
	})
	return r
}

func newTestExecutor(t *testing.T) (*Executor, translate.Context) {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	e := New(db)
	t.Cleanup(func() { e.Close() })

	reg := testRegistry()
	require.NoError(t, e.Bootstrap(context.Background(), reg))
	tctx := translate.Context{Registry: reg, DefaultIndex: "users"}

	for _, u := range []map[string]any{
		{"姓名": "张三", "年龄": "20", "城市": "北京"},
		{"姓名": "李四", "年龄": "35", "城市": "上海"},
		{"姓名": "王五", "年龄": "41", "城市": "北京"},
	} {
		res, err := e.Execute(context.Background(), &intent.Insert{Data: u}, tctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, *res.Count)
	}
	return e, tctx
}

func decodeRows(t *testing.T, rows []json.RawMessage) []map[string]any {
	t.Helper()
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		require.NoError(t, json.Unmarshal(r, &out[i]))
	}
	return out
}

func TestCreateTable(t *testing.T) {
	reg := testRegistry()
	query, args := createTable(reg.Index("users")).Query()
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `users` (`name` TEXT, `age` INTEGER, `city` TEXT)", query)
	assert.Empty(t, args)
}

func TestExecutor_BootstrapIdempotent(t *testing.T) {
	e, _ := newTestExecutor(t)
	require.NoError(t, e.Bootstrap(context.Background(), testRegistry()))

	res, err := e.Execute(context.Background(), &intent.Query{Index: "users"},
		translate.Context{Registry: testRegistry(), DefaultIndex: "users"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
}

func TestExecutor_Query(t *testing.T) {
	e, tctx := newTestExecutor(t)
	res, err := e.Execute(context.Background(), &intent.Query{
		Condition: intent.Leaf("年龄", keyword.OpGT, int64(30)),
		Sorts:     []intent.Sort{{FieldHint: "年龄", Order: keyword.SortDesc}},
	}, tctx)
	require.NoError(t, err)

	rows := decodeRows(t, res.Rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "王五", rows[0]["name"])
	assert.EqualValues(t, 41, rows[0]["age"])
	assert.Equal(t, "李四", rows[1]["name"])
	assert.Equal(t, &ResultMeta{Table: "users", Kind: "query", Total: 2}, res.Meta)
}

func TestExecutor_QueryEmpty(t *testing.T) {
	e, tctx := newTestExecutor(t)
	res, err := e.Execute(context.Background(), &intent.Query{
		Condition: intent.Leaf("城市", keyword.OpEQ, "广州"),
	}, tctx)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.Meta.Total)
}

func TestExecutor_Analytics(t *testing.T) {
	e, tctx := newTestExecutor(t)
	res, err := e.Execute(context.Background(), &intent.Analytics{Aggregations: []*intent.Aggregation{
		{Name: "avg_年龄", Type: keyword.AggAvg, FieldHint: "年龄"},
		{Name: "terms_城市", Type: keyword.AggTerms, GroupByFieldHint: "城市"},
	}}, tctx)
	require.NoError(t, err)

	rows := decodeRows(t, res.Rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "上海", rows[0]["terms_城市"])
	assert.EqualValues(t, 35, rows[0]["avg_年龄"])
	assert.Equal(t, "北京", rows[1]["terms_城市"])
	assert.EqualValues(t, 30.5, rows[1]["avg_年龄"])
}

func TestExecutor_UpdateDelete(t *testing.T) {
	e, tctx := newTestExecutor(t)
	ctx := context.Background()

	res, err := e.Execute(ctx, &intent.Update{
		Condition: intent.Leaf("城市", keyword.OpEQ, "北京"),
		Updates:   map[string]any{"城市": "天津"},
	}, tctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, *res.Count)

	res, err = e.Execute(ctx, &intent.Delete{Condition: intent.Leaf("年龄", keyword.OpLT, int64(30))}, tctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, *res.Count)

	res, err = e.Execute(ctx, &intent.Query{Condition: intent.Leaf("城市", keyword.OpEQ, "天津")}, tctx)
	require.NoError(t, err)
	rows := decodeRows(t, res.Rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "王五", rows[0]["name"])
}

func TestExecutor_TranslateError(t *testing.T) {
	e, tctx := newTestExecutor(t)
	_, err := e.Execute(context.Background(), &intent.Delete{}, tctx)
	assert.Error(t, err)
}
