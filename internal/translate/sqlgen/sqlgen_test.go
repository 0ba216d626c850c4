package sqlgen

import (
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/translate"
)

func testContext() translate.Context {
	r := schema.NewRegistry()
	r.Register(&schema.IndexSchema{
		Name:      "users",
		Aliases:   []string{"用户"},
		TimeField: "created_at",
		Fields: map[string]*schema.FieldMeta{
			"age":        {Type: schema.FieldInt, Aliases: []string{"年龄"}},
			"city":       {Type: schema.FieldKeyword, Aliases: []string{"城市"}},
			"name":       {Aliases: []string{"姓名"}},
			"active":     {Type: schema.FieldBool, Aliases: []string{"活跃"}},
			"created_at": {Column: "ctime", Type: schema.FieldTime},
		},
	})
	return translate.Context{Registry: r, DefaultIndex: "users"}
}

func translateSQL(t *testing.T, in intent.Intent) Statement {
	t.Helper()
	st, err := Translator{}.Translate(in, testContext())
	require.NoError(t, err)
	return st
}

func TestTranslate_Select(t *testing.T) {
	st := translateSQL(t, &intent.Query{Condition: intent.Leaf("城市", keyword.OpEQ, "北京")})
	assert.Equal(t, "SELECT * FROM `users` WHERE `city` = ? LIMIT 10", st.SQL)
	assert.Equal(t, []any{"北京"}, st.Args)
}

func TestTranslate_Projection(t *testing.T) {
	st := translateSQL(t, &intent.Query{FieldHints: []string{"姓名", "年龄"}})
	assert.Contains(t, st.SQL, "SELECT `name`, `age` FROM `users`")
}

func TestTranslate_Operators(t *testing.T) {
	tests := []struct {
		name string
		cond *intent.Condition
		sql  string
		args []any
	}{
		{"ne", intent.Leaf("城市", keyword.OpNE, "北京"), "`city` <> ?", []any{"北京"}},
		{"gte", intent.Leaf("年龄", keyword.OpGTE, "18"), "`age` >= ?", []any{int64(18)}},
		{"like", intent.Leaf("姓名", keyword.OpLike, "张"), "`name` LIKE ?", []any{"%张%"}},
		{"not like", intent.Leaf("姓名", keyword.OpNotLike, "张%"), "NOT (`name` LIKE ?)", []any{"张%"}},
		{"in", intent.LeafValues("城市", keyword.OpIn, "北京", "上海"), "`city` IN (?, ?)", []any{"北京", "上海"}},
		{"not in", intent.LeafValues("城市", keyword.OpNotIn, "北京"), "`city` NOT IN (?)", []any{"北京"}},
		{"between", intent.LeafValues("年龄", keyword.OpBetween, int64(18), int64(30)), "`age` >= ? AND `age` <= ?", []any{int64(18), int64(30)}},
		{"is null", intent.Leaf("姓名", keyword.OpIsNull, nil), "`name` IS NULL", nil},
		{"is not null", intent.Leaf("姓名", keyword.OpIsNotNull, nil), "`name` IS NOT NULL", nil},
		// ent folds boolean equality into the bare column.
		{"bool true", intent.Leaf("活跃", keyword.OpEQ, "是"), "WHERE `active` LIMIT", nil},
		{"bool false", intent.Leaf("活跃", keyword.OpEQ, "否"), "WHERE NOT `active` LIMIT", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := translateSQL(t, &intent.Query{Condition: tt.cond})
			assert.Contains(t, st.SQL, tt.sql)
			assert.Equal(t, tt.args, st.Args)
		})
	}
}

func TestTranslate_Logic(t *testing.T) {
	st := translateSQL(t, &intent.Query{Condition: intent.Or(
		intent.Leaf("城市", keyword.OpEQ, "北京"),
		intent.And(
			intent.Leaf("城市", keyword.OpEQ, "上海"),
			intent.Leaf("年龄", keyword.OpGT, int64(18)),
		),
	)})
	assert.Contains(t, st.SQL, " OR ")
	assert.Contains(t, st.SQL, " AND ")
	assert.Equal(t, []any{"北京", "上海", int64(18)}, st.Args)
}

func TestTranslate_SortPageDateRange(t *testing.T) {
	st := translateSQL(t, &intent.Query{
		Sorts:      []intent.Sort{{FieldHint: "年龄", Order: keyword.SortDesc}, {Order: keyword.SortAsc}},
		Pagination: &intent.Pagination{Page: 2, Size: 20},
		DateRange:  &intent.DateRange{From: "2024-03-08T00:00:00Z", IncludeFrom: true},
	})
	assert.Contains(t, st.SQL, "WHERE `ctime` >= ?")
	assert.Contains(t, st.SQL, "ORDER BY `age` DESC, `ctime` ASC")
	assert.Contains(t, st.SQL, "LIMIT 20 OFFSET 20")
	assert.Equal(t, []any{"2024-03-08T00:00:00Z"}, st.Args)
}

func TestTranslate_SearchAfter(t *testing.T) {
	st := translateSQL(t, &intent.Query{
		Sorts:      []intent.Sort{{FieldHint: "年龄", Order: keyword.SortAsc}},
		Pagination: &intent.Pagination{SearchAfter: []any{"30"}, Size: 5},
	})
	assert.Contains(t, st.SQL, "WHERE `age` > ?")
	assert.Contains(t, st.SQL, "LIMIT 5")
	assert.NotContains(t, st.SQL, "OFFSET")
	assert.Equal(t, []any{int64(30)}, st.Args)
}

func TestTranslate_Analytics(t *testing.T) {
	st := translateSQL(t, &intent.Analytics{
		Condition: intent.Leaf("年龄", keyword.OpGT, int64(18)),
		Aggregations: []*intent.Aggregation{
			{Name: "avg_年龄", Type: keyword.AggAvg, FieldHint: "年龄"},
			{Name: "terms_城市", Type: keyword.AggTerms, GroupByFieldHint: "城市"},
		},
	})
	assert.Contains(t, st.SQL, "AVG(`age`)")
	assert.Contains(t, st.SQL, "`city` AS `terms_城市`")
	assert.Contains(t, st.SQL, "WHERE `age` > ?")
	assert.Contains(t, st.SQL, "GROUP BY `terms_城市`")
	assert.Equal(t, []any{int64(18)}, st.Args)
}

func TestTranslate_DateHistogram(t *testing.T) {
	st := translateSQL(t, &intent.Analytics{Aggregations: []*intent.Aggregation{
		{Name: "date_histogram", Type: keyword.AggDateHistogram, Interval: "1M"},
		{Name: "count_all", Type: keyword.AggCount},
	}})
	assert.Contains(t, st.SQL, "strftime('%Y-%m', `ctime`)")
	assert.Contains(t, st.SQL, "COUNT(*)")

	st, err := Translator{Dialect: dialect.MySQL}.Translate(&intent.Analytics{Aggregations: []*intent.Aggregation{
		{Name: "date_histogram", Type: keyword.AggDateHistogram, Interval: "1d"},
	}}, testContext())
	require.NoError(t, err)
	assert.Contains(t, st.SQL, "DATE_FORMAT(`ctime`, '%Y-%m-%d')")
}

func TestTranslate_Histogram(t *testing.T) {
	st := translateSQL(t, &intent.Analytics{Aggregations: []*intent.Aggregation{
		{Name: "histogram_年龄", Type: keyword.AggHistogram, FieldHint: "年龄", Interval: "10"},
	}})
	assert.Contains(t, st.SQL, "CAST(`age` / 10 AS INTEGER) * 10")
}

func TestTranslate_Stats(t *testing.T) {
	st := translateSQL(t, &intent.Analytics{Aggregations: []*intent.Aggregation{
		{Name: "stats_年龄", Type: keyword.AggStats, FieldHint: "年龄"},
		{Name: "cardinality_城市", Type: keyword.AggCardinality, FieldHint: "城市"},
	}})
	for _, w := range []string{"`stats_年龄_min`", "`stats_年龄_max`", "`stats_年龄_avg`", "`stats_年龄_sum`", "`stats_年龄_count`", "COUNT(DISTINCT `city`)"} {
		assert.Contains(t, st.SQL, w)
	}
}

func TestTranslate_UnsupportedAggregations(t *testing.T) {
	for _, agg := range []*intent.Aggregation{
		{Name: "p", Type: keyword.AggPercentiles, FieldHint: "年龄"},
		{Name: "r", Type: keyword.AggRange, FieldHint: "年龄", Interval: "10"},
	} {
		_, err := Translator{}.Translate(&intent.Analytics{Aggregations: []*intent.Aggregation{agg}}, testContext())
		assert.ErrorIs(t, err, translate.ErrUnsupportedIntent, agg.Type)
	}
}

func TestTranslate_Insert(t *testing.T) {
	st := translateSQL(t, &intent.Insert{Index: "用户", Data: map[string]any{"姓名": "张三", "年龄": "20"}})
	assert.Equal(t, "INSERT INTO `users` (`name`, `age`) VALUES (?, ?)", st.SQL)
	assert.Equal(t, []any{"张三", int64(20)}, st.Args)
}

func TestTranslate_Update(t *testing.T) {
	st := translateSQL(t, &intent.Update{
		Condition: intent.Leaf("姓名", keyword.OpEQ, "张三"),
		Updates:   map[string]any{"年龄": int64(21)},
	})
	assert.Equal(t, "UPDATE `users` SET `age` = ? WHERE `name` = ?", st.SQL)
	assert.Equal(t, []any{int64(21), "张三"}, st.Args)

	_, err := Translator{}.Translate(&intent.Update{Updates: map[string]any{"年龄": 1}}, testContext())
	assert.Error(t, err)
}

func TestTranslate_Delete(t *testing.T) {
	st := translateSQL(t, &intent.Delete{Condition: intent.Leaf("年龄", keyword.OpLT, int64(18))})
	assert.Equal(t, "DELETE FROM `users` WHERE `age` < ?", st.SQL)
	assert.Equal(t, []any{int64(18)}, st.Args)

	_, err := Translator{}.Translate(&intent.Delete{}, testContext())
	assert.Error(t, err)
}
