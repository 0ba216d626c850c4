package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

func TestCondition_Shape(t *testing.T) {
	leaf := Leaf("年龄", keyword.OpGT, int64(18))
	assert.False(t, leaf.IsLogic())
	assert.Empty(t, leaf.Logic)

	node := And(leaf, Leaf("城市", keyword.OpEQ, "北京"))
	assert.True(t, node.IsLogic())
	assert.Equal(t, keyword.LogicAnd, node.Logic)
	assert.Len(t, node.Leaves(), 2)

	// A single child collapses to the child.
	assert.Same(t, leaf, Or(leaf))
}

func TestCondition_AllValues(t *testing.T) {
	assert.Equal(t, []any{"a"}, Leaf("f", keyword.OpEQ, "a").AllValues())
	assert.Equal(t, []any{1, 2}, LeafValues("f", keyword.OpIn, 1, 2).AllValues())
	assert.Nil(t, Leaf("f", keyword.OpIsNull, nil).AllValues())
}

func TestPagination_Mode(t *testing.T) {
	var p *Pagination
	assert.Equal(t, PageNone, p.Mode())
	assert.Equal(t, PagePageSize, (&Pagination{Page: 2, Size: 10}).Mode())
	assert.Equal(t, PageOffsetLimit, (&Pagination{Offset: 5, Limit: 10}).Mode())
	assert.Equal(t, PageSearchAfter, (&Pagination{SearchAfter: []any{1}, Size: 10}).Mode())
	assert.Equal(t, PageSearchAfter, (&Pagination{ContinueSearch: true}).Mode())
}

func TestDateRange_IsValid(t *testing.T) {
	var d *DateRange
	assert.False(t, d.IsValid())
	assert.False(t, (&DateRange{IncludeFrom: true}).IsValid())
	assert.True(t, (&DateRange{From: "2024-01-01T00:00:00Z"}).IsValid())
}

func TestAggregation_Kinds(t *testing.T) {
	terms := &Aggregation{Type: keyword.AggTerms, GroupByFieldHint: "城市"}
	assert.True(t, terms.IsBucket())
	assert.Equal(t, "城市", terms.Field())

	avg := &Aggregation{Type: keyword.AggAvg, FieldHint: "年龄"}
	assert.True(t, avg.IsMetric())
	assert.Equal(t, "年龄", avg.Field())
}

func TestCodec_RoundTrip(t *testing.T) {
	in := &Query{
		Index:     "users",
		Condition: And(Leaf("年龄", keyword.OpGT, int64(18)), LeafValues("城市", keyword.OpIn, "北京", "上海")),
		Sorts:     []Sort{{FieldHint: "created_at", Order: keyword.SortDesc}},
		Pagination: &Pagination{
			Page: 1,
			Size: 10,
		},
	}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"query"`)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCodec_Empty(t *testing.T) {
	data, err := Marshal(&Delete{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"delete"}`, string(data))
}

func TestCodec_UnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind":"merge"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge")
}

func TestCodec_Numbers(t *testing.T) {
	in, err := Decode([]byte(`{"kind":"insert","data":{"age":18,"score":9.5,"name":"x"}}`))
	require.NoError(t, err)
	ins := in.(*Insert)
	assert.Equal(t, int64(18), ins.Data["age"])
	assert.Equal(t, 9.5, ins.Data["score"])
	assert.Equal(t, "x", ins.Data["name"])
}

func TestConditionOf(t *testing.T) {
	c := Leaf("a", keyword.OpEQ, 1)
	assert.Same(t, c, ConditionOf(&Delete{Condition: c}))
	assert.Nil(t, ConditionOf(&Insert{}))
}
