// Package es translates intents into Elasticsearch search sources.
package es

import (
	"github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/translate"
)

// rangeBuckets is how many buckets a RANGE aggregation gets from its
// interval: [*, n), [n, 2n), ... [(k-1)n, *).
const rangeBuckets = 5

// Translator builds *elastic.SearchSource values. It holds no state.
type Translator struct{}

var _ translate.Translator[*elastic.SearchSource] = Translator{}

// Translate implements translate.Translator.
func (Translator) Translate(in intent.Intent, ctx translate.Context) (*elastic.SearchSource, error) {
	ctx = ctx.Defaults()
	tgt, err := ctx.Index(in.IndexHint())
	if err != nil {
		return nil, err
	}

	switch v := in.(type) {
	case *intent.Query:
		return query(v, tgt, ctx)
	case *intent.Analytics:
		return analytics(v, tgt, ctx)
	default:
		return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "elasticsearch search cannot express %s", in.Kind())
	}
}

func query(q *intent.Query, tgt translate.Target, ctx translate.Context) (*elastic.SearchSource, error) {
	ss := elastic.NewSearchSource()
	if err := filter(ss, q.Condition, q.DateRange, tgt, ctx); err != nil {
		return nil, err
	}

	for _, s := range q.Sorts {
		ss = ss.SortBy(elastic.NewFieldSort(tgt.TimeField(s.FieldHint, ctx)).Order(s.Order == keyword.SortAsc))
	}

	w := translate.PageWindow(q.Pagination, ctx)
	ss = ss.Size(w.Size)
	if len(w.SearchAfter) > 0 {
		if len(q.Sorts) == 0 {
			ss = ss.SortBy(elastic.NewFieldSort(tgt.TimeField("", ctx)).Desc())
		}
		ss = ss.SearchAfter(w.SearchAfter...)
	} else if w.From > 0 {
		ss = ss.From(w.From)
	}

	if len(q.FieldHints) > 0 {
		fields := make([]string, len(q.FieldHints))
		for i, h := range q.FieldHints {
			fields[i] = tgt.Field(h)
		}
		ss = ss.FetchSourceContext(elastic.NewFetchSourceContext(true).Include(fields...))
	}
	return ss, nil
}

func analytics(a *intent.Analytics, tgt translate.Target, ctx translate.Context) (*elastic.SearchSource, error) {
	ss := elastic.NewSearchSource().Size(0)
	if err := filter(ss, a.Condition, a.DateRange, tgt, ctx); err != nil {
		return nil, err
	}

	var buckets, metrics []*intent.Aggregation
	for _, agg := range a.Aggregations {
		if agg.IsBucket() {
			buckets = append(buckets, agg)
		} else {
			metrics = append(metrics, agg)
		}
	}

	// Metrics attach to the innermost bucket; buckets nest in order.
	subs := map[string]elastic.Aggregation{}
	for _, m := range metrics {
		agg, err := metric(m, tgt)
		if err != nil {
			return nil, err
		}
		if agg == nil {
			ss = ss.TrackTotalHits(true)
			continue
		}
		subs[m.Name] = agg
	}
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		agg, err := bucket(b, tgt, ctx, subs)
		if err != nil {
			return nil, err
		}
		subs = map[string]elastic.Aggregation{b.Name: agg}
	}
	for name, agg := range subs {
		ss = ss.Aggregation(name, agg)
	}
	return ss, nil
}

// filter installs the condition and date range as a bool filter.
func filter(ss *elastic.SearchSource, c *intent.Condition, dr *intent.DateRange, tgt translate.Target, ctx translate.Context) error {
	var qs []elastic.Query
	if c != nil {
		q, err := condition(c, tgt)
		if err != nil {
			return err
		}
		qs = append(qs, q)
	}
	if dr.IsValid() {
		qs = append(qs, dateRange(dr, tgt, ctx))
	}
	if len(qs) > 0 {
		ss.Query(elastic.NewBoolQuery().Filter(qs...))
	}
	return nil
}

func dateRange(dr *intent.DateRange, tgt translate.Target, ctx translate.Context) elastic.Query {
	r := elastic.NewRangeQuery(tgt.TimeField(dr.FieldHint, ctx))
	if dr.From != "" {
		if dr.IncludeFrom {
			r = r.Gte(dr.From)
		} else {
			r = r.Gt(dr.From)
		}
	}
	if dr.To != "" {
		if dr.IncludeTo {
			r = r.Lte(dr.To)
		} else {
			r = r.Lt(dr.To)
		}
	}
	return r
}

func condition(c *intent.Condition, tgt translate.Target) (elastic.Query, error) {
	if c.IsLogic() {
		qs := make([]elastic.Query, 0, len(c.Children))
		for _, child := range c.Children {
			q, err := condition(child, tgt)
			if err != nil {
				return nil, err
			}
			qs = append(qs, q)
		}
		if c.Logic == keyword.LogicOr {
			return elastic.NewBoolQuery().Should(qs...).MinimumNumberShouldMatch(1), nil
		}
		return elastic.NewBoolQuery().Must(qs...), nil
	}

	field := tgt.Field(c.FieldHint)
	ft := tgt.FieldType(c.FieldHint)
	value := translate.Coerce(c.Value, ft)
	values := translate.Values(c.Values, ft)

	switch c.Operator {
	case keyword.OpEQ:
		return elastic.NewTermQuery(field, value), nil
	case keyword.OpNE:
		return elastic.NewBoolQuery().MustNot(elastic.NewTermQuery(field, value)), nil
	case keyword.OpGT:
		return elastic.NewRangeQuery(field).Gt(value), nil
	case keyword.OpGTE:
		return elastic.NewRangeQuery(field).Gte(value), nil
	case keyword.OpLT:
		return elastic.NewRangeQuery(field).Lt(value), nil
	case keyword.OpLTE:
		return elastic.NewRangeQuery(field).Lte(value), nil
	case keyword.OpLike:
		return elastic.NewWildcardQuery(field, translate.LikePattern(value, "*")), nil
	case keyword.OpNotLike:
		return elastic.NewBoolQuery().MustNot(elastic.NewWildcardQuery(field, translate.LikePattern(value, "*"))), nil
	case keyword.OpIn:
		return elastic.NewTermsQuery(field, values...), nil
	case keyword.OpNotIn:
		return elastic.NewBoolQuery().MustNot(elastic.NewTermsQuery(field, values...)), nil
	case keyword.OpBetween:
		if len(values) != 2 {
			return nil, errors.Errorf("between on %s needs two values, got %d", field, len(values))
		}
		return elastic.NewRangeQuery(field).Gte(values[0]).Lte(values[1]), nil
	case keyword.OpIsNull:
		return elastic.NewBoolQuery().MustNot(elastic.NewExistsQuery(field)), nil
	case keyword.OpIsNotNull:
		return elastic.NewExistsQuery(field), nil
	}
	return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "operator %s", c.Operator)
}

// metric returns a nil aggregation for a field-less COUNT, which ES
// answers with the hit total or the bucket doc_count. Every other metric
// needs a field.
func metric(a *intent.Aggregation, tgt translate.Target) (elastic.Aggregation, error) {
	field := tgt.Field(a.FieldHint)
	if field == "" {
		if a.Type == keyword.AggCount {
			return nil, nil
		}
		return nil, errors.Errorf("aggregation %s (%s) has no field", a.Name, a.Type)
	}
	switch a.Type {
	case keyword.AggAvg:
		return elastic.NewAvgAggregation().Field(field), nil
	case keyword.AggSum:
		return elastic.NewSumAggregation().Field(field), nil
	case keyword.AggMin:
		return elastic.NewMinAggregation().Field(field), nil
	case keyword.AggMax:
		return elastic.NewMaxAggregation().Field(field), nil
	case keyword.AggCount:
		return elastic.NewValueCountAggregation().Field(field), nil
	case keyword.AggCardinality:
		return elastic.NewCardinalityAggregation().Field(field), nil
	case keyword.AggPercentiles:
		return elastic.NewPercentilesAggregation().Field(field), nil
	case keyword.AggStats:
		return elastic.NewStatsAggregation().Field(field), nil
	}
	return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "aggregation %s", a.Type)
}

func bucket(a *intent.Aggregation, tgt translate.Target, ctx translate.Context, subs map[string]elastic.Aggregation) (elastic.Aggregation, error) {
	if len(a.Children) > 0 {
		merged := make(map[string]elastic.Aggregation, len(subs)+len(a.Children))
		for name, sub := range subs {
			merged[name] = sub
		}
		for _, child := range a.Children {
			if child.IsBucket() {
				sub, err := bucket(child, tgt, ctx, nil)
				if err != nil {
					return nil, err
				}
				merged[child.Name] = sub
				continue
			}
			sub, err := metric(child, tgt)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				merged[child.Name] = sub
			}
		}
		subs = merged
	}

	switch a.Type {
	case keyword.AggTerms:
		field := tgt.Field(a.Field())
		if field == "" {
			return nil, errors.Errorf("aggregation %s has no group-by field", a.Name)
		}
		agg := elastic.NewTermsAggregation().Field(field)
		if a.Size > 0 {
			agg = agg.Size(a.Size)
		}
		for name, sub := range subs {
			agg = agg.SubAggregation(name, sub)
		}
		return agg, nil

	case keyword.AggDateHistogram:
		agg := elastic.NewDateHistogramAggregation().
			Field(tgt.TimeField(a.FieldHint, ctx)).
			CalendarInterval(a.Interval).
			MinDocCount(0)
		for name, sub := range subs {
			agg = agg.SubAggregation(name, sub)
		}
		return agg, nil

	case keyword.AggHistogram:
		field := tgt.Field(a.Field())
		if field == "" {
			return nil, errors.Errorf("aggregation %s has no field", a.Name)
		}
		agg := elastic.NewHistogramAggregation().Field(field).Interval(interval(a))
		for name, sub := range subs {
			agg = agg.SubAggregation(name, sub)
		}
		return agg, nil

	case keyword.AggRange:
		field := tgt.Field(a.Field())
		if field == "" {
			return nil, errors.Errorf("aggregation %s has no field", a.Name)
		}
		step := interval(a)
		// AddUnboundedFrom(x) is (-inf, x) and AddUnboundedTo(x) is [x, +inf).
		agg := elastic.NewRangeAggregation().Field(field).AddUnboundedFrom(step)
		for k := 1; k < rangeBuckets-1; k++ {
			agg = agg.AddRange(step*float64(k), step*float64(k+1))
		}
		agg = agg.AddUnboundedTo(step * float64(rangeBuckets-1))
		for name, sub := range subs {
			agg = agg.SubAggregation(name, sub)
		}
		return agg, nil
	}
	return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "aggregation %s", a.Type)
}

// interval reads the aggregation interval, defaulting to 10.
func interval(a *intent.Aggregation) float64 {
	if f, err := cast.ToFloat64E(a.Interval); err == nil && f > 0 {
		return f
	}
	return 10
}
