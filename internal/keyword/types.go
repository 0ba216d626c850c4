// Package keyword holds the bilingual keyword dictionaries that map surface
// text ("大于", ">", "greater than") onto canonical enum values.
package keyword

// Operator is a comparison operator.
type Operator string

const (
	OpEQ        Operator = "EQ"
	OpNE        Operator = "NE"
	OpGT        Operator = "GT"
	OpGTE       Operator = "GTE"
	OpLT        Operator = "LT"
	OpLTE       Operator = "LTE"
	OpLike      Operator = "LIKE"
	OpNotLike   Operator = "NOT_LIKE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT_IN"
	OpBetween   Operator = "BETWEEN"
	OpIsNull    Operator = "IS_NULL"
	OpIsNotNull Operator = "IS_NOT_NULL"
)

// Operators lists every operator in declaration order.
var Operators = []Operator{
	OpEQ, OpNE, OpGT, OpGTE, OpLT, OpLTE, OpLike, OpNotLike,
	OpIn, OpNotIn, OpBetween, OpIsNull, OpIsNotNull,
}

// IsRange reports whether the operator compares ordered values.
func (o Operator) IsRange() bool {
	switch o {
	case OpGT, OpGTE, OpLT, OpLTE, OpBetween:
		return true
	}
	return false
}

// IsUnary reports whether the operator takes no value.
func (o Operator) IsUnary() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// IsMulti reports whether the operator takes a value list.
func (o Operator) IsMulti() bool {
	return o == OpIn || o == OpNotIn
}

// Logic joins two conditions.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

var Logics = []Logic{LogicAnd, LogicOr}

// Agg is an aggregation type.
type Agg string

const (
	AggAvg           Agg = "AVG"
	AggSum           Agg = "SUM"
	AggMin           Agg = "MIN"
	AggMax           Agg = "MAX"
	AggCount         Agg = "COUNT"
	AggCardinality   Agg = "CARDINALITY"
	AggPercentiles   Agg = "PERCENTILES"
	AggStats         Agg = "STATS"
	AggTerms         Agg = "TERMS"
	AggHistogram     Agg = "HISTOGRAM"
	AggDateHistogram Agg = "DATE_HISTOGRAM"
	AggRange         Agg = "RANGE"
)

var Aggs = []Agg{
	AggAvg, AggSum, AggMin, AggMax, AggCount, AggCardinality, AggPercentiles, AggStats,
	AggTerms, AggHistogram, AggDateHistogram, AggRange,
}

// IsBucket reports whether the aggregation partitions documents.
func (a Agg) IsBucket() bool {
	switch a {
	case AggTerms, AggHistogram, AggDateHistogram, AggRange:
		return true
	}
	return false
}

// IsMetric reports whether the aggregation computes a value.
func (a Agg) IsMetric() bool {
	return a != "" && !a.IsBucket()
}

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

var SortOrders = []SortOrder{SortAsc, SortDesc}

// TimeRange names a relative period of time.
type TimeRange string

const (
	TimeToday     TimeRange = "TODAY"
	TimeYesterday TimeRange = "YESTERDAY"
	TimeThisWeek  TimeRange = "THIS_WEEK"
	TimeLastWeek  TimeRange = "LAST_WEEK"
	TimeThisMonth TimeRange = "THIS_MONTH"
	TimeLastMonth TimeRange = "LAST_MONTH"
	TimeThisYear  TimeRange = "THIS_YEAR"
	TimeLastYear  TimeRange = "LAST_YEAR"
	// TimeLastN is a rolling window whose length follows the keyword
	// ("最近7天", "last 3 days").
	TimeLastN TimeRange = "LAST_N"
)

var TimeRanges = []TimeRange{
	TimeToday, TimeYesterday, TimeThisWeek, TimeLastWeek,
	TimeThisMonth, TimeLastMonth, TimeThisYear, TimeLastYear, TimeLastN,
}
