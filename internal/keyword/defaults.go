package keyword

// Built-in surfaces. English entries are lower case; lookups fold case.

var defaultOperators = map[string]Operator{
	"等于": OpEQ, "是": OpEQ, "为": OpEQ, "=": OpEQ, "==": OpEQ,
	"eq": OpEQ, "is": OpEQ, "equals": OpEQ, "equal to": OpEQ,

	"不等于": OpNE, "不是": OpNE, "不为": OpNE, "!=": OpNE, "<>": OpNE, "≠": OpNE,
	"ne": OpNE, "is not": OpNE, "not equal": OpNE, "not equal to": OpNE, "not equals": OpNE,

	"大于": OpGT, "超过": OpGT, "高于": OpGT, "多于": OpGT, "晚于": OpGT, ">": OpGT,
	"gt": OpGT, "greater than": OpGT, "more than": OpGT, "above": OpGT, "after": OpGT,

	"大于等于": OpGTE, "大于或等于": OpGTE, "不小于": OpGTE, "不低于": OpGTE, "不少于": OpGTE,
	"至少": OpGTE, ">=": OpGTE, "≥": OpGTE,
	"gte": OpGTE, "at least": OpGTE, "greater than or equal to": OpGTE,

	"小于": OpLT, "低于": OpLT, "少于": OpLT, "不到": OpLT, "早于": OpLT, "<": OpLT,
	"lt": OpLT, "less than": OpLT, "below": OpLT, "before": OpLT,

	"小于等于": OpLTE, "小于或等于": OpLTE, "不大于": OpLTE, "不超过": OpLTE, "不高于": OpLTE,
	"至多": OpLTE, "最多": OpLTE, "<=": OpLTE, "≤": OpLTE,
	"lte": OpLTE, "at most": OpLTE, "less than or equal to": OpLTE,

	"包含": OpLike, "含有": OpLike, "包括": OpLike, "类似": OpLike, "模糊匹配": OpLike,
	"like": OpLike, "contains": OpLike,

	"不包含": OpNotLike, "不含": OpNotLike, "不包括": OpNotLike,
	"not like": OpNotLike, "not contains": OpNotLike,

	"属于": OpIn, "in": OpIn, "one of": OpIn,

	"不属于": OpNotIn, "不在": OpNotIn, "not in": OpNotIn,

	"介于": OpBetween, "之间": OpBetween, "between": OpBetween,

	"为空": OpIsNull, "是空": OpIsNull, "为null": OpIsNull, "没有值": OpIsNull,
	"is null": OpIsNull, "isnull": OpIsNull,

	"不为空": OpIsNotNull, "非空": OpIsNotNull, "不是空": OpIsNotNull, "有值": OpIsNotNull,
	"is not null": OpIsNotNull, "not null": OpIsNotNull, "notnull": OpIsNotNull,
}

var defaultLogic = map[string]Logic{
	"并且": LogicAnd, "而且": LogicAnd, "同时": LogicAnd, "以及": LogicAnd,
	"且": LogicAnd, "并": LogicAnd, "和": LogicAnd, "与": LogicAnd, "及": LogicAnd,
	"and": LogicAnd, "&&": LogicAnd, "&": LogicAnd,

	"或者": LogicOr, "或是": LogicOr, "还是": LogicOr, "或": LogicOr,
	"or": LogicOr, "||": LogicOr, "|": LogicOr,
}

var defaultAggs = map[string]Agg{
	"平均": AggAvg, "平均值": AggAvg, "平均数": AggAvg, "均值": AggAvg,
	"avg": AggAvg, "average": AggAvg, "mean": AggAvg,

	"总和": AggSum, "求和": AggSum, "总计": AggSum, "合计": AggSum,
	"sum": AggSum, "total": AggSum,

	"最小": AggMin, "最小值": AggMin, "最低": AggMin, "min": AggMin, "minimum": AggMin,

	"最大": AggMax, "最大值": AggMax, "最高": AggMax, "max": AggMax, "maximum": AggMax,

	"数量": AggCount, "个数": AggCount, "计数": AggCount, "总数": AggCount,
	"count": AggCount, "number of": AggCount,

	"去重计数": AggCardinality, "去重数": AggCardinality, "唯一值数量": AggCardinality,
	"distinct": AggCardinality, "cardinality": AggCardinality, "distinct count": AggCardinality,

	"百分位": AggPercentiles, "百分位数": AggPercentiles, "分位数": AggPercentiles,
	"percentile": AggPercentiles, "percentiles": AggPercentiles,

	"统计信息": AggStats, "统计指标": AggStats, "stats": AggStats, "statistics": AggStats,

	"分组": AggTerms, "分类": AggTerms, "group by": AggTerms, "group": AggTerms, "terms": AggTerms,

	"直方图": AggHistogram, "分布": AggHistogram, "分段": AggHistogram, "histogram": AggHistogram,

	"按天": AggDateHistogram, "按小时": AggDateHistogram, "按分钟": AggDateHistogram,
	"按周": AggDateHistogram, "按月": AggDateHistogram, "按年": AggDateHistogram,
	"每天": AggDateHistogram, "每小时": AggDateHistogram, "每分钟": AggDateHistogram,
	"每周": AggDateHistogram, "每月": AggDateHistogram, "每年": AggDateHistogram,
	"趋势": AggDateHistogram, "date histogram": AggDateHistogram,
	"daily": AggDateHistogram, "hourly": AggDateHistogram, "weekly": AggDateHistogram,
	"monthly": AggDateHistogram, "yearly": AggDateHistogram,

	"区间分布": AggRange, "范围分布": AggRange, "range": AggRange, "ranges": AggRange,
}

var defaultSorts = map[string]SortOrder{
	"升序": SortAsc, "正序": SortAsc, "从小到大": SortAsc, "从低到高": SortAsc, "由小到大": SortAsc,
	"最早": SortAsc, "最旧": SortAsc,
	"asc": SortAsc, "ascending": SortAsc, "oldest": SortAsc, "earliest": SortAsc,

	"降序": SortDesc, "倒序": SortDesc, "逆序": SortDesc, "从大到小": SortDesc, "从高到低": SortDesc,
	"由大到小": SortDesc, "最新": SortDesc,
	"desc": SortDesc, "descending": SortDesc, "latest": SortDesc, "newest": SortDesc,
}

var defaultTimeRanges = map[string]TimeRange{
	"今天": TimeToday, "今日": TimeToday, "today": TimeToday,
	"昨天": TimeYesterday, "昨日": TimeYesterday, "yesterday": TimeYesterday,
	"本周": TimeThisWeek, "这周": TimeThisWeek, "这个星期": TimeThisWeek, "this week": TimeThisWeek,
	"上周": TimeLastWeek, "上个星期": TimeLastWeek, "last week": TimeLastWeek,
	"本月": TimeThisMonth, "这个月": TimeThisMonth, "this month": TimeThisMonth,
	"上月": TimeLastMonth, "上个月": TimeLastMonth, "last month": TimeLastMonth,
	"今年": TimeThisYear, "本年": TimeThisYear, "this year": TimeThisYear,
	"去年": TimeLastYear, "上一年": TimeLastYear, "last year": TimeLastYear,
	"最近": TimeLastN, "近": TimeLastN, "过去": TimeLastN,
	"last": TimeLastN, "past": TimeLastN, "recent": TimeLastN,
}
