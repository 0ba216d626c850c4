package nlq

import "strings"

// DefaultStopWords are dropped from the token stream.
var DefaultStopWords = []string{
	"的", "了", "吗", "呢", "啊", "吧",
	"在", "按", "按照", "根据",
	"查", "查询", "查找", "查出", "搜索", "找", "找出", "找到", "列出", "获取", "看看",
	"给我", "帮我", "请", "一下", "所有", "全部", "数据", "记录", "信息", "结果",
	"统计", "计算", "哪些", "有哪些", "多少", "是多少", "中", "里", "其中", "里面",
	"the", "a", "an", "of", "where", "with", "from", "find", "get", "query", "search",
	"list", "all", "by", "records", "record", "data", "for", "whose", "which", "that",
	"please", "me", "show me", "give me",
}

// Single-rune stop words the dictionary segmenter may cut out of a CJK run.
// Others ("在", "中") only match as whole words, since they occur inside
// ordinary field names.
var segmentingStopWords = wordSet("的", "了", "吗", "呢", "啊", "吧", "查", "找", "按", "请", "在")

// protectedWords are ordinary words that contain a single-rune keyword or
// connector, or that start where a keyword ends ("按年" + "年龄"). Listing
// them keeps them whole under maximum matching.
var protectedWords = []string{
	"年龄", "年级", "年份", "年薪", "月份", "月薪", "天数", "周期",
	"在线", "在职", "在读", "存在", "所在", "所在地", "现在", "正在", "实在",
	"到期", "到达", "到账", "收到", "迟到", "截至", "以至", "甚至",
	"检查", "调查", "审查", "寻找",
	"请求", "申请", "邀请", "按钮", "按键",
	"为了", "因为", "作为", "成为", "认为", "行为",
	"是否",
}

// Index and table indicators ("查用户表", "index users").
var indexIndicators = wordSet("索引", "表", "数据表", "集合", "index", "table", "collection")

// Words allowed between an indicator and the index name.
var demonstratives = wordSet("这个", "那个", "该", "此", "名为", "叫", "the", "this", "named")

// Pagination vocabulary.
var (
	pageWords        = wordSet("第", "page")
	perPageWords     = wordSet("每页", "size", "pagesize", "page_size", "per_page")
	sizeWords        = wordSet("返回", "前", "取", "显示", "展示", "top", "first")
	limitWords       = wordSet("limit")
	offsetWords      = wordSet("offset", "跳过", "skip", "偏移")
	searchAfterWords = wordSet("search_after", "searchafter", "游标", "cursor", "从游标")
	continueWords    = wordSet("继续", "continue", "接着", "下一批", "next")
	countUnits       = wordSet("条", "个", "行", "项", "笔", "页", "rows", "items", "results")
)

// Sort markers ("按年龄排序", "order by age").
var sortMarkers = wordSet("排序", "排列", "order by", "sort by", "sorted by", "order", "sort")

// Projection markers and suffixes ("显示姓名和年龄字段", "select name, age").
var (
	projectionMarkers  = wordSet("返回", "显示", "展示", "只看", "只要", "只显示", "输出", "select", "show", "return")
	projectionSuffixes = wordSet("字段", "列", "fields", "columns")
)

// BETWEEN connectors ("18到30", "18 ~ 30"). "和"/"and" arrive as Logic tokens.
var rangeConnectors = wordSet("到", "至", "~", "-", "to")

// Aggregation parameters.
var (
	intervalWords  = wordSet("间隔", "步长", "interval", "每隔")
	bucketTopWords = wordSet("前", "top")
)

// dateIntervals maps DATE_HISTOGRAM surfaces onto calendar intervals.
var dateIntervals = map[string]string{
	"按分钟": "1m", "每分钟": "1m",
	"按小时": "1h", "每小时": "1h", "hourly": "1h",
	"按天": "1d", "每天": "1d", "daily": "1d",
	"按周": "1w", "每周": "1w", "weekly": "1w",
	"按月": "1M", "每月": "1M", "monthly": "1M",
	"按年": "1y", "每年": "1y", "yearly": "1y",
}

const defaultDateInterval = "1d"

// Time units that may follow a LAST_N count.
var durationUnits = map[string]string{
	"分钟": "minute", "分": "minute", "minute": "minute", "minutes": "minute", "min": "minute", "mins": "minute",
	"小时": "hour", "钟头": "hour", "hour": "hour", "hours": "hour", "h": "hour",
	"天": "day", "日": "day", "day": "day", "days": "day", "d": "day",
	"周": "week", "星期": "week", "礼拜": "week", "week": "week", "weeks": "week", "w": "week",
	"月": "month", "个月": "month", "month": "month", "months": "month",
	"年": "year", "year": "year", "years": "year", "y": "year",
}

// Markers that make a preceding term a time field ("创建时间最近7天").
var timeFieldMarkers = []string{"时间", "日期", "time", "date", "_at", "timestamp"}

// Prefix words only match in front of a digit ("前10条", "第2页").
var prefixWords = []string{"前", "第"}

// unitWords only match right after a digit or Chinese numeral.
var unitWords = []string{
	"条", "个", "行", "项", "笔", "页",
	"分钟", "分", "小时", "钟头", "天", "日", "周", "星期", "礼拜", "月", "个月", "年",
}

type set map[string]struct{}

func wordSet(words ...string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// has matches case-insensitively for ASCII words.
func (s set) has(w string) bool {
	if _, ok := s[w]; ok {
		return true
	}
	_, ok := s[strings.ToLower(w)]
	return ok
}

func (s set) words() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	return out
}

// reservedWords is everything a sub-parser other than the condition parser
// owns. Such tokens are never taken as fields or values.
var reservedWords = func() set {
	out := set{}
	for _, s := range []set{
		pageWords, perPageWords, sizeWords, limitWords, offsetWords, searchAfterWords,
		continueWords, countUnits, sortMarkers, projectionMarkers, projectionSuffixes,
		rangeConnectors, intervalWords, bucketTopWords, indexIndicators,
	} {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}()

func isReserved(t Token) bool {
	return isWord(t) && reservedWords.has(t.Text)
}

// isWord reports whether t is a bare word ("返回", "page_size") that a
// sub-parser may claim as vocabulary.
func isWord(t Token) bool {
	return t.Type == TokenUnknown || t.Type == TokenFieldCandidate
}

// isTimeField reports whether a term looks like a time field name.
func isTimeField(s string) bool {
	l := strings.ToLower(s)
	for _, m := range timeFieldMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// lexiconWords is the sub-parser vocabulary the dictionary segmenter must
// keep whole.
func lexiconWords() []string {
	var out []string
	out = append(out, reservedWords.words()...)
	out = append(out, demonstratives.words()...)
	for w := range dateIntervals {
		out = append(out, w)
	}
	return append(out, protectedWords...)
}
