package nlq

import (
	"strconv"
	"strings"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// aggregationParser collects aggregations in text order. The result is a
// flat list; translators decide the nesting.
type aggregationParser struct{}

func (aggregationParser) Parse(tokens []Token) []*intent.Aggregation {
	used := make([]bool, len(tokens))
	names := map[string]int{}

	var out []*intent.Aggregation
	for i, tok := range tokens {
		if tok.Type != TokenAggregation {
			continue
		}
		agg := &intent.Aggregation{Type: tok.Agg}

		switch tok.Agg {
		case keyword.AggTerms:
			agg.GroupByFieldHint = takeField(tokens, used, i, -1, +1)
			agg.Size = bucketSize(tokens, used, i)
		case keyword.AggDateHistogram:
			if j := i - 1; j >= 0 && !used[j] && isAggField(tokens[j]) && isTimeField(tokens[j].Text) {
				agg.FieldHint = tokens[j].Text
				used[j] = true
			} else if j := i + 1; j < len(tokens) && !used[j] && isAggField(tokens[j]) && isTimeField(tokens[j].Text) {
				agg.FieldHint = tokens[j].Text
				used[j] = true
			}
			agg.Interval = dateInterval(tok.Text)
		case keyword.AggHistogram, keyword.AggRange:
			agg.FieldHint = takeField(tokens, used, i, -1, +1)
			agg.Interval = interval(tokens, used, i)
		default:
			agg.FieldHint = takeField(tokens, used, i, +1, -1)
		}

		agg.Name = uniqueName(names, aggName(agg))
		out = append(out, agg)
	}
	return out
}

// takeField returns the first free field term found at i+first, then
// i+second, marking it used.
func takeField(tokens []Token, used []bool, i int, first, second int) string {
	for _, d := range []int{first, second} {
		j := i + d
		if j < 0 || j >= len(tokens) || used[j] || !isAggField(tokens[j]) {
			continue
		}
		// A term right after an operator is a value, not a field.
		if j > 0 && tokens[j-1].Type == TokenOperator {
			continue
		}
		used[j] = true
		return tokens[j].Text
	}
	return ""
}

func isAggField(t Token) bool {
	return (t.Type == TokenUnknown || t.Type == TokenFieldCandidate) && !isReserved(t)
}

// bucketSize reads "前5" or "top 5" after a TERMS keyword and its field.
func bucketSize(tokens []Token, used []bool, i int) int {
	for j := i + 1; j+1 < len(tokens) && j <= i+2; j++ {
		if tokens[j].Type == TokenUnknown && bucketTopWords.has(tokens[j].Text) {
			if n, ok := tokenInt(tokens[j+1]); ok && n > 0 {
				used[j], used[j+1] = true, true
				return n
			}
		}
	}
	return 0
}

// interval reads "间隔10" or "interval 10" following a histogram keyword.
func interval(tokens []Token, used []bool, i int) string {
	for j := i + 1; j+1 < len(tokens) && j <= i+3; j++ {
		if tokens[j].Type == TokenUnknown && intervalWords.has(tokens[j].Text) && tokens[j+1].Type == TokenNumber {
			used[j], used[j+1] = true, true
			return tokens[j+1].Text
		}
	}
	return ""
}

func dateInterval(surface string) string {
	if iv, ok := dateIntervals[strings.ToLower(surface)]; ok {
		return iv
	}
	return defaultDateInterval
}

func aggName(a *intent.Aggregation) string {
	field := a.Field()
	if field == "" {
		field = "all"
	}
	return strings.ToLower(string(a.Type)) + "_" + field
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return name + "_" + strconv.Itoa(n)
	}
	return name
}
