package nlq

import (
	"strings"
	"time"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// dateRangeExtractor turns time-range keywords ("今天", "最近7天",
// "last 3 days") into a DateRange and removes the consumed tokens.
type dateRangeExtractor struct {
	ranges *keyword.Dict[keyword.TimeRange]
	now    func() time.Time
}

// Extract returns the remaining tokens and the first complete date range.
// A rolling-window keyword without a count is dropped.
func (e dateRangeExtractor) Extract(tokens []Token) ([]Token, *intent.DateRange) {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type != TokenUnknown {
			continue
		}
		tr, ok := e.ranges.FromKeyword(tok.Text)
		if !ok {
			continue
		}

		start, end := i, i+1
		var dr *intent.DateRange
		if tr == keyword.TimeLastN {
			n, unit, used := rollingWindow(tokens[i+1:])
			if used == 0 {
				tokens = remove(tokens, i, i+1)
				i--
				continue
			}
			end += used
			dr = e.lastN(n, unit)
		} else {
			dr = e.period(tr)
		}

		if i > 0 && tokens[i-1].IsTerm() && isTimeField(tokens[i-1].Text) {
			dr.FieldHint = tokens[i-1].Text
			start = i - 1
		}
		return remove(tokens, start, end), dr
	}
	return tokens, nil
}

// rollingWindow reads "7 天", "一 周", "一周" or "7days" from the head of
// rest, returning how many tokens it used.
func rollingWindow(rest []Token) (int, string, int) {
	if len(rest) == 0 {
		return 0, "", 0
	}
	if n, ok := tokenInt(rest[0]); ok && n > 0 && len(rest) > 1 && rest[1].Type == TokenUnknown {
		if unit, ok := durationUnits[strings.ToLower(rest[1].Text)]; ok {
			return n, unit, 2
		}
	}
	if rest[0].Type == TokenUnknown {
		if n, u, ok := splitCountUnit(rest[0].Text); ok && n > 0 {
			if unit, ok := durationUnits[u]; ok {
				return n, unit, 1
			}
		}
	}
	return 0, "", 0
}

func (e dateRangeExtractor) lastN(n int, unit string) *intent.DateRange {
	now := e.now()
	var from time.Time
	switch unit {
	case "minute":
		from = now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		from = now.Add(-time.Duration(n) * time.Hour)
	case "week":
		from = now.AddDate(0, 0, -7*n)
	case "month":
		from = now.AddDate(0, -n, 0)
	case "year":
		from = now.AddDate(-n, 0, 0)
	default:
		from = now.AddDate(0, 0, -n)
	}
	return &intent.DateRange{
		From:        from.Format(time.RFC3339),
		To:          now.Format(time.RFC3339),
		IncludeFrom: true,
		IncludeTo:   true,
	}
}

// period returns the calendar period as a half-open range.
func (e dateRangeExtractor) period(tr keyword.TimeRange) *intent.DateRange {
	now := e.now()
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	monday := today.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	month := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	year := time.Date(y, 1, 1, 0, 0, 0, 0, loc)

	var from, to time.Time
	switch tr {
	case keyword.TimeToday:
		from, to = today, today.AddDate(0, 0, 1)
	case keyword.TimeYesterday:
		from, to = today.AddDate(0, 0, -1), today
	case keyword.TimeThisWeek:
		from, to = monday, monday.AddDate(0, 0, 7)
	case keyword.TimeLastWeek:
		from, to = monday.AddDate(0, 0, -7), monday
	case keyword.TimeThisMonth:
		from, to = month, month.AddDate(0, 1, 0)
	case keyword.TimeLastMonth:
		from, to = month.AddDate(0, -1, 0), month
	case keyword.TimeThisYear:
		from, to = year, year.AddDate(1, 0, 0)
	case keyword.TimeLastYear:
		from, to = year.AddDate(-1, 0, 0), year
	}
	return &intent.DateRange{
		From:        from.Format(time.RFC3339),
		To:          to.Format(time.RFC3339),
		IncludeFrom: true,
		IncludeTo:   false,
	}
}
