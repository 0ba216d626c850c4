package nlq

import (
	"regexp"
	"strconv"
	"strings"
)

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseChineseNumber reads numerals below one thousand ("七", "十二",
// "二十", "一百零五").
func parseChineseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total, digit := 0, -1
	for _, r := range s {
		switch r {
		case '十':
			if digit < 0 {
				digit = 1
			}
			total += digit * 10
			digit = -1
		case '百':
			if digit < 0 {
				return 0, false
			}
			total += digit * 100
			digit = -1
		default:
			d, ok := chineseDigits[r]
			if !ok {
				return 0, false
			}
			digit = d
		}
	}
	if digit > 0 {
		total += digit
	}
	return total, total > 0 || strings.ContainsRune(s, '零')
}

// tokenInt reads a positive count from a Number token or a Chinese numeral.
func tokenInt(t Token) (int, bool) {
	switch t.Type {
	case TokenNumber:
		i, ok := t.Number.(int64)
		return int(i), ok
	case TokenUnknown:
		return parseChineseNumber(t.Text)
	}
	return 0, false
}

var countUnitPattern = regexp.MustCompile(`^(\d+)([A-Za-z]+)$`)

// splitCountUnit reads words like "7days" or "一周" where the count and
// the unit arrived as one word.
func splitCountUnit(s string) (int, string, bool) {
	if m := countUnitPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, strings.ToLower(m[2]), err == nil
	}
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if _, ok := durationUnits[string(runes[i:])]; !ok {
			continue
		}
		if n, ok := parseChineseNumber(string(runes[:i])); ok {
			return n, string(runes[i:]), true
		}
	}
	return 0, "", false
}
