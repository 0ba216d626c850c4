package nlq

import (
	"strings"

	"golang.org/x/text/width"
)

// normalize folds full-width ASCII variants ("＞＝１８", "ａｇｅ") and the
// ideographic space to their half-width forms. The mapping is rune for
// rune, so rune offsets into the result index the original text.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '　' {
			return ' '
		}
		p := width.LookupRune(r)
		if p.Kind() != width.EastAsianFullwidth {
			return r
		}
		n := p.Narrow()
		if n == 0 || n > 0x7e {
			return r
		}
		return n
	}, s)
}
