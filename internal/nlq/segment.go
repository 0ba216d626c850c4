package nlq

import (
	"strings"
	"unicode"
)

// Word is one segment of the input. Offset is a rune offset.
type Word struct {
	Text   string
	Offset int
}

// Segmenter breaks text into an ordered sequence of words.
type Segmenter interface {
	Segment(text string) []Word
}

// SegmenterFunc adapts a function to Segmenter.
type SegmenterFunc func(text string) []Word

func (f SegmenterFunc) Segment(text string) []Word { return f(text) }

// WhitespaceSegmenter splits on whitespace only and leaves everything else
// to the split strategies.
type WhitespaceSegmenter struct{}

func (WhitespaceSegmenter) Segment(text string) []Word {
	var out []Word
	start := -1
	runes := []rune(text)
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, Word{Text: string(runes[start:i]), Offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Word{Text: string(runes[start:]), Offset: start})
	}
	return out
}

// operatorSymbols are emitted one rune at a time.
const operatorSymbols = "><=!"

// DictSegmenter is a forward maximum-matching segmenter over a lexicon.
// CJK text between lexicon matches is kept as one word; ASCII runs are
// words; multi-word ASCII lexicon entries match across single spaces.
type DictSegmenter struct {
	cjk     map[string]struct{}
	phrases map[string]struct{}
	units   map[string]struct{}
	prefix  map[string]struct{}
	guard   map[string]struct{}
	maxLen  int
	maxWord int
}

// NewDictSegmenter builds a segmenter over words. Entries made only of
// ASCII letters and spaces become phrases; other entries are matched
// greedily inside CJK text.
func NewDictSegmenter(words []string) *DictSegmenter {
	d := &DictSegmenter{
		cjk:     make(map[string]struct{}),
		phrases: make(map[string]struct{}),
		units:   make(map[string]struct{}),
		prefix:  make(map[string]struct{}),
		guard:   make(map[string]struct{}),
	}
	for _, w := range protectedWords {
		d.guard[w] = struct{}{}
	}
	for _, w := range unitWords {
		d.units[w] = struct{}{}
	}
	for _, w := range prefixWords {
		d.prefix[w] = struct{}{}
	}
	d.AddWords(words...)
	d.AddWords(unitWords...)
	d.AddWords(prefixWords...)
	d.AddWords(protectedWords...)
	return d
}

// AddWords extends the lexicon. Not safe for use concurrently with Segment.
func (d *DictSegmenter) AddWords(words ...string) {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if isASCII(w) {
			if n := len(strings.Fields(w)); n > 1 {
				d.phrases[strings.ToLower(strings.Join(strings.Fields(w), " "))] = struct{}{}
				if n > d.maxWord {
					d.maxWord = n
				}
			}
			continue
		}
		d.cjk[w] = struct{}{}
		if n := runeLen(w); n > d.maxLen {
			d.maxLen = n
		}
	}
}

// Segment implements Segmenter.
func (d *DictSegmenter) Segment(text string) []Word {
	s := &segState{runes: []rune(text), pending: -1}
	for s.i < len(s.runes) {
		r := s.runes[s.i]
		switch {
		case unicode.IsSpace(r):
			s.flush()
			s.i++
		case isQuote(r):
			if end := closingQuote(s.runes, s.i); end > 0 {
				s.flush()
				s.emit(s.i, end+1)
				s.i = end + 1
				continue
			}
			s.pend()
		case strings.ContainsRune(operatorSymbols, r):
			s.flush()
			s.emit(s.i, s.i+1)
			s.i++
		case r == '&' || r == '|':
			s.flush()
			j := s.i
			for j < len(s.runes) && s.runes[j] == r {
				j++
			}
			s.emit(s.i, j)
			s.i = j
		case isDelimiterRune(r) || r == '~':
			s.flush()
			s.emit(s.i, s.i+1)
			s.i++
		case isWordRune(r):
			s.flush()
			d.asciiRun(s)
		default:
			if n := d.match(s); n > 0 {
				s.flush()
				s.emit(s.i, s.i+n)
				s.i += n
				continue
			}
			s.pend()
		}
	}
	s.flush()
	return s.out
}

// asciiRun consumes letters, digits and identifier punctuation, extending
// to a lexicon phrase when the following words complete one.
func (d *DictSegmenter) asciiRun(s *segState) {
	start := s.i
	end := scanWord(s.runes, start)
	if d.maxWord > 1 && isLetters(s.runes[start:end]) {
		if pend := d.phrase(s.runes, start, end); pend > end {
			end = pend
		}
	}
	s.emit(start, end)
	s.i = end
	s.lastDigit = unicode.IsDigit(s.runes[end-1])
}

// phrase returns the end of the longest lexicon phrase starting with the
// word at [start,end), or end when none matches.
func (d *DictSegmenter) phrase(runes []rune, start, end int) int {
	ends := []int{end}
	j := end
	for len(ends) < d.maxWord {
		if j+1 >= len(runes) || runes[j] != ' ' || !isASCIILetter(runes[j+1]) {
			break
		}
		k := scanWord(runes, j+1)
		if !isLetters(runes[j+1 : k]) {
			break
		}
		ends = append(ends, k)
		j = k
	}
	for n := len(ends) - 1; n > 0; n-- {
		cand := strings.ToLower(string(runes[start:ends[n]]))
		if _, ok := d.phrases[cand]; ok {
			return ends[n]
		}
	}
	return end
}

// match returns the length of the longest lexicon entry at s.i, or 0.
func (d *DictSegmenter) match(s *segState) int {
	longest := d.maxLen
	if rest := len(s.runes) - s.i; rest < longest {
		longest = rest
	}
	for n := longest; n > 0; n-- {
		w := string(s.runes[s.i : s.i+n])
		if _, ok := d.cjk[w]; !ok {
			continue
		}
		if _, ok := d.units[w]; ok && !s.afterNumber() {
			continue
		}
		if _, ok := d.prefix[w]; ok && !beforeDigit(s.runes, s.i+n) {
			continue
		}
		return d.shorten(s.runes, s.i, n)
	}
	return 0
}

// shorten backs off to a shorter lexicon entry when the match would cut
// into a protected word: "按年龄" is 按 年龄, not 按年 龄.
func (d *DictSegmenter) shorten(runes []rune, i, n int) int {
	for k := 1; k < n; k++ {
		if _, ok := d.cjk[string(runes[i:i+k])]; !ok {
			continue
		}
		for m := n - k + 1; m <= d.maxLen && i+k+m <= len(runes); m++ {
			if _, ok := d.guard[string(runes[i+k:i+k+m])]; ok {
				return k
			}
		}
	}
	return n
}

type segState struct {
	runes     []rune
	i         int
	pending   int
	lastDigit bool
	out       []Word
}

func (s *segState) emit(from, to int) {
	s.out = append(s.out, Word{Text: string(s.runes[from:to]), Offset: from})
	s.lastDigit = false
}

func (s *segState) pend() {
	if s.pending < 0 {
		s.pending = s.i
	}
	s.i++
}

func (s *segState) flush() {
	if s.pending < 0 {
		return
	}
	s.out = append(s.out, Word{Text: string(s.runes[s.pending:s.i]), Offset: s.pending})
	s.pending = -1
	s.lastDigit = false
}

// afterNumber reports whether a unit may start at s.i: right after a
// digit run, or right after a Chinese numeral inside the pending run.
func (s *segState) afterNumber() bool {
	if s.pending < 0 {
		return s.lastDigit
	}
	return s.i > 0 && isChineseNumeral(s.runes[s.i-1])
}

func scanWord(runes []rune, i int) int {
	for i < len(runes) && isWordRune(runes[i]) {
		i++
	}
	return i
}

func beforeDigit(runes []rune, i int) bool {
	return i < len(runes) && (isASCIIDigit(runes[i]) || isChineseNumeral(runes[i]))
}

func closingQuote(runes []rune, open int) int {
	want := matchingQuote(runes[open])
	for j := open + 1; j < len(runes); j++ {
		if runes[j] == want {
			return j
		}
	}
	return -1
}

func isWordRune(r rune) bool {
	return isASCIILetter(r) || isASCIIDigit(r) || strings.ContainsRune("_.-:@/+", r)
}

func isASCIILetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isASCIIDigit(r rune) bool  { return r >= '0' && r <= '9' }

func isLetters(rs []rune) bool {
	for _, r := range rs {
		if !isASCIILetter(r) {
			return false
		}
	}
	return len(rs) > 0
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isChineseNumeral(r rune) bool {
	return strings.ContainsRune("零一二两三四五六七八九十百", r)
}

func isDelimiterRune(r rune) bool {
	return strings.ContainsRune(",，、;；", r)
}

func isQuote(r rune) bool {
	return matchingQuote(r) != 0
}

func matchingQuote(r rune) rune {
	switch r {
	case '"':
		return '"'
	case '\'':
		return '\''
	case '“':
		return '”'
	case '‘':
		return '’'
	case '「':
		return '」'
	case '《':
		return '》'
	}
	return 0
}
