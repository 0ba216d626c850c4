package nlq

import (
	"sort"
	"strings"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

// SplitContext is the tokenizer as seen by split strategies, so fragments
// are recognized by the same cascade as whole words.
type SplitContext interface {
	RecognizeToken(word string, pos int) Token
	IsStopWord(word string) bool
}

// SplitStrategy decomposes one segmented word into several tokens.
type SplitStrategy interface {
	CanHandle(word string) bool
	Split(word string, pos int, ctx SplitContext) []Token
}

// DefaultStrategies returns the chain in priority order:
// delimiter, operator symbol, embedded logic word.
func DefaultStrategies(kw *keyword.Set) []SplitStrategy {
	return []SplitStrategy{
		DelimiterSplitStrategy{},
		OperatorSplitStrategy{},
		NewLogicKeywordSplitStrategy(kw),
	}
}

// recognizeFragment appends the token for a non-empty, non-stop fragment.
func recognizeFragment(out []Token, frag []rune, pos int, ctx SplitContext) []Token {
	if len(frag) == 0 {
		return out
	}
	w := string(frag)
	if ctx.IsStopWord(w) {
		return out
	}
	return append(out, ctx.RecognizeToken(w, pos))
}

// ── Delimiter ────────────────────────────────────────────────────────────────

// DelimiterSplitStrategy splits "北京,上海" into 北京 , 上海.
type DelimiterSplitStrategy struct{}

func (DelimiterSplitStrategy) CanHandle(word string) bool {
	return strings.ContainsAny(word, ",，、;；")
}

func (DelimiterSplitStrategy) Split(word string, pos int, ctx SplitContext) []Token {
	runes := []rune(word)
	var out []Token
	start := 0
	for i, r := range runes {
		if !isDelimiterRune(r) {
			continue
		}
		out = recognizeFragment(out, runes[start:i], pos+start, ctx)
		out = append(out, ctx.RecognizeToken(string(r), pos+i))
		start = i + 1
	}
	return recognizeFragment(out, runes[start:], pos+start, ctx)
}

// ── Operator symbols ─────────────────────────────────────────────────────────

// OperatorSplitStrategy splits "age>=18" into age >= 18, preferring
// two-character compounds over single symbols.
type OperatorSplitStrategy struct{}

func (OperatorSplitStrategy) CanHandle(word string) bool {
	return strings.ContainsAny(word, operatorSymbols)
}

func (OperatorSplitStrategy) Split(word string, pos int, ctx SplitContext) []Token {
	runes := []rune(word)
	var out []Token
	start := 0
	for i := 0; i < len(runes); {
		if !strings.ContainsRune(operatorSymbols, runes[i]) {
			i++
			continue
		}
		out = recognizeFragment(out, runes[start:i], pos+start, ctx)
		if i+1 < len(runes) && strings.ContainsRune(operatorSymbols, runes[i+1]) {
			pair := ctx.RecognizeToken(string(runes[i:i+2]), pos+i)
			if pair.Type == TokenOperator {
				out = append(out, pair)
				i += 2
				start = i
				continue
			}
		}
		out = append(out, ctx.RecognizeToken(string(runes[i]), pos+i))
		i++
		start = i
	}
	return recognizeFragment(out, runes[start:], pos+start, ctx)
}

// ── Embedded logic words ─────────────────────────────────────────────────────

// LogicKeywordSplitStrategy splits a word that contains a logic keyword
// ("北京或上海") when the word as a whole is not a keyword.
type LogicKeywordSplitStrategy struct {
	keywords *keyword.Set
	phrases  []string
}

// NewLogicKeywordSplitStrategy orders the non-ASCII logic surfaces longest
// first. ASCII surfaces are skipped so "band" never splits on "and".
func NewLogicKeywordSplitStrategy(kw *keyword.Set) *LogicKeywordSplitStrategy {
	var phrases []string
	for _, w := range kw.Logic.Keywords() {
		if !isASCII(w) {
			phrases = append(phrases, w)
		}
	}
	sort.SliceStable(phrases, func(i, j int) bool {
		return runeLen(phrases[i]) > runeLen(phrases[j])
	})
	return &LogicKeywordSplitStrategy{keywords: kw, phrases: phrases}
}

func (s *LogicKeywordSplitStrategy) CanHandle(word string) bool {
	if s.keywords.IsKeyword(word) {
		return false
	}
	_, p := s.find(word)
	return p != ""
}

// find returns the rune index of the first phrase contained in word.
func (s *LogicKeywordSplitStrategy) find(word string) (int, string) {
	for _, p := range s.phrases {
		if i := strings.Index(word, p); i >= 0 {
			return runeLen(word[:i]), p
		}
	}
	return -1, ""
}

func (s *LogicKeywordSplitStrategy) Split(word string, pos int, ctx SplitContext) []Token {
	at, phrase := s.find(word)
	if phrase == "" {
		return recognizeFragment(nil, []rune(word), pos, ctx)
	}
	runes := []rune(word)
	n := runeLen(phrase)

	out := s.fragment(nil, runes[:at], pos, ctx)
	out = append(out, ctx.RecognizeToken(phrase, pos+at))
	return s.fragment(out, runes[at+n:], pos+at+n, ctx)
}

func (s *LogicKeywordSplitStrategy) fragment(out []Token, frag []rune, pos int, ctx SplitContext) []Token {
	if len(frag) > 0 && s.CanHandle(string(frag)) {
		return append(out, s.Split(string(frag), pos, ctx)...)
	}
	return recognizeFragment(out, frag, pos, ctx)
}
