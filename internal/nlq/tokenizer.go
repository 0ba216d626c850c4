package nlq

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matthewbaird/nlquery/internal/keyword"
)

var (
	delimiterPattern = regexp.MustCompile(`^[,，、;；]$`)
	numberPattern    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	identPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*([._][A-Za-z0-9_]+)+$`)
)

// Tokenizer segments text and classifies every word. It holds no state
// that changes during Tokenize, so one instance serves concurrent callers.
type Tokenizer struct {
	keywords   *keyword.Set
	segmenter  Segmenter
	strategies []SplitStrategy
	stopWords  map[string]struct{}
}

// NewTokenizer builds a tokenizer. A nil segmenter falls back to
// WhitespaceSegmenter; nil strategies to DefaultStrategies.
func NewTokenizer(kw *keyword.Set, seg Segmenter, strategies []SplitStrategy, stopWords []string) *Tokenizer {
	if kw == nil {
		kw = keyword.Defaults()
	}
	if seg == nil {
		seg = WhitespaceSegmenter{}
	}
	if strategies == nil {
		strategies = DefaultStrategies(kw)
	}
	t := &Tokenizer{
		keywords:   kw,
		segmenter:  seg,
		strategies: strategies,
		stopWords:  make(map[string]struct{}, len(stopWords)),
	}
	t.AddStopWords(stopWords...)
	return t
}

// AddStopWord registers one stop word. Call only during setup: it is not
// safe concurrently with Tokenize.
func (t *Tokenizer) AddStopWord(w string) {
	t.AddStopWords(w)
}

// AddStopWords registers stop words. Same restriction as AddStopWord.
func (t *Tokenizer) AddStopWords(words ...string) {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		t.stopWords[strings.ToLower(w)] = struct{}{}
	}
}

// IsStopWord reports whether w is a registered stop word.
func (t *Tokenizer) IsStopWord(w string) bool {
	_, ok := t.stopWords[strings.ToLower(w)]
	return ok
}

// Tokenize turns text into tokens. Stop words never appear in the result.
func (t *Tokenizer) Tokenize(text string) []Token {
	words := t.segmenter.Segment(normalize(text))

	var out []Token
	for i := 0; i < len(words); i++ {
		w := words[i]
		if strings.TrimSpace(w.Text) == "" {
			continue
		}

		if i+1 < len(words) {
			if tok, ok := t.coalesce(w, words[i+1]); ok {
				out = append(out, tok)
				i++
				continue
			}
		}

		if s := t.strategyFor(w.Text); s != nil {
			for _, tok := range s.Split(w.Text, w.Offset, t) {
				if tok.Type != TokenStopWord {
					out = append(out, tok)
				}
			}
			continue
		}

		if tok := t.RecognizeToken(w.Text, w.Offset); tok.Type != TokenStopWord {
			out = append(out, tok)
		}
	}

	out = t.mergeUnknowns(out)
	return t.mergeOperators(out)
}

// coalesce joins two lone operator symbols ("<" ">") into a compound
// operator keyword.
func (t *Tokenizer) coalesce(a, b Word) (Token, bool) {
	if !isOperatorSymbol(a.Text) || !isOperatorSymbol(b.Text) {
		return Token{}, false
	}
	op, ok := t.keywords.Operators.FromKeyword(a.Text + b.Text)
	if !ok {
		return Token{}, false
	}
	return Token{Type: TokenOperator, Text: a.Text + b.Text, Pos: a.Offset, Operator: op}, true
}

func isOperatorSymbol(s string) bool {
	r, n := utf8.DecodeRuneInString(s)
	return n == len(s) && strings.ContainsRune(operatorSymbols, r)
}

func (t *Tokenizer) strategyFor(word string) SplitStrategy {
	for _, s := range t.strategies {
		if s.CanHandle(word) {
			return s
		}
	}
	return nil
}

// RecognizeToken classifies one word: keyword, number, stop word,
// delimiter, quoted value, identifier, else Unknown.
func (t *Tokenizer) RecognizeToken(word string, pos int) Token {
	if tok, ok := t.recognizeKeyword(word, pos); ok {
		return tok
	}
	if tok, ok := parseNumber(word, pos); ok {
		return tok
	}
	if t.IsStopWord(word) {
		return Token{Type: TokenStopWord, Text: word, Pos: pos}
	}
	if delimiterPattern.MatchString(word) {
		return Token{Type: TokenDelimiter, Text: word, Pos: pos}
	}
	if v, ok := unquote(word); ok {
		return Token{Type: TokenValue, Text: v, Pos: pos}
	}
	if identPattern.MatchString(word) {
		return Token{Type: TokenFieldCandidate, Text: word, Pos: pos}
	}
	return Token{Type: TokenUnknown, Text: word, Pos: pos}
}

// recognizeKeyword consults only the four token dictionaries.
func (t *Tokenizer) recognizeKeyword(word string, pos int) (Token, bool) {
	if op, ok := t.keywords.Operators.FromKeyword(word); ok {
		return Token{Type: TokenOperator, Text: word, Pos: pos, Operator: op}, true
	}
	if l, ok := t.keywords.Logic.FromKeyword(word); ok {
		return Token{Type: TokenLogic, Text: word, Pos: pos, Logic: l}, true
	}
	if a, ok := t.keywords.Aggs.FromKeyword(word); ok {
		return Token{Type: TokenAggregation, Text: word, Pos: pos, Agg: a}, true
	}
	if s, ok := t.keywords.Sorts.FromKeyword(word); ok {
		return Token{Type: TokenSort, Text: word, Pos: pos, Sort: s}, true
	}
	return Token{}, false
}

func parseNumber(word string, pos int) (Token, bool) {
	if !numberPattern.MatchString(word) {
		return Token{}, false
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return Token{Type: TokenNumber, Text: word, Pos: pos, Number: i}, true
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return Token{Type: TokenNumber, Text: word, Pos: pos, Number: f}, true
	}
	return Token{}, false
}

func unquote(word string) (string, bool) {
	r := []rune(word)
	if len(r) < 2 || !isQuote(r[0]) || r[len(r)-1] != matchingQuote(r[0]) {
		return "", false
	}
	return string(r[1 : len(r)-1]), true
}

// mergeUnknowns repairs keywords the segmenter cut in two: adjacent
// Unknown tokens whose concatenation is a keyword become one token.
// ASCII pairs are also tried space-joined ("greater" "than").
func (t *Tokenizer) mergeUnknowns(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for i := 0; i < len(in); i++ {
		a := in[i]
		if i+1 < len(in) && a.Type == TokenUnknown && in[i+1].Type == TokenUnknown {
			b := in[i+1]
			if tok, ok := t.recognizeKeyword(a.Text+b.Text, a.Pos); ok {
				out = append(out, tok)
				i++
				continue
			}
			if isASCII(a.Text) && isASCII(b.Text) {
				if tok, ok := t.recognizeKeyword(a.Text+" "+b.Text, a.Pos); ok {
					out = append(out, tok)
					i++
					continue
				}
			}
		}
		out = append(out, a)
	}
	return out
}

// mergeOperators joins adjacent operators whose concatenation names a
// different operator than either part ("大于" "等于" -> GTE).
func (t *Tokenizer) mergeOperators(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for i := 0; i < len(in); i++ {
		a := in[i]
		if i+1 < len(in) && a.Type == TokenOperator && in[i+1].Type == TokenOperator {
			b := in[i+1]
			text := a.Text + b.Text
			op, ok := t.keywords.Operators.FromKeyword(text)
			if !ok && isASCII(a.Text) && isASCII(b.Text) {
				text = a.Text + " " + b.Text
				op, ok = t.keywords.Operators.FromKeyword(text)
			}
			if ok && op != a.Operator && op != b.Operator {
				out = append(out, Token{Type: TokenOperator, Text: text, Pos: a.Pos, Operator: op})
				i++
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
