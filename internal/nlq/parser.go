package nlq

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// Parser turns query text into an Intent. It is immutable after New and
// safe for concurrent use.
type Parser struct {
	keywords  *keyword.Set
	tokenizer *Tokenizer
	suggester *Suggester
	log       *zap.Logger

	index      indexExtractor
	dates      dateRangeExtractor
	conditions conditionParser
	aggs       aggregationParser
	sorts      sortParser
	pages      paginationParser
	projection projectionParser
}

type config struct {
	keywords   *keyword.Set
	segmenter  Segmenter
	strategies []SplitStrategy
	stopWords  []string
	log        *zap.Logger
	now        func() time.Time
}

// Option configures New.
type Option func(*config)

// WithKeywords replaces the default dictionaries.
func WithKeywords(kw *keyword.Set) Option {
	return func(c *config) { c.keywords = kw }
}

// WithSegmenter replaces the built-in dictionary segmenter.
func WithSegmenter(s Segmenter) Option {
	return func(c *config) { c.segmenter = s }
}

// WithStrategies replaces the split-strategy chain.
func WithStrategies(s ...SplitStrategy) Option {
	return func(c *config) { c.strategies = s }
}

// WithStopWords adds stop words to DefaultStopWords.
func WithStopWords(words ...string) Option {
	return func(c *config) { c.stopWords = append(c.stopWords, words...) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock used to resolve relative dates.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New builds a Parser. Without options it uses the default dictionaries
// and a dictionary segmenter over their keywords.
func New(opts ...Option) *Parser {
	c := config{log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(&c)
	}
	if c.keywords == nil {
		c.keywords = keyword.Defaults()
	}
	stopWords := append(append([]string{}, DefaultStopWords...), c.stopWords...)
	if c.segmenter == nil {
		c.segmenter = NewDictSegmenter(Lexicon(c.keywords, stopWords))
	}
	if c.strategies == nil {
		c.strategies = DefaultStrategies(c.keywords)
	}

	suggester := NewSuggester(c.keywords.Operators)
	return &Parser{
		keywords:   c.keywords,
		tokenizer:  NewTokenizer(c.keywords, c.segmenter, c.strategies, stopWords),
		suggester:  suggester,
		log:        c.log.Named("nlq"),
		dates:      dateRangeExtractor{ranges: c.keywords.TimeRanges, now: c.now},
		conditions: conditionParser{suggester: suggester},
	}
}

// Lexicon is the word list the dictionary segmenter keeps whole: every
// keyword, the sub-parser vocabulary and the stop words. Single-rune logic
// words are left out so they stay inside their run for the logic split
// strategy; single-rune stop words are limited to segmentingStopWords.
func Lexicon(kw *keyword.Set, stopWords []string) []string {
	var out []string
	for _, w := range kw.Surfaces() {
		if runeLen(w) == 1 && kw.Logic.IsKeyword(w) {
			continue
		}
		out = append(out, w)
	}
	out = append(out, lexiconWords()...)
	for _, w := range stopWords {
		if runeLen(w) > 1 || segmentingStopWords.has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Keywords returns the dictionaries the parser was built with.
func (p *Parser) Keywords() *keyword.Set { return p.keywords }

// Suggester returns the operator suggester.
func (p *Parser) Suggester() *Suggester { return p.suggester }

// Tokenize exposes the token stream for diagnostics.
func (p *Parser) Tokenize(text string) []Token {
	return p.tokenizer.Tokenize(text)
}

// Parse turns text into a Query or Analytics intent. Every returned error
// is a *ParseError carrying the query text.
func (p *Parser) Parse(text string) (intent.Intent, error) {
	in, err := p.parse(text)
	if err != nil {
		if pe, ok := AsParseError(err); ok {
			err = pe.withQuery(text)
		}
		p.log.Debug("parse failed", zap.String("query", text), zap.Error(err))
		return nil, err
	}
	p.log.Debug("parsed", zap.String("query", text), zap.String("kind", string(in.Kind())))
	return in, nil
}

func (p *Parser) parse(text string) (intent.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newEmptyQuery(text)
	}
	tokens := p.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return nil, newEmptyQuery(text)
	}

	tokens, index := p.index.Extract(tokens)
	tokens, dateRange := p.dates.Extract(tokens)

	aggs := p.aggs.Parse(tokens)
	cond, err := p.conditions.Parse(tokens)
	if err != nil {
		return nil, err
	}
	sorts := p.sorts.Parse(tokens)
	pagination, err := p.pages.Parse(tokens)
	if err != nil {
		return nil, err
	}

	if len(aggs) > 0 {
		return &intent.Analytics{
			Index:        index,
			Condition:    cond,
			Aggregations: aggs,
			DateRange:    dateRange,
		}, nil
	}
	return &intent.Query{
		Index:      index,
		Condition:  cond,
		Sorts:      sorts,
		Pagination: pagination,
		DateRange:  dateRange,
		FieldHints: p.projection.Parse(tokens),
	}, nil
}
