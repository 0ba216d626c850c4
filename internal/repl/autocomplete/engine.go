// Package autocomplete provides completions for natural-language queries.
package autocomplete

import (
	"sort"
	"strings"
	"unicode"

	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/schema"
)

// CompletionItem is a single autocomplete suggestion.
type CompletionItem struct {
	Label      string `json:"label"`
	Kind       string `json:"kind"` // "operator", "logic", "aggregation", "sort", "time_range", "index", "field", "meta"
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insert_text,omitempty"`
}

// maxItems caps the suggestion list.
const maxItems = 20

// maxSuffix is the longest trailing run of runes tried as a prefix. Chinese
// input has no word breaks, so every suffix of the current word is a
// candidate prefix.
const maxSuffix = 8

// MetaCommands lists the REPL meta-commands.
var MetaCommands = []string{":help", ":clear", ":env", ":history", ":keywords", ":target", ":tokens", ":schema"}

type candidate struct {
	word   string
	kind   string
	detail string
}

// Engine completes from the keyword dictionaries and the schema registry.
type Engine struct {
	words []candidate
}

// New creates an engine over kw and reg. reg may be nil.
func New(kw *keyword.Set, reg *schema.Registry) *Engine {
	e := &Engine{}
	addDict(e, kw.Operators)
	addDict(e, kw.Logic)
	addDict(e, kw.Aggs)
	addDict(e, kw.Sorts)
	addDict(e, kw.TimeRanges)
	for _, name := range reg.IndexNames() {
		is := reg.Index(name)
		e.words = append(e.words, candidate{word: is.Name, kind: "index", detail: is.Table})
		for _, a := range is.Aliases {
			e.words = append(e.words, candidate{word: a, kind: "index", detail: is.Name})
		}
		for _, fname := range is.FieldOrder {
			f := is.Fields[fname]
			e.words = append(e.words, candidate{word: f.Name, kind: "field", detail: name + "." + f.Type.String()})
			for _, a := range f.Aliases {
				e.words = append(e.words, candidate{word: a, kind: "field", detail: name + "." + f.Name})
			}
		}
	}
	return e
}

func addDict[T ~string](e *Engine, d *keyword.Dict[T]) {
	for k, v := range d.All() {
		e.words = append(e.words, candidate{word: k, kind: d.Name(), detail: string(v)})
	}
}

// Complete returns suggestions for text with the cursor at rune offset
// cursor.
func (e *Engine) Complete(text string, cursor int) []CompletionItem {
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		cursor = len(runes)
	}
	prefix := runes[:cursor]

	if len(prefix) > 0 && prefix[0] == ':' && !containsSpace(prefix) {
		return completeMeta(string(prefix))
	}

	// The current word runs back to the last space or delimiter.
	start := len(prefix)
	for start > 0 && !isBreak(prefix[start-1]) {
		start--
	}
	word := prefix[start:]
	if len(word) == 0 {
		return nil
	}

	lo := 0
	if len(word) > maxSuffix {
		lo = len(word) - maxSuffix
	}
	for i := lo; i < len(word); i++ {
		if items := e.match(string(word[i:])); len(items) > 0 {
			return items
		}
	}
	return nil
}

func (e *Engine) match(p string) []CompletionItem {
	lp := strings.ToLower(p)
	seen := map[string]bool{}
	var items []CompletionItem
	for _, c := range e.words {
		lw := strings.ToLower(c.word)
		if lw == lp || !strings.HasPrefix(lw, lp) {
			continue
		}
		key := c.kind + "\x00" + c.word
		if seen[key] {
			continue
		}
		seen[key] = true
		insert := c.word
		if len(p) <= len(c.word) {
			insert = c.word[len(p):]
		}
		items = append(items, CompletionItem{
			Label:      c.word,
			Kind:       c.kind,
			Detail:     c.detail,
			InsertText: insert,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if a, b := len([]rune(items[i].Label)), len([]rune(items[j].Label)); a != b {
			return a < b
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func completeMeta(p string) []CompletionItem {
	var items []CompletionItem
	for _, m := range MetaCommands {
		if strings.HasPrefix(m, p) {
			items = append(items, CompletionItem{Label: m, Kind: "meta", InsertText: m[len(p):]})
		}
	}
	return items
}

func isBreak(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == '，' || r == '、'
}

func containsSpace(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
