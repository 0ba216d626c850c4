package keyword

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// englishWord matches input eligible for the case-insensitive retry.
// Multi-word phrases ("greater than") are English too.
var englishWord = regexp.MustCompile(`^[a-zA-Z_]+( [a-zA-Z_]+)*$`)

// Dict maps surface keywords onto one enum type. It is immutable after
// construction and safe for concurrent reads.
type Dict[T ~string] struct {
	name    string
	entries map[string]T
}

// newDict seeds the dictionary with defaults and merges overrides on top.
// Override values naming an unknown enum are logged and dropped. English
// override keys are stored lower-case, like the defaults.
func newDict[T ~string](name string, defaults map[string]T, valid []T, overrides map[string]string, log *zap.Logger) *Dict[T] {
	d := &Dict[T]{name: name, entries: make(map[string]T, len(defaults)+len(overrides))}
	for k, v := range defaults {
		d.entries[k] = v
	}

	byName := make(map[string]T, len(valid))
	for _, v := range valid {
		byName[string(v)] = v
	}

	// Sorted so repeated construction logs in a stable order.
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := overrides[k]
		v, ok := byName[strings.ToUpper(strings.TrimSpace(raw))]
		if !ok || strings.TrimSpace(k) == "" {
			log.Warn("ignoring keyword override",
				zap.String("dictionary", name),
				zap.String("keyword", k),
				zap.String("value", raw))
			continue
		}
		key := strings.TrimSpace(k)
		if englishWord.MatchString(key) {
			key = strings.ToLower(key)
		}
		d.entries[key] = v
	}
	return d
}

// Name is the dictionary's label ("operator", "logic", ...).
func (d *Dict[T]) Name() string { return d.name }

// FromKeyword resolves a surface keyword. English input falls back to a
// lower-case lookup; other scripts never case-fold.
func (d *Dict[T]) FromKeyword(s string) (T, bool) {
	if v, ok := d.entries[s]; ok {
		return v, true
	}
	if englishWord.MatchString(s) {
		v, ok := d.entries[strings.ToLower(s)]
		return v, ok
	}
	var zero T
	return zero, false
}

// IsKeyword reports whether s resolves to an enum value.
func (d *Dict[T]) IsKeyword(s string) bool {
	_, ok := d.FromKeyword(s)
	return ok
}

// All returns a snapshot of every keyword mapping.
func (d *Dict[T]) All() map[string]T {
	out := make(map[string]T, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}

// Keywords returns all surface keywords sorted.
func (d *Dict[T]) Keywords() []string {
	out := make([]string, 0, len(d.entries))
	for k := range d.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KeywordsFor returns the surfaces that resolve to v, sorted.
func (d *Dict[T]) KeywordsFor(v T) []string {
	var out []string
	for k, e := range d.entries {
		if e == v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Len is the number of keywords.
func (d *Dict[T]) Len() int { return len(d.entries) }
