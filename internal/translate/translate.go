// Package translate turns intents into backend queries. Each backend
// implements Translator for its own query type; this package holds what
// they share: field and index resolution, the pagination window and value
// coercion.
package translate

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/schema"
)

// ErrUnsupportedIntent is returned for intent variants or features a
// backend cannot express.
var ErrUnsupportedIntent = errors.New("unsupported intent")

// Translator converts an intent into a backend query of type T.
type Translator[T any] interface {
	Translate(in intent.Intent, ctx Context) (T, error)
}

// Context carries what a translator needs beyond the intent itself.
type Context struct {
	Registry     *schema.Registry
	DefaultIndex string
	TimeField    string
	DefaultSize  int
	MaxSize      int
}

// Defaults fills zero values.
func (c Context) Defaults() Context {
	if c.TimeField == "" {
		c.TimeField = "created_at"
	}
	if c.DefaultSize <= 0 {
		c.DefaultSize = 10
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 1000
	}
	return c
}

// Target is a resolved index.
type Target struct {
	Name   string
	Table  string
	Schema *schema.IndexSchema
}

// Index resolves an index hint through the registry, falling back to the
// default index. Unknown hints pass through verbatim.
func (c Context) Index(hint string) (Target, error) {
	if hint == "" {
		hint = c.DefaultIndex
	}
	if hint == "" {
		return Target{}, errors.New("no index given and no default index configured")
	}
	if is := c.Registry.Index(hint); is != nil {
		return Target{Name: is.Name, Table: is.Table, Schema: is}, nil
	}
	return Target{Name: hint, Table: hint}, nil
}

// Field resolves a field hint to its column. Unknown hints pass through.
func (t Target) Field(hint string) string {
	if t.Schema != nil {
		if f := t.Schema.Field(hint); f != nil {
			return f.Column
		}
	}
	return hint
}

// FieldType returns the declared type of a hint, FieldString if unknown.
func (t Target) FieldType(hint string) schema.FieldType {
	if t.Schema != nil {
		if f := t.Schema.Field(hint); f != nil {
			return f.Type
		}
	}
	return schema.FieldString
}

// TimeField resolves hint, or the index's time field when hint is empty.
func (t Target) TimeField(hint string, ctx Context) string {
	if hint != "" {
		return t.Field(hint)
	}
	if t.Schema != nil && t.Schema.TimeField != "" {
		return t.Field(t.Schema.TimeField)
	}
	return ctx.TimeField
}

// Window is the resolved result window.
type Window struct {
	From        int
	Size        int
	SearchAfter []any
}

// PageWindow resolves pagination in priority order search_after >
// page/size > offset/limit, capping the size at MaxSize.
func PageWindow(p *intent.Pagination, ctx Context) Window {
	w := Window{Size: ctx.DefaultSize}
	switch p.Mode() {
	case intent.PageSearchAfter:
		w.SearchAfter = p.SearchAfter
		if p.Size > 0 {
			w.Size = p.Size
		}
	case intent.PagePageSize:
		if p.Size > 0 {
			w.Size = p.Size
		}
		if p.Page > 1 {
			w.From = (p.Page - 1) * w.Size
		}
	case intent.PageOffsetLimit:
		if p.Limit > 0 {
			w.Size = p.Limit
		}
		w.From = p.Offset
	}
	if ctx.MaxSize > 0 && w.Size > ctx.MaxSize {
		w.Size = ctx.MaxSize
	}
	return w
}

// Coerce converts a parsed value to the field's declared type. Values that
// do not convert are returned unchanged.
func Coerce(v any, ft schema.FieldType) any {
	switch ft {
	case schema.FieldInt:
		if n, err := cast.ToInt64E(v); err == nil {
			return n
		}
	case schema.FieldFloat:
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	case schema.FieldBool:
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "是", "真", "yes", "y":
				return true
			case "否", "假", "no", "n":
				return false
			}
		}
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	case schema.FieldTime:
		if s, ok := v.(string); ok {
			if t, err := cast.ToTimeE(s); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	case schema.FieldString, schema.FieldKeyword:
		return cast.ToString(v)
	}
	return v
}

// Values coerces every value of a leaf.
func Values(vs []any, ft schema.FieldType) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = Coerce(v, ft)
	}
	return out
}

// LikePattern returns v wrapped for a contains match, unless the caller
// already placed wildcards.
func LikePattern(v any, wildcard string) string {
	s := cast.ToString(v)
	if strings.Contains(s, wildcard) {
		return s
	}
	return wildcard + s + wildcard
}
