// Package schema provides the index metadata registry used to resolve
// field hints.
//
// The registry is populated at startup from a schema file (see LoadFile)
// and consumed by the translators (column resolution, value coercion), the
// REPL (:schema, autocomplete) and the server (/api/nlq/schema).
package schema

import (
	"sort"
	"strings"
)

// FieldType classifies how a translator treats a field for comparison
// operators and value coercion.
type FieldType int

const (
	FieldString FieldType = iota
	FieldKeyword
	FieldInt
	FieldFloat
	FieldBool
	FieldTime
)

// String returns the name used in schema files.
func (ft FieldType) String() string {
	switch ft {
	case FieldString:
		return "string"
	case FieldKeyword:
		return "keyword"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	case FieldTime:
		return "time"
	default:
		return "unknown"
	}
}

// Comparable returns true if the field type supports range operators.
func (ft FieldType) Comparable() bool {
	switch ft {
	case FieldInt, FieldFloat, FieldTime:
		return true
	default:
		return false
	}
}

// ParseFieldType maps a schema-file type name to a FieldType.
func ParseFieldType(s string) (FieldType, bool) {
	switch strings.ToLower(s) {
	case "", "string", "text":
		return FieldString, true
	case "keyword":
		return FieldKeyword, true
	case "int", "integer", "long":
		return FieldInt, true
	case "float", "double", "number":
		return FieldFloat, true
	case "bool", "boolean":
		return FieldBool, true
	case "time", "date", "datetime":
		return FieldTime, true
	}
	return FieldString, false
}

// FieldMeta describes a single field of an index.
type FieldMeta struct {
	Name    string    `json:"name"`              // canonical name
	Column  string    `json:"column"`            // column or document field
	Type    FieldType `json:"type"`              // logical type
	Aliases []string  `json:"aliases,omitempty"` // natural-language names ("年龄")
}

// IndexSchema holds the metadata for one index or table.
type IndexSchema struct {
	Name       string                `json:"name"`
	Table      string                `json:"table"`
	Aliases    []string              `json:"aliases,omitempty"`
	TimeField  string                `json:"time_field,omitempty"`
	Fields     map[string]*FieldMeta `json:"fields"`
	FieldOrder []string              `json:"field_order"`

	aliases map[string]string // lower-cased alias -> field name
}

// Field resolves a field hint by name, column or alias.
func (is *IndexSchema) Field(hint string) *FieldMeta {
	if f, ok := is.Fields[hint]; ok {
		return f
	}
	if name, ok := is.aliases[strings.ToLower(hint)]; ok {
		return is.Fields[name]
	}
	return nil
}

// FieldNames returns the canonical field names and their aliases, sorted.
func (is *IndexSchema) FieldNames() []string {
	out := append([]string{}, is.FieldOrder...)
	for _, name := range is.FieldOrder {
		out = append(out, is.Fields[name].Aliases...)
	}
	sort.Strings(out)
	return out
}

func (is *IndexSchema) index() {
	if is.Table == "" {
		is.Table = is.Name
	}
	is.aliases = make(map[string]string)
	for _, name := range is.FieldOrder {
		f := is.Fields[name]
		if f.Column == "" {
			f.Column = name
		}
		is.aliases[strings.ToLower(f.Column)] = name
		for _, a := range f.Aliases {
			is.aliases[strings.ToLower(a)] = name
		}
	}
}

// Registry holds schema metadata for all indexes. It is populated before
// use and is safe for concurrent read access afterwards.
type Registry struct {
	indexes    map[string]*IndexSchema // name -> schema
	indexOrder []string                // registration order
	aliases    map[string]string       // lower-cased alias -> name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		indexes: make(map[string]*IndexSchema),
		aliases: make(map[string]string),
	}
}

// Register adds an index schema to the registry. Fields missing from
// FieldOrder are appended in sorted order.
func (r *Registry) Register(is *IndexSchema) {
	if is.Fields == nil {
		is.Fields = make(map[string]*FieldMeta)
	}
	listed := make(map[string]bool, len(is.FieldOrder))
	for _, name := range is.FieldOrder {
		listed[name] = true
	}
	var rest []string
	for name := range is.Fields {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	is.FieldOrder = append(is.FieldOrder, rest...)
	for name, f := range is.Fields {
		if f.Name == "" {
			f.Name = name
		}
	}
	is.index()

	if _, ok := r.indexes[is.Name]; !ok {
		r.indexOrder = append(r.indexOrder, is.Name)
	}
	r.indexes[is.Name] = is
	r.aliases[strings.ToLower(is.Name)] = is.Name
	r.aliases[strings.ToLower(is.Table)] = is.Name
	for _, a := range is.Aliases {
		r.aliases[strings.ToLower(a)] = is.Name
	}
}

// Index returns the schema for an index name, table or alias, or nil.
func (r *Registry) Index(hint string) *IndexSchema {
	if r == nil {
		return nil
	}
	if is, ok := r.indexes[hint]; ok {
		return is
	}
	return r.indexes[r.aliases[strings.ToLower(hint)]]
}

// IndexNames returns all registered index names in registration order.
func (r *Registry) IndexNames() []string {
	if r == nil {
		return nil
	}
	return r.indexOrder
}

// AllIndexes returns all index schemas.
func (r *Registry) AllIndexes() map[string]*IndexSchema {
	if r == nil {
		return nil
	}
	return r.indexes
}

// Words returns every index and field name and alias, for autocomplete
// and the segmenter lexicon.
func (r *Registry) Words() []string {
	if r == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(w string) {
		if w != "" && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, name := range r.indexOrder {
		is := r.indexes[name]
		add(is.Name)
		for _, a := range is.Aliases {
			add(a)
		}
		for _, f := range is.FieldNames() {
			add(f)
		}
	}
	sort.Strings(out)
	return out
}
