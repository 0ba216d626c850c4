package schema

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
	"github.com/pkg/errors"
)

//go:embed schema.cue
var fileSchema string

type rawIndex struct {
	Table     string   `json:"table"`
	Aliases   []string `json:"aliases"`
	TimeField string   `json:"time_field"`
}

type rawField struct {
	Type    string   `json:"type"`
	Column  string   `json:"column"`
	Aliases []string `json:"aliases"`
}

// LoadFile reads a CUE or YAML schema file into a new registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema file %s", path)
	}
	return Parse(data, path)
}

// Parse compiles src (YAML when filename ends in .yaml or .yml, CUE
// otherwise), validates it against #Schema and builds a registry. Index
// and field order follow the file.
func Parse(src []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(fileSchema, cue.Filename("index_schema.cue"))
	if err := def.Err(); err != nil {
		return nil, errors.Wrap(err, "compiling index schema")
	}

	var v cue.Value
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		f, err := yaml.Extract(filename, src)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", filename)
		}
		v = ctx.BuildFile(f)
	default:
		v = ctx.CompileBytes(src, cue.Filename(filename))
	}
	if err := v.Err(); err != nil {
		return nil, errors.Wrapf(err, "compiling %s", filename)
	}

	unified := def.LookupPath(cue.ParsePath("#Schema")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.Wrapf(err, "validating %s", filename)
	}

	r := NewRegistry()
	indexes, err := unified.LookupPath(cue.ParsePath("indexes")).Fields()
	if err != nil {
		return nil, errors.Wrapf(err, "reading indexes of %s", filename)
	}
	for indexes.Next() {
		is, err := decodeIndex(indexes.Selector().Unquoted(), indexes.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", filename)
		}
		r.Register(is)
	}
	return r, nil
}

func decodeIndex(name string, v cue.Value) (*IndexSchema, error) {
	var raw rawIndex
	if err := v.Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "index %s", name)
	}
	is := &IndexSchema{
		Name:      name,
		Table:     raw.Table,
		Aliases:   raw.Aliases,
		TimeField: raw.TimeField,
		Fields:    make(map[string]*FieldMeta),
	}

	fields, err := v.LookupPath(cue.ParsePath("fields")).Fields()
	if err != nil {
		return nil, errors.Wrapf(err, "fields of %s", name)
	}
	for fields.Next() {
		fname := fields.Selector().Unquoted()
		var rf rawField
		if err := fields.Value().Decode(&rf); err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", name, fname)
		}
		ft, ok := ParseFieldType(rf.Type)
		if !ok {
			return nil, errors.Errorf("field %s.%s: unknown type %q", name, fname, rf.Type)
		}
		is.Fields[fname] = &FieldMeta{Name: fname, Column: rf.Column, Type: ft, Aliases: rf.Aliases}
		is.FieldOrder = append(is.FieldOrder, fname)
	}
	return is, nil
}
