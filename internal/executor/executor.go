// Package executor runs SQL translations of intents and returns the rows
// as JSON.
package executor

import (
	"context"
	stdsql "database/sql"
	"encoding/json"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/translate"
	"github.com/matthewbaird/nlquery/internal/translate/sqlgen"
)

// DefaultDSN is a private in-memory sqlite database.
const DefaultDSN = "file:nlquery?mode=memory&cache=shared"

// Result holds the output of an execution.
type Result struct {
	SQL   string            `json:"sql"`
	Args  []any             `json:"args,omitempty"`
	Rows  []json.RawMessage `json:"rows,omitempty"`
	Count *int64            `json:"count,omitempty"` // rows affected by a mutation
	Meta  *ResultMeta       `json:"meta,omitempty"`
}

// ResultMeta provides metadata about the result.
type ResultMeta struct {
	Table string `json:"table"`
	Kind  string `json:"kind"`
	Total int    `json:"total"`
}

// Executor runs intents on an ent SQL driver.
type Executor struct {
	drv        *sql.Driver
	translator sqlgen.Translator
}

// Open opens a sqlite database. An empty dsn means DefaultDSN.
func Open(dsn string) (*stdsql.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := stdsql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// New creates an executor on db.
func New(db *stdsql.DB) *Executor {
	return &Executor{
		drv:        sql.OpenDB(dialect.SQLite, db),
		translator: sqlgen.Translator{Dialect: dialect.SQLite},
	}
}

// Close closes the underlying database.
func (e *Executor) Close() error { return e.drv.Close() }

// Execute translates in and runs it.
func (e *Executor) Execute(ctx context.Context, in intent.Intent, tctx translate.Context) (*Result, error) {
	st, err := e.translator.Translate(in, tctx)
	if err != nil {
		return nil, err
	}
	tgt, _ := tctx.Defaults().Index(in.IndexHint())
	meta := &ResultMeta{Table: tgt.Table, Kind: string(in.Kind())}

	switch in.(type) {
	case *intent.Query, *intent.Analytics:
		rows, err := e.query(ctx, st)
		if err != nil {
			return nil, err
		}
		meta.Total = len(rows)
		return &Result{SQL: st.SQL, Args: st.Args, Rows: rows, Meta: meta}, nil
	}

	var res stdsql.Result
	if err := e.drv.Exec(ctx, st.SQL, st.Args, &res); err != nil {
		return nil, errors.Wrapf(err, "exec %s", in.Kind())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "rows affected")
	}
	meta.Total = int(n)
	return &Result{SQL: st.SQL, Args: st.Args, Count: &n, Meta: meta}, nil
}

func (e *Executor) query(ctx context.Context, st sqlgen.Statement) ([]json.RawMessage, error) {
	var rows sql.Rows
	if err := e.drv.Query(ctx, st.SQL, st.Args, &rows); err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}
	out := make([]json.RawMessage, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				vals[i] = string(b)
			}
			row[c] = vals[i]
		}
		data, err := json.Marshal(row)
		if err != nil {
			return nil, errors.Wrap(err, "serialization failed")
		}
		out = append(out, data)
	}
	return out, errors.Wrap(rows.Err(), "reading rows")
}

// sqlTypes maps field types onto sqlite column types.
var sqlTypes = map[schema.FieldType]string{
	schema.FieldString:  "TEXT",
	schema.FieldKeyword: "TEXT",
	schema.FieldInt:     "INTEGER",
	schema.FieldFloat:   "REAL",
	schema.FieldBool:    "BOOLEAN",
	schema.FieldTime:    "TEXT",
}

// Bootstrap creates a table for every registered index that lacks one.
func (e *Executor) Bootstrap(ctx context.Context, reg *schema.Registry) error {
	for _, is := range reg.AllIndexes() {
		if len(is.FieldOrder) == 0 {
			continue
		}
		query, args := createTable(is).Query()
		if err := e.drv.Exec(ctx, query, args, nil); err != nil {
			return errors.Wrapf(err, "creating table %s", is.Table)
		}
	}
	return nil
}

// createTable renders CREATE TABLE IF NOT EXISTS for an index.
func createTable(is *schema.IndexSchema) sql.Querier {
	d := sql.Dialect(dialect.SQLite)
	cols := make([]sql.Querier, 0, len(is.FieldOrder))
	for _, name := range is.FieldOrder {
		f := is.Fields[name]
		cols = append(cols, d.Column(f.Column).Type(sqlTypes[f.Type]))
	}
	return d.Expr(func(b *sql.Builder) {
		b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(is.Table).Pad().Wrap(func(b *sql.Builder) {
			b.JoinComma(cols...)
		})
	})
}
