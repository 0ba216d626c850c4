package activity

import (
	"context"
	"database/sql"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
)

// Store reads and writes parse history entries.
type Store interface {
	// WriteEntries writes one or more entries.
	WriteEntries(ctx context.Context, entries []Entry) error

	// Recent returns entries newest first. totalCount ignores the cursor.
	Recent(ctx context.Context, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)

	// Search matches query against entry texts and summaries.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []Entry, totalCount int, err error)
}

const table = "parse_activity"

var columns = []string{
	"event_id", "event_type", "occurred_at", "query_text", "kind",
	"index_name", "error_type", "summary", "duration_ms", "payload",
}

// SQLStore implements Store on a SQL database (sqlite by default).
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore creates a store for db. An empty dialect means sqlite.
func NewSQLStore(db *sql.DB, d string) *SQLStore {
	if d == "" {
		d = dialect.SQLite
	}
	return &SQLStore{db: db, dialect: d}
}

// CreateTable creates the activity table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS parse_activity (
			event_id    TEXT PRIMARY KEY,
			event_type  TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			query_text  TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			index_name  TEXT NOT NULL DEFAULT '',
			error_type  TEXT NOT NULL DEFAULT '',
			summary     TEXT NOT NULL DEFAULT '',
			duration_ms REAL NOT NULL DEFAULT 0,
			payload     TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_parse_activity_time ON parse_activity (occurred_at DESC);
	`)
	return errors.Wrap(err, "create activity table")
}

// WriteEntries inserts entries, ignoring duplicates.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ins := entsql.Dialect(s.dialect).Insert(table).Columns(columns...)
	for _, e := range entries {
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		ins.Values(e.EventID, e.EventType, formatCursor(e.OccurredAt), e.Query, e.Kind,
			e.Index, e.ErrorType, e.Summary, e.DurationMS, payload)
	}
	query, args := ins.OnConflict(entsql.DoNothing()).Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return errors.Wrap(err, "write activity")
}

// Recent returns entries matching opts, newest first.
func (s *SQLStore) Recent(ctx context.Context, opts QueryOptions) ([]Entry, string, int, error) {
	var preds []*entsql.Predicate
	if opts.Since != nil {
		preds = append(preds, entsql.GTE("occurred_at", formatCursor(*opts.Since)))
	}
	if opts.Until != nil {
		preds = append(preds, entsql.LTE("occurred_at", formatCursor(*opts.Until)))
	}
	if len(opts.EventTypes) > 0 {
		preds = append(preds, entsql.In("event_type", anys(opts.EventTypes)...))
	}
	if len(opts.Kinds) > 0 {
		preds = append(preds, entsql.In("kind", anys(opts.Kinds)...))
	}
	if opts.FailedOnly {
		preds = append(preds, entsql.NEQ("error_type", ""))
	}

	total, err := s.count(ctx, preds)
	if err != nil {
		return nil, "", 0, err
	}

	if c, ok := parseCursor(opts.Cursor); ok {
		preds = append(preds, entsql.LT("occurred_at", formatCursor(c)))
	}
	limit := opts.limit()
	sel := s.selectEntries(preds).OrderBy(entsql.Desc("occurred_at")).Limit(limit + 1)
	entries, err := s.scan(ctx, sel)
	if err != nil {
		return nil, "", 0, err
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		next = formatCursor(entries[len(entries)-1].OccurredAt)
	}
	return entries, next, total, nil
}

// Search matches query case-insensitively against query texts and summaries.
func (s *SQLStore) Search(ctx context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	pattern := "%" + query + "%"
	preds := []*entsql.Predicate{entsql.Or(entsql.Like("query_text", pattern), entsql.Like("summary", pattern))}
	if opts.EventType != "" {
		preds = append(preds, entsql.EQ("event_type", opts.EventType))
	}
	if opts.Since != nil {
		preds = append(preds, entsql.GTE("occurred_at", formatCursor(*opts.Since)))
	}

	total, err := s.count(ctx, preds)
	if err != nil {
		return nil, 0, err
	}
	sel := s.selectEntries(preds).OrderBy(entsql.Desc("occurred_at")).Limit(opts.limit())
	entries, err := s.scan(ctx, sel)
	return entries, total, err
}

func (s *SQLStore) selectEntries(preds []*entsql.Predicate) *entsql.Selector {
	sel := entsql.Dialect(s.dialect).Select(columns...).From(entsql.Dialect(s.dialect).Table(table))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	return sel
}

func (s *SQLStore) count(ctx context.Context, preds []*entsql.Predicate) (int, error) {
	sel := entsql.Dialect(s.dialect).Select(entsql.Count("*")).From(entsql.Dialect(s.dialect).Table(table))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	query, args := sel.Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count activity")
	}
	return n, nil
}

func (s *SQLStore) scan(ctx context.Context, sel *entsql.Selector) ([]Entry, error) {
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query activity")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			at      string
			payload sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &at, &e.Query, &e.Kind,
			&e.Index, &e.ErrorType, &e.Summary, &e.DurationMS, &payload); err != nil {
			return nil, errors.Wrap(err, "scan activity")
		}
		if t, ok := parseCursor(at); ok {
			e.OccurredAt = t
		}
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "read activity")
}

func anys(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var _ Store = (*SQLStore)(nil)
var _ Store = (*MemoryStore)(nil)
