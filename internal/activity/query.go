// Package activity records the parse history: one entry per parsed,
// failed or translated query. The service writes entries through the
// event recorder; the server and REPL read them back.
package activity

import (
	"encoding/json"
	"time"
)

// Entry is one recorded parse event.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Query      string          `json:"query"`
	Kind       string          `json:"kind,omitempty"`       // intent kind on success
	Index      string          `json:"index,omitempty"`      // index hint, if any
	ErrorType  string          `json:"error_type,omitempty"` // parse error type on failure
	Summary    string          `json:"summary"`
	DurationMS float64         `json:"duration_ms"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Failed reports whether the entry records a failed parse.
func (e Entry) Failed() bool { return e.ErrorType != "" }

// QueryOptions controls filtering and pagination for Recent.
type QueryOptions struct {
	Since      *time.Time
	Until      *time.Time
	EventTypes []string
	Kinds      []string
	FailedOnly bool
	Limit      int    // default 100, max 500
	Cursor     string // occurred_at of the last entry of the previous page
}

// SearchOptions controls filtering for Search.
type SearchOptions struct {
	EventType string
	Since     *time.Time
	Limit     int // default 20
}

// DefaultQueryOptions returns QueryOptions covering the last day.
func DefaultQueryOptions() QueryOptions {
	since := time.Now().Add(-24 * time.Hour)
	return QueryOptions{Since: &since, Limit: 100}
}

// DefaultSearchOptions returns SearchOptions with sensible defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 20}
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return 20
	}
	return o.Limit
}

// cursorLayout is fixed width so cursors compare as strings.
const cursorLayout = "2006-01-02T15:04:05.000000000Z"

func formatCursor(t time.Time) string { return t.UTC().Format(cursorLayout) }

func parseCursor(s string) (time.Time, bool) {
	t, err := time.Parse(cursorLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t, err == nil
}
