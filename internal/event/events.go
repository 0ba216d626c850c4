package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/nlquery/internal/intent"
)

// Event types.
const (
	TypeQueryParsed     = "query_parsed"
	TypeQueryFailed     = "query_failed"
	TypeQueryTranslated = "query_translated"
)

// ParseEvent carries the canonical shape of every parse event.
type ParseEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	Query      string
	Kind       string // intent kind, empty on failure
	Index      string
	ErrorType  string // parse error type on failure
	Target     string // translation target ("es", "sql")
	Duration   time.Duration
	Summary    string
	Payload    json.RawMessage
}

// Failed reports whether the event records a failed parse.
func (e ParseEvent) Failed() bool { return e.ErrorType != "" }

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// clip shortens long query texts in summaries.
func clip(s string) string {
	r := []rune(s)
	if len(r) <= 32 {
		return s
	}
	return string(r[:32]) + "…"
}

// QueryParsedPayload carries event-specific data for QueryParsed.
type QueryParsedPayload struct {
	Query    string          `json:"query"`
	Intent   intent.Intent   `json:"-"`
	Tokens   int             `json:"tokens"`
	Duration time.Duration   `json:"-"`
	Encoded  json.RawMessage `json:"intent,omitempty"`
}

func NewQueryParsed(p QueryParsedPayload) ParseEvent {
	kind, index := "", ""
	if p.Intent != nil {
		kind, index = string(p.Intent.Kind()), p.Intent.IndexHint()
		if p.Encoded == nil {
			p.Encoded, _ = intent.Marshal(p.Intent)
		}
	}
	return ParseEvent{
		ID:         newID(),
		EventType:  TypeQueryParsed,
		OccurredAt: time.Now(),
		Query:      p.Query,
		Kind:       kind,
		Index:      index,
		Duration:   p.Duration,
		Summary:    fmt.Sprintf("Parsed %q as %s", clip(p.Query), kind),
		Payload:    mustJSON(p),
	}
}

// QueryFailedPayload carries event-specific data for QueryFailed.
type QueryFailedPayload struct {
	Query      string        `json:"query"`
	ErrorType  string        `json:"error_type"`
	Position   int           `json:"position"`
	Token      string        `json:"token,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"-"`
}

func NewQueryFailed(p QueryFailedPayload) ParseEvent {
	return ParseEvent{
		ID:         newID(),
		EventType:  TypeQueryFailed,
		OccurredAt: time.Now(),
		Query:      p.Query,
		ErrorType:  p.ErrorType,
		Duration:   p.Duration,
		Summary:    fmt.Sprintf("Failed to parse %q: %s", clip(p.Query), p.ErrorType),
		Payload:    mustJSON(p),
	}
}

// QueryTranslatedPayload carries event-specific data for QueryTranslated.
type QueryTranslatedPayload struct {
	Query    string          `json:"query"`
	Target   string          `json:"target"`
	Kind     string          `json:"kind"`
	Index    string          `json:"index,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Duration time.Duration   `json:"-"`
}

func NewQueryTranslated(p QueryTranslatedPayload) ParseEvent {
	return ParseEvent{
		ID:         newID(),
		EventType:  TypeQueryTranslated,
		OccurredAt: time.Now(),
		Query:      p.Query,
		Kind:       p.Kind,
		Index:      p.Index,
		Target:     p.Target,
		Duration:   p.Duration,
		Summary:    fmt.Sprintf("Translated %q to %s", clip(p.Query), p.Target),
		Payload:    mustJSON(p),
	}
}
