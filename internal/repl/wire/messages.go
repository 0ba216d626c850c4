// Package wire defines the WebSocket protocol for the REPL.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/nlquery/internal/repl/autocomplete"
	"github.com/matthewbaird/nlquery/internal/service"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "execute", "autocomplete", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ExecuteData is the payload for "execute" messages.
type ExecuteData struct {
	Query string `json:"query"`
}

// AutocompleteData is the payload for "autocomplete" messages. Cursor is a
// rune offset.
type AutocompleteData struct {
	Query  string `json:"query"`
	Cursor int    `json:"cursor"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "intent", "translation", "meta", "rows", "done", "error", "completions", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// IntentData carries a parsed intent.
type IntentData struct {
	Intent json.RawMessage `json:"intent"`
}

// MetaData is sent before rows to describe the result.
type MetaData struct {
	Table string `json:"table"`
	Kind  string `json:"kind"`
	SQL   string `json:"sql"`
	Args  []any  `json:"args,omitempty"`
	Total int    `json:"total"`
}

// RowsData carries a batch of result rows.
type RowsData struct {
	Rows []json.RawMessage `json:"rows"`
}

// CountData carries the rows affected by a mutation.
type CountData struct {
	Count int64 `json:"count"`
}

// DoneData signals completion of a request.
type DoneData struct {
	Total   int    `json:"total"`
	Elapsed string `json:"elapsed"`
}

// ErrorData carries an error message. Parse errors fill Detail.
type ErrorData struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Detail  *service.ErrorInfo `json:"detail,omitempty"`
}

// CompletionsData carries autocomplete suggestions.
type CompletionsData struct {
	Items []autocomplete.CompletionItem `json:"items"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target"`
}
