package service

import "github.com/matthewbaird/nlquery/internal/nlq"

// ErrorInfo is the wire form of an error. Parse errors fill every field;
// other errors only Type "Internal" and Message.
type ErrorInfo struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Position   int    `json:"position"`
	Column     int    `json:"column"`
	Token      string `json:"token,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Detail     string `json:"detail,omitempty"` // multi-line rendering with caret
}

// NewErrorInfo describes err.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	pe, ok := nlq.AsParseError(err)
	if !ok {
		return &ErrorInfo{Type: "Internal", Message: err.Error(), Position: -1, Column: -1}
	}
	return &ErrorInfo{
		Type:       pe.Type.String(),
		Message:    pe.Message,
		Position:   pe.Pos,
		Column:     pe.Column(),
		Token:      pe.Token,
		Suggestion: pe.Suggestion,
		Detail:     pe.Error(),
	}
}
