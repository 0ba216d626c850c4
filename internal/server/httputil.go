package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/service"
	"github.com/matthewbaird/nlquery/internal/translate"
)

// errorBody is the JSON error response.
type errorBody struct {
	Error  string             `json:"error"`
	Code   string             `json:"code"`
	Detail *service.ErrorInfo `json:"detail,omitempty"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Warn("writeJSON encode error", zap.Error(err))
	}
}

// writeError writes a structured JSON error response.
func (a *api) writeError(w http.ResponseWriter, status int, code, message string) {
	a.writeJSON(w, status, errorBody{Error: message, Code: code})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// serviceErrorToHTTP maps service errors to HTTP responses.
func (a *api) serviceErrorToHTTP(w http.ResponseWriter, err error) {
	if pe, ok := nlq.AsParseError(err); ok {
		a.writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  pe.Message,
			Code:   "PARSE_ERROR",
			Detail: service.NewErrorInfo(err),
		})
		return
	}
	switch {
	case errors.Is(err, translate.ErrUnsupportedIntent):
		a.writeError(w, http.StatusUnprocessableEntity, "UNSUPPORTED_INTENT", err.Error())
	case errors.Is(err, service.ErrUnknownTarget):
		a.writeError(w, http.StatusBadRequest, "UNKNOWN_TARGET", err.Error())
	case errors.Is(err, service.ErrNoExecutor):
		a.writeError(w, http.StatusServiceUnavailable, "NO_DATABASE", err.Error())
	default:
		a.log.Error("internal error", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
