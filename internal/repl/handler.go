// Package repl provides the WebSocket-based REPL for natural-language
// queries.
package repl

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/repl/autocomplete"
	"github.com/matthewbaird/nlquery/internal/repl/meta"
	"github.com/matthewbaird/nlquery/internal/repl/session"
	"github.com/matthewbaird/nlquery/internal/repl/wire"
	"github.com/matthewbaird/nlquery/internal/service"
)

// RegisterRoutes registers REPL HTTP and WebSocket routes on the given
// router and returns the session manager it created.
func RegisterRoutes(r chi.Router, svc *service.Service, log *zap.Logger) *session.Manager {
	// 30 min idle, 24 hr max
	sessions := session.NewManager(24*time.Hour, 30*time.Minute)

	ac := autocomplete.New(svc.Keywords(), svc.Registry())
	metaHandler := meta.New(svc)
	wsHandler := wire.NewHandler(sessions, svc, ac, metaHandler, log)

	r.Route("/api/repl", func(r chi.Router) {
		r.Get("/ws", wsHandler.ServeHTTP)

		// Schema endpoint (REST, for inspector/tooling)
		r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Registry().AllIndexes())
		})

		// Session create endpoint (REST alternative to WebSocket)
		r.Post("/session", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, sessions.Create())
		})

		r.Get("/complete", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			cursor := -1
			if c := q.Get("cursor"); c != "" {
				cursor = cast.ToInt(c)
			}
			writeJSON(w, wire.CompletionsData{Items: ac.Complete(q.Get("q"), cursor)})
		})
	})
	return sessions
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
