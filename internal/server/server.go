// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/repl"
	"github.com/matthewbaird/nlquery/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Service  *service.Service
	Gatherer prometheus.Gatherer // served on /metrics; nil uses the default registry
	Logger   *zap.Logger
}

// Router builds the HTTP handler with all routes registered.
func Router(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	a := &api{svc: cfg.Service, log: log}

	r := chi.NewRouter()
	r.Use(recovery(log), requestID, logging(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/nlq", func(r chi.Router) {
		r.Post("/parse", a.parse)
		r.Post("/translate", a.translate)
		r.Post("/batch", a.batch)
		r.Post("/execute", a.execute)
		r.Get("/tokens", a.tokens)
		r.Get("/keywords", a.keywords)
		r.Get("/activity", a.activity)
		r.Get("/schema", a.schema)
	})

	repl.RegisterRoutes(r, cfg.Service, log)
	return r
}

// Run starts the HTTP server and shuts it down when ctx is done.
func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("starting server", zap.String("addr", addr))

	server := &http.Server{
		Addr:              addr,
		Handler:           Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// splitList turns "a,b" into ["a" "b"].
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
