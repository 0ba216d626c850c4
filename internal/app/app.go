// Package app wires the parser, service, stores, event bus and executor
// from a Config. The CLI commands and the server share it.
package app

import (
	"context"
	stdsql "database/sql"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/activity"
	"github.com/matthewbaird/nlquery/internal/config"
	"github.com/matthewbaird/nlquery/internal/event"
	"github.com/matthewbaird/nlquery/internal/eventbus"
	"github.com/matthewbaird/nlquery/internal/executor"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/service"
	"github.com/matthewbaird/nlquery/internal/translate"
)

// eventBuffer is the event bus channel size.
const eventBuffer = 1024

// Options selects the optional parts.
type Options struct {
	Database bool // open the database: executor and SQL activity store
	Events   bool // record activity and run the event bus
}

// App holds the wired components.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Parser   *nlq.Parser
	Schema   *schema.Registry
	Service  *service.Service
	Metrics  *prometheus.Registry
	bus      *eventbus.Bus
	executor *executor.Executor
}

// New builds an App. ctx bounds the event bus.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, Metrics: prometheus.NewRegistry()}
	a.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var err error
	if a.Schema, err = loadSchema(cfg.Schema.File); err != nil {
		return nil, err
	}
	if a.Parser, err = NewParser(cfg.Parser, a.Schema, log); err != nil {
		return nil, err
	}

	svcOpts := []service.Option{service.WithLogger(log), service.WithRegisterer(a.Metrics)}

	var db *stdsql.DB
	if opts.Database {
		if db, err = executor.Open(cfg.Database.DSN); err != nil {
			return nil, err
		}
		a.executor = executor.New(db)
		if err := a.executor.Bootstrap(ctx, a.Schema); err != nil {
			a.executor.Close()
			return nil, err
		}
		svcOpts = append(svcOpts, service.WithExecutor(a.executor))
	}

	if opts.Events {
		var store activity.Store = activity.NewMemoryStore()
		if db != nil {
			sqlStore := activity.NewSQLStore(db, "")
			if err := sqlStore.CreateTable(ctx); err != nil {
				a.Close()
				return nil, err
			}
			store = sqlStore
		}
		a.bus = eventbus.New(eventBuffer, log)
		a.bus.Subscribe("log", eventbus.NewLogConsumer(log))
		a.bus.Subscribe("metrics", eventbus.NewMetricsConsumer(a.Metrics))
		a.bus.Start(ctx)

		rec := event.NewActivityRecorder(store)
		rec.SetPublisher(a.bus)
		svcOpts = append(svcOpts, service.WithRecorder(rec), service.WithHistory(store))
	}

	a.Service, err = service.New(a.Parser, service.Config{
		CacheTTL:     cfg.Server.CacheTTL,
		BatchWorkers: cfg.Server.BatchWorkers,
		Translate: translate.Context{
			Registry:     a.Schema,
			DefaultIndex: cfg.Translate.DefaultIndex,
			TimeField:    cfg.Translate.TimeField,
			DefaultSize:  cfg.Translate.DefaultSize,
			MaxSize:      cfg.Translate.MaxSize,
		},
	}, svcOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close stops the bus and releases the pool and database.
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Close()
	}
	if a.bus != nil {
		a.bus.Stop()
		a.bus = nil
	}
	if a.executor != nil {
		a.executor.Close()
		a.executor = nil
	}
}

// NewParser builds a parser from the parser config. Schema words join the
// segmenter lexicon so field aliases stay whole.
func NewParser(cfg config.ParserConfig, reg *schema.Registry, log *zap.Logger) (*nlq.Parser, error) {
	ov, err := cfg.LoadKeywords()
	if err != nil {
		return nil, err
	}
	kw := keyword.NewSet(ov, keyword.WithLogger(log))
	stopWords := append(append([]string{}, nlq.DefaultStopWords...), cfg.StopWords...)

	var seg nlq.Segmenter
	switch cfg.Segmenter {
	case "", "dict":
		seg = nlq.NewDictSegmenter(append(nlq.Lexicon(kw, stopWords), reg.Words()...))
	case "whitespace":
		seg = nlq.WhitespaceSegmenter{}
	default:
		return nil, errors.Errorf("unknown segmenter %q", cfg.Segmenter)
	}

	return nlq.New(
		nlq.WithKeywords(kw),
		nlq.WithSegmenter(seg),
		nlq.WithStopWords(cfg.StopWords...),
		nlq.WithLogger(log),
	), nil
}

func loadSchema(path string) (*schema.Registry, error) {
	if path == "" {
		return schema.NewRegistry(), nil
	}
	return schema.LoadFile(path)
}
