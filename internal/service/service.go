// Package service is the query front end shared by the HTTP server, the
// REPL and the CLI: it parses with one shared parser, caches results,
// parses batches on a worker pool, translates and executes intents, and
// records every step as a parse event.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/panjf2000/ants/v2"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/activity"
	"github.com/matthewbaird/nlquery/internal/event"
	"github.com/matthewbaird/nlquery/internal/executor"
	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/translate"
	"github.com/matthewbaird/nlquery/internal/translate/es"
	"github.com/matthewbaird/nlquery/internal/translate/sqlgen"
)

// Translation targets.
const (
	TargetES  = "es"
	TargetSQL = "sql"
)

var (
	// ErrNoExecutor is returned by Execute when no database is configured.
	ErrNoExecutor = errors.New("no database configured")
	// ErrUnknownTarget is returned by Translate for a target other than
	// TargetES or TargetSQL.
	ErrUnknownTarget = errors.New("unknown target")
)

// Config holds the service tunables.
type Config struct {
	CacheTTL     time.Duration     // 0 disables caching
	BatchWorkers int               // default 8
	Translate    translate.Context // registry, default index, sizes
}

// Service is safe for concurrent use.
type Service struct {
	parser   *nlq.Parser
	cache    *cache.Cache
	pool     *ants.Pool
	tctx     translate.Context
	recorder event.Recorder
	history  activity.Store
	exec     *executor.Executor
	metrics  *metrics
	log      *zap.Logger
}

// Option configures New.
type Option func(*Service)

// WithRecorder records parse events.
func WithRecorder(r event.Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithHistory sets the store History reads from.
func WithHistory(store activity.Store) Option { return func(s *Service) { s.history = store } }

// WithExecutor enables Execute.
func WithExecutor(e *executor.Executor) Option { return func(s *Service) { s.exec = e } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegisterer registers the service metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) { s.metrics = newMetrics(reg) }
}

// New builds a Service around p.
func New(p *nlq.Parser, cfg Config, opts ...Option) (*Service, error) {
	s := &Service{parser: p, tctx: cfg.Translate.Defaults(), log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.Named("service")
	if s.metrics == nil {
		s.metrics = newMetrics(nil)
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	workers := cfg.BatchWorkers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "creating batch pool")
	}
	s.pool = pool
	return s, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Keywords returns the parser's dictionaries.
func (s *Service) Keywords() *keyword.Set { return s.parser.Keywords() }

// Registry returns the field alias registry, possibly nil.
func (s *Service) Registry() *schema.Registry { return s.tctx.Registry }

// cached is a cache entry: the encoded intent or the parse error.
type cached struct {
	data []byte
	err  error
}

// Parse parses text, serving repeated texts from the cache. Intents with a
// date range are never cached since their bounds depend on the clock.
func (s *Service) Parse(ctx context.Context, text string) (intent.Intent, error) {
	start := time.Now()
	in, hit, err := s.parse(text)
	s.metrics.cache(hit)
	s.record(ctx, parseEvent(text, in, err, time.Since(start)))
	return in, err
}

func (s *Service) parse(text string) (intent.Intent, bool, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(text); ok {
			c := v.(cached)
			if c.err != nil {
				return nil, true, c.err
			}
			in, err := intent.Decode(c.data)
			if err == nil {
				return in, true, nil
			}
			s.log.Warn("dropping undecodable cache entry", zap.String("query", text), zap.Error(err))
			s.cache.Delete(text)
		}
	}

	in, err := s.parser.Parse(text)
	if s.cache == nil {
		return in, false, err
	}
	if err != nil {
		if _, ok := nlq.AsParseError(err); ok {
			s.cache.SetDefault(text, cached{err: err})
		}
		return nil, false, err
	}
	if !hasDateRange(in) {
		if data, merr := intent.Marshal(in); merr == nil {
			s.cache.SetDefault(text, cached{data: data})
		}
	}
	return in, false, nil
}

func hasDateRange(in intent.Intent) bool {
	switch v := in.(type) {
	case *intent.Query:
		return v.DateRange != nil
	case *intent.Analytics:
		return v.DateRange != nil
	}
	return false
}

func parseEvent(text string, in intent.Intent, err error, d time.Duration) event.ParseEvent {
	if err != nil {
		info := NewErrorInfo(err)
		return event.NewQueryFailed(event.QueryFailedPayload{
			Query:      text,
			ErrorType:  info.Type,
			Position:   info.Position,
			Token:      info.Token,
			Suggestion: info.Suggestion,
			Message:    info.Message,
			Duration:   d,
		})
	}
	return event.NewQueryParsed(event.QueryParsedPayload{Query: text, Intent: in, Duration: d})
}

func (s *Service) record(ctx context.Context, evt event.ParseEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, evt); err != nil {
		s.log.Warn("recording event failed", zap.String("event_type", evt.EventType), zap.Error(err))
	}
}

// Translation is a translated intent.
type Translation struct {
	Target string          `json:"target"`
	Intent json.RawMessage `json:"intent"`
	Query  any             `json:"query"` // ES search source or sqlgen.Statement
}

// Translate converts in for target. text is the originating query, if any.
func (s *Service) Translate(ctx context.Context, target string, in intent.Intent, text string) (*Translation, error) {
	start := time.Now()
	var (
		out any
		err error
	)
	switch target {
	case TargetES, "":
		target = TargetES
		var ss *elastic.SearchSource
		if ss, err = (es.Translator{}).Translate(in, s.tctx); err == nil {
			out, err = ss.Source()
		}
	case TargetSQL:
		out, err = sqlgen.Translator{}.Translate(in, s.tctx)
	default:
		return nil, errors.Wrapf(ErrUnknownTarget, "%q (want %s or %s)", target, TargetES, TargetSQL)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "translating to %s", target)
	}

	encoded, err := intent.Marshal(in)
	if err != nil {
		return nil, err
	}
	output, _ := json.Marshal(out)
	s.record(ctx, event.NewQueryTranslated(event.QueryTranslatedPayload{
		Query:    text,
		Target:   target,
		Kind:     string(in.Kind()),
		Index:    in.IndexHint(),
		Output:   output,
		Duration: time.Since(start),
	}))
	return &Translation{Target: target, Intent: encoded, Query: out}, nil
}

// TranslateText parses text and translates the intent.
func (s *Service) TranslateText(ctx context.Context, target, text string) (*Translation, error) {
	in, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.Translate(ctx, target, in, text)
}

// Execute parses text and runs it on the configured database.
func (s *Service) Execute(ctx context.Context, text string) (*executor.Result, error) {
	if s.exec == nil {
		return nil, ErrNoExecutor
	}
	in, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.exec.Execute(ctx, in, s.tctx)
}

// History returns recent parse events, newest first.
func (s *Service) History(ctx context.Context, opts activity.QueryOptions) ([]activity.Entry, string, int, error) {
	if s.history == nil {
		return nil, "", 0, nil
	}
	return s.history.Recent(ctx, opts)
}

// SearchHistory matches query against recorded query texts.
func (s *Service) SearchHistory(ctx context.Context, query string, opts activity.SearchOptions) ([]activity.Entry, int, error) {
	if s.history == nil {
		return nil, 0, nil
	}
	return s.history.Search(ctx, query, opts)
}
