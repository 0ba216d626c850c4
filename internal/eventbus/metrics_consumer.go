package eventbus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matthewbaird/nlquery/internal/event"
)

// MetricsConsumer counts parse events by outcome and observes latency.
type MetricsConsumer struct {
	parsed     *prometheus.CounterVec
	failed     *prometheus.CounterVec
	translated *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewMetricsConsumer registers its collectors on reg.
func NewMetricsConsumer(reg prometheus.Registerer) *MetricsConsumer {
	f := promauto.With(reg)
	return &MetricsConsumer{
		parsed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlq",
			Name:      "queries_parsed_total",
			Help:      "Queries parsed successfully, by intent kind.",
		}, []string{"kind"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlq",
			Name:      "queries_failed_total",
			Help:      "Queries rejected by the parser, by error type.",
		}, []string{"error_type"}),
		translated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlq",
			Name:      "queries_translated_total",
			Help:      "Intents translated, by target.",
		}, []string{"target"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nlq",
			Name:      "event_duration_seconds",
			Help:      "Parse and translate latency.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"event_type"}),
	}
}

func (c *MetricsConsumer) HandleEvent(_ context.Context, evt event.ParseEvent) error {
	switch evt.EventType {
	case event.TypeQueryParsed:
		c.parsed.WithLabelValues(evt.Kind).Inc()
	case event.TypeQueryFailed:
		c.failed.WithLabelValues(evt.ErrorType).Inc()
	case event.TypeQueryTranslated:
		c.translated.WithLabelValues(evt.Target).Inc()
	}
	c.latency.WithLabelValues(evt.EventType).Observe(evt.Duration.Seconds())
	return nil
}
