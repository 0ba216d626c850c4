package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	cacheRequests *prometheus.CounterVec
	batchSize     prometheus.Histogram
}

// newMetrics registers on reg; a nil reg keeps the collectors unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlq",
			Name:      "parse_cache_requests_total",
			Help:      "Parse requests by cache result.",
		}, []string{"result"}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nlq",
			Name:      "batch_size",
			Help:      "Queries per batch request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

func (m *metrics) cache(hit bool) {
	if hit {
		m.cacheRequests.WithLabelValues("hit").Inc()
	} else {
		m.cacheRequests.WithLabelValues("miss").Inc()
	}
}
