package observability

import (
	"context"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
// Every collector is labeled by node key.
type Metrics struct {
	Invocations *prometheus.CounterVec
	CacheHits   *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_invocations_total",
				Help:      "Total number of dependent invocations",
			},
			[]string{"node"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_cache_hits_total",
				Help:      "Total number of dependents served from the cache",
			},
			[]string{"node"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_errors_total",
				Help:      "Total number of failed dependent invocations",
			},
			[]string{"node"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of dependent resolutions, dependencies included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Invocations, m.CacheHits, m.Errors, m.Duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.Invocations.WithLabelValues(e.Key).Inc()
			m.Duration.WithLabelValues(e.Key).Observe(e.Duration.Seconds())
		},
		OnCacheHit: func(_ context.Context, e *domain.NodeEvent) {
			m.CacheHits.WithLabelValues(e.Key).Inc()
		},
		OnNodeError: func(_ context.Context, e *domain.NodeEvent) {
			m.Invocations.WithLabelValues(e.Key).Inc()
			m.Errors.WithLabelValues(e.Key).Inc()
			m.Duration.WithLabelValues(e.Key).Observe(e.Duration.Seconds())
		},
	}
}
