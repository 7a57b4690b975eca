package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// civic lookup service.
type Metrics struct {
	LookupsTotal   *prometheus.CounterVec // labels: outcome={ok,invalid,not_found,unavailable,error}
	LookupDuration prometheus.Histogram
	OfficialsCount prometheus.Histogram

	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: provider

	// Cache metrics, labeled by logical cache.
	CacheLookups *prometheus.CounterVec // labels: cache, result={hit,miss}

	AuditEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civic_api",
			Name:      "lookups_total",
			Help:      "Civic lookups by outcome.",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civic_api",
			Name:      "lookup_duration_seconds",
			Help:      "End-to-end duration of one civic lookup.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		OfficialsCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civic_api",
			Name:      "officials_returned",
			Help:      "Number of officials in one assembled response.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 10},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civic_api",
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "civic_api",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civic_api",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by logical cache and result.",
		}, []string{"cache", "result"}),
		AuditEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civic_api",
			Name:      "audit_enabled",
			Help:      "1 when lookup audit publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.LookupsTotal,
		m.LookupDuration,
		m.OfficialsCount,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.AuditEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LookupsTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "civic_api", Name: "lookups_total"}, []string{"outcome"}),
		LookupDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "civic_api", Name: "lookup_duration_seconds"}),
		OfficialsCount:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "civic_api", Name: "officials_returned"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "civic_api", Name: "upstream_requests_total"}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "civic_api", Name: "upstream_request_duration_seconds"}, []string{"provider"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "civic_api", Name: "cache_lookups_total"}, []string{"cache", "result"}),
		AuditEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "civic_api", Name: "audit_enabled"}),
	}
}
