package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// resolution core. Tier outcomes are the primary diagnostic surface: raw
// coordinates never appear in labels or logs, so per-tier counts are how
// upstream degradation becomes visible.
type Metrics struct {
	TierAttempts *prometheus.CounterVec // labels: chain={risk,fires,location}, tier, outcome={success,timeout,error,miss,skipped}
	CacheLookups *prometheus.CounterVec // labels: kind, result={hit,miss}

	ResolutionDuration *prometheus.HistogramVec // labels: chain
	ProviderDuration   *prometheus.HistogramVec // labels: provider

	SyntheticResults   *prometheus.CounterVec // labels: chain; every one of these is a fully degraded answer
	IncidentsPublished prometheus.Counter
	ServiceReady       prometheus.Gauge
}

// NewMetrics creates and registers all resolution metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TierAttempts,
		m.CacheLookups,
		m.ResolutionDuration,
		m.ProviderDuration,
		m.SyntheticResults,
		m.IncidentsPublished,
		m.ServiceReady,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "tier_attempts_total",
			Help:      "Resolution tier attempts by chain, tier, and outcome.",
		}, []string{"chain", "tier", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "cache_lookups_total",
			Help:      "Spatial cache lookups by resource kind and result.",
		}, []string{"kind", "result"}),
		ResolutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "resolution_duration_seconds",
			Help:      "End-to-end duration of a resolution chain.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 8, 10},
		}, []string{"chain"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "provider_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}, []string{"provider"}),
		SyntheticResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "synthetic_results_total",
			Help:      "Resolutions that exhausted every real source.",
		}, []string{"chain"}),
		IncidentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "incidents_published_total",
			Help:      "Live incidents published to the incident feed.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire",
			Name:      "service_ready",
			Help:      "1 when the service is ready to serve traffic.",
		}),
	}
}
