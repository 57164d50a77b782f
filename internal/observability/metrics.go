// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fantasywrapped"

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  prometheus.Histogram
	TokenRefreshes   prometheus.Counter

	// Award metrics
	MetricRuns     *prometheus.CounterVec
	MetricDuration *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	CacheWrites    *prometheus.CounterVec

	// Stream metrics
	ActiveStreams prometheus.Gauge
	StreamRuns    *prometheus.CounterVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of Fantasy API requests by status class",
		}, []string{"status"}),
		UpstreamLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Fantasy API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TokenRefreshes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "token_refreshes_total",
			Help:      "Total number of access token refreshes",
		}),

		MetricRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "awards",
			Name:      "metric_runs_total",
			Help:      "Total number of metric computations by outcome",
		}, []string{"metric", "outcome"}),
		MetricDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "awards",
			Name:      "metric_duration_seconds",
			Help:      "Metric computation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"metric"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of award cache lookups by result",
		}, []string{"result"}),
		CacheWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Total number of award cache writes by result",
		}, []string{"result"}),

		ActiveStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "active",
			Help:      "Number of award streams currently in flight",
		}),
		StreamRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "runs_total",
			Help:      "Total number of award streams by source and status",
		}, []string{"source", "status"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) UpstreamRequest(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(status).Inc()
	m.UpstreamLatency.Observe(d.Seconds())
}

func (m *Metrics) TokenRefreshed() {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
}

// MetricCompleted records one metric computation; outcome is "ok", "error"
// or "canceled".
func (m *Metrics) MetricCompleted(metric, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.MetricRuns.WithLabelValues(metric, outcome).Inc()
	m.MetricDuration.WithLabelValues(metric).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CacheWrites.WithLabelValues(result).Inc()
}

// StreamStarted marks a stream in flight and returns the func that ends it.
func (m *Metrics) StreamStarted() func(source, status string) {
	if m == nil {
		return func(string, string) {}
	}
	m.ActiveStreams.Inc()
	return func(source, status string) {
		m.ActiveStreams.Dec()
		m.StreamRuns.WithLabelValues(source, status).Inc()
	}
}
