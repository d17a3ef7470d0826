// Package metrics exposes Prometheus instrumentation for the dashboard
// gateway and API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all resellerdash collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Upstream sheet metrics
	SheetFetches       *prometheus.CounterVec
	SheetFetchDuration *prometheus.HistogramVec
	SheetCacheHits     prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers every collector under the given namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "resellerdash"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.SheetFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetches_total",
			Help:      "Upstream sheet fetches by outcome",
		},
		[]string{"outcome"},
	)
	m.SheetFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream sheet fetch latency",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)
	m.SheetCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "cache_hits_total",
			Help:      "Sheet requests served from the in-memory cache",
		},
	)
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		m.SheetFetches,
		m.SheetFetchDuration,
		m.SheetCacheHits,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.SheetFetches.WithLabelValues(outcome).Inc()
	m.SheetFetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveCacheHit records a request served from cache.
func (m *Metrics) ObserveCacheHit() {
	m.SheetCacheHits.Inc()
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
