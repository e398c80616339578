// Package metrics exports Prometheus metrics for the HTTP edge and the
// outbound model calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartstudy"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	generationLatency *prometheus.HistogramVec
	generationTotal   *prometheus.CounterVec

	httpLatency  *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

var latencyBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Model call latency in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"artifact"},
	)

	m.generationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "calls_total",
			Help:      "Total number of model calls",
		},
		[]string{"artifact", "outcome"},
	)

	m.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"method", "route"},
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.registry.MustRegister(
		m.generationLatency,
		m.generationTotal,
		m.httpLatency,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveGeneration records one model call.
func (m *Metrics) ObserveGeneration(artifact, outcome string, elapsed time.Duration) {
	m.generationLatency.WithLabelValues(artifact).Observe(elapsed.Seconds())
	m.generationTotal.WithLabelValues(artifact, outcome).Inc()
}

// ObserveRequest records one HTTP request. route is the matched route
// pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
