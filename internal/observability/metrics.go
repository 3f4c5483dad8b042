// Package observability provides Prometheus metrics for the API and chat pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "coin_insights"

// Metrics holds the collectors for one process, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Chat metrics
	ChatIntents  *prometheus.CounterVec
	ChatFailures prometheus.Counter

	// Data metrics
	TableLoadDuration *prometheus.HistogramVec
	TableRows         prometheus.Gauge
}

// NewMetrics creates a Metrics instance with every collector registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		ChatIntents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "intents_total",
			Help:      "Total number of chat questions by predicted intent",
		}, []string{"intent"}),
		ChatFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "failures_total",
			Help:      "Total number of chat questions that could not be answered",
		}),

		TableLoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "table_load_duration_seconds",
			Help:      "Time spent loading the price table by source",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"source"}),
		TableRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "table_rows",
			Help:      "Number of rows in the most recently loaded price table",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, took time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

// RecordIntent counts a classified chat question.
func (m *Metrics) RecordIntent(intent string) {
	m.ChatIntents.WithLabelValues(intent).Inc()
}

// RecordChatFailure counts a chat question that ended in an error.
func (m *Metrics) RecordChatFailure() {
	m.ChatFailures.Inc()
}

// RecordTableLoad records a price table load from the named source.
func (m *Metrics) RecordTableLoad(source string, rows int, took time.Duration) {
	m.TableLoadDuration.WithLabelValues(source).Observe(took.Seconds())
	m.TableRows.Set(float64(rows))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
