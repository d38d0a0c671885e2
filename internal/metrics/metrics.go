// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the analysis collaborator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsInFlight prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AnalysisCalls    *prometheus.CounterVec
}

// New builds a registry with process, Go runtime and service collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mindsoothe",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindsoothe",
			Name:      "http_requests_total",
			Help:      "Requests served, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindsoothe",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AnalysisCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindsoothe",
			Name:      "analysis_calls_total",
			Help:      "Calls to the analysis collaborator, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.RequestsInFlight, m.RequestsTotal, m.RequestDuration, m.AnalysisCalls)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
