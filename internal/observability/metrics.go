// Package observability holds the Prometheus metrics and gin middleware of a
// hotswap instance. Each instance owns its own registry so several can live
// in one process.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotswap"

// Metrics records invocation and HTTP request metrics for one instance.
type Metrics struct {
	instance string
	reg      *prometheus.Registry

	invocations    *prometheus.CounterVec
	invokeDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the metrics for instance on a fresh registry.
func New(instance string) *Metrics {
	m := &Metrics{
		instance: instance,
		reg:      prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sandbox",
				Name:      "invocations_total",
				Help:      "Capability invocations by outcome.",
			},
			[]string{"instance", "capability", "outcome"},
		),
		invokeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "sandbox",
				Name:      "invocation_duration_seconds",
				Help:      "Capability invocation duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"instance", "capability"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"instance", "method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"instance", "method", "path", "status"},
		),
	}
	m.reg.MustRegister(m.invocations, m.invokeDuration, m.httpRequests, m.httpDuration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// MustRegister adds further collectors, such as the performance collector.
func (m *Metrics) MustRegister(cs ...prometheus.Collector) {
	m.reg.MustRegister(cs...)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveInvocation has the sandbox.Observer signature.
func (m *Metrics) ObserveInvocation(capability string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "fault"
	}
	m.invocations.WithLabelValues(m.instance, capability, outcome).Inc()
	m.invokeDuration.WithLabelValues(m.instance, capability).Observe(elapsed.Seconds())
}

// RecordHTTPRequest counts one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(m.instance, method, path, statusLabel).Inc()
	m.httpDuration.WithLabelValues(m.instance, method, path, statusLabel).Observe(duration.Seconds())
}
