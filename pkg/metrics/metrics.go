// Package metrics exposes the advisor's Prometheus instruments on a private
// registry.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmergpt"

// Outcome labels for ExchangesTotal.
const (
	OutcomeAnswered = "answered"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Metrics holds every instrument the service records. Recording methods on a
// nil *Metrics are no-ops.
type Metrics struct {
	registry *prom.Registry

	exchanges           *prom.CounterVec
	modelLatency        *prom.HistogramVec
	persistenceFailures *prom.CounterVec
	droppedJobs         prom.Counter
}

// New registers the instruments on a fresh registry, alongside the Go and
// process collectors.
func New() *Metrics {
	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		exchanges: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Questions answered by the advisor, by outcome and source.",
		}, []string{"outcome", "source"}),
		modelLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Latency of model provider calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "outcome"}),
		persistenceFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Exchanges that could not be stored or published, by stage.",
		}, []string{"stage"}),
		droppedJobs: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_dropped_total",
			Help:      "Exchanges dropped because the persistence queue was full or closed.",
		}),
	}

	registry.MustRegister(m.exchanges, m.modelLatency, m.persistenceFailures, m.droppedJobs)
	return m
}

// ObserveExchange counts one finished request.
func (m *Metrics) ObserveExchange(outcome, source string) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(outcome, source).Inc()
}

// ObserveModelCall records the latency of one provider call.
func (m *Metrics) ObserveModelCall(provider string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeAnswered
	if !ok {
		outcome = OutcomeFailed
	}
	m.modelLatency.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

// PersistenceFailed counts a storage or publish failure.
func (m *Metrics) PersistenceFailed(stage string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(stage).Inc()
}

// JobDropped counts an exchange that never reached a worker.
func (m *Metrics) JobDropped() {
	if m == nil {
		return
	}
	m.droppedJobs.Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prom.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
