// Package metrics exposes Prometheus counters and gauges for controller activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PizzaHomicide/mediabind/internal/events"
)

// Metrics holds the Prometheus collectors for one process.  It implements bridge.Recorder.
type Metrics struct {
	registry       *prometheus.Registry
	bindingsTotal  *prometheus.CounterVec
	unbindings     *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	bridgedTotal   *prometheus.CounterVec
	flushedActions prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	providerBound  prometheus.Gauge
	httpRequests   prometheus.Counter
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	bindingsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediabind_bindings_total",
		Help: "Total number of provider and container bindings",
	}, []string{"role"})
	unbindings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediabind_unbindings_total",
		Help: "Total number of provider and container unbindings",
	}, []string{"role"})
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediabind_requests_total",
		Help: "Total number of request events handled by controllers",
	}, []string{"type"})
	bridgedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediabind_bridged_events_total",
		Help: "Total number of provider events re-emitted by controllers",
	}, []string{"type"})
	flushedActions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediabind_queue_flushed_actions_total",
		Help: "Total number of queued writes delivered when a provider bound",
	})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediabind_reported_errors_total",
		Help: "Total number of isolated failures passed to the error reporter",
	}, []string{"source"})
	providerBound := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mediabind_provider_bound",
		Help: "1 while a provider is bound to the controller, 0 otherwise",
	})
	httpRequests := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediabind_debug_http_requests_total",
		Help: "Total number of requests served by the debug HTTP server",
	})

	registry.MustRegister(
		bindingsTotal,
		unbindings,
		requestsTotal,
		bridgedTotal,
		flushedActions,
		errorsTotal,
		providerBound,
		httpRequests,
	)

	return &Metrics{
		registry:       registry,
		bindingsTotal:  bindingsTotal,
		unbindings:     unbindings,
		requestsTotal:  requestsTotal,
		bridgedTotal:   bridgedTotal,
		flushedActions: flushedActions,
		errorsTotal:    errorsTotal,
		providerBound:  providerBound,
		httpRequests:   httpRequests,
	}
}

// Bound increments the binding counter for role.
func (m *Metrics) Bound(role string) {
	m.bindingsTotal.WithLabelValues(role).Inc()
}

// Unbound increments the unbinding counter for role.
func (m *Metrics) Unbound(role string) {
	m.unbindings.WithLabelValues(role).Inc()
}

// Request counts a handled request.
func (m *Metrics) Request(t events.Type) {
	m.requestsTotal.WithLabelValues(string(t)).Inc()
}

// Bridged counts a re-emitted provider event.
func (m *Metrics) Bridged(t events.Type) {
	m.bridgedTotal.WithLabelValues(string(t)).Inc()
}

// QueueFlushed adds the number of writes delivered by a flush.
func (m *Metrics) QueueFlushed(actions int) {
	m.flushedActions.Add(float64(actions))
}

// ProviderBound sets the provider gauge.
func (m *Metrics) ProviderBound(bound bool) {
	if bound {
		m.providerBound.Set(1)
		return
	}
	m.providerBound.Set(0)
}

// IncErrors counts a reported failure.  Its signature matches log.SetErrorHook.
func (m *Metrics) IncErrors(source string, _ error) {
	m.errorsTotal.WithLabelValues(source).Inc()
}

// IncHTTPRequests counts a debug server request.
func (m *Metrics) IncHTTPRequests() {
	m.httpRequests.Inc()
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
