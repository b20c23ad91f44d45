package engine

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the simulation engine's Prometheus collectors behind a
// dedicated registry, adapted from the teacher's chat-metrics exporter
// to the handful of counters a simulation run actually produces.
type Metrics struct {
	registry *prometheus.Registry

	eventsProcessed   *prometheus.CounterVec
	roundDuration     *prometheus.HistogramVec
	taskErrors        *prometheus.CounterVec
	activeSimulations prometheus.Gauge
	queueDepth        *prometheus.GaugeVec
}

// NewMetrics builds and registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simcore",
			Name:      "events_processed_total",
			Help:      "Total number of events processed by an executor.",
		}, []string{"component", "executor"}),
		roundDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "simcore",
			Name:      "round_duration_seconds",
			Help:      "Wall-clock time spent executing one round or processed event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component", "executor"}),
		taskErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simcore",
			Name:      "task_errors_total",
			Help:      "Total number of task failures, by task name.",
		}, []string{"component", "task"}),
		activeSimulations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "simcore",
			Name:      "active_simulations",
			Help:      "Number of simulation runs currently in progress.",
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "simcore",
			Name:      "event_queue_depth",
			Help:      "Number of events currently queued, by component.",
		}, []string{"component"}),
	}

	registry.MustRegister(m.eventsProcessed, m.roundDuration, m.taskErrors, m.activeSimulations, m.queueDepth)
	return m
}

// RecordEvent increments the processed-event counter for a component/executor pair.
// A nil *Metrics is a no-op, so executors can hold an optional Metrics field
// and call these unconditionally instead of guarding every call site.
func (m *Metrics) RecordEvent(component, executor string) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(component, executor).Inc()
}

// ObserveRoundDuration records how long one round/event took to process.
func (m *Metrics) ObserveRoundDuration(component, executor string, seconds float64) {
	if m == nil {
		return
	}
	m.roundDuration.WithLabelValues(component, executor).Observe(seconds)
}

// RecordTaskError increments the failure counter for a specific task.
func (m *Metrics) RecordTaskError(component, task string) {
	if m == nil {
		return
	}
	m.taskErrors.WithLabelValues(component, task).Inc()
}

// SetQueueDepth reports the current event-queue length for a component.
func (m *Metrics) SetQueueDepth(component string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(component).Set(float64(depth))
}

// SimulationStarted/SimulationFinished track concurrently running runs.
func (m *Metrics) SimulationStarted() {
	if m == nil {
		return
	}
	m.activeSimulations.Inc()
}

func (m *Metrics) SimulationFinished() {
	if m == nil {
		return
	}
	m.activeSimulations.Dec()
}

// Handler returns the Prometheus text-exposition HTTP handler for this
// registry, suitable for mounting under /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
