package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsANoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordEvent("c", "sync")
		m.ObserveRoundDuration("c", "sync", 0.1)
		m.RecordTaskError("c", "t")
		m.SetQueueDepth("c", 3)
		m.SimulationStarted()
		m.SimulationFinished()
	})
}

func TestMetricsRecordEventIncrementsCounter(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent("counter", "sync")
	m.RecordEvent("counter", "sync")

	got := testutil.ToFloat64(m.eventsProcessed.WithLabelValues("counter", "sync"))
	assert.Equal(t, 2.0, got)
}

func TestMetricsSetQueueDepthReportsLatestValue(t *testing.T) {
	m := NewMetrics()
	m.SetQueueDepth("counter", 5)
	m.SetQueueDepth("counter", 2)

	got := testutil.ToFloat64(m.queueDepth.WithLabelValues("counter"))
	assert.Equal(t, 2.0, got)
}

func TestMetricsSimulationStartedFinishedTracksGauge(t *testing.T) {
	m := NewMetrics()
	m.SimulationStarted()
	m.SimulationStarted()
	m.SimulationFinished()

	got := testutil.ToFloat64(m.activeSimulations)
	assert.Equal(t, 1.0, got)
}
