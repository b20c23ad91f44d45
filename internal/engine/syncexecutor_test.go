package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedInputs struct {
	values map[string]any
}

func (f *fixedInputs) Next(round int) (map[string]any, error) {
	return f.values, nil
}

func TestSynchronousExecutorRunsUntilMaxRounds(t *testing.T) {
	inc, err := NewTask("inc", nil, &EventTrigger{EventName: "round"}, "", "state.count = state.count + 1")
	require.NoError(t, err)

	comp, err := NewComponent("counter", Synchronous, map[string]any{"count": int64(0)}, nil, nil, []*Task{inc})
	require.NoError(t, err)

	exec := NewSynchronousExecutor(comp, NewSimulationTime(0), &MaxRounds{Limit: 5}, &fixedInputs{}, nil)
	log, err := exec.Run()
	require.NoError(t, err)

	assert.Equal(t, 5, log.Len())
	assert.Equal(t, int64(5), comp.State.Int("count"))
}

func TestSynchronousExecutorStopsOnTaskError(t *testing.T) {
	bad, err := NewTask("bad", nil, &EventTrigger{EventName: "round"}, "", `state.x = inputs.missing.nested`)
	require.NoError(t, err)

	comp, err := NewComponent("broken", Synchronous, nil, nil, nil, []*Task{bad})
	require.NoError(t, err)

	exec := NewSynchronousExecutor(comp, NewSimulationTime(0), &MaxRounds{Limit: 3}, &fixedInputs{}, nil)
	_, err = exec.Run()
	assert.Error(t, err)
}

func TestSynchronousExecutorRecordsMetrics(t *testing.T) {
	inc, err := NewTask("inc", nil, &EventTrigger{EventName: "round"}, "", "state.count = state.count + 1")
	require.NoError(t, err)

	comp, err := NewComponent("counter", Synchronous, map[string]any{"count": int64(0)}, nil, nil, []*Task{inc})
	require.NoError(t, err)

	exec := NewSynchronousExecutor(comp, NewSimulationTime(0), &MaxRounds{Limit: 3}, &fixedInputs{}, nil)
	exec.Metrics = NewMetrics()
	_, err = exec.Run()
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(exec.Metrics.eventsProcessed.WithLabelValues("counter", "sync")))
}
