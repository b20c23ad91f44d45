package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTriggerMatchesByName(t *testing.T) {
	trig := &EventTrigger{EventName: "start"}
	assert.True(t, trig.ShouldActivate(ActivationContext{EventName: "start"}))
	assert.False(t, trig.ShouldActivate(ActivationContext{EventName: "stop"}))
}

func TestPeriodicTriggerFiresOnceIntervalElapsedRegardlessOfEventName(t *testing.T) {
	// Gated purely on elapsed simulated time (spec.md §3), not on which
	// event is being processed.
	trig := &PeriodicTrigger{Interval: 2}
	assert.True(t, trig.ShouldActivate(ActivationContext{EventName: "anything", CurrentTime: 0}))
	assert.False(t, trig.ShouldActivate(ActivationContext{EventName: "ping", CurrentTime: 1}))
	assert.True(t, trig.ShouldActivate(ActivationContext{EventName: "pong", CurrentTime: 2}))
}

func TestPeriodicTriggerGetNextTimeTracksLastFiring(t *testing.T) {
	trig := &PeriodicTrigger{Interval: 5, InitialDelay: 2}
	assert.Equal(t, 2.0, trig.GetNextTime(0))
	assert.True(t, trig.ShouldActivate(ActivationContext{CurrentTime: 2}))
	assert.Equal(t, 7.0, trig.GetNextTime(2))
}

func TestImmediateTriggerFiresOnce(t *testing.T) {
	trig := &ImmediateTrigger{}
	assert.True(t, trig.ShouldActivate(ActivationContext{EventName: "start"}))
	assert.False(t, trig.ShouldActivate(ActivationContext{EventName: "anything"}))
}

func TestConditionTriggerFiresOnlyOnRisingEdge(t *testing.T) {
	expr, err := CompileExpr("state.count > 5")
	require.NoError(t, err)
	trig := &ConditionTrigger{Condition: expr}

	below := ActivationContext{State: NewRecord(map[string]any{"count": int64(1)}), Inputs: NewRecord(nil), Outputs: NewRecord(nil)}
	above := ActivationContext{State: NewRecord(map[string]any{"count": int64(10)}), Inputs: NewRecord(nil), Outputs: NewRecord(nil)}

	assert.False(t, trig.ShouldActivate(below))
	assert.True(t, trig.ShouldActivate(above))
	assert.False(t, trig.ShouldActivate(above), "should not re-fire while condition stays true")

	assert.False(t, trig.ShouldActivate(below))
	assert.True(t, trig.ShouldActivate(above), "should fire again after a fall and a new rise")
}
