package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileProgramAssignsStateAndOutputs(t *testing.T) {
	p, err := CompileProgram("increment", "state.count = state.count + 1\noutputs.doubled = state.count * 2")
	require.NoError(t, err)

	rt := &runtime{
		state:   NewRecord(map[string]any{"count": int64(1)}),
		inputs:  NewRecord(nil),
		outputs: NewRecord(nil),
		emitter: NewEventEmitter("increment", 0),
	}
	require.NoError(t, p.Run(rt))

	assert.Equal(t, int64(2), rt.state.Int("count"))
	assert.EqualValues(t, 4, rt.outputs.Int("doubled"))
}

func TestCompileProgramEmitsEventsWithDelayAndPriority(t *testing.T) {
	p, err := CompileProgram("pinger", `emit("pong", delay=1.5, priority=2)`)
	require.NoError(t, err)

	rt := &runtime{
		state:       NewRecord(nil),
		inputs:      NewRecord(nil),
		outputs:     NewRecord(nil),
		currentTime: 10,
		emitter:     NewEventEmitter("pinger", 10),
	}
	require.NoError(t, p.Run(rt))

	pending := rt.emitter.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "pong", pending[0].Name)
	assert.Equal(t, 11.5, pending[0].Time)
	assert.Equal(t, 2, pending[0].Priority)
}

func TestCompileProgramIgnoresBlankLinesAndComments(t *testing.T) {
	p, err := CompileProgram("noop", "\n# a comment\n   \nstate.x = 1\n")
	require.NoError(t, err)
	assert.Len(t, p.statements, 1)
}

func TestCompileProgramRejectsUnknownStatement(t *testing.T) {
	_, err := CompileProgram("bad", "foo.bar = 1")
	assert.Error(t, err)
}

func TestCompileProgramRejectsUnknownEmitKeyword(t *testing.T) {
	_, err := CompileProgram("bad", `emit("x", bogus=1)`)
	assert.Error(t, err)
}

func TestSplitTopLevelCommasHandlesNestedQuotesAndParens(t *testing.T) {
	parts := splitTopLevelCommas(`"a, b", foo(1, 2), delay=3`)
	require.Len(t, parts, 3)
	assert.Equal(t, `"a, b"`, parts[0])
}
