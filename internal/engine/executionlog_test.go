package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionLogWriteJSON(t *testing.T) {
	log := NewExecutionLog()
	log.Append(RoundRecord{RoundNumber: 0, Inputs: map[string]any{"x": 1}, Outputs: map[string]any{"y": 2}, State: map[string]any{"count": 1}})

	var buf bytes.Buffer
	require.NoError(t, log.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, log.RunID, decoded["run_id"])
	assert.EqualValues(t, 1, decoded["total_rounds"])

	rounds, ok := decoded["rounds"].([]any)
	require.True(t, ok)
	require.Len(t, rounds, 1)
	row, ok := rounds[0].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, row["round"])
	_, hasOldKey := row["round_number"]
	assert.False(t, hasOldKey, "round_number must not appear on disk; spec.md §6 names the key round")
}

func TestExecutionLogWriteCSVHasSortedHeader(t *testing.T) {
	log := NewExecutionLog()
	log.Append(RoundRecord{RoundNumber: 0, Inputs: map[string]any{"b": 1, "a": 2}, Outputs: map[string]any{}, State: map[string]any{}})

	var buf bytes.Buffer
	require.NoError(t, log.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "round,input_a,input_b", lines[0])
}

func TestExecutionLogRunIDsAreUnique(t *testing.T) {
	a := NewExecutionLog()
	b := NewExecutionLog()
	assert.NotEqual(t, a.RunID, b.RunID)
}
