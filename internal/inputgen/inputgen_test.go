package inputgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIsDeterministicForAGivenSeed(t *testing.T) {
	fields := []FieldSpec{
		{Name: "x", Kind: KindInt, Min: 0, Max: 100},
		{Name: "y", Kind: KindFloat, Min: 0, Max: 1},
		{Name: "flag", Kind: KindBool},
	}

	a := NewRandom(fields, 42)
	b := NewRandom(fields, 42)

	for i := 0; i < 5; i++ {
		va, err := a.Next(i)
		require.NoError(t, err)
		vb, err := b.Next(i)
		require.NoError(t, err)
		assert.Equal(t, va, vb)
	}
}

func TestRandomRespectsIntBounds(t *testing.T) {
	fields := []FieldSpec{{Name: "x", Kind: KindInt, Min: 10, Max: 12}}
	g := NewRandom(fields, 1)
	for i := 0; i < 50; i++ {
		v, err := g.Next(i)
		require.NoError(t, err)
		x := v["x"].(int64)
		assert.GreaterOrEqual(t, x, int64(10))
		assert.LessOrEqual(t, x, int64(12))
	}
}

func TestFixedExhaustsSequence(t *testing.T) {
	g := &Fixed{Sequence: []map[string]any{{"x": 1}}}
	v, err := g.Next(0)
	require.NoError(t, err)
	assert.Equal(t, 1, v["x"])

	_, err = g.Next(1)
	assert.Error(t, err)
}

func TestLoadFixedSequenceParsesJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"x": 1}, {"x": 2}]`), 0o644))

	sequence, err := LoadFixedSequence(path)
	require.NoError(t, err)
	require.Len(t, sequence, 2)
	assert.EqualValues(t, 1, sequence[0]["x"])
	assert.EqualValues(t, 2, sequence[1]["x"])
}

func TestLoadFixedSequenceRejectsMissingFile(t *testing.T) {
	_, err := LoadFixedSequence(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestInteractiveParsesTypesInOrder(t *testing.T) {
	g := &Interactive{
		Fields: []FieldSpec{{Name: "a", Kind: KindInt}, {Name: "b", Kind: KindBool}, {Name: "c", Kind: KindString}},
		In:     strings.NewReader("42\ntrue\nhello\n"),
		Out:    &strings.Builder{},
	}
	v, err := g.Next(0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v["a"])
	assert.Equal(t, true, v["b"])
	assert.Equal(t, "hello", v["c"])
}
