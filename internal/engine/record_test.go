package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordGetSetAndHas(t *testing.T) {
	r := NewRecord(nil)
	assert.False(t, r.Has("x"))
	r.Set("x", int64(5))
	assert.True(t, r.Has("x"))
	v, ok := r.Get("x")
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)
}

func TestRecordCopyOfIsIndependent(t *testing.T) {
	src := map[string]any{"a": int64(1)}
	cp := CopyOf(src)
	cp.Set("a", int64(2))
	assert.Equal(t, int64(1), src["a"])
}

func TestRecordTypedAccessorsReturnZeroValueOnMismatch(t *testing.T) {
	r := NewRecord(map[string]any{"s": "hello"})
	assert.Equal(t, 0, r.Int("s"))
	assert.Equal(t, 0.0, r.Float64("s"))
	assert.False(t, r.Bool("s"))
	assert.Equal(t, "", r.String("missing"))
}

func TestRecordMergeIsLastWriterWins(t *testing.T) {
	r := NewRecord(map[string]any{"a": int64(1), "b": int64(2)})
	r.Merge(map[string]any{"b": int64(20), "c": int64(3)})
	assert.Equal(t, int64(1), r.Int("a"))
	assert.Equal(t, int64(20), r.Int("b"))
	assert.Equal(t, int64(3), r.Int("c"))
}

func TestRecordSnapshotIsIndependentOfSource(t *testing.T) {
	r := NewRecord(map[string]any{"a": int64(1)})
	snap := r.Snapshot()
	r.Set("a", int64(99))
	assert.Equal(t, int64(1), snap["a"])
}
