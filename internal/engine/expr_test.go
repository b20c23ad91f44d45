package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprEvalArithmetic(t *testing.T) {
	e, err := CompileExpr("state.count + inputs.delta")
	require.NoError(t, err)

	vars := activation(map[string]any{"count": int64(2)}, map[string]any{"delta": int64(3)}, nil, 0, "", nil)
	v, err := e.Eval(vars)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestExprEvalBool(t *testing.T) {
	e, err := CompileExpr("state.count > 10")
	require.NoError(t, err)

	vars := activation(map[string]any{"count": int64(11)}, nil, nil, 0, "", nil)
	ok, err := e.EvalBool(vars)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExprEvalBoolRejectsNonBoolResult(t *testing.T) {
	e, err := CompileExpr("state.count")
	require.NoError(t, err)

	vars := activation(map[string]any{"count": int64(1)}, nil, nil, 0, "", nil)
	_, err = e.EvalBool(vars)
	assert.Error(t, err)
}

func TestCompileExprRejectsMalformedSource(t *testing.T) {
	_, err := CompileExpr("state.count +")
	assert.Error(t, err)
}
