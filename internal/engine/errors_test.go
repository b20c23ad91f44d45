package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskErrorWrapsUnderlyingError(t *testing.T) {
	cause := errors.New("boom")
	err := &TaskError{Task: "t", Message: "failed", Err: cause}
	assert.Contains(t, err.Error(), "t")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestComponentErrorWithoutName(t *testing.T) {
	err := &ComponentError{Message: "no such task"}
	assert.Contains(t, err.Error(), "no such task")
}

func TestValueErrorHasNoCause(t *testing.T) {
	err := &ValueError{Message: "bad value"}
	assert.Nil(t, err.Unwrap())
	assert.Contains(t, err.Error(), "bad value")
}
