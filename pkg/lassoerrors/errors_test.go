package lassoerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesTypeAndMessage(t *testing.T) {
	err := New(ErrorTypeConfig, "host is required")
	assert.Equal(t, ErrorTypeConfig, err.Type)
	assert.Contains(t, err.Error(), "host is required")
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeNotFound, "connection %s is not defined", "mysql_default")
	assert.Contains(t, err.Error(), "mysql_default")
	assert.True(t, IsType(err, ErrorTypeNotFound))
}

func TestWrapKeepsCauseOnChain(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, ErrorTypeConnection, "failed to connect")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNested(t *testing.T) {
	inner := errors.New("root cause")
	mid := Wrap(inner, ErrorTypeRemoteExecution, "command failed")
	outer := Wrap(mid, ErrorTypeData, "transfer aborted")

	assert.ErrorIs(t, outer, inner)
	assert.ErrorIs(t, outer, mid)

	// errors.As finds the outermost typed error.
	var typed *Error
	require.True(t, errors.As(outer, &typed))
	assert.Equal(t, ErrorTypeData, typed.Type)
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeValidation, "bad input")
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeInternal))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeValidation))
	assert.False(t, IsType(nil, ErrorTypeValidation))

	// Type checks see through plain fmt wrapping.
	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeValidation))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeRemoteExecution, "traversal failed").
		WithDetail("query", "g.V()").
		WithDetail("attempt", 2)

	assert.Equal(t, "g.V()", err.Details["query"])
	assert.Equal(t, 2, err.Details["attempt"])
}
