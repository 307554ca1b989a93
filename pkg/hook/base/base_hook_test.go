package base

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/lassoerrors"
)

func newTestHook(t *testing.T) *BaseHook {
	t.Helper()
	connection.Clear()
	t.Cleanup(connection.Clear)

	require.NoError(t, connection.Register(&connection.Connection{
		ID:   "test_conn",
		Type: "test",
		Host: "localhost",
	}))

	b, err := NewBaseHook("test", "test_conn")
	require.NoError(t, err)
	return b
}

func TestNewBaseHookResolvesConnection(t *testing.T) {
	b := newTestHook(t)

	assert.Equal(t, "test", b.Name())
	assert.Equal(t, "test_conn", b.ConnID())
	require.NotNil(t, b.Connection())
	assert.Equal(t, "localhost", b.Connection().Host)
	assert.NotNil(t, b.GetLogger())
	assert.NotNil(t, b.GetMetrics())
}

func TestNewBaseHookUnknownConnection(t *testing.T) {
	connection.Clear()
	t.Cleanup(connection.Clear)

	_, err := NewBaseHook("test", "missing_conn")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeNotFound))
}

func TestCloseOnceRunsReleaseExactlyOnce(t *testing.T) {
	b := newTestHook(t)

	calls := 0
	release := func() error {
		calls++
		return nil
	}

	require.NoError(t, b.CloseOnce(release))
	require.NoError(t, b.CloseOnce(release))
	require.NoError(t, b.CloseOnce(release))

	assert.Equal(t, 1, calls)
	assert.True(t, b.IsClosed())
}

func TestCloseOncePropagatesReleaseError(t *testing.T) {
	b := newTestHook(t)

	boom := errors.New("connection reset")
	err := b.CloseOnce(func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// The error is reported once; later closes are clean no-ops.
	assert.NoError(t, b.CloseOnce(func() error { return boom }))
}

func TestCloseOnceNilRelease(t *testing.T) {
	b := newTestHook(t)
	assert.NoError(t, b.CloseOnce(nil))
	assert.True(t, b.IsClosed())
}

func TestCheckUsableAfterClose(t *testing.T) {
	b := newTestHook(t)
	require.NoError(t, b.CheckUsable())

	require.NoError(t, b.CloseOnce(nil))

	err := b.CheckUsable()
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
