package winrm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/lassoerrors"
)

func newTestHook(t *testing.T, conn *connection.Connection) *Hook {
	t.Helper()
	connection.Clear()
	t.Cleanup(connection.Clear)

	require.NoError(t, connection.Register(conn))
	h, err := NewHook(conn.ID)
	require.NoError(t, err)
	return h
}

func TestNewHookResolvesConnection(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:       "winrm_default",
		Type:     ConnType,
		Host:     "win.example.com",
		Login:    "Administrator",
		Password: "secret",
	})

	assert.Equal(t, "winrm_default", h.ConnID())
	assert.Equal(t, "win.example.com", h.Connection().Host)
	assert.Equal(t, DefaultPort, h.Connection().PortOrDefault(DefaultPort))
}

func TestClosedHookRefusesWork(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "winrm_default",
		Type: ConnType,
		Host: "win.example.com",
	})

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.RunCommand(context.Background(), "ipconfig")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
