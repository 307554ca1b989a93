package trino

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

// The driver connects lazily, so building the handle needs no server.
func TestGetDBBuildsHandle(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:     "trino_default",
		Type:   ConnType,
		Host:   "warehouse.internal",
		Schema: "default",
		Login:  "analyst",
		Extra:  map[string]string{"catalog": "iceberg"},
	})
	defer h.Close()

	db, err := h.getDB()
	require.NoError(t, err)
	require.NotNil(t, db)

	// Memoized: a second call hands back the same handle.
	db2, err := h.getDB()
	require.NoError(t, err)
	assert.Same(t, db, db2)
}

func TestClosedHookRefusesWork(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "trino_default",
		Type: ConnType,
		Host: "warehouse.internal",
	})

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.GetRecords(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))

	_, err = h.Run(context.Background(), "CREATE TABLE t (id bigint)")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
