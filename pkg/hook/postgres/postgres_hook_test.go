package postgres

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

func TestConnString(t *testing.T) {
	tests := []struct {
		name string
		conn connection.Connection
		want string
	}{
		{
			name: "default port",
			conn: connection.Connection{
				ID: "pg", Type: ConnType, Host: "db.internal", Schema: "app",
				Login: "svc", Password: "pw",
			},
			want: "postgres://svc:pw@db.internal:5432/app",
		},
		{
			name: "explicit port and sslmode",
			conn: connection.Connection{
				ID: "pg", Type: ConnType, Host: "localhost", Port: 5433, Schema: "app",
				Extra: map[string]string{"sslmode": "disable"},
			},
			want: "postgres://localhost:5433/app?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHook(t, &tt.conn)
			assert.Equal(t, tt.want, h.connString())
		})
	}
}

func TestClosedHookRefusesWork(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "pg",
		Type: ConnType,
		Host: "localhost",
	})

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.Run(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
