package jira

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

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		conn connection.Connection
		want string
	}{
		{
			name: "https by default",
			conn: connection.Connection{ID: "jira_default", Type: ConnType, Host: "jira.example.com"},
			want: "https://jira.example.com",
		},
		{
			name: "explicit protocol and port",
			conn: connection.Connection{ID: "jira_default", Type: ConnType, Host: "jira.internal", Port: 8080, Schema: "http"},
			want: "http://jira.internal:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHook(t, &tt.conn)
			assert.Equal(t, tt.want, h.baseURL())
		})
	}
}

func TestClosedHookRefusesWork(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "jira_default",
		Type: ConnType,
		Host: "jira.example.com",
	})

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.Run(context.Background(), "project = OPS")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
