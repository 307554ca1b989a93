package gremlin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/lassoerrors"
)

type fakeSubmitter struct {
	results   interface{}
	err       error
	lastQuery string
	closed    bool
}

func (f *fakeSubmitter) submit(query string) (interface{}, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSubmitter) close() {
	f.closed = true
}

func newTestHook(t *testing.T, conn *connection.Connection) *Hook {
	t.Helper()
	connection.Clear()
	t.Cleanup(connection.Clear)

	require.NoError(t, connection.Register(conn))
	h, err := NewHook(conn.ID)
	require.NoError(t, err)
	return h
}

func TestGetURI(t *testing.T) {
	tests := []struct {
		name string
		conn connection.Connection
		want string
	}{
		{
			name: "default port",
			conn: connection.Connection{Host: "host"},
			want: "ws://host:443/gremlin",
		},
		{
			name: "explicit port",
			conn: connection.Connection{Host: "myhost", Port: 1234},
			want: "ws://myhost:1234/gremlin",
		},
		{
			name: "localhost",
			conn: connection.Connection{Host: "localhost", Port: 8888},
			want: "ws://localhost:8888/gremlin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetURI(&tt.conn))
		})
	}
}

func TestRunReturnsDriverResultsUnmodified(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "gremlin_default",
		Type: ConnType,
		Host: "localhost",
	})

	want := []interface{}{map[string]interface{}{"id": int64(1)}, "vertex"}
	fake := &fakeSubmitter{results: want}
	h.client = fake

	got, err := h.Run(context.Background(), "g.V().limit(2)")
	require.NoError(t, err)
	assert.Equal(t, "g.V().limit(2)", fake.lastQuery)

	// Whatever the driver produced comes back as-is.
	assert.Equal(t, want, got)
}

func TestRunKeepsDriverErrorOnChain(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "gremlin_default",
		Type: ConnType,
		Host: "localhost",
	})

	driverErr := errors.New("Gremlin Query Syntax Error")
	h.client = &fakeSubmitter{err: driverErr}

	_, err := h.Run(context.Background(), "g.V(")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeRemoteExecution))
	assert.ErrorIs(t, err, driverErr)
}

func TestTraversalSourceFromExtra(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:    "gremlin_default",
		Type:  ConnType,
		Host:  "localhost",
		Extra: map[string]string{"traversal_source": "social"},
	})
	assert.Equal(t, "social", h.traversalSource)

	h2 := newTestHook(t, &connection.Connection{
		ID:   "gremlin_default",
		Type: ConnType,
		Host: "localhost",
	})
	assert.Equal(t, DefaultTraversalSource, h2.traversalSource)
}

func TestCloseIsIdempotentAndReleasesClient(t *testing.T) {
	h := newTestHook(t, &connection.Connection{
		ID:   "gremlin_default",
		Type: ConnType,
		Host: "localhost",
	})

	fake := &fakeSubmitter{}
	h.client = fake

	require.NoError(t, h.Close())
	assert.True(t, fake.closed)
	assert.Nil(t, h.client)

	require.NoError(t, h.Close())

	// A closed hook refuses further work.
	_, err := h.Run(context.Background(), "g.V()")
	require.Error(t, err)
	assert.True(t, lassoerrors.IsType(err, lassoerrors.ErrorTypeClosed))
}
