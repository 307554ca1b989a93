// Package gremlin provides a hook for graph databases speaking the Gremlin
// protocol over websockets, including Azure Cosmos DB's Gremlin API. It wraps
// the Apache TinkerPop gremlin-go driver; traversals pass through to the
// driver unmodified, and results come back exactly as the driver's result
// accessor returns them.
package gremlin

import (
	"context"
	"fmt"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "gremlin"
	// DefaultConnID is the default connection id
	DefaultConnID = "gremlin_default"
	// DefaultPort is used when the connection record carries no port
	DefaultPort = 443
	// DefaultTraversalSource is the server-side traversal source name
	DefaultTraversalSource = "g"
)

// submitter is the slice of the gremlin driver the hook uses. It exists so
// tests can stand in for the driver without a running server.
type submitter interface {
	submit(query string) (interface{}, error)
	close()
}

// driverSubmitter adapts *gremlingo.Client to the submitter seam.
type driverSubmitter struct {
	client *gremlingo.Client
}

func (d *driverSubmitter) submit(query string) (interface{}, error) {
	resultSet, err := d.client.Submit(query)
	if err != nil {
		return nil, err
	}
	return resultSet.All()
}

func (d *driverSubmitter) close() {
	d.client.Close()
}

// Hook wraps the gremlin-go driver behind the Lasso connector contract.
// The driver client is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	traversalSource string
	client          submitter
}

// NewHook resolves the named connection record and returns a gremlin hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}

	h := &Hook{
		BaseHook:        b,
		traversalSource: b.Connection().ExtraString("traversal_source", DefaultTraversalSource),
	}
	return h, nil
}

// GetURI builds the websocket URI for a connection record, filling in the
// default port when the record carries none: {host, no port} maps to
// ws://host:443/gremlin.
func GetURI(conn *connection.Connection) string {
	return fmt.Sprintf("ws://%s:%d/gremlin", conn.Host, conn.PortOrDefault(DefaultPort))
}

// getClient builds the driver client on first use and memoizes it.
func (h *Hook) getClient() (submitter, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.client != nil {
		return h.client, nil
	}

	conn := h.Connection()
	uri := GetURI(conn)

	// Cosmos DB expects the username in /dbs/{database}/colls/{collection}
	// form; plain Gremlin Server takes the login as-is.
	username := conn.Login
	if conn.Login != "" && conn.Schema != "" {
		username = fmt.Sprintf("/dbs/%s/colls/%s", conn.Login, conn.Schema)
	}

	client, err := gremlingo.NewClient(uri,
		func(settings *gremlingo.ClientSettings) {
			settings.TraversalSource = h.traversalSource
			if username != "" {
				settings.AuthInfo = gremlingo.BasicAuthInfo(username, conn.Password)
			}
		})
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to connect to gremlin server").
			WithDetail("uri", uri)
	}

	h.GetLogger().Info("gremlin client created",
		zap.String("uri", uri),
		zap.String("traversal_source", h.traversalSource))
	h.GetMetrics().HandleOpened()

	h.client = &driverSubmitter{client: client}
	return h.client, nil
}

// Run submits a traversal to the server and returns the driver's results
// unmodified. Driver errors surface on the error chain without translation.
func (h *Hook) Run(ctx context.Context, query string) (interface{}, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	h.GetLogger().Debug("submitting traversal", zap.String("query", query))

	results, err := client.submit(query)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "traversal failed").
			WithDetail("query", query)
	}

	return results, nil
}

// Close releases the driver client. Safe to call more than once.
func (h *Hook) Close() error {
	return h.CloseOnce(func() error {
		if h.client != nil {
			h.client.close()
			h.client = nil
			h.GetMetrics().HandleClosed()
		}
		return nil
	})
}
