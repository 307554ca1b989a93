// Package http provides a hook for plain HTTP endpoints. It wraps a resty
// client; requests go out as given and responses come back as the client
// returns them. When the connection's check_response extra is set, HTTP error
// statuses are promoted to errors, mirroring how callers usually want a task
// to fail on a 4xx/5xx.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "http"
	// DefaultConnID is the default connection id
	DefaultConnID = "http_default"
)

// RequestOptions parameterizes a single request.
type RequestOptions struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     interface{}
}

// Hook wraps a resty client behind the Lasso connector contract. The client
// is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	checkResponse bool
	client        *resty.Client
}

// NewHook resolves the named connection record and returns an http hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{
		BaseHook:      b,
		checkResponse: b.Connection().ExtraBool("check_response", true),
	}, nil
}

// BaseURL builds the endpoint base URL from the connection record. The schema
// field holds the protocol, defaulting to http.
func (h *Hook) BaseURL() string {
	conn := h.Connection()
	protocol := conn.Schema
	if protocol == "" {
		protocol = "http"
	}
	if conn.Port > 0 {
		return fmt.Sprintf("%s://%s:%d", protocol, conn.Host, conn.Port)
	}
	return fmt.Sprintf("%s://%s", protocol, conn.Host)
}

// getClient builds the resty client on first use and memoizes it.
func (h *Hook) getClient() (*resty.Client, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.client != nil {
		return h.client, nil
	}

	conn := h.Connection()
	client := resty.New().
		SetBaseURL(h.BaseURL()).
		SetTimeout(time.Duration(conn.ExtraInt("timeout_seconds", 60)) * time.Second)
	if conn.Login != "" {
		client.SetBasicAuth(conn.Login, conn.Password)
	}

	h.GetLogger().Info("http client created", zap.String("base_url", h.BaseURL()))
	h.GetMetrics().HandleOpened()

	h.client = client
	return h.client, nil
}

// Run issues a GET against the endpoint and returns the client's response
// unmodified.
func (h *Hook) Run(ctx context.Context, endpoint string) (interface{}, error) {
	return h.RunWithOptions(ctx, RequestOptions{Method: http.MethodGet, Endpoint: endpoint})
}

// RunWithOptions issues a request and returns the client's response
// unmodified. Transport errors surface on the error chain; HTTP error
// statuses become errors only when check_response is set on the connection.
func (h *Hook) RunWithOptions(ctx context.Context, opts RequestOptions) (*resty.Response, error) {
	client, err := h.getClient()
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	h.GetLogger().Info("sending request",
		zap.String("method", method),
		zap.String("endpoint", opts.Endpoint))
	timer := metrics.NewTimer("request")

	req := client.R().SetContext(ctx)
	if len(opts.Headers) > 0 {
		req.SetHeaders(opts.Headers)
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	resp, err := req.Execute(method, opts.Endpoint)
	h.GetMetrics().ObserveCommand("request", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "request failed").
			WithDetail("method", method).
			WithDetail("endpoint", opts.Endpoint)
	}

	if h.checkResponse && resp.IsError() {
		return resp, lassoerrors.Newf(lassoerrors.ErrorTypeRemoteExecution, "request returned %s", resp.Status()).
			WithDetail("method", method).
			WithDetail("endpoint", opts.Endpoint).
			WithDetail("status_code", resp.StatusCode())
	}

	return resp, nil
}

// Poke issues a GET and reports whether the endpoint answered with a
// non-error status. Transport errors are returned as false with no error so
// callers can keep polling.
func (h *Hook) Poke(ctx context.Context, endpoint string) (bool, error) {
	client, err := h.getClient()
	if err != nil {
		return false, err
	}

	resp, err := client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		h.GetLogger().Debug("poke failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false, nil
	}

	return !resp.IsError(), nil
}

// Close releases the client. Safe to call more than once.
func (h *Hook) Close() error {
	return h.CloseOnce(func() error {
		if h.client != nil {
			h.client = nil
			h.GetMetrics().HandleClosed()
		}
		return nil
	})
}
