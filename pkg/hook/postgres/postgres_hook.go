// Package postgres provides a hook for PostgreSQL backed by a pgx connection
// pool. SQL passes through to the server unmodified.
package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "postgres"
	// DefaultConnID is the default connection id
	DefaultConnID = "postgres_default"
	// DefaultPort is used when the connection record carries no port
	DefaultPort = 5432
)

// Hook wraps a pgx connection pool behind the Lasso connector contract. The
// pool is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	pool *pgxpool.Pool
}

// NewHook resolves the named connection record and returns a postgres hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b}, nil
}

// connString builds the libpq-style connection URI for the record.
func (h *Hook) connString() string {
	conn := h.Connection()
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", conn.Host, conn.PortOrDefault(DefaultPort)),
		Path:   "/" + conn.Schema,
	}
	if conn.Login != "" {
		u.User = url.UserPassword(conn.Login, conn.Password)
	}
	if sslmode := conn.ExtraString("sslmode", ""); sslmode != "" {
		u.RawQuery = url.Values{"sslmode": []string{sslmode}}.Encode()
	}
	return u.String()
}

// getPool builds the connection pool on first use and memoizes it.
func (h *Hook) getPool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.pool != nil {
		return h.pool, nil
	}

	pool, err := pgxpool.New(ctx, h.connString())
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to create connection pool")
	}

	h.GetLogger().Info("postgres pool created",
		zap.String("host", h.Connection().Host),
		zap.String("database", h.Connection().Schema))
	h.GetMetrics().HandleOpened()

	h.pool = pool
	return h.pool, nil
}

// GetRecords executes a query and returns all resulting rows, preserving
// column order.
func (h *Hook) GetRecords(ctx context.Context, query string) (*hook.ResultSet, error) {
	pool, err := h.getPool(ctx)
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("executing query", zap.String("query", query))
	timer := metrics.NewTimer("get_records")

	rows, err := pool.Query(ctx, query)
	if err != nil {
		h.GetMetrics().ObserveCommand("get_records", timer.Stop(), err)
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "query failed").
			WithDetail("query", query)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	rs := &hook.ResultSet{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		rs.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			h.GetMetrics().ObserveCommand("get_records", timer.Stop(), err)
			return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to read row values")
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		h.GetMetrics().ObserveCommand("get_records", timer.Stop(), err)
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "error iterating rows")
	}

	h.GetMetrics().ObserveCommand("get_records", timer.Stop(), nil)
	return rs, nil
}

// Run executes a statement and returns the driver's command tag unmodified.
func (h *Hook) Run(ctx context.Context, statement string) (interface{}, error) {
	pool, err := h.getPool(ctx)
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("executing statement", zap.String("statement", statement))
	timer := metrics.NewTimer("run")

	tag, err := pool.Exec(ctx, statement)
	h.GetMetrics().ObserveCommand("run", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "statement failed").
			WithDetail("statement", statement)
	}

	return tag, nil
}

// Close releases the connection pool. Safe to call more than once.
func (h *Hook) Close() error {
	return h.CloseOnce(func() error {
		if h.pool != nil {
			h.pool.Close()
			h.pool = nil
			h.GetMetrics().HandleClosed()
		}
		return nil
	})
}
