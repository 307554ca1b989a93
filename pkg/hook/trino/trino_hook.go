// Package trino provides a hook for Trino, the distributed SQL query engine.
// It wraps the official trino-go-client database/sql driver; SQL passes
// through to the engine unmodified.
package trino

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/trinodb/trino-go-client/trino"

	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "trino"
	// DefaultConnID is the default connection id
	DefaultConnID = "trino_default"
	// DefaultPort is used when the connection record carries no port
	DefaultPort = 8080
	// DefaultCatalog is used when the record carries no catalog extra
	DefaultCatalog = "hive"
)

// Hook wraps the Trino driver behind the Lasso connector contract. The
// database handle is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	db *sql.DB
}

// NewHook resolves the named connection record and returns a trino hook.
func NewHook(connID string) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b}, nil
}

// getDB builds the database handle on first use and memoizes it.
func (h *Hook) getDB() (*sql.DB, error) {
	if err := h.CheckUsable(); err != nil {
		return nil, err
	}
	if h.db != nil {
		return h.db, nil
	}

	conn := h.Connection()
	protocol := conn.ExtraString("protocol", "http")
	user := conn.Login
	if user == "" {
		user = "lasso"
	}

	cfg := trino.Config{
		ServerURI: fmt.Sprintf("%s://%s@%s:%d", protocol, user, conn.Host, conn.PortOrDefault(DefaultPort)),
		Source:    "lasso",
		Catalog:   conn.ExtraString("catalog", DefaultCatalog),
		Schema:    conn.Schema,
	}
	dsn, err := cfg.FormatDSN()
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConfig, "failed to build trino DSN")
	}

	db, err := sql.Open("trino", dsn)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to open trino connection")
	}

	h.GetLogger().Info("trino connection opened",
		zap.String("host", conn.Host),
		zap.String("catalog", cfg.Catalog),
		zap.String("schema", cfg.Schema))
	h.GetMetrics().HandleOpened()

	h.db = db
	return h.db, nil
}

// GetRecords executes a query and returns all resulting rows, preserving
// column order.
func (h *Hook) GetRecords(ctx context.Context, query string) (*hook.ResultSet, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("executing query", zap.String("query", query))
	timer := metrics.NewTimer("get_records")

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		h.GetMetrics().ObserveCommand("get_records", timer.Stop(), err)
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "query failed").
			WithDetail("query", query)
	}
	defer rows.Close()

	rs, err := hook.ScanRows(rows)
	h.GetMetrics().ObserveCommand("get_records", timer.Stop(), err)
	return rs, err
}

// ToCSV executes a query and streams the rows to w in bulk-load form, one
// tab-delimited line per row, without materializing the result set. It
// returns the number of rows written.
func (h *Hook) ToCSV(ctx context.Context, query string, w io.Writer) (int, error) {
	db, err := h.getDB()
	if err != nil {
		return 0, err
	}

	h.GetLogger().Info("streaming query", zap.String("query", query))
	timer := metrics.NewTimer("to_csv")

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		h.GetMetrics().ObserveCommand("to_csv", timer.Stop(), err)
		return 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "query failed").
			WithDetail("query", query)
	}
	defer rows.Close()

	count, err := hook.WriteRows(rows, w)
	h.GetMetrics().ObserveCommand("to_csv", timer.Stop(), err)
	return count, err
}

// Run executes a statement and returns the driver's result unmodified.
func (h *Hook) Run(ctx context.Context, statement string) (interface{}, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}

	h.GetLogger().Info("executing statement", zap.String("statement", statement))
	timer := metrics.NewTimer("run")

	result, err := db.ExecContext(ctx, statement)
	h.GetMetrics().ObserveCommand("run", timer.Stop(), err)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "statement failed").
			WithDetail("statement", statement)
	}

	return result, nil
}

// Close releases the database handle. Safe to call more than once.
func (h *Hook) Close() error {
	return h.CloseOnce(func() error {
		if h.db == nil {
			return nil
		}
		err := h.db.Close()
		h.db = nil
		h.GetMetrics().HandleClosed()
		return err
	})
}
