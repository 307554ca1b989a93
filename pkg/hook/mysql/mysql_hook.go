// Package mysql provides a hook for MySQL. It wraps go-sql-driver/mysql and
// adds the two load paths transfers need: row-wise inserts that preserve
// column order, and bulk loading from a staged local file via
// LOAD DATA LOCAL INFILE.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	godriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/base"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/metrics"
)

const (
	// ConnType is the connection type served by this hook
	ConnType = "mysql"
	// DefaultConnID is the default connection id
	DefaultConnID = "mysql_default"
	// DefaultPort is used when the connection record carries no port
	DefaultPort = 3306
)

// Hook wraps the MySQL driver behind the Lasso connector contract. The
// database handle is created lazily on first use and reused until Close.
type Hook struct {
	*base.BaseHook

	// localInfile must be set before the first query for bulk loading to be
	// negotiated on the connection.
	localInfile bool
	db          *sql.DB
}

// NewHook resolves the named connection record and returns a mysql hook.
func NewHook(connID string) (*Hook, error) {
	return newHook(connID, false)
}

// NewHookWithLocalInfile returns a mysql hook whose connections allow
// LOAD DATA LOCAL INFILE. Used by transfers in bulk mode.
func NewHookWithLocalInfile(connID string) (*Hook, error) {
	return newHook(connID, true)
}

func newHook(connID string, localInfile bool) (*Hook, error) {
	b, err := base.NewBaseHook(ConnType, connID)
	if err != nil {
		return nil, err
	}
	return &Hook{BaseHook: b, localInfile: localInfile}, nil
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

	cfg := godriver.NewConfig()
	cfg.User = conn.Login
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", conn.Host, conn.PortOrDefault(DefaultPort))
	cfg.DBName = conn.Schema
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	if h.localInfile {
		cfg.AllowAllFiles = true
	}
	if charset := conn.ExtraString("charset", ""); charset != "" {
		cfg.Params = map[string]string{"charset": charset}
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConnection, "failed to open mysql connection")
	}
	db.SetConnMaxLifetime(time.Hour)

	h.GetLogger().Info("mysql connection opened",
		zap.String("addr", cfg.Addr),
		zap.String("database", cfg.DBName),
		zap.Bool("local_infile", h.localInfile))
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

// InsertRows inserts rows into a table one statement per row inside a single
// transaction, preserving the given column order. columns may be nil to
// insert positionally.
func (h *Hook) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	db, err := h.getDB()
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		h.GetLogger().Info("no rows to insert", zap.String("table", table))
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(rows[0])), ",")
	var insertSQL string
	if len(columns) > 0 {
		insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	} else {
		insertSQL = fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)
	}

	timer := metrics.NewTimer("insert_rows")
	err = h.insertInTx(ctx, db, insertSQL, rows)
	h.GetMetrics().ObserveCommand("insert_rows", timer.Stop(), err)
	if err != nil {
		return err
	}

	h.GetLogger().Info("rows inserted", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

func (h *Hook) insertInTx(ctx context.Context, db *sql.DB, insertSQL string, rows [][]interface{}) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to begin transaction")
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to prepare insert").
			WithDetail("statement", insertSQL)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "insert failed").
				WithDetail("statement", insertSQL)
		}
	}

	if err := tx.Commit(); err != nil {
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "failed to commit inserts")
	}
	return nil
}

// BulkLoad loads a staged local file into a table with
// LOAD DATA LOCAL INFILE. The file must be tab-delimited with newline
// line terminators, matching what transfers stage. The hook must have been
// created with NewHookWithLocalInfile.
func (h *Hook) BulkLoad(ctx context.Context, table, file string) error {
	if !h.localInfile {
		return lassoerrors.New(lassoerrors.ErrorTypeConfig, "bulk load requires a hook created with local infile enabled")
	}

	db, err := h.getDB()
	if err != nil {
		return err
	}

	godriver.RegisterLocalFile(file)
	defer godriver.DeregisterLocalFile(file)

	loadSQL := fmt.Sprintf(
		"LOAD DATA LOCAL INFILE '%s' INTO TABLE %s FIELDS TERMINATED BY '\\t' LINES TERMINATED BY '\\n'",
		file, table,
	)

	h.GetLogger().Info("bulk loading file", zap.String("table", table), zap.String("file", file))
	timer := metrics.NewTimer("bulk_load")

	_, err = db.ExecContext(ctx, loadSQL)
	h.GetMetrics().ObserveCommand("bulk_load", timer.Stop(), err)
	if err != nil {
		return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "bulk load failed").
			WithDetail("table", table).
			WithDetail("file", file)
	}

	return nil
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
