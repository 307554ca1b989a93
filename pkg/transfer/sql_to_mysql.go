// Package transfer implements data movement actions between hooks. A transfer
// pulls a result set from a source hook and lands it in a destination,
// optionally running setup and cleanup statements around the load.
package transfer

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/mysql"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/logger"
	"github.com/lassohq/lasso/pkg/metrics"
)

// destination is the slice of the MySQL hook a transfer drives. It exists so
// tests can stand in for the hook without a running server.
type destination interface {
	Run(ctx context.Context, statement string) (interface{}, error)
	InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) error
	BulkLoad(ctx context.Context, table, file string) error
	Close() error
}

// SQLToMySQL moves the result of a SQL query into a MySQL table. The source
// is any hook that can fetch records; the destination is always MySQL.
//
// With BulkLoad set, rows are staged to a tab-delimited temp file and loaded
// with LOAD DATA LOCAL INFILE, which is much faster for large result sets but
// requires local-infile enabled on the server. Sources that can stream
// (hook.RecordsStreamer) write the staging file row by row; only the non-bulk
// path holds the full result set in memory. Otherwise rows go through a
// single multi-row insert transaction, preserving the source column order.
type SQLToMySQL struct {
	// Source produces the rows. It is borrowed, not owned: the caller
	// closes it.
	Source hook.RecordsFetcher

	// SQL is the query run against Source.
	SQL string

	// MySQLConnID names the destination connection record.
	MySQLConnID string

	// Table is the destination table.
	Table string

	// Preoperator statements run against the destination before the load,
	// Postoperator statements after. Either may be empty.
	Preoperator  []string
	Postoperator []string

	// BulkLoad selects the LOAD DATA LOCAL INFILE path.
	BulkLoad bool

	// newDestination overrides destination construction in tests.
	newDestination func() (destination, error)
}

// Execute runs the transfer. The destination hook is created and closed
// within the call.
func (t *SQLToMySQL) Execute(ctx context.Context) error {
	if t.Source == nil {
		return lassoerrors.New(lassoerrors.ErrorTypeValidation, "transfer has no source hook")
	}
	if t.SQL == "" || t.Table == "" {
		return lassoerrors.New(lassoerrors.ErrorTypeValidation, "transfer requires sql and table")
	}

	ctx = context.WithValue(ctx, logger.TransferKey, "sql_to_mysql")
	log := logger.WithContext(ctx).With(zap.String("table", t.Table))

	var (
		records *hook.ResultSet
		staged  string
		moved   int
		err     error
	)
	if t.BulkLoad {
		staged, moved, err = t.stage(ctx, log)
		if err != nil {
			return err
		}
		defer os.Remove(staged)
	} else {
		log.Info("fetching source records", zap.String("sql", t.SQL))
		records, err = t.Source.GetRecords(ctx, t.SQL)
		if err != nil {
			return lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to fetch source records")
		}
		moved = records.Len()
	}

	dest, err := t.destination()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dest.Close(); cerr != nil {
			log.Warn("failed to close destination hook", zap.Error(cerr))
		}
	}()

	for _, stmt := range t.Preoperator {
		log.Info("running preoperator", zap.String("statement", stmt))
		if _, err := dest.Run(ctx, stmt); err != nil {
			return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "preoperator failed")
		}
	}

	mode := "rows"
	if t.BulkLoad {
		mode = "bulk"
		err = dest.BulkLoad(ctx, t.Table, staged)
	} else {
		err = dest.InsertRows(ctx, t.Table, records.Columns, records.Rows)
	}
	if err != nil {
		return err
	}

	for _, stmt := range t.Postoperator {
		log.Info("running postoperator", zap.String("statement", stmt))
		if _, err := dest.Run(ctx, stmt); err != nil {
			return lassoerrors.Wrap(err, lassoerrors.ErrorTypeRemoteExecution, "postoperator failed")
		}
	}

	metrics.RowsMoved.WithLabelValues(t.Source.ConnID(), t.MySQLConnID, mode).Add(float64(moved))
	log.Info("transfer complete", zap.Int("rows", moved), zap.String("mode", mode))
	return nil
}

func (t *SQLToMySQL) destination() (destination, error) {
	if t.newDestination != nil {
		return t.newDestination()
	}
	if t.BulkLoad {
		return mysql.NewHookWithLocalInfile(t.MySQLConnID)
	}
	return mysql.NewHook(t.MySQLConnID)
}

// stage writes the extraction to a temp file in bulk-load form and returns
// the file name and row count. Sources that can stream write it row by row;
// others are fetched whole and staged from memory.
func (t *SQLToMySQL) stage(ctx context.Context, log *zap.Logger) (string, int, error) {
	if streamer, ok := t.Source.(hook.RecordsStreamer); ok {
		log.Info("streaming source records", zap.String("sql", t.SQL))
		return t.stageStreaming(ctx, streamer)
	}

	log.Info("fetching source records", zap.String("sql", t.SQL))
	records, err := t.Source.GetRecords(ctx, t.SQL)
	if err != nil {
		return "", 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to fetch source records")
	}

	file, err := stageRecords(records)
	if err != nil {
		return "", 0, err
	}
	return file, records.Len(), nil
}

func (t *SQLToMySQL) stageStreaming(ctx context.Context, streamer hook.RecordsStreamer) (string, int, error) {
	f, err := os.CreateTemp("", "lasso-transfer-*.tsv")
	if err != nil {
		return "", 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to create staging file")
	}

	count, err := streamer.ToCSV(ctx, t.SQL, f)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to stream source records")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to close staging file")
	}
	return f.Name(), count, nil
}

// stageRecords writes the rows tab-delimited, one row per line, NULLs as \N.
// The format matches what LOAD DATA expects with the default escape settings.
func stageRecords(records *hook.ResultSet) (string, error) {
	f, err := os.CreateTemp("", "lasso-transfer-*.tsv")
	if err != nil {
		return "", lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to create staging file")
	}

	var sb strings.Builder
	for _, row := range records.Rows {
		sb.Reset()
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(hook.FormatField(cell))
		}
		sb.WriteByte('\n')
		if _, err := f.WriteString(sb.String()); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to write staging file")
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to close staging file")
	}
	return f.Name(), nil
}
