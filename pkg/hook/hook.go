// Package hook defines the connector contract all Lasso hooks implement.
//
// A hook wraps exactly one external system's native client library behind a
// narrow run/close surface. It resolves its connection record by id, builds
// its client handle lazily on first use, memoizes it for the hook's lifetime,
// and releases it on Close. Commands pass through to the client unmodified and
// results come back unmodified; a hook adds no retry, batching, or error
// translation — failure handling belongs to the wrapped client and to the
// host runtime that invokes the hook.
package hook

import (
	"context"
	"io"
)

// ResultSet is the tabular result shape shared by SQL-flavored hooks.
// Rows preserve the column order given by Columns.
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Hook is the base contract for all connectors. A hook owns at most one live
// client handle at a time and must not be used after Close.
type Hook interface {
	// ConnID returns the id of the connection record the hook resolves.
	ConnID() string
	// Close releases the client handle. It is idempotent.
	Close() error
}

// Runner submits an opaque command to the external system.
type Runner interface {
	Hook
	// Run passes command through to the wrapped client and returns whatever
	// the client's result accessor returns. Client errors surface on the
	// returned error's chain without translation.
	Run(ctx context.Context, command string) (interface{}, error)
}

// RecordsFetcher is implemented by hooks whose commands yield rows.
type RecordsFetcher interface {
	Hook
	// GetRecords executes command and returns all resulting rows.
	GetRecords(ctx context.Context, command string) (*ResultSet, error)
}

// RecordsStreamer is implemented by hooks that can write a result set out
// row by row without materializing it. The output is tab-delimited with one
// line per row and NULLs rendered as \N, the form LOAD DATA expects with its
// default settings.
type RecordsStreamer interface {
	Hook
	// ToCSV executes command and writes each row to w as it is scanned,
	// returning the number of rows written.
	ToCSV(ctx context.Context, command string, w io.Writer) (int, error)
}
