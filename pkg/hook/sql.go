package hook

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lassohq/lasso/pkg/lassoerrors"
)

// ScanRows drains a database/sql result into a ResultSet, preserving column
// order. Byte slices are converted to strings; everything else is passed
// through as the driver returned it.
func ScanRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to read result columns")
	}

	rs := &ResultSet{Columns: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to scan row")
		}

		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		rs.Rows = append(rs.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "error iterating rows")
	}

	return rs, nil
}

// WriteRows drains a database/sql result into w in bulk-load form, one
// tab-delimited line per row, without holding more than one row in memory.
// It returns the number of rows written.
func WriteRows(rows *sql.Rows, w io.Writer) (int, error) {
	columns, err := rows.Columns()
	if err != nil {
		return 0, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to read result columns")
	}

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	var (
		sb    strings.Builder
		count int
	)
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return count, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "failed to scan row")
		}

		sb.Reset()
		for i, v := range values {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(FormatField(normalizeValue(v)))
		}
		sb.WriteByte('\n')

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return count, lassoerrors.Wrap(err, lassoerrors.ErrorTypeFile, "failed to write row")
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return count, lassoerrors.Wrap(err, lassoerrors.ErrorTypeData, "error iterating rows")
	}

	return count, nil
}

// FormatField renders a single cell for bulk-load output. NULL becomes \N
// and the delimiter characters are backslash-escaped.
func FormatField(value interface{}) string {
	if value == nil {
		return `\N`
	}

	s := fmt.Sprintf("%v", value)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// normalizeValue converts driver values to plain Go types
func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v
	default:
		return v
	}
}
