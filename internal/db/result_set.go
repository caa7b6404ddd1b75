package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ResultSet is a lazy, forward-only cursor over the rows of a query.
//
// Call Next before reading the first row. Once Next returns false the
// result set is closed and cannot be restarted.
type ResultSet struct {
	rows    *sqlx.Rows
	columns []string
	index   map[string]int
	current []any
	closed  bool
	err     error
}

func newResultSet(rows *sqlx.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		key := strings.ToLower(c)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	return &ResultSet{
		rows:    rows,
		columns: columns,
		index:   index,
	}, nil
}

// Next advances to the next row. It returns false when the rows are
// exhausted, an error occurred, or the set was closed.
func (rs *ResultSet) Next() bool {
	if rs.closed {
		return false
	}

	if !rs.rows.Next() {
		rs.err = rs.rows.Err()
		_ = rs.Close()
		return false
	}

	row := make([]any, len(rs.columns))
	scans := make([]any, len(rs.columns))
	for i := range scans {
		scans[i] = &row[i]
	}
	if err := rs.rows.Scan(scans...); err != nil {
		rs.err = fmt.Errorf("%w: failed to scan row: %w", ErrStatementFailed, err)
		_ = rs.Close()
		return false
	}

	rs.current = row
	return true
}

// Err returns the error, if any, that stopped the iteration.
func (rs *ResultSet) Err() error {
	return rs.err
}

// Close releases the cursor. It is safe to call more than once.
func (rs *ResultSet) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	rs.current = nil
	return rs.rows.Close()
}

// invalidate closes rs with err unless it is already closed.
func (rs *ResultSet) invalidate(err error) {
	if rs.closed {
		return
	}
	rs.err = err
	_ = rs.Close()
}

// ColumnCount returns the number of columns of the result.
func (rs *ResultSet) ColumnCount() int {
	return len(rs.columns)
}

// Columns returns the column names of the result.
func (rs *ResultSet) Columns() []string {
	return rs.columns
}

// ColumnName returns the name of the column at index i, or an empty
// string if i is out of range.
func (rs *ResultSet) ColumnName(i int) string {
	if i < 0 || i >= len(rs.columns) {
		return ""
	}
	return rs.columns[i]
}

// Value returns the raw value of the column at index i for the current
// row. NULL and out of range values are nil.
func (rs *ResultSet) Value(i int) any {
	if i < 0 || i >= len(rs.current) {
		return nil
	}
	return rs.current[i]
}

// Values returns a copy of the current row.
func (rs *ResultSet) Values() []any {
	return append([]any(nil), rs.current...)
}

// StringAt returns the value of the column at index i as text. The boolean
// is false for NULL.
func (rs *ResultSet) StringAt(i int) (string, bool) {
	return toString(rs.Value(i))
}

// String returns the value of the named column as text. Column names are
// matched case-insensitively. The boolean is false for NULL or unknown
// columns.
func (rs *ResultSet) String(column string) (string, bool) {
	i, found := rs.index[strings.ToLower(column)]
	if !found {
		return "", false
	}
	return rs.StringAt(i)
}

// Int returns the value of the named column as an integer. The boolean is
// false for NULL, unknown columns or values that are not numeric.
func (rs *ResultSet) Int(column string) (int64, bool) {
	i, found := rs.index[strings.ToLower(column)]
	if !found {
		return 0, false
	}
	return toInt64(rs.Value(i))
}

// Scan copies the current row into dest, a pointer to a struct whose
// fields carry db tags.
func (rs *ResultSet) Scan(dest any) error {
	if rs.closed || rs.current == nil {
		return fmt.Errorf("%w: no current row", ErrStatementFailed)
	}
	if err := rs.rows.StructScan(dest); err != nil {
		return fmt.Errorf("%w: failed to scan row: %w", ErrStatementFailed, err)
	}
	return nil
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		if val {
			return "1", true
		}
		return "0", true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(val), true
	}
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case float64:
		return int64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil
	}
	return 0, false
}
