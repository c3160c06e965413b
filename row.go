package rowgraph

import (
	"fmt"
	"strings"
)

// Row is one cursor position: an ordered, case-insensitive mapping from
// column name to value. A Row is read-only and only valid during the
// iteration step that produced it.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a Row from parallel column and value slices.
func NewRow(columns []string, values []any) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, fmt.Errorf("rowgraph: row has %d columns but %d values", len(columns), len(values))
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		// First occurrence wins when a join repeats a column name.
		key := strings.ToLower(c)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	return Row{columns: columns, values: values, index: index}, nil
}

// Lookup returns the value of the named column. The lookup is
// case-insensitive. The second result reports whether the column exists;
// a NULL value in an existing column returns (nil, true).
func (r Row) Lookup(name string) (any, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Columns returns the column names in result-set order.
func (r Row) Columns() []string { return r.columns }

// Values returns the column values in result-set order.
func (r Row) Values() []any { return r.values }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Cursor is a forward-only, one-pass source of Rows. It mirrors the
// iteration shape of sql.Rows: Next advances and reports whether a row is
// available, Row returns the current row, and Err reports the error, if
// any, that terminated iteration.
type Cursor interface {
	Next() bool
	Row() Row
	Err() error
}

// SliceCursor returns a Cursor over pre-built rows. It is primarily useful
// in tests and for replaying recorded row streams.
func SliceCursor(rows ...Row) Cursor {
	return &sliceCursor{rows: rows}
}

type sliceCursor struct {
	rows []Row
	pos  int
}

func (c *sliceCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Row() Row  { return c.rows[c.pos-1] }
func (c *sliceCursor) Err() error { return nil }
