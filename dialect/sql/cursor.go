package sql

import (
	"fmt"

	"github.com/syssam/rowgraph"
)

// ColumnScanner is the minimal result-set surface the adapter consumes.
// *sql.Rows satisfies it.
type ColumnScanner interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// NewCursor adapts a result set into a rowgraph.Cursor. Column names are
// read once, on the first advance; every row is scanned into generic
// values and handed to the engine. The caller still owns closing the
// underlying rows.
func NewCursor(src ColumnScanner) rowgraph.Cursor {
	return &cursor{src: src}
}

type cursor struct {
	src     ColumnScanner
	columns []string
	row     rowgraph.Row
	err     error
}

func (c *cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if c.columns == nil {
		cols, err := c.src.Columns()
		if err != nil {
			c.err = fmt.Errorf("rowgraph/sql: reading columns: %w", err)
			return false
		}
		c.columns = cols
	}
	if !c.src.Next() {
		return false
	}
	values := make([]any, len(c.columns))
	dest := make([]any, len(c.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := c.src.Scan(dest...); err != nil {
		c.err = fmt.Errorf("rowgraph/sql: scanning row: %w", err)
		return false
	}
	row, err := rowgraph.NewRow(c.columns, values)
	if err != nil {
		c.err = err
		return false
	}
	c.row = row
	return true
}

func (c *cursor) Row() rowgraph.Row { return c.row }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.src.Err()
}
