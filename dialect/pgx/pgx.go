// Package pgx feeds pgx result sets into the rowgraph engine without
// routing them through database/sql. Column names come from the result's
// field descriptions, values from pgx's own decoding.
package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/syssam/rowgraph"
)

// Rows is the subset of pgx.Rows the cursor consumes.
type Rows interface {
	FieldDescriptions() []pgconn.FieldDescription
	Next() bool
	Values() ([]any, error)
	Err() error
}

// NewCursor adapts a pgx result set into a rowgraph.Cursor. The caller
// still owns closing the rows.
func NewCursor(rows Rows) rowgraph.Cursor {
	return &cursor{rows: rows}
}

type cursor struct {
	rows    Rows
	columns []string
	row     rowgraph.Row
	err     error
}

func (c *cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if c.columns == nil {
		fields := c.rows.FieldDescriptions()
		c.columns = make([]string, len(fields))
		for i, f := range fields {
			c.columns[i] = f.Name
		}
	}
	if !c.rows.Next() {
		return false
	}
	values, err := c.rows.Values()
	if err != nil {
		c.err = fmt.Errorf("rowgraph/pgx: reading row values: %w", err)
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
	return c.rows.Err()
}

// Querier is the query surface the helpers need. *pgx.Conn, pgx.Tx and
// *pgxpool.Pool all satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Query runs the statement and materializes its result set.
func Query(ctx context.Context, db Querier, m *rowgraph.Materializer, sql string, args ...any) ([]any, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("rowgraph/pgx: query: %w", err)
	}
	defer rows.Close()
	return m.Run(NewCursor(rows))
}

// All runs the statement and materializes its result set as the graph's
// root type.
func All[T any](ctx context.Context, db Querier, m *rowgraph.Materializer, sql string, args ...any) ([]*T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("rowgraph/pgx: query: %w", err)
	}
	defer rows.Close()
	return rowgraph.All[T](m, NewCursor(rows))
}
