package rowgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared fixtures: a small order/line/customer schema exercised across
// the package tests, with the prefixed-alias column convention used by
// joined selects (o_order_id, l_line_id, c_customer_id).

type Order struct {
	ID       int64 `db:"order_id"`
	Status   string
	Customer *Customer
	Lines    []*Line
}

type Line struct {
	ID        int64 `db:"line_id"`
	OrderID   int64
	ProductID int64
	Qty       int
}

type Customer struct {
	ID   int64 `db:"customer_id"`
	Name string
}

func testProvider(t *testing.T) *StaticProvider {
	t.Helper()
	p := NewStaticProvider()
	require.NoError(t, p.Add(TypeOf[Order](), &Descriptor{IDProperty: "ID", IDGenerated: true, ColumnPrefix: "o_"}))
	require.NoError(t, p.Add(TypeOf[Line](), &Descriptor{IDProperty: "ID", IDGenerated: true, ColumnPrefix: "l_"}))
	require.NoError(t, p.Add(TypeOf[Customer](), &Descriptor{IDProperty: "ID", IDGenerated: true, ColumnPrefix: "c_"}))
	return p
}

func mustRow(t *testing.T, columns []string, values []any) Row {
	t.Helper()
	row, err := NewRow(columns, values)
	require.NoError(t, err)
	return row
}

// errCursor yields its rows and then fails iteration with err.
type errCursor struct {
	rows []Row
	pos  int
	err  error
}

func (c *errCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *errCursor) Row() Row   { return c.rows[c.pos-1] }
func (c *errCursor) Err() error { return c.err }
