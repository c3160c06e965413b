// Package replay captures row streams and plays them back. A Recording is
// the portable form of one result set: capture a cursor once (from a live
// database, typically), persist it with Encode, and rebuild cursors from
// it at will. Recordings make materializer behavior reproducible in tests
// and bug reports without the database that produced the rows.
package replay

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/rowgraph"
)

// Recording is a captured result set: the column names and every row's
// values, in iteration order.
type Recording struct {
	Columns []string `msgpack:"columns"`
	Rows    [][]any  `msgpack:"rows"`
}

// Record drains the cursor into a Recording. The first row fixes the
// column set; a later row with different columns fails the capture.
func Record(cursor rowgraph.Cursor) (*Recording, error) {
	rec := &Recording{}
	for cursor.Next() {
		row := cursor.Row()
		if rec.Columns == nil {
			rec.Columns = append([]string(nil), row.Columns()...)
		} else if !sameColumns(rec.Columns, row.Columns()) {
			return nil, fmt.Errorf("replay: row %d changes the column set", len(rec.Rows)+1)
		}
		rec.Rows = append(rec.Rows, append([]any(nil), row.Values()...))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("replay: capturing rows: %w", err)
	}
	return rec, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Cursor returns a fresh cursor over the recorded rows. Each call starts
// from the first row.
func (r *Recording) Cursor() rowgraph.Cursor {
	return &cursor{rec: r}
}

type cursor struct {
	rec *Recording
	pos int
	row rowgraph.Row
	err error
}

func (c *cursor) Next() bool {
	if c.err != nil || c.pos >= len(c.rec.Rows) {
		return false
	}
	row, err := rowgraph.NewRow(c.rec.Columns, c.rec.Rows[c.pos])
	if err != nil {
		c.err = fmt.Errorf("replay: row %d: %w", c.pos+1, err)
		return false
	}
	c.pos++
	c.row = row
	return true
}

func (c *cursor) Row() rowgraph.Row { return c.row }
func (c *cursor) Err() error        { return c.err }

// Encode writes the recording as msgpack.
func (r *Recording) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("replay: encoding recording: %w", err)
	}
	return nil
}

// Decode reads a recording written by Encode. Integer values come back as
// int64 and floats as float64 regardless of their original width, which
// the engine's identifier normalization absorbs.
func Decode(rd io.Reader) (*Recording, error) {
	dec := msgpack.NewDecoder(rd)
	dec.UseLooseInterfaceDecoding(true)
	var r Recording
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("replay: decoding recording: %w", err)
	}
	return &r, nil
}
