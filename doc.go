// Package rowgraph materializes object graphs from flat, possibly
// denormalized SQL result rows.
//
// Joining a "one" side to a "many" side fans the one side out across rows:
// an order with three lines appears three times in the result set. This
// package turns such a row stream back into a deduplicated graph of linked
// entity instances, and also provides the two-query alternative that merges
// separately fetched child collections into already-built parents.
//
// # Mappers
//
// A Mapper builds instances of one entity type from rows. Its accessor
// table is derived once from the struct definition; column names come from
// `db` struct tags, falling back to snake_case of the field name:
//
//	type Order struct {
//	    ID         int       `db:"order_id"`
//	    CustomerID int       `db:"customer_id"`
//	    Lines      []*Line
//	}
//
//	orders := rowgraph.MapperFor[Order](rowgraph.WithColumnPrefix("o_"))
//
// A row whose identifier column is NULL (the unmatched side of an outer
// join) yields no instance for that type on that row.
//
// # Building a relationship graph
//
// Relationships are declared through a builder and validated as a whole
// when Build is called. Build fails fast with a ConfigError; no rows are
// ever processed through an invalid graph:
//
//	b := rowgraph.NewBuilder(provider, orders, lines)
//	b.Relationship(rowgraph.TypeOf[Order]()).
//	    HasMany(rowgraph.TypeOf[Line](), "Lines")
//	m, err := b.Build()
//
// # Materializing
//
// Run drives a forward-only Cursor and returns the root entities in first
// appearance order, with relationship properties populated. Identity maps
// scoped to the call guarantee at most one instance per (type, identifier)
// pair, and each parent's Many collection receives each distinct child
// once:
//
//	orders, err := rowgraph.All[Order](m, cursor)
//
// Cursors over database/sql and pgx result sets live in dialect/sql and
// dialect/pgx.
//
// # Batch merging
//
// MergeInto stitches a separately fetched child list into parents by join
// key, the two-query alternative to a wide join:
//
//	err := rowgraph.MergeInto(orders, lines, "Lines",
//	    func(o *Order) int { return o.ID },
//	    func(l *Line) int { return l.OrderID })
//
// Empty or nil inputs are deliberate no-ops: the parents come back
// untouched.
//
// # Concurrency
//
// A built Materializer is immutable and safe for concurrent use; all
// per-run state (identity maps, output list) is scoped to a single Run
// call. The engine never spawns goroutines and never blocks except on the
// cursor itself.
package rowgraph
