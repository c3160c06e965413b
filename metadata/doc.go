// Package metadata resolves entity types to the descriptors the rowgraph
// engine consumes, without hand-building them.
//
// The Provider reads identifier metadata from `db` struct tags: the field
// tagged `db:"...,id"` (or `db:"...,id,auto"` for database-generated
// identifiers) becomes the type's identifier property. Registration is
// explicit and generic:
//
//	p := metadata.NewProvider()
//	err := metadata.Register[Order](p, metadata.WithPrefix("o_"))
//
// The package also loads relationship graphs from YAML documents, so the
// shape of a joined query can live next to the query instead of in code:
//
//	root: Order
//	relationships:
//	  - {parent: Order, child: Line, property: Lines, cardinality: many}
//	  - {parent: Order, child: Customer, property: Customer, cardinality: one}
//
// ParseGraph decodes the document and GraphFile.Builder turns it into a
// rowgraph.Builder over a name-to-mapper registry.
package metadata
