// Package dialect groups the adapters that feed database result sets into
// the rowgraph engine. The engine itself is storage-agnostic: it consumes
// the rowgraph.Cursor interface and never touches a driver. The sql
// subpackage adapts database/sql result sets (anything satisfying its
// ColumnScanner interface), and the pgx subpackage adapts pgx result sets
// directly, skipping the database/sql layer.
package dialect
