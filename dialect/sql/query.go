package sql

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/rowgraph"
)

// Querier is the query surface the helpers need. *sql.DB, *sql.Tx and
// *sql.Conn all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query runs the statement and materializes its result set.
func Query(ctx context.Context, db Querier, m *rowgraph.Materializer, query string, args ...any) ([]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rowgraph/sql: query: %w", err)
	}
	defer rows.Close()
	return m.Run(NewCursor(rows))
}

// All runs the statement and materializes its result set as the graph's
// root type.
func All[T any](ctx context.Context, db Querier, m *rowgraph.Materializer, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rowgraph/sql: query: %w", err)
	}
	defer rows.Close()
	return rowgraph.All[T](m, NewCursor(rows))
}

// FetchPair loads parents and children concurrently, for the two-query
// pattern that feeds rowgraph.MergeInto. Either loader failing cancels
// the other through the shared context.
func FetchPair[P any, C any](
	ctx context.Context,
	parents func(context.Context) ([]*P, error),
	children func(context.Context) ([]*C, error),
) ([]*P, []*C, error) {
	var (
		ps []*P
		cs []*C
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ps, err = parents(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		cs, err = children(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ps, cs, nil
}
