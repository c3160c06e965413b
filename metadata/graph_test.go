package metadata_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowgraph"
	"github.com/syssam/rowgraph/metadata"
)

const orderGraphYAML = `
root: Order
relationships:
  - {parent: Order, child: Line, property: Lines, cardinality: many}
  - {parent: Order, child: Customer, property: Customer, cardinality: one}
prefixes:
  Order: o_
  Line: l_
  Customer: c_
`

type yamlOrder struct {
	ID       int64 `db:"order_id,id,auto"`
	Status   string
	Customer *customer
	Lines    []*line
}

func graphMappers() map[string]*rowgraph.Mapper {
	return map[string]*rowgraph.Mapper{
		"Order":    rowgraph.MapperFor[yamlOrder](),
		"Line":     rowgraph.MapperFor[line](),
		"Customer": rowgraph.MapperFor[customer](),
	}
}

func TestParseGraph(t *testing.T) {
	t.Parallel()
	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		g, err := metadata.ParseGraph(strings.NewReader(orderGraphYAML))
		require.NoError(t, err)
		assert.Equal(t, "Order", g.Root)
		require.Len(t, g.Relationships, 2)
		assert.Equal(t, "many", g.Relationships[0].Cardinality)
		assert.Equal(t, "o_", g.Prefixes["Order"])
	})
	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := metadata.ParseGraph(strings.NewReader("root: Order\nrelations: []\n"))
		assert.Error(t, err)
	})
	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := metadata.ParseGraph(strings.NewReader("relationships: []\n"))
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "no root type")
	})
}

func TestGraphFileBuilder(t *testing.T) {
	t.Parallel()
	g, err := metadata.ParseGraph(strings.NewReader(orderGraphYAML))
	require.NoError(t, err)

	p := metadata.NewProvider()
	// Registered without prefixes: the document's prefixes section
	// overrides them per type.
	require.NoError(t, metadata.Register[yamlOrder](p))
	require.NoError(t, metadata.Register[line](p))
	require.NoError(t, metadata.Register[customer](p))

	b, err := g.Builder(p, graphMappers())
	require.NoError(t, err)
	m, err := b.Build()
	require.NoError(t, err)

	columns := []string{"o_order_id", "o_status", "l_line_id", "l_order_id", "c_customer_id", "c_name"}
	row := func(values ...any) rowgraph.Row {
		r, err := rowgraph.NewRow(columns, values)
		require.NoError(t, err)
		return r
	}
	cursor := rowgraph.SliceCursor(
		row(int64(1), "open", int64(10), int64(1), int64(100), "ada"),
		row(int64(1), "open", int64(11), int64(1), int64(100), "ada"),
	)
	got, err := rowgraph.All[yamlOrder](m, cursor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Lines, 2)
	require.NotNil(t, got[0].Customer)
	assert.Equal(t, "ada", got[0].Customer.Name)
}

func TestGraphFileBuilderErrors(t *testing.T) {
	t.Parallel()
	provider := metadata.NewProvider()
	t.Run("unknown root type", func(t *testing.T) {
		t.Parallel()
		g := &metadata.GraphFile{Root: "Ghost"}
		_, err := g.Builder(provider, graphMappers())
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), `unknown type "Ghost"`)
	})
	t.Run("unknown child type", func(t *testing.T) {
		t.Parallel()
		g := &metadata.GraphFile{
			Root: "Order",
			Relationships: []metadata.GraphEdge{
				{Parent: "Order", Child: "Ghost", Property: "Lines", Cardinality: "many"},
			},
		}
		_, err := g.Builder(provider, graphMappers())
		assert.True(t, rowgraph.IsConfigError(err))
	})
	t.Run("bad cardinality", func(t *testing.T) {
		t.Parallel()
		g := &metadata.GraphFile{
			Root: "Order",
			Relationships: []metadata.GraphEdge{
				{Parent: "Order", Child: "Line", Property: "Lines", Cardinality: "several"},
			},
		}
		_, err := g.Builder(provider, graphMappers())
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "cardinality")
	})
	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()
		g := &metadata.GraphFile{Root: "Order"}
		_, err := g.Builder(nil, graphMappers())
		assert.True(t, rowgraph.IsConfigError(err))
	})
	t.Run("unknown prefix type", func(t *testing.T) {
		t.Parallel()
		g := &metadata.GraphFile{Root: "Order", Prefixes: map[string]string{"Ghost": "g_"}}
		_, err := g.Builder(provider, graphMappers())
		assert.True(t, rowgraph.IsConfigError(err))
	})
}
