package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowgraph"
	"github.com/syssam/rowgraph/metadata"
)

type order struct {
	ID     int64 `db:"order_id,id,auto"`
	Status string
}

type line struct {
	ID      int64 `db:"line_id,id"`
	OrderID int64
}

type customer struct {
	ID   int64 `db:"customer_id,id,auto"`
	Name string
}

func TestRegister(t *testing.T) {
	t.Parallel()
	t.Run("id tag with auto", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		require.NoError(t, metadata.Register[order](p, metadata.WithPrefix("o_")))
		d, err := p.Describe(rowgraph.TypeOf[order]())
		require.NoError(t, err)
		assert.Equal(t, "ID", d.IDProperty)
		assert.True(t, d.IDGenerated)
		assert.Equal(t, "o_", d.ColumnPrefix)
	})
	t.Run("id tag without auto", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		require.NoError(t, metadata.Register[line](p))
		d, err := p.Describe(rowgraph.TypeOf[line]())
		require.NoError(t, err)
		assert.False(t, d.IDGenerated)
	})
	t.Run("untagged falls back to ID field", func(t *testing.T) {
		t.Parallel()
		type plain struct {
			ID   int64
			Name string
		}
		p := metadata.NewProvider()
		require.NoError(t, metadata.Register[plain](p))
		d, err := p.Describe(rowgraph.TypeOf[plain]())
		require.NoError(t, err)
		assert.Equal(t, "ID", d.IDProperty)
		assert.False(t, d.IDGenerated)
	})
	t.Run("explicit identifier option wins over tags", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		require.NoError(t, metadata.Register[order](p,
			metadata.WithIDProperty("Status"),
			metadata.WithGeneratedID(),
		))
		d, err := p.Describe(rowgraph.TypeOf[order]())
		require.NoError(t, err)
		assert.Equal(t, "Status", d.IDProperty)
		assert.True(t, d.IDGenerated)
	})
}

func TestRegisterErrors(t *testing.T) {
	t.Parallel()
	t.Run("no identifier", func(t *testing.T) {
		t.Parallel()
		type anonymous struct {
			Name string
		}
		p := metadata.NewProvider()
		err := metadata.Register[anonymous](p)
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "no identifier")
	})
	t.Run("two identifier tags", func(t *testing.T) {
		t.Parallel()
		type twice struct {
			A int64 `db:"a,id"`
			B int64 `db:"b,id"`
		}
		p := metadata.NewProvider()
		err := metadata.Register[twice](p)
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "second identifier tag")
	})
	t.Run("unknown identifier option", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		err := metadata.Register[order](p, metadata.WithIDProperty("Missing"))
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "invalid identifier property name")
	})
	t.Run("duplicate registration", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		require.NoError(t, metadata.Register[order](p))
		err := metadata.Register[order](p)
		require.True(t, rowgraph.IsConfigError(err))
		assert.Contains(t, err.Error(), "duplicate registration")
	})
	t.Run("non-struct", func(t *testing.T) {
		t.Parallel()
		p := metadata.NewProvider()
		err := metadata.Register[int](p)
		assert.True(t, rowgraph.IsConfigError(err))
	})
}

func TestDescribeUnregistered(t *testing.T) {
	t.Parallel()
	p := metadata.NewProvider()
	_, err := p.Describe(rowgraph.TypeOf[order]())
	require.True(t, rowgraph.IsConfigError(err))
	assert.Contains(t, err.Error(), "not registered")
}
