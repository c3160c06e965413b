package rowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRow(t *testing.T) {
	t.Parallel()
	t.Run("mismatched lengths", func(t *testing.T) {
		t.Parallel()
		_, err := NewRow([]string{"a", "b"}, []any{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 columns but 1 values")
	})
	t.Run("first occurrence wins", func(t *testing.T) {
		t.Parallel()
		row := mustRow(t, []string{"id", "ID"}, []any{int64(1), int64(2)})
		v, ok := row.Lookup("id")
		require.True(t, ok)
		assert.Equal(t, int64(1), v)
	})
}

func TestRowLookup(t *testing.T) {
	t.Parallel()
	row := mustRow(t, []string{"O_Order_ID", "o_status"}, []any{int64(7), nil})
	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		v, ok := row.Lookup("o_order_id")
		require.True(t, ok)
		assert.Equal(t, int64(7), v)
	})
	t.Run("null column exists", func(t *testing.T) {
		t.Parallel()
		v, ok := row.Lookup("o_status")
		require.True(t, ok)
		assert.Nil(t, v)
	})
	t.Run("absent column", func(t *testing.T) {
		t.Parallel()
		_, ok := row.Lookup("o_total")
		assert.False(t, ok)
	})
	t.Run("accessors", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, row.Len())
		assert.Equal(t, []string{"O_Order_ID", "o_status"}, row.Columns())
		assert.Equal(t, []any{int64(7), nil}, row.Values())
	})
}

func TestSliceCursor(t *testing.T) {
	t.Parallel()
	r1 := mustRow(t, []string{"id"}, []any{int64(1)})
	r2 := mustRow(t, []string{"id"}, []any{int64(2)})
	c := SliceCursor(r1, r2)
	var got []any
	for c.Next() {
		v, ok := c.Row().Lookup("id")
		require.True(t, ok)
		got = append(got, v)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []any{int64(1), int64(2)}, got)
	assert.False(t, c.Next(), "exhausted cursor stays exhausted")
}
