package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every Store backend must share.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, err := s.Get(ctx, "orders_nobody")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.Nil(t, v)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "orders_user1", []byte(`[{"id":"ORD-1"}]`)))

		v, err := s.Get(ctx, "orders_user1")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"ORD-1"}]`, string(v))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "orders_user2", []byte(`[]`)))
		require.NoError(t, s.Put(ctx, "orders_user2", []byte(`[{"id":"ORD-2"}]`)))

		v, err := s.Get(ctx, "orders_user2")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"ORD-2"}]`, string(v))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "orders_user3", []byte(`[]`)))
		require.NoError(t, s.Delete(ctx, "orders_user3"))

		_, err := s.Get(ctx, "orders_user3")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, "orders_ghost"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "orders_a", []byte(`"a"`)))
		require.NoError(t, s.Put(ctx, "orders_b", []byte(`"b"`)))

		a, err := s.Get(ctx, "orders_a")
		require.NoError(t, err)
		b, err := s.Get(ctx, "orders_b")
		require.NoError(t, err)
		assert.Equal(t, `"a"`, string(a))
		assert.Equal(t, `"b"`, string(b))
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
