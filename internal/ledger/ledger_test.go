package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error { return f.err }
func (f failingStore) Delete(context.Context, string) error { return f.err }
func (f failingStore) Close() error { return nil }

func newOrder(id string) domain.Order {
	return domain.Order{
		ID: id,
		Items: []domain.CartLine{
			{ProductID: 1, Title: "Headphones", UnitPrice: decimal.RequireFromString("20.00"), Quantity: 2},
		},
		Total:         decimal.RequireFromString("45.00"),
		PaymentMethod: domain.PaymentKindJazzCash,
		CreatedAt:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Status:        domain.OrderStatusConfirmed,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "orders_user_2abc", Key("user_2abc"))
}

func TestListFor_NoHistory(t *testing.T) {
	l := New(storage.NewMemoryStore())

	orders, err := l.ListFor(context.Background(), "user1")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestListFor_EmptyUser(t *testing.T) {
	l := New(storage.NewMemoryStore())

	orders, err := l.ListFor(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestAppend_NewestFirst(t *testing.T) {
	ctx := context.Background()
	l := New(storage.NewMemoryStore())

	require.NoError(t, l.Append(ctx, "user1", newOrder("ORD-1")))
	require.NoError(t, l.Append(ctx, "user1", newOrder("ORD-2")))
	require.NoError(t, l.Append(ctx, "user1", newOrder("ORD-3")))

	orders, err := l.ListFor(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-3", orders[0].ID)
	assert.Equal(t, "ORD-2", orders[1].ID)
	assert.Equal(t, "ORD-1", orders[2].ID)
}

func TestAppend_RoundTripsOrder(t *testing.T) {
	ctx := context.Background()
	l := New(storage.NewMemoryStore())
	want := newOrder("ORD-1")

	require.NoError(t, l.Append(ctx, "user1", want))

	got, err := l.Get(ctx, "user1", "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.Total.Equal(got.Total))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, want.Status, got.Status)
	require.Len(t, got.Items, 1)
	assert.True(t, want.Items[0].UnitPrice.Equal(got.Items[0].UnitPrice))
}

func TestAppend_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	l := New(storage.NewMemoryStore())

	require.NoError(t, l.Append(ctx, "user1", newOrder("ORD-1")))

	orders, err := l.ListFor(ctx, "user2")
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = l.Get(ctx, "user2", "ORD-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAppend_RequiresUser(t *testing.T) {
	l := New(storage.NewMemoryStore())
	err := l.Append(context.Background(), "", newOrder("ORD-1"))
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestAppend_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	l := New(failingStore{err: boom})

	err := l.Append(context.Background(), "user1", newOrder("ORD-1"))
	assert.ErrorIs(t, err, boom)
}

func TestGet_NotFound(t *testing.T) {
	ctx := context.Background()
	l := New(storage.NewMemoryStore())
	require.NoError(t, l.Append(ctx, "user1", newOrder("ORD-1")))

	_, err := l.Get(ctx, "user1", "ORD-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListFor_CorruptedData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, Key("user1"), []byte(`[{"id":`)))

	_, err := New(store).ListFor(ctx, "user1")
	assert.ErrorContains(t, err, "unmarshal orders failed")
}

func TestListFor_NullValue(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, Key("user1"), []byte(`null`)))

	orders, err := New(store).ListFor(ctx, "user1")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestAppend_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := New(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Append(ctx, "user1", newOrder(fmt.Sprintf("ORD-%d", i))))
		}(i)
	}
	wg.Wait()

	orders, err := l.ListFor(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, orders, 20)
}
