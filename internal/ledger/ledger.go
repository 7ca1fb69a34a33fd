package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserRequired  = errors.New("user id is required")
)

// Ledger is the append-only order history of each user, stored newest first
// as a JSON array under "orders_<userID>".
type Ledger struct {
	store storage.Store
	// mu serializes read-modify-write appends.
	mu sync.Mutex
}

func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

func Key(userID string) string {
	return fmt.Sprintf("orders_%s", userID)
}

// Append puts order at the front of the user's history.
func (l *Ledger) Append(ctx context.Context, userID string, order domain.Order) error {
	if userID == "" {
		return ErrUserRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.load(ctx, userID)
	if err != nil {
		return err
	}

	orders := make([]domain.Order, 0, len(existing)+1)
	orders = append(orders, order)
	orders = append(orders, existing...)

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}
	if err := l.store.Put(ctx, Key(userID), data); err != nil {
		return fmt.Errorf("save orders failed: %w", err)
	}
	return nil
}

// ListFor returns the user's orders newest first, or an empty slice when
// the user has no history.
func (l *Ledger) ListFor(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return []domain.Order{}, nil
	}
	return l.load(ctx, userID)
}

func (l *Ledger) Get(ctx context.Context, userID, orderID string) (domain.Order, error) {
	orders, err := l.ListFor(ctx, userID)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

func (l *Ledger) load(ctx context.Context, userID string) ([]domain.Order, error) {
	data, err := l.store.Get(ctx, Key(userID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load orders failed: %w", err)
	}

	orders := []domain.Order{}
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders failed: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
