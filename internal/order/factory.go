package order

import (
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// HandlingFee is added to every order total.
var HandlingFee = decimal.NewFromInt(5)

type Clock func() time.Time

// IDGenerator returns a fresh order id for the given creation time.
type IDGenerator func(createdAt time.Time) string

// Factory turns a cart snapshot into an immutable Order.
type Factory struct {
	now   Clock
	newID IDGenerator
}

type Option func(*Factory)

func WithClock(c Clock) Option {
	return func(f *Factory) { f.now = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(f *Factory) { f.newID = g }
}

func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		now:   time.Now,
		newID: NewTimestampIDs().Next,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create assumes lines is non-empty and the payment already went through.
func (f *Factory) Create(lines []domain.CartLine, kind domain.PaymentKind, delivery domain.DeliveryInfo) domain.Order {
	createdAt := f.now()
	items := domain.CloneLines(lines)
	return domain.Order{
		ID:            f.newID(createdAt),
		Items:         items,
		Total:         domain.Subtotal(items).Add(HandlingFee),
		PaymentMethod: kind,
		DeliveryInfo:  delivery,
		CreatedAt:     createdAt,
		Status:        domain.OrderStatusConfirmed,
	}
}

// TimestampIDs issues "ORD-<unix millis>" ids. When two orders land in the
// same millisecond the later one is bumped so ids never repeat.
type TimestampIDs struct {
	mu   sync.Mutex
	last int64
}

func NewTimestampIDs() *TimestampIDs {
	return &TimestampIDs{}
}

func (g *TimestampIDs) Next(createdAt time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := createdAt.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}
