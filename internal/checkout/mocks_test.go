package checkout

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/shopspring/decimal"
)

// MockLedger records appended orders and can be told to fail.
type MockLedger struct {
	mu       sync.Mutex
	Appended []domain.Order
	Err      error
}

func (m *MockLedger) Append(_ context.Context, _ string, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Appended = append(m.Appended, o)
	return nil
}

// MockPublisher captures published events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.Order
	Err    error
}

func (m *MockPublisher) PublishOrderConfirmed(_ context.Context, _ string, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, o)
	return m.Err
}

func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// GatedSimulator blocks every attempt until Release is closed. Started
// receives once per attempt as soon as it is waiting.
type GatedSimulator struct {
	Started chan struct{}
	Release chan struct{}
}

func NewGatedSimulator() *GatedSimulator {
	return &GatedSimulator{
		Started: make(chan struct{}, 1),
		Release: make(chan struct{}),
	}
}

func (g *GatedSimulator) Attempt(ctx context.Context, method domain.PaymentMethod, amount decimal.Decimal) (payment.Receipt, error) {
	g.Started <- struct{}{}
	select {
	case <-g.Release:
	case <-ctx.Done():
		return payment.Receipt{}, payment.ErrAbandoned
	}
	return payment.Receipt{TransactionID: "TXN-test", Method: method.Kind(), Amount: amount}, nil
}
