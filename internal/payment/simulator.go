package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLatency models the round trip to a payment processor.
const DefaultLatency = 3 * time.Second

type Receipt struct {
	TransactionID string             `json:"transaction_id"`
	Method        domain.PaymentKind `json:"method"`
	Amount        decimal.Decimal    `json:"amount"`
	ProcessedAt   time.Time          `json:"processed_at"`
}

// Simulator stands in for a payment processor. After the configured latency
// every attempt succeeds; declines only come from the Validator.
type Simulator struct {
	latency time.Duration
	now     func() time.Time
	newID   func() string
}

type SimulatorOption func(*Simulator)

func WithLatency(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		if d >= 0 {
			s.latency = d
		}
	}
}

func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) {
		s.now = now
	}
}

func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		latency: DefaultLatency,
		now:     time.Now,
		newID: func() string {
			return fmt.Sprintf("TXN-%s", uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Latency() time.Duration {
	return s.latency
}

// Attempt blocks for the simulated latency and returns a receipt. If ctx is
// done first the attempt is abandoned and ErrAbandoned is returned wrapped
// together with the context error.
func (s *Simulator) Attempt(ctx context.Context, method domain.PaymentMethod, amount decimal.Decimal) (Receipt, error) {
	if method == nil {
		return Receipt{}, ErrUnsupportedMethod
	}
	switch method.(type) {
	case domain.Card, *domain.Card, domain.JazzCash, *domain.JazzCash, domain.GooglePay, *domain.GooglePay:
	default:
		return Receipt{}, fmt.Errorf("%w: %T", ErrUnsupportedMethod, method)
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrAbandoned, err)
	}

	return Receipt{
		TransactionID: s.newID(),
		Method:        method.Kind(),
		Amount:        amount,
		ProcessedAt:   s.now(),
	}, nil
}
