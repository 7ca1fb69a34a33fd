package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/order"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartStore interface {
	Lines() []domain.CartLine
	IsEmpty() bool
	Settle(ordered []domain.CartLine)
}

type Validator interface {
	Validate(method domain.PaymentMethod) error
}

type Simulator interface {
	Attempt(ctx context.Context, method domain.PaymentMethod, amount decimal.Decimal) (payment.Receipt, error)
}

type OrderFactory interface {
	Create(lines []domain.CartLine, kind domain.PaymentKind, delivery domain.DeliveryInfo) domain.Order
}

type OrderLedger interface {
	Append(ctx context.Context, userID string, o domain.Order) error
}

type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, userID string, o domain.Order) error
}

// Confirmation is returned for every successful checkout. PersistErr is set
// when the order could not be written to the ledger; the order still stands.
type Confirmation struct {
	Order      domain.Order
	Receipt    payment.Receipt
	PersistErr error
}

func (c Confirmation) Persisted() bool {
	return c.PersistErr == nil
}

// Orchestrator drives one session's checkout through
// IDLE -> VALIDATING -> SIMULATING -> CONFIRMED | FAILED.
// Only one attempt may be in flight at a time.
type Orchestrator struct {
	cart      CartStore
	validator Validator
	simulator Simulator
	factory   OrderFactory
	ledger    OrderLedger
	publisher EventPublisher
	log       *zap.Logger

	mu      sync.Mutex
	state   domain.CheckoutStatus
	lastErr error
}

type Option func(*Orchestrator)

func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = logger.OrNop(l) }
}

func NewOrchestrator(cart CartStore, v Validator, s Simulator, f OrderFactory, l OrderLedger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:      cart,
		validator: v,
		simulator: s,
		factory:   f,
		ledger:    l,
		log:       zap.NewNop(),
		state:     domain.CheckoutStatusIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError is the reason the most recent attempt failed, if it did.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Submit runs a full checkout attempt for userID. Preconditions are checked
// before any state change. A validation failure or an abandoned payment
// leaves the cart untouched and the orchestrator in FAILED.
func (o *Orchestrator) Submit(ctx context.Context, userID string, method domain.PaymentMethod, delivery domain.DeliveryInfo) (Confirmation, error) {
	log := logger.WithContext(ctx, o.log).With(zap.String("user_id", userID))
	if method == nil {
		return Confirmation{}, payment.ErrUnsupportedMethod
	}

	snapshot, err := o.begin(userID)
	if err != nil {
		log.Info("checkout rejected", zap.Error(err))
		return Confirmation{}, err
	}
	log = log.With(zap.String("payment_method", method.Kind().String()))

	if err := o.validator.Validate(method); err != nil {
		o.fail(err)
		log.Info("payment validation failed", zap.Error(err))
		return Confirmation{}, err
	}

	if err := o.advance(domain.CheckoutStatusSimulating); err != nil {
		o.fail(err)
		return Confirmation{}, err
	}

	amount := domain.Subtotal(snapshot).Add(order.HandlingFee)
	receipt, err := o.simulator.Attempt(ctx, method, amount)
	if err != nil {
		o.fail(err)
		if errors.Is(err, payment.ErrAbandoned) {
			log.Warn("payment attempt abandoned", zap.Error(err))
		} else {
			log.Error("payment attempt failed", zap.Error(err))
		}
		return Confirmation{}, err
	}

	conf := o.confirm(ctx, log, userID, method.Kind(), delivery, snapshot)
	conf.Receipt = receipt
	if !receipt.Amount.Equal(conf.Order.Total) {
		log.Error("charged amount differs from order total",
			zap.String("charged", receipt.Amount.StringFixed(2)),
			zap.String("total", conf.Order.Total.StringFixed(2)))
	}

	if err := o.advance(domain.CheckoutStatusConfirmed); err != nil {
		return Confirmation{}, err
	}

	log.Info("checkout confirmed",
		zap.String("order_id", conf.Order.ID),
		zap.String("total", conf.Order.Total.StringFixed(2)),
		zap.String("transaction_id", receipt.TransactionID),
		zap.Bool("persisted", conf.Persisted()))
	return conf, nil
}

// begin checks the preconditions and moves to VALIDATING. It returns the
// cart lines seen at submit time.
func (o *Orchestrator) begin(userID string) ([]domain.CartLine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InFlight() {
		return nil, ErrCheckoutInProgress
	}
	if o.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if o.state.IsTerminal() {
		if err := o.transition(domain.CheckoutStatusIdle); err != nil {
			return nil, err
		}
	}
	if err := o.transition(domain.CheckoutStatusValidating); err != nil {
		return nil, err
	}
	o.lastErr = nil
	return o.cart.Lines(), nil
}

// confirm creates the order from the charged snapshot, appends it to the
// ledger, settles the cart and publishes the event, in that order.
func (o *Orchestrator) confirm(ctx context.Context, log *zap.Logger, userID string, kind domain.PaymentKind, delivery domain.DeliveryInfo, snapshot []domain.CartLine) Confirmation {
	ord := o.factory.Create(snapshot, kind, delivery)

	// the payment already went through; finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	conf := Confirmation{Order: ord}
	if err := o.ledger.Append(ctx, userID, ord); err != nil {
		conf.PersistErr = fmt.Errorf("order %s confirmed but not saved: %w", ord.ID, err)
		log.Warn("failed to save order to ledger", zap.String("order_id", ord.ID), zap.Error(err))
	}

	o.cart.Settle(snapshot)

	if o.publisher != nil {
		if err := o.publisher.PublishOrderConfirmed(ctx, userID, ord); err != nil {
			log.Warn("failed to publish order event", zap.String("order_id", ord.ID), zap.Error(err))
		}
	}
	return conf
}

func (o *Orchestrator) advance(to domain.CheckoutStatus) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition(to)
}

func (o *Orchestrator) fail(reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = reason
	if o.state.InFlight() {
		o.state = domain.CheckoutStatusFailed
	}
}

// transition must be called with mu held.
func (o *Orchestrator) transition(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(o.state, to) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, o.state, to)
	}
	o.state = to
	return nil
}
