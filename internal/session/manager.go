package session

import (
	"errors"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultIdleTimeout is how long an untouched session is kept
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs
	DefaultCleanupInterval = time.Minute
)

var ErrSessionNotFound = errors.New("session not found")

// Session scopes one shopper's cart and checkout. It replaces any process
// wide cart state.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Orchestrator

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// CheckoutBuilder wires a new orchestrator around a session's cart.
type CheckoutBuilder func(c *cart.Store) *checkout.Orchestrator

// Manager owns all live sessions and expires idle ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	build       CheckoutBuilder
	idleTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type Option func(*Manager)

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager starts the cleanup loop; call Close to stop it.
func NewManager(build CheckoutBuilder, cleanupInterval time.Duration, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*Session),
		build:       build,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		log:         zap.NewNop(),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	m.wg.Add(1)
	go m.cleanupLoop(cleanupInterval)

	return m
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.ExpireIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

// ExpireIdle ends every session idle for longer than the idle timeout.
// Sessions with a checkout in flight are kept.
func (m *Manager) ExpireIdle() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for id, s := range m.sessions {
		if s.idleSince(now) <= m.idleTimeout || s.Checkout.State().InFlight() {
			continue
		}
		delete(m.sessions, id)
		expired++
	}
	if expired > 0 {
		m.log.Info("expired idle sessions", zap.Int("count", expired))
	}
	return expired
}

// Create starts a new session with an empty cart.
func (m *Manager) Create() *Session {
	c := cart.NewStore()
	s := &Session{
		ID:       uuid.NewString(),
		Cart:     c,
		Checkout: m.build(c),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is empty or
// unknown. The second value reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s, false
		}
	}
	return m.Create(), true
}

func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.wg.Wait()
	return nil
}
