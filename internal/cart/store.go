package cart

import (
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Store holds the cart of one session. Lines keep insertion order and are
// unique by ProductID. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewStore() *Store {
	return &Store{}
}

// Add merges line into the cart. An existing line gets qty added to its
// quantity, a new line is inserted with qty. qty and the resulting quantity
// are both clamped to [1,10], so Add never lowers a quantity.
func (s *Store) Add(line domain.CartLine, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty = domain.ClampQuantity(qty)
	if i := s.indexOf(line.ProductID); i >= 0 {
		s.lines[i].Quantity = domain.ClampQuantity(s.lines[i].Quantity + qty)
		return
	}
	line.Quantity = qty
	s.lines = append(s.lines, line)
}

// SetQuantity is a no-op when productID is not in the cart.
func (s *Store) SetQuantity(productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = domain.ClampQuantity(qty)
	}
}

func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Settle removes the ordered quantities from the cart in one step. Lines that
// were added or raised after ordered was taken keep the difference; every
// other line is removed.
func (s *Store) Settle(ordered []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paid := make(map[int64]int, len(ordered))
	for _, l := range ordered {
		paid[l.ProductID] += l.Quantity
	}

	kept := s.lines[:0]
	for _, l := range s.lines {
		if q, ok := paid[l.ProductID]; ok {
			if l.Quantity <= q {
				continue
			}
			l.Quantity -= q
		}
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.lines = kept
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Subtotal(s.lines)
}

// Lines returns a copy of the cart contents.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLines(s.lines)
}

// Line returns the line for productID, if present.
func (s *Store) Line(productID int64) (domain.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i], true
	}
	return domain.CartLine{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Count is the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// indexOf must be called with mu held.
func (s *Store) indexOf(productID int64) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
