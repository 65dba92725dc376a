package cart

import (
	"sync"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/shopspring/decimal"
)

// Dispatcher is the mutation capability handed to consumers of a cart.
type Dispatcher interface {
	Dispatch(a Action) error
}

// Store owns one cart. All mutation goes through Dispatch; dispatches are
// serialized so there is a single writer at any time.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, a)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// State returns the current state. The returned value shares no memory with
// later states because Reduce never mutates in place.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Items() []domain.LineItem {
	return s.State().Items
}

// ItemCount is the sum of all quantities.
func ItemCount(items []domain.LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Qty
	}
	return n
}

// Subtotal is the sum of price × qty. Callers compute it from the items they
// are about to display or submit; it is never cached.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
