package book

import (
	"sync"

	"github.com/google/uuid"

	"brokkr/internal/common"
)

// bookish is the contract the manager needs from any book variant.
type bookish interface {
	Add(*common.Order) error
	Remove(uuid.UUID) bool
	Orders() []*common.Order
	Len() int
	OpenQuantity() int64
}

// Manager owns the per-symbol buy and sell books of one order type. Books
// are created lazily on the first order for a (side, symbol) pair and are
// never evicted; a symbol that has traded keeps its empty books around.
type Manager[B bookish] struct {
	mu    sync.RWMutex
	fresh func() B
	buy   map[string]B
	sell  map[string]B
}

// NewManager creates a manager whose books are built by fresh.
func NewManager[B bookish](fresh func() B) *Manager[B] {
	return &Manager[B]{
		fresh: fresh,
		buy:   make(map[string]B),
		sell:  make(map[string]B),
	}
}

// Add routes the order to its (side, symbol) book, creating the book on
// first use.
func (m *Manager[B]) Add(o *common.Order) error {
	m.mu.Lock()
	books := m.sideMap(o.Side)
	b, ok := books[o.Symbol]
	if !ok {
		b = m.fresh()
		books[o.Symbol] = b
	}
	m.mu.Unlock()
	return b.Add(o)
}

// Remove deletes the order from its (side, symbol) book, reporting whether
// it was present.
func (m *Manager[B]) Remove(symbol string, side common.Side, id uuid.UUID) bool {
	b, ok := m.book(symbol, side)
	if !ok {
		return false
	}
	return b.Remove(id)
}

// Find returns the resting order with the given id, if present.
func (m *Manager[B]) Find(symbol string, side common.Side, id uuid.UUID) (*common.Order, bool) {
	b, ok := m.book(symbol, side)
	if !ok {
		return nil, false
	}
	for _, o := range b.Orders() {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Buy returns the buy-side book for the symbol, if one exists.
func (m *Manager[B]) Buy(symbol string) (B, bool) {
	return m.book(symbol, common.Buy)
}

// Sell returns the sell-side book for the symbol, if one exists.
func (m *Manager[B]) Sell(symbol string) (B, bool) {
	return m.book(symbol, common.Sell)
}

// Symbols returns the symbols with a buy-side book, the driving set for
// the matching processors.
func (m *Manager[B]) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.buy))
	for s := range m.buy {
		out = append(out, s)
	}
	return out
}

// AllSymbols returns every symbol with a book on either side.
func (m *Manager[B]) AllSymbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{}, len(m.buy)+len(m.sell))
	for s := range m.buy {
		seen[s] = struct{}{}
	}
	for s := range m.sell {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	return out
}

// OpenInterest sums the remaining quantity of open and partially filled
// orders on each side of the symbol's books. Each side sums under its
// book's lock, so the totals are safe against a concurrently running
// matching cycle.
func (m *Manager[B]) OpenInterest(symbol string) (demand, supply int64) {
	if b, ok := m.book(symbol, common.Buy); ok {
		demand = b.OpenQuantity()
	}
	if b, ok := m.book(symbol, common.Sell); ok {
		supply = b.OpenQuantity()
	}
	return demand, supply
}

func (m *Manager[B]) book(symbol string, side common.Side) (B, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.sideMap(side)[symbol]
	return b, ok
}

// sideMap requires the caller to hold the manager lock.
func (m *Manager[B]) sideMap(side common.Side) map[string]B {
	if side == common.Sell {
		return m.sell
	}
	return m.buy
}
