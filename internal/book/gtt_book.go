package book

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"brokkr/internal/common"
)

// triggerLevel groups the resting GTT orders sharing one trigger price, in
// arrival order.
type triggerLevel struct {
	price  float64
	orders []*common.Order
}

type triggerLevels = btree.BTreeG[*triggerLevel]

// GttBook holds resting good-till-triggered orders for one symbol and side.
// It composes the arrival-ordered chain with a trigger-price index split by
// direction, so the GTT processor finds fired orders without scanning the
// whole book:
//
//   - above: ascending by trigger price; an order fires once the last
//     traded price rises to or past its trigger.
//   - below: descending by trigger price; an order fires once the last
//     traded price falls to or past its trigger.
//
// An order id is present in the chain and in exactly one index, or in
// neither.
type GttBook struct {
	mu    sync.Mutex
	chain chain
	above *triggerLevels
	below *triggerLevels
}

// NewGtt creates an empty GTT book.
func NewGtt() *GttBook {
	above := btree.NewBTreeG(func(a, b *triggerLevel) bool {
		return a.price < b.price
	})
	below := btree.NewBTreeG(func(a, b *triggerLevel) bool {
		return a.price > b.price
	})
	return &GttBook{chain: newChain(), above: above, below: below}
}

// Add appends the order at the tail and indexes its trigger price. Non-GTT
// orders fail with ErrInvalidOrderKind; orders without a quoted price or a
// trigger price fail with ErrMissingPrice.
func (b *GttBook) Add(o *common.Order) error {
	if o.Type != common.Gtt {
		return ErrInvalidOrderKind
	}
	if o.Price <= 0 || o.Trigger <= 0 {
		return ErrMissingPrice
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chain.push(o)
	tree := b.treeFor(o.Direction)
	level, ok := tree.GetMut(&triggerLevel{price: o.Trigger})
	if ok {
		level.orders = append(level.orders, o)
	} else {
		tree.Set(&triggerLevel{price: o.Trigger, orders: []*common.Order{o}})
	}
	return nil
}

// Remove unlinks the order and drops it from its trigger index, reporting
// whether it was present.
func (b *GttBook) Remove(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.chain.unlink(id)
	if !ok {
		return false
	}
	tree := b.treeFor(o.Direction)
	level, ok := tree.GetMut(&triggerLevel{price: o.Trigger})
	if !ok {
		return true
	}
	for i, rest := range level.orders {
		if rest.ID == id {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			break
		}
	}
	if len(level.orders) == 0 {
		tree.Delete(level)
	}
	return true
}

// Triggered returns the orders whose trigger condition is satisfied by the
// given last traded price, in trigger-price order. The slice is a snapshot;
// callers remove fired orders through Remove.
func (b *GttBook) Triggered(ltp float64) []*common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*common.Order
	b.above.Scan(func(level *triggerLevel) bool {
		if level.price > ltp {
			return false
		}
		out = append(out, level.orders...)
		return true
	})
	b.below.Scan(func(level *triggerLevel) bool {
		if level.price < ltp {
			return false
		}
		out = append(out, level.orders...)
		return true
	})
	return out
}

// Orders returns the resting orders in arrival order. The slice is a
// snapshot taken under the book lock.
func (b *GttBook) Orders() []*common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.snapshot()
}

// Len is the number of resting orders.
func (b *GttBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.len()
}

// OpenQuantity sums the remaining quantity of open and partially filled
// orders under the book lock.
func (b *GttBook) OpenQuantity() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.openQuantity()
}

func (b *GttBook) treeFor(d common.TriggerDirection) *triggerLevels {
	if d == common.TriggerBelow {
		return b.below
	}
	return b.above
}
