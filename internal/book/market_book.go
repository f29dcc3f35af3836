package book

import (
	"container/list"
	"sync"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/google/uuid"

	"brokkr/internal/common"
)

// MarketBook holds resting market orders for one symbol and side across
// three coupled structures:
//
//   - an id table for O(1) lookup and removal,
//   - a price-sorted tree of FIFO queues for O(log n) best-price access,
//   - a single arrival-ordered FIFO queue, the matcher's primary interface.
//
// An order id appears in all three structures or in none. Every mutation
// below updates the three together under the book lock; removing from one
// without the others would corrupt the book.
type MarketBook struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*common.Order
	byPrice *rbt.Tree[float64, *list.List]
	fifo    *list.List
}

// NewMarket creates an empty market book.
func NewMarket() *MarketBook {
	return &MarketBook{
		byID:    make(map[uuid.UUID]*common.Order),
		byPrice: rbt.New[float64, *list.List](),
		fifo:    list.New(),
	}
}

// Add inserts the order into all three structures. Non-market orders fail
// with ErrInvalidOrderKind; market orders are stored with a quoted price and
// fail with ErrMissingPrice without one.
func (b *MarketBook) Add(o *common.Order) error {
	if o.Type != common.Market {
		return ErrInvalidOrderKind
	}
	if o.Price <= 0 {
		return ErrMissingPrice
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.byID[o.ID] = o
	bucket, ok := b.byPrice.Get(o.Price)
	if !ok {
		bucket = list.New()
		b.byPrice.Put(o.Price, bucket)
	}
	bucket.PushBack(o)
	b.fifo.PushBack(o)
	return nil
}

// Remove deletes the order with the given id from all three structures,
// reporting whether it was present. The FIFO scan makes this O(n); it is
// meant for cancellations, the matcher removes through PollOldest.
func (b *MarketBook) Remove(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.byID[id]
	if !ok {
		return false
	}
	b.removeLocked(o)
	return true
}

// Fill applies one execution to the resting order: remaining quantity
// drops by qty, a fully filled order leaves all three structures, a
// partially filled one keeps resting. Quantity and status change under
// the book lock so concurrent readers never observe them mid-write.
func (b *MarketBook) Fill(id uuid.UUID, qty int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.byID[id]
	if !ok {
		return
	}
	o.Quantity -= qty
	if o.Quantity == 0 {
		o.Status = common.Filled
		b.removeLocked(o)
	} else {
		o.Status = common.Partial
	}
}

// Expire marks the resting order expired and removes it from all three
// structures, reporting whether it was present.
func (b *MarketBook) Expire(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.byID[id]
	if !ok {
		return false
	}
	o.Status = common.Expired
	b.removeLocked(o)
	return true
}

// PeekOldest returns the head of the FIFO queue without removing it, or nil
// if the book is empty.
func (b *MarketBook) PeekOldest() *common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e := b.fifo.Front(); e != nil {
		return e.Value.(*common.Order)
	}
	return nil
}

// PollOldest removes and returns the oldest order from all three
// structures, or nil if the book is empty.
func (b *MarketBook) PollOldest() *common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.fifo.Front()
	if e == nil {
		return nil
	}
	o := e.Value.(*common.Order)
	b.removeLocked(o)
	return o
}

// LowestPriceOrder returns the order at the head of the lowest price
// bucket, or nil if the book is empty.
func (b *MarketBook) LowestPriceOrder() *common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.byPrice.Left()
	if n == nil {
		return nil
	}
	return n.Value.Front().Value.(*common.Order)
}

// HighestPriceOrder returns the order at the head of the highest price
// bucket, or nil if the book is empty.
func (b *MarketBook) HighestPriceOrder() *common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.byPrice.Right()
	if n == nil {
		return nil
	}
	return n.Value.Front().Value.(*common.Order)
}

// Empty reports whether the book holds no orders.
func (b *MarketBook) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byID) == 0
}

// Len is the number of resting orders.
func (b *MarketBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byID)
}

// OpenQuantity sums the remaining quantity of open and partially filled
// orders. The sum runs under the book lock, so its reads are ordered
// against the fill and expiry mutations above.
func (b *MarketBook) OpenQuantity() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total int64
	for e := b.fifo.Front(); e != nil; e = e.Next() {
		o := e.Value.(*common.Order)
		if o.Status == common.Open || o.Status == common.Partial {
			total += o.Quantity
		}
	}
	return total
}

// Orders returns the resting orders in arrival order. The slice is a
// snapshot taken under the book lock.
func (b *MarketBook) Orders() []*common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*common.Order, 0, b.fifo.Len())
	for e := b.fifo.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*common.Order))
	}
	return out
}

// removeLocked deletes the order from all three structures. Caller holds
// the lock.
func (b *MarketBook) removeLocked(o *common.Order) {
	delete(b.byID, o.ID)
	b.dropFromPrice(o)
	for e := b.fifo.Front(); e != nil; e = e.Next() {
		if e.Value.(*common.Order).ID == o.ID {
			b.fifo.Remove(e)
			break
		}
	}
}

// dropFromPrice removes the order from its price bucket, dropping the
// bucket when it empties. Caller holds the lock.
func (b *MarketBook) dropFromPrice(o *common.Order) {
	bucket, ok := b.byPrice.Get(o.Price)
	if !ok {
		return
	}
	for e := bucket.Front(); e != nil; e = e.Next() {
		if e.Value.(*common.Order).ID == o.ID {
			bucket.Remove(e)
			break
		}
	}
	if bucket.Len() == 0 {
		b.byPrice.Remove(o.Price)
	}
}
