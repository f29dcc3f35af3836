package book

import (
	"sync"

	"github.com/google/uuid"

	"brokkr/internal/common"
)

// node wraps one resting order in its doubly-linked position. The previous
// and next links are owned exclusively by the book holding the node.
type node struct {
	order      *common.Order
	prev, next *node
}

// chain is the shared storage behind the limit and GTT books: an
// arrival-ordered doubly-linked list with an id side-table. Every order in
// the side-table has exactly one reachable position in the list and vice
// versa. chain does no locking; the owning book serializes access.
type chain struct {
	head, tail *node
	nodes      map[uuid.UUID]*node
}

func newChain() chain {
	return chain{nodes: make(map[uuid.UUID]*node)}
}

// push appends at the tail in O(1).
func (c *chain) push(o *common.Order) {
	n := &node{order: o}
	c.nodes[o.ID] = n
	if c.head == nil {
		c.head, c.tail = n, n
		return
	}
	c.tail.next = n
	n.prev = c.tail
	c.tail = n
}

// unlink removes the order with the given id in O(1), returning it, or
// (nil, false) if it is not present.
func (c *chain) unlink(id uuid.UUID) (*common.Order, bool) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	delete(c.nodes, id)
	return n.order, true
}

// snapshot copies the current head-to-tail sequence.
func (c *chain) snapshot() []*common.Order {
	out := make([]*common.Order, 0, len(c.nodes))
	for n := c.head; n != nil; n = n.next {
		out = append(out, n.order)
	}
	return out
}

func (c *chain) len() int {
	return len(c.nodes)
}

// openQuantity sums the remaining quantity of open and partially filled
// orders in the chain.
func (c *chain) openQuantity() int64 {
	var total int64
	for n := c.head; n != nil; n = n.next {
		if n.order.Status == common.Open || n.order.Status == common.Partial {
			total += n.order.Quantity
		}
	}
	return total
}

// Book holds resting orders of a single type for one symbol and side, in
// arrival order. All mutating operations on one Book are mutually exclusive;
// operations on different books proceed in parallel.
type Book struct {
	mu      sync.Mutex
	accepts common.OrderType
	chain   chain
}

// New creates an empty book accepting only the given order type.
func New(accepts common.OrderType) *Book {
	return &Book{accepts: accepts, chain: newChain()}
}

// Add appends the order at the tail. Orders of a different type fail with
// ErrInvalidOrderKind and orders without a price with ErrMissingPrice.
func (b *Book) Add(o *common.Order) error {
	if o.Type != b.accepts {
		return ErrInvalidOrderKind
	}
	if o.Price <= 0 {
		return ErrMissingPrice
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chain.push(o)
	return nil
}

// Remove unlinks the order with the given id, reporting whether it was
// present. Removing an unknown id is not an error.
func (b *Book) Remove(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.chain.unlink(id)
	return ok
}

// Orders returns the resting orders in arrival order. The slice is a
// snapshot taken under the book lock; the pointed-to orders are live.
func (b *Book) Orders() []*common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.snapshot()
}

// Len is the number of resting orders.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.len()
}

// OpenQuantity sums the remaining quantity of open and partially filled
// orders under the book lock.
func (b *Book) OpenQuantity() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chain.openQuantity()
}
