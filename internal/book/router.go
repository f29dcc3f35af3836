package book

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"brokkr/internal/common"
)

// Router is the single entry point over the three book managers. It selects
// the manager by order type and the concrete book by side and symbol, and
// exposes the read accessors the processors and the price engine need.
type Router struct {
	limit  *Manager[*Book]
	gtt    *Manager[*GttBook]
	market *Manager[*MarketBook]
}

// NewRouter creates a router with empty managers for the three variants.
func NewRouter() *Router {
	return &Router{
		limit:  NewManager(func() *Book { return New(common.Limit) }),
		gtt:    NewManager(NewGtt),
		market: NewManager(NewMarket),
	}
}

// Add routes the order to the manager for its type. IOC orders have no
// registered manager yet: they are logged, dropped, and reported with
// ErrOrderDropped so callers do not mistake them for rested orders. Any
// other unregistered type fails with ErrUnsupportedOrderKind.
func (r *Router) Add(o *common.Order) error {
	switch o.Type {
	case common.Limit:
		return r.limit.Add(o)
	case common.Gtt:
		return r.gtt.Add(o)
	case common.Market:
		return r.market.Add(o)
	case common.Ioc:
		log.Warn().Stringer("order", o.ID).Msg("ioc orders are not handled yet, dropping")
		return ErrOrderDropped
	default:
		return ErrUnsupportedOrderKind
	}
}

// Remove routes the cancellation to the manager for the order's type,
// reporting whether the order was present.
func (r *Router) Remove(symbol string, side common.Side, typ common.OrderType, id uuid.UUID) bool {
	switch typ {
	case common.Limit:
		return r.limit.Remove(symbol, side, id)
	case common.Gtt:
		return r.gtt.Remove(symbol, side, id)
	case common.Market:
		return r.market.Remove(symbol, side, id)
	default:
		return false
	}
}

// Find returns the resting order with the given coordinates, if present.
func (r *Router) Find(symbol string, side common.Side, typ common.OrderType, id uuid.UUID) (*common.Order, bool) {
	switch typ {
	case common.Limit:
		return r.limit.Find(symbol, side, id)
	case common.Gtt:
		return r.gtt.Find(symbol, side, id)
	case common.Market:
		return r.market.Find(symbol, side, id)
	default:
		return nil, false
	}
}

// Limit returns the limit book manager.
func (r *Router) Limit() *Manager[*Book] { return r.limit }

// Gtt returns the GTT book manager.
func (r *Router) Gtt() *Manager[*GttBook] { return r.gtt }

// Market returns the market book manager.
func (r *Router) Market() *Manager[*MarketBook] { return r.market }

// Symbols returns every symbol with a book of any type on either side.
func (r *Router) Symbols() []string {
	seen := make(map[string]struct{})
	for _, s := range r.limit.AllSymbols() {
		seen[s] = struct{}{}
	}
	for _, s := range r.gtt.AllSymbols() {
		seen[s] = struct{}{}
	}
	for _, s := range r.market.AllSymbols() {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	return out
}

// OpenInterest sums open demand and supply for the symbol across all three
// book variants.
func (r *Router) OpenInterest(symbol string) (demand, supply int64) {
	d, s := r.limit.OpenInterest(symbol)
	demand, supply = demand+d, supply+s
	d, s = r.gtt.OpenInterest(symbol)
	demand, supply = demand+d, supply+s
	d, s = r.market.OpenInterest(symbol)
	return demand + d, supply + s
}
