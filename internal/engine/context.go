package engine

import (
	"time"

	"brokkr/internal/book"
	"brokkr/internal/common"
	"brokkr/internal/ltp"
	"brokkr/internal/price"
)

// Context is the per-cycle snapshot handed to every processor. It is built
// once at cycle start and read-only for the rest of the cycle, so all
// processors match against the same view of the market.
type Context struct {
	// Now is the cycle timestamp, used for order expiry checks.
	Now time.Time

	// Ltps is the last-traded-price snapshot taken at cycle start. LTP
	// updates emitted during the cycle do not appear here.
	Ltps map[string]float64

	// Books is the live book router.
	Books *book.Router

	// Ltp is the live last-traded-price store processors push executions
	// into.
	Ltp *ltp.Store

	// Ticks is the price-history sink for execution samples.
	Ticks price.Sink
}

// Result accumulates one processor invocation's output: the trades it
// executed and the orders whose status or quantity changed, in the order
// they were touched.
type Result struct {
	Trades []common.Trade
	Orders []*common.Order
}

// AddTrade records an executed trade.
func (r *Result) AddTrade(t common.Trade) {
	r.Trades = append(r.Trades, t)
}

// AddOrder records an order whose status or quantity changed.
func (r *Result) AddOrder(o *common.Order) {
	r.Orders = append(r.Orders, o)
}

// Empty reports whether the result carries no work for the commit step.
func (r *Result) Empty() bool {
	return len(r.Trades) == 0 && len(r.Orders) == 0
}
