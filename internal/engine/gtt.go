package engine

import (
	"github.com/rs/zerolog/log"

	"brokkr/internal/book"
	"brokkr/internal/common"
)

// GttProcessor fires good-till-triggered orders. An order triggers when the
// cycle's LTP snapshot crosses its trigger price in the order's direction;
// a fired order leaves the GTT book and re-enters the router as a limit
// order at its quoted price. GTT orders do not expire.
type GttProcessor struct{}

func (GttProcessor) Name() string { return "gtt" }

func (p GttProcessor) Process(cx *Context) (*Result, error) {
	res := &Result{}
	mgr := cx.Books.Gtt()
	for _, symbol := range mgr.AllSymbols() {
		last, ok := cx.Ltps[symbol]
		if !ok {
			// Nothing has traded yet, no trigger can fire.
			continue
		}
		if b, ok := mgr.Buy(symbol); ok {
			p.fire(b, last, cx, res)
		}
		if b, ok := mgr.Sell(symbol); ok {
			p.fire(b, last, cx, res)
		}
	}
	return res, nil
}

func (p GttProcessor) fire(b *book.GttBook, last float64, cx *Context, res *Result) {
	for _, o := range b.Triggered(last) {
		if !b.Remove(o.ID) {
			continue
		}
		o.Type = common.Limit
		if err := cx.Books.Add(o); err != nil {
			log.Error().Err(err).Stringer("order", o.ID).Msg("could not convert triggered gtt order")
			o.Status = common.Rejected
		}
		res.AddOrder(o)
	}
}
