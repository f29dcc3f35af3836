package engine

import (
	"time"

	"github.com/google/uuid"

	"brokkr/internal/book"
	"brokkr/internal/common"
)

// marketOrderExpiry is how long a market order may rest before it expires.
const marketOrderExpiry = 5 * time.Minute

// MarketProcessor matches resting market orders: the oldest buy against the
// lowest-priced sell, expiring either side past the five-minute window.
type MarketProcessor struct{}

func (MarketProcessor) Name() string { return "market" }

// Process walks every symbol with buy-side market liquidity.
func (p MarketProcessor) Process(cx *Context) (*Result, error) {
	res := &Result{}
	for _, symbol := range cx.Books.Market().Symbols() {
		p.processSymbol(symbol, cx, res)
	}
	return res, nil
}

func (p MarketProcessor) processSymbol(symbol string, cx *Context, res *Result) {
	mkt := cx.Books.Market()
	buyBook, ok := mkt.Buy(symbol)
	if !ok {
		return
	}
	sellBook, ok := mkt.Sell(symbol)
	if !ok {
		return
	}

	for !buyBook.Empty() && !sellBook.Empty() {
		// A concurrent cancellation may drain a side between the
		// emptiness check and the peek.
		buy := buyBook.PeekOldest()
		if buy == nil {
			break
		}
		if expired(buy, cx.Now) {
			buyBook.Expire(buy.ID)
			res.AddOrder(buy)
			continue
		}

		// Sell side is matched by price priority, not arrival order.
		sell := sellBook.LowestPriceOrder()
		if sell == nil {
			break
		}
		if expired(sell, cx.Now) {
			sellBook.Expire(sell.ID)
			res.AddOrder(sell)
			continue
		}

		p.match(buy, sell, buyBook, sellBook, cx, res)
	}
}

func (p MarketProcessor) match(buy, sell *common.Order, buyBook, sellBook *book.MarketBook, cx *Context, res *Result) {
	// The resting (older) order's counterparty gets no price improvement:
	// execution is at the newer order's quoted price.
	px := buy.Price
	if buy.CreatedAt.Before(sell.CreatedAt) {
		px = sell.Price
	}
	qty := min(buy.Quantity, sell.Quantity)

	cx.Ltp.Update(buy.Symbol, px)
	cx.Ticks.Append(buy.Symbol, px, qty, cx.Now)

	res.AddTrade(common.Trade{
		ID:          uuid.New(),
		Symbol:      buy.Symbol,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Price:       px,
		Quantity:    qty,
		Timestamp:   cx.Now,
	})

	// Quantity and status change under each book's lock so the price
	// engine's open-interest reads never race the fill.
	buyBook.Fill(buy.ID, qty)
	sellBook.Fill(sell.ID, qty)
	res.AddOrder(buy)
	res.AddOrder(sell)
}

func expired(o *common.Order, now time.Time) bool {
	return o.CreatedAt.Add(marketOrderExpiry).Before(now)
}
