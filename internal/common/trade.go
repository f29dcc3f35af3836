package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade records one execution between a resting buy and sell order.
// Trades are created by an order processor and are immutable afterwards.
type Trade struct {
	ID          uuid.UUID `json:"id"`
	Symbol      string    `json:"symbol"`
	BuyOrderID  uuid.UUID `json:"buy_order_id"`
	SellOrderID uuid.UUID `json:"sell_order_id"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s qty=%d px=%.2f buy=%s sell=%s",
		t.ID, t.Symbol, t.Quantity, t.Price, t.BuyOrderID, t.SellOrderID)
}
