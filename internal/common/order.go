package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is the universal order record shared by every book variant. The
// ingress assigns identity and creation time before an order reaches the
// engine; the engine never mints order ids.
//
// Quantity is the remaining quantity and is decremented on partial fills.
// Price is the quoted price: required for LIMIT and GTT orders, and carried
// by MARKET orders too, since the matcher uses the newer order's quoted
// price as the execution price.
type Order struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Symbol    string           `json:"symbol"`
	Side      Side             `json:"side"`
	Type      OrderType        `json:"type"`
	Quantity  int64            `json:"quantity"`
	Price     float64          `json:"price"`
	Trigger   float64          `json:"trigger,omitempty"`
	Direction TriggerDirection `json:"trigger_direction,omitempty"`
	Status    OrderStatus      `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s %s %s qty=%d px=%.2f status=%s",
		o.ID, o.Type, o.Side, o.Symbol, o.Quantity, o.Price, o.Status)
}
