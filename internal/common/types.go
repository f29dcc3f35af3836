package common

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "UNKNOWN"
}

// OrderType selects which book variant an order rests in.
type OrderType int

const (
	// Market orders match against the oldest opposing liquidity. They
	// still carry a quoted price, which is used for execution-price
	// tie-breaking while they rest.
	Market OrderType = iota
	// Limit orders rest at their quoted price until matched or cancelled.
	Limit
	// Gtt (good-till-triggered) orders rest until the last traded price
	// crosses their trigger, then convert into limit orders.
	Gtt
	// Ioc orders have no registered book and are dropped on arrival.
	Ioc
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Gtt:
		return "GTT"
	case Ioc:
		return "IOC"
	}
	return "UNKNOWN"
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus int

const (
	Open OrderStatus = iota
	Partial
	Filled
	Cancelled
	Expired
	Rejected
)

func (s OrderStatus) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Partial:
		return "PARTIAL"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Expired:
		return "EXPIRED"
	case Rejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// TriggerDirection is the condition for firing a GTT order.
type TriggerDirection int

const (
	// TriggerAbove fires when the last traded price rises to or above the
	// trigger price.
	TriggerAbove TriggerDirection = iota
	// TriggerBelow fires when the last traded price falls to or below the
	// trigger price.
	TriggerBelow
)

func (d TriggerDirection) String() string {
	switch d {
	case TriggerAbove:
		return "ABOVE"
	case TriggerBelow:
		return "BELOW"
	}
	return "UNKNOWN"
}
