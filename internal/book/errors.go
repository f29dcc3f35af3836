package book

import "errors"

var (
	// ErrInvalidOrderKind is returned when an order is routed to a book
	// variant that does not accept its type.
	ErrInvalidOrderKind = errors.New("order type not accepted by this book")

	// ErrMissingPrice is returned when an order that must carry a price
	// (market, limit or GTT) arrives without one.
	ErrMissingPrice = errors.New("order is missing a required price")

	// ErrUnsupportedOrderKind is returned by the router for an order type
	// with no registered manager.
	ErrUnsupportedOrderKind = errors.New("unsupported order type")

	// ErrOrderDropped is returned by the router when an order is
	// deliberately discarded instead of rested, such as IOC orders,
	// which have no book yet.
	ErrOrderDropped = errors.New("order dropped without resting")
)
