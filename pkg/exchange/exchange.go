package exchange

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// BarSource gives access to the bars seen so far, offset 0 being the latest one
type BarSource interface {
	Bar(symbol string, offset uint) (common.Bar, error)
}

// Broker is the order entry side of an exchange as seen by an account
type Broker interface {
	PlaceOrder(order common.Order) (common.PendingOrder, error)

	// WorstPrice bounds the price the order can be filled at during the current bar
	WorstPrice(symbol string, kind common.OrderKind, limit fixed.Point) (fixed.Point, error)
	FeeRate() fixed.Point
	FixedFee() fixed.Point

	// ReservedCash is the worst case cost of all pending buy orders
	ReservedCash() (fixed.Point, error)
	PendingVolume(symbol string, side common.OrderSide) fixed.Point
}
