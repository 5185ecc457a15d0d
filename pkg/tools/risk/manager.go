package risk

import (
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// Portfolio is the read only view of an account a manager sizes orders against
type Portfolio interface {
	Cash() fixed.Point
	Balance(symbol string) fixed.Point
	// Drawdown is the current distance from the peak account value in percent
	Drawdown() fixed.Point
}

// Manager decides how much of an asset an order should carry.
// Returned volumes are upper bounds, the account clamps them further.
type Manager interface {
	PositionSizeEntry(p Portfolio, symbol string) (fixed.Point, error)
	PositionSizeExit(p Portfolio, symbol string) (fixed.Point, error)
}
