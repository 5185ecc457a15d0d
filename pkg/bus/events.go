package bus

import "fmt"

type EventId uint8

const (
	TimeSeriesEvent EventId = iota
	SignalEvent
	PendingOrderEvent
	OrderFilledEvent
)

var eventNames = [...]string{
	TimeSeriesEvent:   "time_series",
	SignalEvent:       "signal",
	PendingOrderEvent: "pending_order",
	OrderFilledEvent:  "order_filled",
}

func (id EventId) String() string {
	if int(id) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", uint8(id))
	}
	return eventNames[id]
}
