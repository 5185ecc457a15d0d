package bus

import (
	"context"

	"github.com/peter-kozarec/barsim/pkg/common"
)

type EventHandler[T any] = func(context.Context, T) error

type TimeSeriesEventHandler EventHandler[common.TimeSeries]
type SignalEventHandler EventHandler[common.Signal]
type PendingOrderEventHandler EventHandler[common.PendingOrder]
type OrderFilledEventHandler EventHandler[common.OrderFilled]

// MergeHandlers calls the handlers in order and stops at the first error
func MergeHandlers[T any](handlers ...EventHandler[T]) EventHandler[T] {
	return func(ctx context.Context, event T) error {
		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				return err
			}
		}
		return nil
	}
}
