package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/peter-kozarec/barsim/pkg/common"
)

var (
	ErrCapacityReached  = errors.New("event capacity reached")
	ErrUnsupportedEvent = errors.New("unsupported event")
	ErrInvalidPayload   = errors.New("invalid event payload")
	ErrNoHandler        = errors.New("no handler for event")
)

type event struct {
	id   EventId
	data interface{}
}

// Router is a single threaded event scheduler. Posted events go onto a LIFO primary stack,
// deferred events wait on a second stack until the primary one is empty.
type Router struct {
	OnTimeSeries   TimeSeriesEventHandler
	OnSignal       SignalEventHandler
	OnPendingOrder PendingOrderEventHandler
	OnOrderFilled  OrderFilledEventHandler

	// 0 means unbounded
	capacity int
	primary  []event
	deferred []event

	stats Statistics
}

func NewRouter(capacity int) *Router {
	return &Router{capacity: capacity}
}

func (r *Router) Post(id EventId, data interface{}) error {
	if r.capacity > 0 && len(r.primary) >= r.capacity {
		r.stats.PostFails++
		return fmt.Errorf("%w: %s", ErrCapacityReached, id)
	}
	r.primary = append(r.primary, event{id, data})
	r.stats.PostCount++
	r.trackDepth()
	return nil
}

func (r *Router) Defer(id EventId, data interface{}) error {
	if r.capacity > 0 && len(r.deferred) >= r.capacity {
		r.stats.PostFails++
		return fmt.Errorf("%w: %s", ErrCapacityReached, id)
	}
	r.deferred = append(r.deferred, event{id, data})
	r.stats.DeferCount++
	r.trackDepth()
	return nil
}

// Len returns the number of events waiting on the primary and the deferred stack
func (r *Router) Len() (int, int) {
	return len(r.primary), len(r.deferred)
}

// Drain dispatches until both stacks are empty. Once the primary stack runs dry the deferred
// stack takes its place. The first dispatch error aborts the drain, the remaining events are dropped.
func (r *Router) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(r.primary) == 0 {
			if len(r.deferred) == 0 {
				return nil
			}
			r.primary, r.deferred = r.deferred, r.primary[:0]
		}

		last := len(r.primary) - 1
		ev := r.primary[last]
		r.primary[last] = event{}
		r.primary = r.primary[:last]

		r.stats.DispatchCount++
		if err := r.dispatch(ctx, ev); err != nil {
			r.stats.DispatchFails++
			r.primary = r.primary[:0]
			r.deferred = r.deferred[:0]
			return fmt.Errorf("unable to dispatch %s: %w", ev.id, err)
		}
	}
}

func (r *Router) Statistics() Statistics {
	return r.stats
}

func (r *Router) trackDepth() {
	if depth := len(r.primary) + len(r.deferred); depth > r.stats.MaxDepth {
		r.stats.MaxDepth = depth
	}
}

func (r *Router) dispatch(ctx context.Context, ev event) error {
	switch ev.id {
	case TimeSeriesEvent:
		ts, ok := ev.data.(common.TimeSeries)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidPayload, ev.data)
		}
		if r.OnTimeSeries == nil {
			return ErrNoHandler
		}
		return r.OnTimeSeries(ctx, ts)
	case SignalEvent:
		signal, ok := ev.data.(common.Signal)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidPayload, ev.data)
		}
		if r.OnSignal == nil {
			return ErrNoHandler
		}
		return r.OnSignal(ctx, signal)
	case PendingOrderEvent:
		pending, ok := ev.data.(common.PendingOrder)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidPayload, ev.data)
		}
		if r.OnPendingOrder == nil {
			return ErrNoHandler
		}
		return r.OnPendingOrder(ctx, pending)
	case OrderFilledEvent:
		filled, ok := ev.data.(common.OrderFilled)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidPayload, ev.data)
		}
		if r.OnOrderFilled == nil {
			return ErrNoHandler
		}
		return r.OnOrderFilled(ctx, filled)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev.id)
	}
}
