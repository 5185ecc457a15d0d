package middleware

import (
	"context"
	"time"

	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"go.uber.org/zap"
)

type handlerTiming struct {
	calls uint64
	total time.Duration
}

func (h *handlerTiming) track(start time.Time) {
	h.calls++
	h.total += time.Since(start)
}

func (h *handlerTiming) fields(prefix string) []zap.Field {
	if h.calls == 0 {
		return nil
	}
	return []zap.Field{
		zap.Duration(prefix+"_avg_duration", h.total/time.Duration(h.calls)),
		zap.Duration(prefix+"_total_duration", h.total),
	}
}

// Performance measures wall clock time spent in the wrapped handlers.
// Its numbers differ between runs and never go into a run report.
type Performance struct {
	logger *zap.Logger

	timeSeries   handlerTiming
	signal       handlerTiming
	pendingOrder handlerTiming
	orderFilled  handlerTiming
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithTimeSeries(handler bus.TimeSeriesEventHandler) bus.TimeSeriesEventHandler {
	return func(ctx context.Context, ts common.TimeSeries) error {
		defer p.timeSeries.track(time.Now())
		return handler(ctx, ts)
	}
}

func (p *Performance) WithSignal(handler bus.SignalEventHandler) bus.SignalEventHandler {
	return func(ctx context.Context, signal common.Signal) error {
		defer p.signal.track(time.Now())
		return handler(ctx, signal)
	}
}

func (p *Performance) WithPendingOrder(handler bus.PendingOrderEventHandler) bus.PendingOrderEventHandler {
	return func(ctx context.Context, pending common.PendingOrder) error {
		defer p.pendingOrder.track(time.Now())
		return handler(ctx, pending)
	}
}

func (p *Performance) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) error {
		defer p.orderFilled.track(time.Now())
		return handler(ctx, filled)
	}
}

func (p *Performance) PrintStatistics() {
	var fields []zap.Field
	fields = append(fields, p.timeSeries.fields("time_series")...)
	fields = append(fields, p.signal.fields("signal")...)
	fields = append(fields, p.pendingOrder.fields("pending_order")...)
	fields = append(fields, p.orderFilled.fields("order_filled")...)
	p.logger.Info("performance statistics", fields...)
}
