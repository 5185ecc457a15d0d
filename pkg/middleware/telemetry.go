package middleware

import (
	"context"

	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"go.uber.org/zap"
)

type EventCount struct {
	Handled uint64 `json:"handled"`
	Failed  uint64 `json:"failed"`
}

func (c *EventCount) track(err error) {
	c.Handled++
	if err != nil {
		c.Failed++
	}
}

type TelemetryReport struct {
	TimeSeries    EventCount `json:"time_series"`
	Signals       EventCount `json:"signals"`
	PendingOrders EventCount `json:"pending_orders"`
	OrdersFilled  EventCount `json:"orders_filled"`
}

func (r TelemetryReport) Print(logger *zap.Logger) {
	logger.Info("event statistics",
		zap.Uint64("time_series_events", r.TimeSeries.Handled),
		zap.Uint64("signal_events", r.Signals.Handled),
		zap.Uint64("pending_order_events", r.PendingOrders.Handled),
		zap.Uint64("order_filled_events", r.OrdersFilled.Handled),
		zap.Uint64("failed_events", r.TimeSeries.Failed+r.Signals.Failed+r.PendingOrders.Failed+r.OrdersFilled.Failed))
}

// Telemetry counts the events handled per kind. The counts are deterministic for a given run.
type Telemetry struct {
	report TelemetryReport
}

func NewTelemetry() *Telemetry {
	return &Telemetry{}
}

func (t *Telemetry) WithTimeSeries(handler bus.TimeSeriesEventHandler) bus.TimeSeriesEventHandler {
	return func(ctx context.Context, ts common.TimeSeries) error {
		err := handler(ctx, ts)
		t.report.TimeSeries.track(err)
		return err
	}
}

func (t *Telemetry) WithSignal(handler bus.SignalEventHandler) bus.SignalEventHandler {
	return func(ctx context.Context, signal common.Signal) error {
		err := handler(ctx, signal)
		t.report.Signals.track(err)
		return err
	}
}

func (t *Telemetry) WithPendingOrder(handler bus.PendingOrderEventHandler) bus.PendingOrderEventHandler {
	return func(ctx context.Context, pending common.PendingOrder) error {
		err := handler(ctx, pending)
		t.report.PendingOrders.track(err)
		return err
	}
}

func (t *Telemetry) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) error {
		err := handler(ctx, filled)
		t.report.OrdersFilled.track(err)
		return err
	}
}

func (t *Telemetry) Report() TelemetryReport {
	return t.report
}
