package middleware

import (
	"context"

	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"go.uber.org/zap"
)

type MonitorFlags uint16

//goland:noinspection GoUnusedConst
const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorTimeSeries
	MonitorSignals
	MonitorPendingOrders
	MonitorOrdersFilled
	MonitorErrors
)

var monitorFlagNames = map[string]MonitorFlags{
	"none":           MonitorNone,
	"all":            MonitorAll,
	"time_series":    MonitorTimeSeries,
	"signals":        MonitorSignals,
	"pending_orders": MonitorPendingOrders,
	"orders_filled":  MonitorOrdersFilled,
	"errors":         MonitorErrors,
}

// ParseMonitorFlags combines the named flags, unknown names are reported back
func ParseMonitorFlags(names []string) (MonitorFlags, []string) {
	var flags MonitorFlags
	var unknown []string
	for _, name := range names {
		flag, ok := monitorFlagNames[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		flags |= flag
	}
	return flags, unknown
}

// Monitor logs every event passing through a wrapped handler
type Monitor struct {
	logger *zap.Logger
	flags  MonitorFlags
}

func NewMonitor(logger *zap.Logger, flags MonitorFlags) *Monitor {
	return &Monitor{
		logger: logger,
		flags:  flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) failed(id bus.EventId, err error) {
	if err != nil && m.enabled(MonitorErrors) {
		m.logger.Warn("handler failed", zap.Stringer("event", id), zap.Error(err))
	}
}

func (m *Monitor) WithTimeSeries(handler bus.TimeSeriesEventHandler) bus.TimeSeriesEventHandler {
	return func(ctx context.Context, ts common.TimeSeries) error {
		if m.enabled(MonitorTimeSeries) {
			m.logger.Info("event",
				zap.String("time_series", ts.Symbol),
				zap.String("ts", common.FormatTime(ts.TimeStamp)))
		}
		err := handler(ctx, ts)
		m.failed(bus.TimeSeriesEvent, err)
		return err
	}
}

func (m *Monitor) WithSignal(handler bus.SignalEventHandler) bus.SignalEventHandler {
	return func(ctx context.Context, signal common.Signal) error {
		if m.enabled(MonitorSignals) {
			m.logger.Info("event",
				zap.String("signal", signal.Symbol),
				zap.Stringer("kind", signal.Kind),
				zap.String("limit_price", signal.LimitPrice.String()),
				zap.String("source", signal.Source),
				zap.String("ts", common.FormatTime(signal.TimeStamp)))
		}
		err := handler(ctx, signal)
		m.failed(bus.SignalEvent, err)
		return err
	}
}

func (m *Monitor) WithPendingOrder(handler bus.PendingOrderEventHandler) bus.PendingOrderEventHandler {
	return func(ctx context.Context, pending common.PendingOrder) error {
		if m.enabled(MonitorPendingOrders) {
			m.logger.Info("event",
				zap.Int64("pending_order", pending.OrderId),
				zap.String("expires_at", common.FormatTime(pending.ExpiresAt)))
		}
		err := handler(ctx, pending)
		m.failed(bus.PendingOrderEvent, err)
		return err
	}
}

func (m *Monitor) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) error {
		if m.enabled(MonitorOrdersFilled) {
			m.logger.Info("event",
				zap.Int64("order_filled", filled.OrderId),
				zap.String("symbol", filled.Symbol),
				zap.Stringer("kind", filled.Kind),
				zap.String("volume", filled.Volume.String()),
				zap.String("fill_price", filled.FillPrice.String()),
				zap.String("commission", filled.Commission.String()),
				zap.String("ts", common.FormatTime(filled.TimeStamp)))
		}
		err := handler(ctx, filled)
		m.failed(bus.OrderFilledEvent, err)
		return err
	}
}
