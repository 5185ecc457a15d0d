package middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTelemetry_Counts(t *testing.T) {
	telemetry := NewTelemetry()
	ctx := context.Background()

	ts := telemetry.WithTimeSeries(func(context.Context, common.TimeSeries) error { return nil })
	for i := 0; i < 3; i++ {
		require.NoError(t, ts(ctx, common.TimeSeries{}))
	}

	errFill := errors.New("fill")
	filled := telemetry.WithOrderFilled(func(_ context.Context, f common.OrderFilled) error {
		if f.OrderId == 2 {
			return errFill
		}
		return nil
	})
	require.NoError(t, filled(ctx, common.OrderFilled{OrderId: 1}))
	require.ErrorIs(t, filled(ctx, common.OrderFilled{OrderId: 2}), errFill)

	report := telemetry.Report()
	assert.Equal(t, EventCount{Handled: 3}, report.TimeSeries)
	assert.Equal(t, EventCount{}, report.Signals)
	assert.Equal(t, EventCount{}, report.PendingOrders)
	assert.Equal(t, EventCount{Handled: 2, Failed: 1}, report.OrdersFilled)

	report.Print(zap.NewNop())
}

func TestPerformance_PassThrough(t *testing.T) {
	p := NewPerformance(zap.NewNop())
	errSignal := errors.New("signal")

	handler := p.WithSignal(func(context.Context, common.Signal) error { return errSignal })
	require.ErrorIs(t, handler(context.Background(), common.Signal{}), errSignal)
	assert.Equal(t, uint64(1), p.signal.calls)
	assert.Zero(t, p.orderFilled.calls)

	p.PrintStatistics()
}

func TestLedger_Journal(t *testing.T) {
	var buf bytes.Buffer
	ledger := NewLedger(&buf)

	var seen []common.OrderId
	handler := ledger.WithOrderFilled(func(_ context.Context, f common.OrderFilled) error {
		seen = append(seen, f.OrderId)
		return nil
	})

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for id := common.OrderId(1); id <= 2; id++ {
		require.NoError(t, handler(context.Background(), common.OrderFilled{
			OrderId:   id,
			Symbol:    "SPY",
			Kind:      common.OrderKindMarketBuy,
			Volume:    fixed.FromInt(10, 0),
			FillPrice: fixed.MustParse("101.5"),
			TimeStamp: ts,
		}))
	}
	assert.Equal(t, []common.OrderId{1, 2}, seen)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded common.OrderFilled
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, common.OrderId(2), decoded.OrderId)
	assert.Equal(t, common.OrderKindMarketBuy, decoded.Kind)
	assert.True(t, decoded.FillPrice.Eq(fixed.MustParse("101.5")))
	assert.True(t, decoded.TimeStamp.Equal(ts))
}
