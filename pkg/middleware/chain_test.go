package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	type handler func(int) int

	add10 := func(h handler) handler {
		return func(n int) int { return h(n) + 10 }
	}
	multiply2 := func(h handler) handler {
		return func(n int) int { return h(n) * 2 }
	}
	base := func(n int) int { return n }

	tests := []struct {
		name     string
		wrappers []func(handler) handler
		want     int
	}{
		{"empty", nil, 5},
		{"single", []func(handler) handler{add10}, 15},
		{"add then multiply", []func(handler) handler{add10, multiply2}, 20},
		{"multiply then add", []func(handler) handler{multiply2, add10}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chain(tt.wrappers...)(base)(5))
		})
	}
}

func TestChain_Handlers(t *testing.T) {
	var calls []string
	trace := func(name string) func(bus.SignalEventHandler) bus.SignalEventHandler {
		return func(next bus.SignalEventHandler) bus.SignalEventHandler {
			return func(ctx context.Context, signal common.Signal) error {
				calls = append(calls, name)
				return next(ctx, signal)
			}
		}
	}

	errBase := errors.New("base")
	base := func(context.Context, common.Signal) error {
		calls = append(calls, "base")
		return errBase
	}

	telemetry := NewTelemetry()
	handler := Chain(trace("outer"), telemetry.WithSignal, trace("inner"))(base)

	err := handler(context.Background(), common.Signal{Symbol: "SPY"})
	require.ErrorIs(t, err, errBase)
	assert.Equal(t, []string{"outer", "inner", "base"}, calls)
	assert.Equal(t, EventCount{Handled: 1, Failed: 1}, telemetry.Report().Signals)
}
