package common

import (
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

const TimeFormat = "02-01-2006 15:04:05"

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

type TimeSeries struct {
	Symbol    string    `json:"symbol"`
	TimeStamp time.Time `json:"ts"`
}

type PendingOrder struct {
	OrderId   OrderId   `json:"order_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OrderFilled struct {
	OrderId        OrderId     `json:"order_id"`
	Symbol         string      `json:"symbol"`
	Kind           OrderKind   `json:"kind"`
	Volume         fixed.Point `json:"volume"`
	FillPrice      fixed.Point `json:"fill_price"`
	RequestedPrice fixed.Point `json:"requested_price"`
	Size           fixed.Point `json:"size"`
	Commission     fixed.Point `json:"commission"`
	TimeStamp      time.Time   `json:"ts"`
}

// Slippage is the unfavourable price distance times the volume, zero if the fill improved on the request
func (f OrderFilled) Slippage() fixed.Point {
	diff := f.FillPrice.Sub(f.RequestedPrice)
	if f.Kind.Side() == OrderSideSell {
		diff = diff.Neg()
	}
	if diff.IsNeg() {
		return fixed.Zero
	}
	return diff.Mul(f.Volume)
}
