package middleware

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
)

// Ledger journals every fill as one json line before handing it on
type Ledger struct {
	enc *json.Encoder
}

func NewLedger(w io.Writer) *Ledger {
	return &Ledger{
		enc: json.NewEncoder(w),
	}
}

func (l *Ledger) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) error {
		if err := l.enc.Encode(filled); err != nil {
			return fmt.Errorf("unable to journal order %d: %w", filled.OrderId, err)
		}
		return handler(ctx, filled)
	}
}
