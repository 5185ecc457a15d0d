package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
)

var (
	ErrEof   = errors.New("EOF")
	ErrNoBar = errors.New("no bar available")
)

// Provider advances the simulation clock. Every call moves to the next point of its time axis,
// stores the bars seen up to it and reports the symbols that received a new bar.
type Provider interface {
	Next(ctx context.Context) (time.Time, []common.TimeSeries, error)
}

// Quotes reads the bars a provider has buffered so far, offset 0 being the latest one
type Quotes interface {
	Bar(symbol string, offset uint) (common.Bar, error)
	Bars(symbol string, n uint) ([]common.Bar, error)
}

type Feed interface {
	Provider
	Quotes
}
