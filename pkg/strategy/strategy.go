package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
)

// Strategy turns the bars seen so far into signals. It is asked once per symbol and tick.
type Strategy interface {
	Name() string
	Symbols() []string
	GenerateSignals(ctx context.Context, symbol string, now time.Time) ([]common.Signal, error)
}

func symbolsOf(assets []common.Asset) ([]string, map[string]common.Asset) {
	symbols := make([]string, 0, len(assets))
	index := make(map[string]common.Asset, len(assets))
	for _, asset := range assets {
		symbols = append(symbols, asset.Symbol)
		index[asset.Symbol] = asset
	}
	return symbols, index
}

func intParameter(field string, value float64, lowest int) (int, error) {
	if value != math.Trunc(value) || value < float64(lowest) || value > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be an integer >= %d, got %v", common.ErrInvalidParameter, field, lowest, value)
	}
	return int(value), nil
}
