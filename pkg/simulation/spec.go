package simulation

import (
	"io"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/exchange"
	"github.com/peter-kozarec/barsim/pkg/strategy"
	"github.com/peter-kozarec/barsim/pkg/tools/risk"
	"go.uber.org/zap"
)

const RiskTarget = "risk"

// StrategyFactory builds fresh strategies for every kernel, strategies keep per run state
type StrategyFactory func(logger *zap.Logger, quotes datasource.Quotes, assets []common.Asset) ([]strategy.Strategy, error)

type RiskFactory func(logger *zap.Logger, quotes exchange.BarSource, assets []common.Asset) (risk.Manager, error)

// Spec holds everything needed to build one isolated kernel. Bar series are shared read only
// between the kernels built from copies of the same spec.
type Spec struct {
	Name          string
	Configuration Configuration
	Assets        []common.Asset
	Series        map[string][]common.Bar
	Strategies    StrategyFactory
	Risk          RiskFactory
	Seed          int64

	// zero values replay the whole series
	From time.Time
	To   time.Time

	Manifest    Manifest
	Realization map[string]float64

	// Journal receives every fill as a json line when set
	Journal io.Writer
}

func DefaultRisk(logger *zap.Logger, quotes exchange.BarSource, assets []common.Asset) (risk.Manager, error) {
	return risk.NewFraction(logger, quotes, assets, risk.WithDefaultDrawdownMultiplier())
}
