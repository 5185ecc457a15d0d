package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"go.uber.org/zap"
)

const (
	smaComponentName = "strategy.sma_crossover"

	FieldFastPeriod = "fast"
	FieldSlowPeriod = "slow"

	defaultFastPeriod = 10
	defaultSlowPeriod = 30
)

type SMAOption func(*SMACrossover)

func WithPeriods(fast, slow int) SMAOption {
	return func(s *SMACrossover) {
		s.fast = fast
		s.slow = slow
	}
}

// WithOHLCAverage averages all four prices of a bar instead of using the close
func WithOHLCAverage() SMAOption {
	return func(s *SMACrossover) {
		s.ohlc = true
	}
}

// SMACrossover buys when the fast moving average crosses above the slow one and sells on the way down
type SMACrossover struct {
	logger  *zap.Logger
	quotes  datasource.Quotes
	symbols []string

	fast int
	slow int
	ohlc bool
}

func NewSMACrossover(logger *zap.Logger, quotes datasource.Quotes, assets []common.Asset, options ...SMAOption) (*SMACrossover, error) {
	symbols, _ := symbolsOf(assets)
	s := &SMACrossover{
		logger:  logger,
		quotes:  quotes,
		symbols: symbols,
		fast:    defaultFastPeriod,
		slow:    defaultSlowPeriod,
	}
	for _, option := range options {
		option(s)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SMACrossover) Name() string      { return smaComponentName }
func (s *SMACrossover) Symbols() []string { return s.symbols }

func (s *SMACrossover) GenerateSignals(_ context.Context, symbol string, now time.Time) ([]common.Signal, error) {
	bars, err := s.quotes.Bars(symbol, uint(s.slow+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", smaComponentName, err)
	}
	if len(bars) < s.slow+1 {
		return nil, nil
	}

	prices := make([]float64, len(bars))
	for i, bar := range bars {
		prices[i] = s.price(bar)
	}

	fast := talib.Sma(prices, s.fast)
	slow := talib.Sma(prices, s.slow)
	cur, prev := len(prices)-1, len(prices)-2

	var kind common.OrderKind
	switch {
	case fast[prev] <= slow[prev] && fast[cur] > slow[cur]:
		kind = common.OrderKindMarketBuy
	case fast[prev] >= slow[prev] && fast[cur] < slow[cur]:
		kind = common.OrderKindMarketSell
	default:
		return nil, nil
	}

	s.logger.Debug("moving averages crossed",
		zap.String("symbol", symbol),
		zap.Stringer("kind", kind),
		zap.Float64("fast", fast[cur]),
		zap.Float64("slow", slow[cur]))

	return []common.Signal{{
		Source:    smaComponentName,
		Symbol:    symbol,
		Kind:      kind,
		TimeStamp: now,
	}}, nil
}

func (s *SMACrossover) Bind(field string, value float64) error {
	period, err := intParameter(field, value, 1)
	if err != nil {
		return fmt.Errorf("%s: %w", smaComponentName, err)
	}
	switch field {
	case FieldFastPeriod:
		s.fast = period
	case FieldSlowPeriod:
		s.slow = period
	default:
		return fmt.Errorf("%s: %w: %s", smaComponentName, common.ErrUnknownParameter, field)
	}
	return nil
}

// Validate checks the periods once all of them are bound
func (s *SMACrossover) Validate() error {
	if s.fast < 1 || s.fast >= s.slow {
		return fmt.Errorf("%s: %w: fast period %d must be positive and below slow period %d",
			smaComponentName, common.ErrInvalidParameter, s.fast, s.slow)
	}
	return nil
}

func (s *SMACrossover) price(bar common.Bar) float64 {
	if s.ohlc {
		return bar.Open.Add(bar.High).Add(bar.Low).Add(bar.Close).DivInt(4).F64()
	}
	return bar.Close.F64()
}
