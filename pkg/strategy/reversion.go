package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/tools/indicators"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	reversionComponentName = "strategy.mean_reversion"

	FieldEntryZ      = "entry_z"
	FieldExitZ       = "exit_z"
	FieldAtrMultiple = "atr_multiple"

	defaultReversionWindow = 20
	defaultAtrWindow       = 14
)

var (
	defaultEntryZ      = fixed.FromInt(-2, 0)
	defaultExitZ       = fixed.Zero
	defaultAtrMultiple = fixed.MustParse("0.5")
)

type ReversionOption func(*MeanReversion)

func WithWindows(zWindow uint, atrWindow int) ReversionOption {
	return func(m *MeanReversion) {
		m.zWindow = zWindow
		m.atrWindow = atrWindow
	}
}

func WithThresholds(entryZ, exitZ fixed.Point) ReversionOption {
	return func(m *MeanReversion) {
		m.entryZ = entryZ
		m.exitZ = exitZ
	}
}

type reversionState struct {
	last   time.Time
	zScore *indicators.ZScore
	atr    *indicators.Atr
}

// MeanReversion bids below the close, by a multiple of the average true range,
// whenever the close is stretched below its rolling mean. It exits once the
// z-score recovers past the exit threshold.
type MeanReversion struct {
	logger  *zap.Logger
	quotes  datasource.Quotes
	symbols []string
	assets  map[string]common.Asset

	zWindow     uint
	atrWindow   int
	entryZ      fixed.Point
	exitZ       fixed.Point
	atrMultiple fixed.Point

	state map[string]*reversionState
}

func NewMeanReversion(logger *zap.Logger, quotes datasource.Quotes, assets []common.Asset, options ...ReversionOption) (*MeanReversion, error) {
	symbols, index := symbolsOf(assets)
	m := &MeanReversion{
		logger:      logger,
		quotes:      quotes,
		symbols:     symbols,
		assets:      index,
		zWindow:     defaultReversionWindow,
		atrWindow:   defaultAtrWindow,
		entryZ:      defaultEntryZ,
		exitZ:       defaultExitZ,
		atrMultiple: defaultAtrMultiple,
		state:       make(map[string]*reversionState),
	}
	for _, option := range options {
		option(m)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MeanReversion) Name() string      { return reversionComponentName }
func (m *MeanReversion) Symbols() []string { return m.symbols }

func (m *MeanReversion) GenerateSignals(_ context.Context, symbol string, now time.Time) ([]common.Signal, error) {
	bar, err := m.quotes.Bar(symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", reversionComponentName, err)
	}

	st, ok := m.state[symbol]
	if !ok {
		st = &reversionState{
			zScore: indicators.NewZScore(m.zWindow),
			atr:    indicators.NewAtr(m.atrWindow),
		}
		m.state[symbol] = st
	}

	// The symbol can be asked again without a new bar when the time axis is a fixed step
	if !bar.TimeStamp.After(st.last) && !st.last.IsZero() {
		return nil, nil
	}
	st.last = bar.TimeStamp
	st.zScore.AddPoint(bar.Close)
	st.atr.OnBar(bar)

	if !st.zScore.IsReady() || !st.atr.Ready() {
		return nil, nil
	}

	z := st.zScore.Value()
	switch {
	case z.Lte(m.entryZ):
		limit := bar.Close.Sub(st.atr.AverageTrueRange().Mul(m.atrMultiple)).Round(m.assets[symbol].PriceDigits)
		if !limit.IsPos() {
			return nil, nil
		}
		return []common.Signal{{
			Source:     reversionComponentName,
			Symbol:     symbol,
			Kind:       common.OrderKindLimitBuy,
			LimitPrice: limit,
			ExpiresAt:  now.Add(bar.Period),
			TimeStamp:  now,
			Comment:    "z=" + z.Round(2).String(),
		}}, nil
	case z.Gte(m.exitZ):
		return []common.Signal{{
			Source:    reversionComponentName,
			Symbol:    symbol,
			Kind:      common.OrderKindMarketSell,
			TimeStamp: now,
			Comment:   "z=" + z.Round(2).String(),
		}}, nil
	default:
		return nil, nil
	}
}

func (m *MeanReversion) Bind(field string, value float64) error {
	v := fixed.FromFloat64(value)
	switch field {
	case FieldEntryZ:
		m.entryZ = v
	case FieldExitZ:
		m.exitZ = v
	case FieldAtrMultiple:
		if v.IsNeg() {
			return fmt.Errorf("%s: %w: %s must not be negative", reversionComponentName, common.ErrInvalidParameter, field)
		}
		m.atrMultiple = v
	default:
		return fmt.Errorf("%s: %w: %s", reversionComponentName, common.ErrUnknownParameter, field)
	}
	return nil
}

func (m *MeanReversion) Validate() error {
	if m.zWindow < 2 || m.atrWindow < 1 {
		return fmt.Errorf("%s: %w: windows %d and %d too short", reversionComponentName, common.ErrInvalidParameter, m.zWindow, m.atrWindow)
	}
	if !m.entryZ.Lt(m.exitZ) {
		return fmt.Errorf("%s: %w: entry z %s must be below exit z %s", reversionComponentName, common.ErrInvalidParameter, m.entryZ, m.exitZ)
	}
	return nil
}
