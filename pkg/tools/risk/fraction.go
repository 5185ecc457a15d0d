package risk

import (
	"fmt"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	fractionComponentName = "risk.fraction"

	FieldFraction     = "fraction"
	FieldExitFraction = "exit_fraction"
)

var defaultFraction = fixed.MustParse("0.1")

type Option func(*Fraction)

func WithFraction(fraction fixed.Point) Option {
	return func(f *Fraction) {
		f.fraction = fraction
	}
}

func WithExitFraction(fraction fixed.Point) Option {
	return func(f *Fraction) {
		f.exitFraction = fraction
	}
}

// Fraction invests a fixed share of the cash on hand at the latest close
// and exits a fixed share of the held balance.
type Fraction struct {
	logger *zap.Logger
	quotes exchange.BarSource
	assets map[string]common.Asset

	fraction           fixed.Point
	exitFraction       fixed.Point
	drawdownMulHandler DrawdownMultiplierHandler
}

func NewFraction(logger *zap.Logger, quotes exchange.BarSource, assets []common.Asset, options ...Option) (*Fraction, error) {
	f := &Fraction{
		logger:       logger,
		quotes:       quotes,
		assets:       make(map[string]common.Asset, len(assets)),
		fraction:     defaultFraction,
		exitFraction: fixed.One,
	}
	for _, asset := range assets {
		f.assets[asset.Symbol] = asset
	}

	for _, option := range options {
		option(f)
	}

	if err := validateFraction(f.fraction); err != nil {
		return nil, err
	}
	if err := validateFraction(f.exitFraction); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fraction) PositionSizeEntry(p Portfolio, symbol string) (fixed.Point, error) {
	asset, ok := f.assets[symbol]
	if !ok {
		return fixed.Zero, fmt.Errorf("%s: unknown asset %s", fractionComponentName, symbol)
	}

	bar, err := f.quotes.Bar(symbol, 0)
	if err != nil {
		return fixed.Zero, fmt.Errorf("%s: %w", fractionComponentName, err)
	}

	size := p.Cash().Mul(f.fraction)
	if f.drawdownMulHandler != nil {
		size = size.Mul(f.drawdownMulHandler(p.Drawdown()))
	}

	volume := size.DivOrZero(bar.Close).Floor(asset.VolumeDigits)
	if volume.IsNeg() {
		return fixed.Zero, nil
	}
	return volume, nil
}

func (f *Fraction) PositionSizeExit(p Portfolio, symbol string) (fixed.Point, error) {
	asset, ok := f.assets[symbol]
	if !ok {
		return fixed.Zero, fmt.Errorf("%s: unknown asset %s", fractionComponentName, symbol)
	}
	return p.Balance(symbol).Mul(f.exitFraction).Floor(asset.VolumeDigits), nil
}

func (f *Fraction) Bind(field string, value float64) error {
	v := fixed.FromFloat64(value)
	if err := validateFraction(v); err != nil {
		return fmt.Errorf("%s.%s: %w", fractionComponentName, field, err)
	}

	switch field {
	case FieldFraction:
		f.fraction = v
	case FieldExitFraction:
		f.exitFraction = v
	default:
		return fmt.Errorf("%s: %w: %s", fractionComponentName, common.ErrUnknownParameter, field)
	}

	f.logger.Debug("parameter bound", zap.String("field", field), zap.Float64("value", value))
	return nil
}

func validateFraction(v fixed.Point) error {
	if !v.IsPos() || v.Gt(fixed.One) {
		return fmt.Errorf("%w: fraction %s outside (0, 1]", common.ErrInvalidParameter, v)
	}
	return nil
}
