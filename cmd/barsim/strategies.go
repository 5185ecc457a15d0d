package main

import (
	"fmt"
	"sort"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/exchange"
	"github.com/peter-kozarec/barsim/pkg/simulation"
	"github.com/peter-kozarec/barsim/pkg/strategy"
	"github.com/peter-kozarec/barsim/pkg/tools/risk"
	"github.com/peter-kozarec/barsim/pkg/tools/store"
	"go.uber.org/zap"
)

const (
	StrategySMA       = "sma"
	StrategyCalendar  = "calendar"
	StrategyReversion = "reversion"
)

type validator interface {
	Validate() error
}

// StrategyFactory builds the configured strategies with their static parameters bound
func StrategyFactory(configs []StrategyConfiguration) simulation.StrategyFactory {
	return func(logger *zap.Logger, quotes datasource.Quotes, assets []common.Asset) ([]strategy.Strategy, error) {
		table := store.CreateAssetStore(assets...)
		strategies := make([]strategy.Strategy, 0, len(configs))
		for _, sc := range configs {
			scoped, err := table.Select(sc.Symbols...)
			if err != nil {
				return nil, err
			}

			var s strategy.Strategy
			switch sc.Kind {
			case StrategySMA:
				s, err = strategy.NewSMACrossover(logger, quotes, scoped)
			case StrategyCalendar:
				s, err = strategy.NewCalendar(logger, quotes, scoped)
			case StrategyReversion:
				s, err = strategy.NewMeanReversion(logger, quotes, scoped)
			default:
				return nil, fmt.Errorf("unknown strategy kind %q", sc.Kind)
			}
			if err != nil {
				return nil, err
			}

			b, ok := s.(simulation.Bindable)
			if !ok && len(sc.Parameters) > 0 {
				return nil, fmt.Errorf("strategy %s takes no parameters", s.Name())
			}
			if err := bindAll(s.Name(), b, sc.Parameters); err != nil {
				return nil, err
			}
			strategies = append(strategies, s)
		}
		return strategies, nil
	}
}

// RiskFactory builds the fraction sizer with the drawdown multiplier and the static parameters bound
func RiskFactory(parameters map[string]float64) simulation.RiskFactory {
	return func(logger *zap.Logger, quotes exchange.BarSource, assets []common.Asset) (risk.Manager, error) {
		manager, err := risk.NewFraction(logger, quotes, assets, risk.WithDefaultDrawdownMultiplier())
		if err != nil {
			return nil, err
		}
		if err := bindAll(simulation.RiskTarget, manager, parameters); err != nil {
			return nil, err
		}
		return manager, nil
	}
}

func bindAll(name string, target simulation.Bindable, parameters map[string]float64) error {
	if len(parameters) == 0 {
		return nil
	}

	fields := make([]string, 0, len(parameters))
	for field := range parameters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if err := target.Bind(field, parameters[field]); err != nil {
			return fmt.Errorf("unable to bind %s.%s: %w", name, field, err)
		}
	}
	if v, ok := target.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid parameters for %s: %w", name, err)
		}
	}
	return nil
}
