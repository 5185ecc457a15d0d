package simulation

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource/synthetic"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// MonteCarloConfiguration describes geometric brownian motion bar series, mu and sigma are annual
type MonteCarloConfiguration struct {
	Start       time.Time     `yaml:"start"`
	Period      time.Duration `yaml:"period"`
	Bars        int64         `yaml:"bars"`
	SubSteps    int           `yaml:"sub_steps"`
	StartPrice  fixed.Point   `yaml:"start_price"`
	Mu          float64       `yaml:"mu"`
	Sigma       float64       `yaml:"sigma"`
	PriceDigits int           `yaml:"price_digits"`
}

func DefaultMonteCarloConfiguration() MonteCarloConfiguration {
	return MonteCarloConfiguration{
		Start:       time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Period:      24 * time.Hour,
		Bars:        1000,
		SubSteps:    24,
		StartPrice:  fixed.FromInt(100, 0),
		Mu:          0.05,
		Sigma:       0.2,
		PriceDigits: 2,
	}
}

// MonteCarloSeries draws one independent series per asset. Symbols are seeded in sorted
// order from the given seed, the same seed always yields the same bars.
func MonteCarloSeries(cfg MonteCarloConfiguration, assets []common.Asset, seed int64) (map[string][]common.Bar, error) {
	if cfg.Bars <= 0 || cfg.Period <= 0 {
		return nil, fmt.Errorf("monte carlo series need a positive bar count and period")
	}
	if !cfg.StartPrice.IsPos() {
		return nil, fmt.Errorf("monte carlo start price %s must be positive", cfg.StartPrice)
	}

	sorted := append([]common.Asset(nil), assets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	// #nosec G404
	rng := rand.New(rand.NewSource(seed))
	series := make(map[string][]common.Bar, len(sorted))
	for _, asset := range sorted {
		// #nosec G404
		generator := synthetic.NewBarGenerator(
			asset.Symbol,
			rand.New(rand.NewSource(rng.Int63())),
			cfg.Start,
			cfg.Period,
			cfg.StartPrice,
			fixed.FromFloat64(cfg.Mu),
			fixed.FromFloat64(cfg.Sigma),
			cfg.Bars,
			cfg.SubSteps)
		generator.SetPriceDigits(cfg.PriceDigits)
		generator.SetVolumeDigits(asset.VolumeDigits)

		bars, err := generator.Generate()
		if err != nil {
			return nil, err
		}
		series[asset.Symbol] = bars
	}
	return series, nil
}
