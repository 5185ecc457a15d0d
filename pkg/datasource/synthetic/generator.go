package synthetic

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

const (
	barGeneratorComponentName = "datasource.synthetic.generator"
)

var (
	pointFive = fixed.FromInt64(5, 1)
)

// BarGenerator draws OHLCV bars from a geometric brownian motion. Every bar is built
// from a number of sub steps, open is the previous close.
type BarGenerator struct {
	symbol string
	rng    *rand.Rand

	startTime  time.Time
	period     time.Duration
	startPrice fixed.Point
	mu         fixed.Point
	sigma      fixed.Point
	deltaT     fixed.Point
	steps      int64
	subSteps   int
	t          int64

	avgVolume      fixed.Point
	volumeVariance float64

	deltaLogPre1 fixed.Point
	deltaLogPre2 fixed.Point

	lastTime  time.Time
	lastPrice fixed.Point

	normPriceDigits  int
	normVolumeDigits int
}

// NewBarGenerator expects mu and sigma per year, deltaT is the length of one sub step in years
func NewBarGenerator(
	symbol string,
	rng *rand.Rand,
	startTime time.Time,
	period time.Duration,
	startPrice, mu, sigma fixed.Point,
	steps int64,
	subSteps int) *BarGenerator {

	if subSteps <= 0 {
		subSteps = 1
	}

	secondsPerYear := 365.25 * 24 * 3600
	deltaT := fixed.FromFloat64(period.Seconds() / float64(subSteps) / secondsPerYear)

	return &BarGenerator{
		symbol: symbol,
		rng:    rng,

		startTime:  startTime,
		period:     period,
		startPrice: startPrice,
		mu:         mu,
		sigma:      sigma,
		deltaT:     deltaT,
		steps:      steps,
		subSteps:   subSteps,

		avgVolume:      fixed.FromInt64(1000, 0),
		volumeVariance: 0.5,

		deltaLogPre1: mu.Sub(sigma.Mul(sigma).Mul(pointFive)).Mul(deltaT),
		deltaLogPre2: sigma.Mul(deltaT.Sqrt()),

		lastTime:  startTime,
		lastPrice: startPrice,

		normPriceDigits:  2,
		normVolumeDigits: 0,
	}
}

func (g *BarGenerator) SetVolumeParameters(avgVol fixed.Point, volVariance float64) {
	g.avgVolume = avgVol
	g.volumeVariance = volVariance
}

func (g *BarGenerator) SetPriceDigits(digits int) {
	g.normPriceDigits = digits
}

func (g *BarGenerator) SetVolumeDigits(digits int) {
	g.normVolumeDigits = digits
}

func (g *BarGenerator) Next() (common.Bar, error) {
	if g.t >= g.steps {
		return common.Bar{}, datasource.ErrEof
	}

	open := g.lastPrice.Round(g.normPriceDigits)
	high, low := open, open

	price := g.lastPrice
	for i := 0; i < g.subSteps; i++ {
		z := g.rng.NormFloat64()
		deltaLog := g.deltaLogPre1.Add(g.deltaLogPre2.Mul(fixed.FromFloat64(z)))
		price = price.Mul(deltaLog.Exp())

		rounded := price.Round(g.normPriceDigits)
		high = high.Max(rounded)
		low = low.Min(rounded)
	}
	g.lastPrice = price

	bar := common.Bar{
		Source:    barGeneratorComponentName,
		Symbol:    g.symbol,
		TimeStamp: g.lastTime,
		Period:    g.period,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     price.Round(g.normPriceDigits),
		Volume:    g.generateVolume().Round(g.normVolumeDigits),
	}

	g.lastTime = g.lastTime.Add(g.period)
	g.t++

	if err := bar.Validate(); err != nil {
		return common.Bar{}, fmt.Errorf("%s: %w", barGeneratorComponentName, err)
	}
	return bar, nil
}

// Generate draws every remaining bar
func (g *BarGenerator) Generate() ([]common.Bar, error) {
	bars := make([]common.Bar, 0, g.steps-g.t)
	for {
		bar, err := g.Next()
		if err == datasource.ErrEof {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
}

func (g *BarGenerator) generateVolume() fixed.Point {
	variation := g.rng.NormFloat64() * g.volumeVariance
	volume := g.avgVolume.Mul(fixed.FromFloat64(variation).Exp())

	// Ensure positive volumes
	if volume.Lte(fixed.Zero) {
		volume = fixed.One
	}
	return volume
}
