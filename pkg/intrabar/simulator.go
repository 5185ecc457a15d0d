package intrabar

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type Point struct {
	T     float64
	Price fixed.Point
}

type anchor struct {
	t     float64
	price fixed.Point
}

// Simulate synthesizes a plausible price path within one bar. The path starts at the open,
// visits the high and the low in random order, ends at the close and never leaves [low, high].
// It is a pure function of its arguments, all randomness comes from rng.
func Simulate(bar common.Bar, opts Options, rng *rand.Rand) ([]Point, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := bar.Validate(); err != nil {
		return nil, fmt.Errorf("unable to simulate intrabar path: %w", err)
	}

	sigma := opts.NoiseScale
	if sigma == 0 {
		sigma = deviation(bar) / opts.Dampening
	}

	anchors := anchorsOf(bar, opts.BoundaryDistance, rng)
	low, high := bar.Low.F64(), bar.High.F64()

	var path []Point
	for i := 0; i < len(anchors)-1; i++ {
		start, end := anchors[i], anchors[i+1]
		steps := int(math.Round((end.t - start.t) / (opts.Step / opts.TotalTime)))
		if steps < 1 {
			steps = 1
		}

		from, to := start.price.F64(), end.price.F64()
		path = append(path, Point{T: start.t * opts.TotalTime, Price: start.price})

		for j := 1; j < steps; j++ {
			frac := float64(j) / float64(steps)
			candidate := from + (to-from)*frac

			noise := rng.NormFloat64() * sigma
			switch {
			case candidate+noise > high:
				candidate -= math.Abs(noise)
			case candidate+noise < low:
				candidate += math.Abs(noise)
			default:
				candidate += noise
			}

			path = append(path, Point{
				T:     (start.t + (end.t-start.t)*frac) * opts.TotalTime,
				Price: clamp(fixed.FromFloat64(candidate).Round(opts.PriceDigits), bar.Low, bar.High),
			})
		}
	}

	last := anchors[len(anchors)-1]
	path = append(path, Point{T: last.t * opts.TotalTime, Price: last.price})
	return path, nil
}

// anchorsOf places the extremes at two interior times at least b apart from each other and from both ends
func anchorsOf(bar common.Bar, b float64, rng *rand.Rand) []anchor {
	t1 := b + rng.Float64()*(1-3*b)
	t2 := t1 + b + rng.Float64()*(1-b-(t1+b))

	first, second := bar.High, bar.Low
	if rng.Float64() < 0.5 {
		first, second = bar.Low, bar.High
	}

	return []anchor{
		{0, bar.Open},
		{t1, first},
		{t2, second},
		{1, bar.Close},
	}
}

func deviation(bar common.Bar) float64 {
	prices := [...]float64{bar.Open.F64(), bar.High.F64(), bar.Low.F64(), bar.Close.F64()}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	return math.Sqrt(variance / float64(len(prices)))
}

func clamp(p, low, high fixed.Point) fixed.Point {
	return p.Max(low).Min(high)
}
