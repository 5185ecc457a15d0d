package risk

import "github.com/peter-kozarec/barsim/pkg/utility/fixed"

type DrawdownMultiplierHandler func(currentDrawdown fixed.Point) (positionMultiplier fixed.Point)

func WithDrawdownMultiplier(h DrawdownMultiplierHandler) Option {
	return func(f *Fraction) {
		if f.drawdownMulHandler != nil {
			panic("drawdown multiplier handler already set")
		}
		f.drawdownMulHandler = h
	}
}

// WithDefaultDrawdownMultiplier scales entries down as the account drawdown deepens
// and stops opening positions past 15 percent.
func WithDefaultDrawdownMultiplier() Option {
	var (
		lowDrawdownThreshold     = fixed.FromInt(2, 0)
		normalDrawdownThreshold  = fixed.FromInt(5, 0)
		highDrawdownThreshold    = fixed.FromInt(10, 0)
		extremeDrawdownThreshold = fixed.FromInt(15, 0)

		lowDrawdownMultiplier     = fixed.One
		normalDrawdownMultiplier  = fixed.MustParse("0.7")
		highDrawdownMultiplier    = fixed.MustParse("0.5")
		severeDrawdownMultiplier  = fixed.MustParse("0.25")
		extremeDrawdownMultiplier = fixed.Zero
	)

	return WithDrawdownMultiplier(func(currentDrawdown fixed.Point) fixed.Point {
		if currentDrawdown.Lte(lowDrawdownThreshold) {
			return lowDrawdownMultiplier
		} else if currentDrawdown.Lte(normalDrawdownThreshold) {
			return normalDrawdownMultiplier
		} else if currentDrawdown.Lte(highDrawdownThreshold) {
			return highDrawdownMultiplier
		} else if currentDrawdown.Lte(extremeDrawdownThreshold) {
			return severeDrawdownMultiplier
		} else {
			return extremeDrawdownMultiplier
		}
	})
}
