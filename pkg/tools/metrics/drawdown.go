package metrics

import (
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// Drawdown returns the deepest relative fall from a running peak as a non-positive number,
// e.g. [100, 120, 90, 130] gives -0.25. Series shorter than two values or with a
// non-positive peak yield zero.
func Drawdown(values []fixed.Point) fixed.Point {
	if len(values) < 2 {
		return fixed.Zero
	}

	peak := values[0]
	deepest := fixed.Zero
	for _, v := range values {
		peak = peak.Max(v)
		if !peak.IsPos() {
			continue
		}
		if dd := v.Div(peak).Sub(fixed.One); dd.Lt(deepest) {
			deepest = dd
		}
	}
	return deepest
}
