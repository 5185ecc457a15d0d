package indicators

import (
	"github.com/peter-kozarec/barsim/pkg/utility/circular"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// ZScore measures how far the latest point lies from the rolling mean, in deviations
type ZScore struct {
	data   *circular.PointBuffer
	latest fixed.Point
}

func NewZScore(windowSize uint) *ZScore {
	return &ZScore{
		data:   circular.NewPointBuffer(windowSize),
		latest: fixed.Zero,
	}
}

func (z *ZScore) AddPoint(p fixed.Point) {
	z.data.PushUpdate(p)
	z.latest = p
}

// Value is zero until the window is full or when the window is flat
func (z *ZScore) Value() fixed.Point {
	if !z.IsReady() {
		return fixed.Zero
	}
	return z.latest.Sub(z.data.Mean()).DivOrZero(z.data.StdDev())
}

func (z *ZScore) IsReady() bool {
	return z.data.IsFull()
}
