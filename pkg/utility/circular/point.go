package circular

import (
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// PointBuffer is a rolling window keeping running mean and population deviation
type PointBuffer struct {
	b *Buffer[fixed.Point]

	mean       fixed.Point
	stdDev     fixed.Point
	sum        fixed.Point
	sumSquares fixed.Point
	variance   fixed.Point
}

func NewPointBuffer(capacity uint) *PointBuffer {
	return &PointBuffer{
		b:          NewBuffer[fixed.Point](capacity),
		sum:        fixed.Zero,
		sumSquares: fixed.Zero,
	}
}

func (p *PointBuffer) PushUpdate(v fixed.Point) {
	if p.b.IsFull() {
		removed := p.b.Last()
		p.sum = p.sum.Sub(removed)
		p.sumSquares = p.sumSquares.Sub(removed.Mul(removed))
	}
	p.b.Push(v)
	p.sum = p.sum.Add(v)
	p.sumSquares = p.sumSquares.Add(v.Mul(v))

	size := fixed.FromUint64(uint64(p.b.Size()), 0)
	p.mean = p.sum.Div(size)
	p.variance = p.sumSquares.Div(size).Sub(p.mean.Mul(p.mean))
	if p.variance.Gt(fixed.Zero) {
		p.stdDev = p.variance.Sqrt()
	} else {
		p.stdDev = fixed.Zero
	}
}

func (p *PointBuffer) IsFull() bool          { return p.b.IsFull() }
func (p *PointBuffer) Mean() fixed.Point     { return p.mean }
func (p *PointBuffer) Sum() fixed.Point      { return p.sum }
func (p *PointBuffer) StdDev() fixed.Point   { return p.stdDev }
func (p *PointBuffer) Variance() fixed.Point { return p.variance }
