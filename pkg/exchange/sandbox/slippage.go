package sandbox

import (
	"math"
	"math/rand"
)

const (
	defaultSlippageCount = 100000
	defaultSlippageSigma = 0.05
	defaultSlippageCap   = 0.25
)

// SlippagePool hands out relative slippages |N(0, sigma)| capped at limit.
// Values are drawn in blocks from the pool's own generator.
type SlippagePool struct {
	rng    *rand.Rand
	count  int
	sigma  float64
	limit  float64
	values []float64
}

func NewSlippagePool(rng *rand.Rand, count int, sigma, limit float64) *SlippagePool {
	if count <= 0 {
		count = defaultSlippageCount
	}
	p := &SlippagePool{
		rng:   rng,
		count: count,
		sigma: sigma,
		limit: limit,
	}
	p.refill()
	return p
}

func (p *SlippagePool) Next() float64 {
	if len(p.values) == 0 {
		p.refill()
	}
	v := p.values[len(p.values)-1]
	p.values = p.values[:len(p.values)-1]
	return v
}

func (p *SlippagePool) Limit() float64 {
	return p.limit
}

func (p *SlippagePool) refill() {
	p.values = make([]float64, p.count)
	if p.sigma == 0 {
		return
	}
	for i := range p.values {
		p.values[i] = math.Min(math.Abs(p.rng.NormFloat64()*p.sigma), p.limit)
	}
}
