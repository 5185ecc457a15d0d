package sandbox

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/intrabar"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type Option func(*Broker)

func WithFeeRate(feeRate fixed.Point) Option {
	return func(b *Broker) {
		b.feeRate = feeRate
	}
}

func WithFixedFee(fixedFee fixed.Point) Option {
	return func(b *Broker) {
		b.fixedFee = fixedFee
	}
}

func WithSlippage(count int, sigma, limit float64) Option {
	return func(b *Broker) {
		b.slippageCount = count
		b.slippageSigma = sigma
		b.slippageCap = limit
	}
}

func WithoutSlippage() Option {
	return func(b *Broker) {
		b.slippageSigma = 0
		b.slippageCap = 0
	}
}

func WithIntrabarOptions(opts intrabar.Options) Option {
	return func(b *Broker) {
		b.intrabar = opts
	}
}

func WithAssets(assets ...common.Asset) Option {
	return func(b *Broker) {
		for _, asset := range assets {
			b.assets[asset.Symbol] = asset
		}
	}
}
