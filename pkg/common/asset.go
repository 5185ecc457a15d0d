package common

import (
	"go.uber.org/zap"
)

type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassForex  AssetClass = "forex"
	AssetClassCrypto AssetClass = "crypto"
)

// VolumeDigits is the default number of decimals a tradable volume is rounded down to
func (c AssetClass) VolumeDigits() int {
	switch c {
	case AssetClassForex:
		return 2
	case AssetClassCrypto:
		return 8
	default:
		return 0
	}
}

type Asset struct {
	Symbol       string     `json:"symbol" yaml:"symbol"`
	Name         string     `json:"name,omitempty" yaml:"name"`
	Class        AssetClass `json:"class" yaml:"class"`
	VolumeDigits int        `json:"volume_digits" yaml:"volume_digits"`
	PriceDigits  int        `json:"price_digits" yaml:"price_digits"`
}

func NewAsset(symbol string, class AssetClass) Asset {
	return Asset{
		Symbol:       symbol,
		Name:         symbol,
		Class:        class,
		VolumeDigits: class.VolumeDigits(),
		PriceDigits:  8,
	}
}

func (a Asset) Fields() []zap.Field {
	return []zap.Field{
		zap.String("symbol", a.Symbol),
		zap.String("class", string(a.Class)),
		zap.Int("volume_digits", a.VolumeDigits),
		zap.Int("price_digits", a.PriceDigits),
	}
}
