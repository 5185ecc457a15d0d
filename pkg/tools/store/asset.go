package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peter-kozarec/barsim/pkg/common"
)

var (
	ErrAssetNotPresent = errors.New("asset is not present in asset table")
)

type AssetStore struct {
	assets []common.Asset
}

func CreateAssetStore(assets ...common.Asset) AssetStore {
	return AssetStore{
		assets: assets,
	}
}

func (s AssetStore) Contains(symbol string) bool {
	if _, err := s.Get(symbol); err != nil {
		return false
	}
	return true
}

// Get looks the symbol up case insensitively
func (s AssetStore) Get(symbol string) (common.Asset, error) {
	for _, asset := range s.assets {
		if strings.EqualFold(asset.Symbol, symbol) {
			return asset, nil
		}
	}
	return common.Asset{}, fmt.Errorf("unable to get asset with symbol %s: %w", symbol, ErrAssetNotPresent)
}

func (s AssetStore) MustGet(symbol string) common.Asset {
	asset, err := s.Get(symbol)
	if err != nil {
		panic(err.Error())
	}
	return asset
}

// Select returns the assets of the given symbols in their order, every asset when symbols is empty
func (s AssetStore) Select(symbols ...string) ([]common.Asset, error) {
	if len(symbols) == 0 {
		return append([]common.Asset(nil), s.assets...), nil
	}
	selected := make([]common.Asset, 0, len(symbols))
	for _, symbol := range symbols {
		asset, err := s.Get(symbol)
		if err != nil {
			return nil, err
		}
		selected = append(selected, asset)
	}
	return selected, nil
}

func (s AssetStore) Assets() []common.Asset {
	return append([]common.Asset(nil), s.assets...)
}
