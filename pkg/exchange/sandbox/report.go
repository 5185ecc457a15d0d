package sandbox

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

type KindCount struct {
	MarketBuy  int `json:"market_buy"`
	MarketSell int `json:"market_sell"`
	LimitBuy   int `json:"limit_buy"`
	LimitSell  int `json:"limit_sell"`
}

func (k KindCount) Total() int {
	return k.MarketBuy + k.MarketSell + k.LimitBuy + k.LimitSell
}

type BookReport struct {
	LatestId  common.OrderId `json:"latest_id"`
	Pending   KindCount      `json:"pending"`
	Filled    KindCount      `json:"filled"`
	Cancelled KindCount      `json:"cancelled"`
}

type BrokerReport struct {
	Name            string      `json:"name"`
	FeeRate         fixed.Point `json:"fee"`
	FixedFee        fixed.Point `json:"fixed_fee"`
	TotalCommission fixed.Point `json:"total_commission"`
	TotalSlippage   fixed.Point `json:"total_slippage"`
	OrderBook       BookReport  `json:"order_book"`
}

func (r BrokerReport) Print(logger *zap.Logger) {
	logger.Info("broker report",
		zap.String("fee", r.FeeRate.String()),
		zap.String("total_commission", r.TotalCommission.String()),
		zap.String("total_slippage", r.TotalSlippage.String()),
		zap.Int("filled", r.OrderBook.Filled.Total()),
		zap.Int("cancelled", r.OrderBook.Cancelled.Total()),
		zap.Int("pending", r.OrderBook.Pending.Total()))
}
