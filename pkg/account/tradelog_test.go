package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/common"
)

func TestTradeLog_Report(t *testing.T) {
	log := NewTradeLog()
	log.Add(common.OrderFilled{OrderId: 1, Symbol: "AAPL", Kind: common.OrderKindLimitBuy, Volume: pt("10"),
		FillPrice: pt("99.5"), RequestedPrice: pt("100"), Size: pt("995"), Commission: pt("1"), TimeStamp: t0})
	log.Add(common.OrderFilled{OrderId: 2, Symbol: "AAPL", Kind: common.OrderKindMarketSell, Volume: pt("10"),
		FillPrice: pt("109"), RequestedPrice: pt("110"), Size: pt("1090"), Commission: pt("1.5"), TimeStamp: t0})

	assert.Equal(t, 2, log.Len())
	assert.True(t, log.TotalCommission().Eq(pt("2.5")))
	assert.True(t, log.TotalSlippage().Eq(pt("15")))

	reports := log.Report()
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[1].Number)
	assert.Equal(t, "market_sell", reports[1].Kind)
	assert.Equal(t, "sell", reports[1].Side)
	assert.True(t, reports[0].SlippageCost.Eq(pt("5")))
	assert.Equal(t, "02-01-2024 00:00:00", reports[0].Time)
}
