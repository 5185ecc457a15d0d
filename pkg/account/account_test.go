package account

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange/sandbox"
	"github.com/peter-kozarec/barsim/pkg/tools/risk"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

type barStub map[string]common.Bar

func (s barStub) Bar(symbol string, _ uint) (common.Bar, error) {
	bar, ok := s[symbol]
	if !ok {
		return common.Bar{}, errors.New("no bar")
	}
	return bar, nil
}

type fixedSize struct {
	entry fixed.Point
	exit  fixed.Point
}

func (f fixedSize) PositionSizeEntry(risk.Portfolio, string) (fixed.Point, error) {
	return f.entry, nil
}
func (f fixedSize) PositionSizeExit(risk.Portfolio, string) (fixed.Point, error) { return f.exit, nil }

func pt(v string) fixed.Point { return fixed.MustParse(v) }

func bar(o, h, l, c string, at time.Time) common.Bar {
	return common.Bar{
		Symbol:    "AAPL",
		TimeStamp: at,
		Period:    24 * time.Hour,
		Open:      pt(o),
		High:      pt(h),
		Low:       pt(l),
		Close:     pt(c),
		Volume:    pt("1000"),
	}
}

type fixture struct {
	quotes  barStub
	broker  *sandbox.Broker
	account *Account
}

func newFixture(t *testing.T, cash string, size fixedSize, options ...sandbox.Option) *fixture {
	quotes := barStub{"AAPL": bar("100", "101", "99", "100", t0)}
	assets := []common.Asset{common.NewAsset("AAPL", common.AssetClassStock)}

	options = append([]sandbox.Option{sandbox.WithAssets(assets...), sandbox.WithoutSlippage()}, options...)
	broker, err := sandbox.NewBroker(zap.NewNop(), quotes, 1, options...)
	require.NoError(t, err)

	account, err := NewAccount(zap.NewNop(), "USD", pt(cash), assets, broker, quotes, size)
	require.NoError(t, err)

	return &fixture{quotes: quotes, broker: broker, account: account}
}

// trade places a signal and settles it against a copy of the current bar one period later
func (f *fixture) trade(t *testing.T, kind common.OrderKind, at time.Time) common.OrderFilled {
	pending, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: kind}, at)
	require.NoError(t, err)

	next := f.quotes["AAPL"]
	next.TimeStamp = next.TimeStamp.Add(next.Period)
	f.quotes["AAPL"] = next

	filled, ok, err := f.broker.CheckForFill(pending.OrderId, at)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, f.account.CompleteOrder(filled))
	return filled
}

func TestAccount_MarketBuy(t *testing.T) {
	f := newFixture(t, "10000", fixedSize{entry: pt("10")}, sandbox.WithFeeRate(pt("0.001")))

	filled := f.trade(t, common.OrderKindMarketBuy, t0)

	assert.True(t, filled.Size.Eq(pt("1000")))
	assert.True(t, filled.Commission.Eq(pt("1")))
	assert.True(t, f.account.Cash().Eq(pt("8999")), "cash %s", f.account.Cash())
	assert.True(t, f.account.Balance("AAPL").Eq(pt("10")))
	assert.Equal(t, 1, f.account.TradeLog().Len())

	c, ok := f.account.Positions("AAPL")
	require.True(t, ok)
	current, ok := c.Current()
	require.True(t, ok)
	assert.True(t, current.Volume.Eq(pt("10")))
}

func TestAccount_Conservation(t *testing.T) {
	tests := []struct {
		name    string
		feeRate string
		fixed   string
	}{
		{"no fees", "0", "0"},
		{"proportional fee", "0.001", "0"},
		{"fixed fee", "0", "2.5"},
		{"both", "0.0025", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "10000", fixedSize{entry: pt("10"), exit: pt("4")},
				sandbox.WithFeeRate(pt(tt.feeRate)), sandbox.WithFixedFee(pt(tt.fixed)))

			for i, kind := range []common.OrderKind{
				common.OrderKindMarketBuy,
				common.OrderKindMarketSell,
				common.OrderKindMarketSell,
				common.OrderKindMarketBuy,
			} {
				at := t0.Add(time.Duration(i) * 24 * time.Hour)
				price := fixed.FromInt(100+7*i, 0)
				f.quotes["AAPL"] = bar(price.String(), price.String(), price.String(), price.String(), at)

				cashBefore, balanceBefore := f.account.Cash(), f.account.Balance("AAPL")
				filled := f.trade(t, kind, at)

				before := cashBefore.Add(balanceBefore.Mul(filled.FillPrice))
				after := f.account.Cash().Add(f.account.Balance("AAPL").Mul(filled.FillPrice))
				assert.True(t, after.Sub(before).Eq(filled.Commission.Neg()),
					"step %d: value moved by %s, commission %s", i, after.Sub(before), filled.Commission)
			}
		})
	}
}

func TestAccount_CompleteOrderHardErrors(t *testing.T) {
	f := newFixture(t, "1000", fixedSize{})

	sell := common.OrderFilled{OrderId: 1, Symbol: "AAPL", Kind: common.OrderKindMarketSell,
		Volume: pt("1"), FillPrice: pt("100"), Size: pt("100"), Commission: fixed.Zero, TimeStamp: t0}
	assert.ErrorIs(t, f.account.CompleteOrder(sell), ErrOversell)

	buy := common.OrderFilled{OrderId: 2, Symbol: "AAPL", Kind: common.OrderKindLimitBuy,
		Volume: pt("10"), FillPrice: pt("100"), Size: pt("1000"), Commission: pt("0.01"), TimeStamp: t0}
	assert.ErrorIs(t, f.account.CompleteOrder(buy), ErrInsufficientFunds)

	unknown := buy
	unknown.Symbol = "MSFT"
	assert.ErrorIs(t, f.account.CompleteOrder(unknown), ErrUnknownAsset)

	assert.True(t, f.account.Cash().Eq(pt("1000")))
	assert.True(t, f.account.Balance("AAPL").IsZero())
	assert.Zero(t, f.account.TradeLog().Len())
}

func TestAccount_PlaceOrderClamps(t *testing.T) {
	t.Run("buy clamps to cash", func(t *testing.T) {
		f := newFixture(t, "1000", fixedSize{entry: pt("100")}, sandbox.WithFeeRate(pt("0.001")))

		pending, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindMarketBuy}, t0)
		require.NoError(t, err)

		order, err := f.broker.Book().Get(pending.OrderId)
		require.NoError(t, err)
		// 1000 / (101 * 1.001)
		assert.True(t, order.Volume.Eq(pt("9")), "volume %s", order.Volume)
	})

	t.Run("buy respects reserved cash", func(t *testing.T) {
		f := newFixture(t, "1000", fixedSize{entry: pt("5")})

		_, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindLimitBuy, LimitPrice: pt("150")}, t0)
		require.NoError(t, err)

		pending, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindLimitBuy, LimitPrice: pt("100")}, t0)
		require.NoError(t, err)

		order, err := f.broker.Book().Get(pending.OrderId)
		require.NoError(t, err)
		assert.True(t, order.Volume.Eq(pt("2")), "volume %s", order.Volume)
	})

	t.Run("sell clamps to free balance", func(t *testing.T) {
		f := newFixture(t, "10000", fixedSize{entry: pt("10"), exit: pt("6")})
		f.trade(t, common.OrderKindMarketBuy, t0)

		_, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindLimitSell, LimitPrice: pt("200")}, t0)
		require.NoError(t, err)

		pending, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindLimitSell, LimitPrice: pt("200")}, t0)
		require.NoError(t, err)

		order, err := f.broker.Book().Get(pending.OrderId)
		require.NoError(t, err)
		assert.True(t, order.Volume.Eq(pt("4")), "volume %s", order.Volume)

		_, err = f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindMarketSell}, t0)
		assert.ErrorIs(t, err, sandbox.ErrEmptyOrder)
	})

	t.Run("sell without holdings is empty", func(t *testing.T) {
		f := newFixture(t, "10000", fixedSize{exit: pt("6")})
		_, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindMarketSell}, t0)
		assert.ErrorIs(t, err, sandbox.ErrEmptyOrder)
	})

	t.Run("unknown asset", func(t *testing.T) {
		f := newFixture(t, "10000", fixedSize{entry: pt("1")})
		_, err := f.account.PlaceOrder(common.Signal{Symbol: "MSFT", Kind: common.OrderKindMarketBuy}, t0)
		assert.ErrorIs(t, err, ErrUnknownAsset)
	})

	t.Run("invalid signal", func(t *testing.T) {
		f := newFixture(t, "10000", fixedSize{entry: pt("1")})
		_, err := f.account.PlaceOrder(common.Signal{Symbol: "AAPL", Kind: common.OrderKindLimitBuy}, t0)
		assert.ErrorIs(t, err, common.ErrInvalidSignal)
	})
}

func TestAccount_UpdateAndReport(t *testing.T) {
	f := newFixture(t, "10000", fixedSize{entry: pt("10"), exit: pt("10")})

	require.NoError(t, f.account.Update(t0))
	f.trade(t, common.OrderKindMarketBuy, t0.Add(24*time.Hour))
	require.NoError(t, f.account.Update(t0.Add(24*time.Hour)))

	f.quotes["AAPL"] = bar("120", "120", "120", "120", t0.Add(48*time.Hour))
	require.NoError(t, f.account.Update(t0.Add(48*time.Hour)))
	assert.True(t, f.account.Drawdown().IsZero())

	f.quotes["AAPL"] = bar("90", "90", "90", "90", t0.Add(72*time.Hour))
	require.NoError(t, f.account.Update(t0.Add(72*time.Hour)))
	// 9900 after 10200
	assert.True(t, f.account.Drawdown().Eq(pt("1").Sub(pt("9900").Div(pt("10200"))).MulInt(100)))

	f.trade(t, common.OrderKindMarketSell, t0.Add(72*time.Hour))
	require.NoError(t, f.account.Update(t0.Add(72*time.Hour)))

	series := f.account.Series()
	require.Len(t, series.Values, 5)
	assert.True(t, series.Values[2].Eq(pt("10200")))
	assert.Equal(t, []int{0, 1, 1, 1, 0}, series.ActivePositions)
	assert.True(t, series.Balances["AAPL"][1].Eq(pt("10")))

	report := f.account.Report()
	assert.Len(t, report.Trades, 2)
	assert.True(t, report.Return.Eq(pt("-100")), "return %s", report.Return)
	assert.True(t, report.ReturnPercent.Eq(pt("-0.01")))
	assert.Equal(t, 0, report.NumWinningPositions)
	assert.Equal(t, 1, report.NumLosingPositions)
	assert.True(t, report.FracWinning.IsZero())
	assert.True(t, report.AvgLossReturn.Eq(pt("-100")))
	assert.True(t, report.MaximumDrawdown.Eq(pt("9900").Div(pt("10200")).Sub(fixed.One)))
	assert.Equal(t, 1, report.Performance.TotalTrades)
	require.Len(t, report.Positions["AAPL"], 1)
	assert.True(t, report.Positions["AAPL"][0].Closed)
	assert.Equal(t, "02-01-2024 00:00:00", report.Times[0])
}

func TestNewAccount_Invalid(t *testing.T) {
	assets := []common.Asset{common.NewAsset("AAPL", common.AssetClassStock)}

	_, err := NewAccount(zap.NewNop(), "USD", pt("-1"), assets, nil, barStub{}, fixedSize{})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = NewAccount(zap.NewNop(), "USD", pt("1"), append(assets, assets[0]), nil, barStub{}, fixedSize{})
	assert.Error(t, err)
}
