package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func newOrder(symbol string, kind common.OrderKind, volume int) common.Order {
	return common.Order{Symbol: symbol, Kind: kind, Volume: fixed.FromInt(volume, 0), TimeStamp: t0}
}

func TestOrderBook_Place(t *testing.T) {
	tests := []struct {
		name    string
		order   common.Order
		wantErr error
	}{
		{"market buy", newOrder("AAPL", common.OrderKindMarketBuy, 10), nil},
		{"limit sell", newOrder("AAPL", common.OrderKindLimitSell, 1), nil},
		{"zero volume", newOrder("AAPL", common.OrderKindMarketBuy, 0), ErrEmptyOrder},
		{"negative volume", newOrder("AAPL", common.OrderKindMarketSell, -1), ErrEmptyOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewOrderBook()
			pending, err := book.Place(tt.order)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, book.Report().Pending.Total())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, common.OrderId(1), pending.OrderId)

			order, err := book.Get(pending.OrderId)
			require.NoError(t, err)
			assert.Equal(t, common.OrderStatusPending, order.Status)
		})
	}
}

func TestOrderBook_UnknownKind(t *testing.T) {
	_, err := NewOrderBook().Place(newOrder("AAPL", common.OrderKind(42), 1))
	assert.Error(t, err)
}

func TestOrderBook_MonotonicIds(t *testing.T) {
	book := NewOrderBook()
	var last common.OrderId
	for i := 0; i < 5; i++ {
		pending, err := book.Place(newOrder("AAPL", common.OrderKindLimitBuy, 1))
		require.NoError(t, err)
		assert.Greater(t, pending.OrderId, last)
		last = pending.OrderId
	}
	assert.Equal(t, last, book.Report().LatestId)
}

func TestOrderBook_Lifecycle(t *testing.T) {
	book := NewOrderBook()

	a, err := book.Place(newOrder("AAPL", common.OrderKindMarketBuy, 1))
	require.NoError(t, err)
	b, err := book.Place(newOrder("AAPL", common.OrderKindLimitSell, 1))
	require.NoError(t, err)

	filled, err := book.Fill(a.OrderId, fixed.Hundred, fixed.Hundred, fixed.Hundred, fixed.Zero, t0)
	require.NoError(t, err)
	assert.Equal(t, common.OrderStatusFilled, filled.Status)

	cancelled, err := book.Cancel(b.OrderId, t0)
	require.NoError(t, err)
	assert.Equal(t, common.OrderStatusCancelled, cancelled.Status)

	_, err = book.Cancel(a.OrderId, t0)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	_, err = book.Fill(b.OrderId, fixed.One, fixed.One, fixed.One, fixed.Zero, t0)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	_, err = book.Fill(99, fixed.One, fixed.One, fixed.One, fixed.Zero, t0)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	report := book.Report()
	assert.Equal(t, KindCount{MarketBuy: 1}, report.Filled)
	assert.Equal(t, KindCount{LimitSell: 1}, report.Cancelled)
	assert.Zero(t, report.Pending.Total())
}

func TestOrderBook_Rearm(t *testing.T) {
	book := NewOrderBook()

	buy := newOrder("AAPL", common.OrderKindLimitBuy, 1)
	sell := newOrder("AAPL", common.OrderKindLimitSell, 1)
	expiring := newOrder("AAPL", common.OrderKindLimitBuy, 1)
	expiring.ExpiresAt = t0.Add(time.Hour)
	boundary := newOrder("AAPL", common.OrderKindLimitSell, 1)
	boundary.ExpiresAt = t0.Add(2 * time.Hour)

	for _, o := range []common.Order{buy, sell, expiring, boundary} {
		_, err := book.Place(o)
		require.NoError(t, err)
	}

	events := book.Rearm(t0.Add(2 * time.Hour))

	// sells first, then buys, expired order cancelled, expiry equal to now stays live
	require.Len(t, events, 3)
	assert.Equal(t, common.OrderId(2), events[0].OrderId)
	assert.Equal(t, common.OrderId(4), events[1].OrderId)
	assert.Equal(t, common.OrderId(1), events[2].OrderId)

	order, err := book.Get(3)
	require.NoError(t, err)
	assert.Equal(t, common.OrderStatusCancelled, order.Status)
	assert.Equal(t, KindCount{LimitBuy: 1}, book.Report().Cancelled)
}

func TestOrderBook_PendingVolume(t *testing.T) {
	book := NewOrderBook()
	for _, o := range []common.Order{
		newOrder("AAPL", common.OrderKindLimitSell, 3),
		newOrder("AAPL", common.OrderKindMarketSell, 2),
		newOrder("AAPL", common.OrderKindLimitBuy, 7),
		newOrder("MSFT", common.OrderKindLimitSell, 11),
	} {
		_, err := book.Place(o)
		require.NoError(t, err)
	}

	assert.True(t, book.PendingVolume("AAPL", common.OrderSideSell).Eq(fixed.FromInt(5, 0)))
	assert.True(t, book.PendingVolume("AAPL", common.OrderSideBuy).Eq(fixed.FromInt(7, 0)))
	assert.True(t, book.PendingVolume("TSLA", common.OrderSideBuy).IsZero())
	assert.Len(t, book.Pending(), 4)
}
