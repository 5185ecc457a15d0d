package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange"
	"github.com/peter-kozarec/barsim/pkg/intrabar"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	brokerComponentName = "exchange.sandbox.broker"
	defaultPriceDigits  = 8
)

// Broker prices and fills orders against the latest bar of their asset, starting
// with the first bar after the one the order was placed at.
// Market orders fill at the open of that bar shifted by slippage,
// limit orders fill at the first price of a simulated intrabar path crossing the limit.
type Broker struct {
	logger *zap.Logger
	quotes exchange.BarSource
	book   *OrderBook
	assets map[string]common.Asset

	feeRate  fixed.Point
	fixedFee fixed.Point
	intrabar intrabar.Options

	slippageCount int
	slippageSigma float64
	slippageCap   float64
	slippage      *SlippagePool
	pathRng       *rand.Rand

	// bar time each order was placed at or last evaluated against
	checkedAt map[common.OrderId]time.Time

	totalCommission fixed.Point
	totalSlippage   fixed.Point
}

func NewBroker(logger *zap.Logger, quotes exchange.BarSource, seed int64, options ...Option) (*Broker, error) {
	b := &Broker{
		logger:          logger,
		quotes:          quotes,
		book:            NewOrderBook(),
		assets:          make(map[string]common.Asset),
		feeRate:         fixed.Zero,
		fixedFee:        fixed.Zero,
		intrabar:        intrabar.DefaultOptions(),
		slippageCount:   defaultSlippageCount,
		slippageSigma:   defaultSlippageSigma,
		slippageCap:     defaultSlippageCap,
		checkedAt:       make(map[common.OrderId]time.Time),
		totalCommission: fixed.Zero,
		totalSlippage:   fixed.Zero,
	}

	for _, option := range options {
		option(b)
	}

	if err := b.intrabar.Validate(); err != nil {
		return nil, err
	}
	if b.feeRate.IsNeg() || b.fixedFee.IsNeg() {
		return nil, fmt.Errorf("fees must not be negative")
	}
	if b.slippageSigma < 0 || b.slippageCap < 0 {
		return nil, fmt.Errorf("slippage must not be negative")
	}

	// #nosec G404
	rng := rand.New(rand.NewSource(seed))
	b.slippage = NewSlippagePool(rand.New(rand.NewSource(rng.Int63())), b.slippageCount, b.slippageSigma, b.slippageCap)
	b.pathRng = rand.New(rand.NewSource(rng.Int63()))

	return b, nil
}

func (b *Broker) PlaceOrder(order common.Order) (common.PendingOrder, error) {
	pending, err := b.book.Place(order)
	if err != nil {
		return pending, err
	}
	// The bar that produced the order is never used to fill it
	if bar, err := b.quotes.Bar(order.Symbol, 0); err == nil {
		b.checkedAt[pending.OrderId] = bar.TimeStamp
	}
	b.logger.Debug("order placed",
		zap.Int64("id", pending.OrderId),
		zap.String("symbol", order.Symbol),
		zap.Stringer("kind", order.Kind),
		zap.String("volume", order.Volume.String()))
	return pending, nil
}

// CheckForFill evaluates a pending order against the current bar of its asset.
// It returns false when the order stays pending or got cancelled because it expired.
func (b *Broker) CheckForFill(id common.OrderId, now time.Time) (common.OrderFilled, bool, error) {
	order, err := b.book.Get(id)
	if err != nil {
		return common.OrderFilled{}, false, err
	}
	if order.Status != common.OrderStatusPending {
		return common.OrderFilled{}, false, fmt.Errorf("%w: %d is %s", ErrOrderNotPending, id, order.Status)
	}

	if order.Expired(now) {
		if _, err := b.book.Cancel(id, now); err != nil {
			return common.OrderFilled{}, false, err
		}
		delete(b.checkedAt, id)
		b.logger.Debug("order expired", zap.Int64("id", id), zap.String("expires_at", common.FormatTime(order.ExpiresAt)))
		return common.OrderFilled{}, false, nil
	}

	bar, err := b.quotes.Bar(order.Symbol, 0)
	if err != nil {
		return common.OrderFilled{}, false, fmt.Errorf("unable to get bar for order %d: %w", id, err)
	}

	switch order.Kind {
	case common.OrderKindMarketBuy, common.OrderKindMarketSell:
		return b.fillMarket(order, bar, now)
	case common.OrderKindLimitBuy, common.OrderKindLimitSell:
		return b.fillLimit(order, bar, now)
	default:
		return common.OrderFilled{}, false, fmt.Errorf("unable to check order %d: unknown kind %d", id, order.Kind)
	}
}

// RearmPending cancels the expired orders and returns a fresh event for every live one
func (b *Broker) RearmPending(now time.Time) []common.PendingOrder {
	events := b.book.Rearm(now)
	live := make(map[common.OrderId]time.Time, len(events))
	for _, event := range events {
		if t, ok := b.checkedAt[event.OrderId]; ok {
			live[event.OrderId] = t
		}
	}
	b.checkedAt = live
	return events
}

func (b *Broker) WorstPrice(symbol string, kind common.OrderKind, limit fixed.Point) (fixed.Point, error) {
	switch kind {
	case common.OrderKindLimitBuy, common.OrderKindLimitSell:
		return limit, nil
	case common.OrderKindMarketBuy, common.OrderKindMarketSell:
		bar, err := b.quotes.Bar(symbol, 0)
		if err != nil {
			return fixed.Zero, err
		}
		if kind == common.OrderKindMarketSell {
			return bar.Low.Mul(fixed.One.Sub(fixed.FromFloat64(b.slippage.Limit()))), nil
		}
		return bar.High.Mul(fixed.One.Add(fixed.FromFloat64(b.slippage.Limit()))), nil
	default:
		return fixed.Zero, fmt.Errorf("unknown order kind %d", kind)
	}
}

func (b *Broker) FeeRate() fixed.Point  { return b.feeRate }
func (b *Broker) FixedFee() fixed.Point { return b.fixedFee }

func (b *Broker) ReservedCash() (fixed.Point, error) {
	reserved := fixed.Zero
	for _, order := range b.book.Pending() {
		if order.Kind.Side() != common.OrderSideBuy {
			continue
		}
		price, err := b.WorstPrice(order.Symbol, order.Kind, order.LimitPrice)
		if err != nil {
			return fixed.Zero, err
		}
		size := order.Volume.Mul(price)
		reserved = reserved.Add(size).Add(b.commission(size))
	}
	return reserved, nil
}

func (b *Broker) PendingVolume(symbol string, side common.OrderSide) fixed.Point {
	return b.book.PendingVolume(symbol, side)
}

func (b *Broker) Book() *OrderBook {
	return b.book
}

func (b *Broker) Report() BrokerReport {
	return BrokerReport{
		Name:            brokerComponentName,
		FeeRate:         b.feeRate,
		FixedFee:        b.fixedFee,
		TotalCommission: b.totalCommission,
		TotalSlippage:   b.totalSlippage,
		OrderBook:       b.book.Report(),
	}
}

func (b *Broker) fillMarket(order common.Order, bar common.Bar, now time.Time) (common.OrderFilled, bool, error) {
	if !b.newBar(order.Id, bar) {
		return common.OrderFilled{}, false, nil
	}
	delete(b.checkedAt, order.Id)

	s := fixed.FromFloat64(b.slippage.Next())
	if order.Kind.Side() == common.OrderSideSell {
		s = s.Neg()
	}

	price := bar.Open.Mul(fixed.One.Add(s)).Round(b.priceDigits(order.Symbol))
	b.totalSlippage = b.totalSlippage.Add(price.Sub(bar.Open).Abs().Mul(order.Volume))

	filled, err := b.fill(order, price, bar.Open, now)
	return filled, err == nil, err
}

func (b *Broker) fillLimit(order common.Order, bar common.Bar, now time.Time) (common.OrderFilled, bool, error) {
	if !b.newBar(order.Id, bar) {
		return common.OrderFilled{}, false, nil
	}
	b.checkedAt[order.Id] = bar.TimeStamp

	if !bar.Touches(order.LimitPrice) {
		return common.OrderFilled{}, false, nil
	}

	opts := b.intrabar
	opts.PriceDigits = b.priceDigits(order.Symbol)

	path, err := intrabar.Simulate(bar, opts, b.pathRng)
	if err != nil {
		return common.OrderFilled{}, false, fmt.Errorf("unable to check order %d: %w", order.Id, err)
	}

	buy := order.Kind.Side() == common.OrderSideBuy
	for _, point := range path {
		if (buy && point.Price.Lte(order.LimitPrice)) || (!buy && point.Price.Gte(order.LimitPrice)) {
			delete(b.checkedAt, order.Id)
			filled, err := b.fill(order, point.Price, order.LimitPrice, now)
			return filled, err == nil, err
		}
	}

	// Touchable but no simulated price crossed the limit, retry on the next bar
	return common.OrderFilled{}, false, nil
}

// newBar reports whether bar is later than the one the order was placed at or last evaluated against
func (b *Broker) newBar(id common.OrderId, bar common.Bar) bool {
	t, ok := b.checkedAt[id]
	return !ok || bar.TimeStamp.After(t)
}

func (b *Broker) fill(order common.Order, price, requested fixed.Point, now time.Time) (common.OrderFilled, error) {
	size := order.Volume.Mul(price)
	commission := b.commission(size)

	if _, err := b.book.Fill(order.Id, price, requested, size, commission, now); err != nil {
		return common.OrderFilled{}, err
	}
	b.totalCommission = b.totalCommission.Add(commission)

	b.logger.Debug("order filled",
		zap.Int64("id", order.Id),
		zap.String("symbol", order.Symbol),
		zap.Stringer("kind", order.Kind),
		zap.String("price", price.String()),
		zap.String("size", size.String()))

	return common.OrderFilled{
		OrderId:        order.Id,
		Symbol:         order.Symbol,
		Kind:           order.Kind,
		Volume:         order.Volume,
		FillPrice:      price,
		RequestedPrice: requested,
		Size:           size,
		Commission:     commission,
		TimeStamp:      now,
	}, nil
}

func (b *Broker) commission(size fixed.Point) fixed.Point {
	return size.Mul(b.feeRate).Add(b.fixedFee)
}

func (b *Broker) priceDigits(symbol string) int {
	if asset, ok := b.assets[symbol]; ok {
		return asset.PriceDigits
	}
	return defaultPriceDigits
}
