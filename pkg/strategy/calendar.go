package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	calendarComponentName = "strategy.calendar"

	FieldBuyDay   = "buy_day"
	FieldSellDay  = "sell_day"
	FieldDiscount = "discount"

	defaultBuyDay  = 15
	defaultSellDay = 1
	defaultExpiry  = 72 * time.Hour
)

var defaultDiscount = fixed.MustParse("0.95")

type CalendarOption func(*Calendar)

func WithDays(buyDay, sellDay int) CalendarOption {
	return func(c *Calendar) {
		c.buyDay = buyDay
		c.sellDay = sellDay
	}
}

func WithDiscount(discount fixed.Point) CalendarOption {
	return func(c *Calendar) {
		c.discount = discount
	}
}

func WithExpiry(expiry time.Duration) CalendarOption {
	return func(c *Calendar) {
		c.expiry = expiry
	}
}

// Calendar places a discounted limit buy on the buy day of the month
// and sells at market on the sell day. Each day triggers at most once per symbol.
type Calendar struct {
	logger  *zap.Logger
	quotes  datasource.Quotes
	symbols []string
	assets  map[string]common.Asset

	buyDay   int
	sellDay  int
	discount fixed.Point
	expiry   time.Duration

	lastSignal map[string]time.Time
}

func NewCalendar(logger *zap.Logger, quotes datasource.Quotes, assets []common.Asset, options ...CalendarOption) (*Calendar, error) {
	symbols, index := symbolsOf(assets)
	c := &Calendar{
		logger:     logger,
		quotes:     quotes,
		symbols:    symbols,
		assets:     index,
		buyDay:     defaultBuyDay,
		sellDay:    defaultSellDay,
		discount:   defaultDiscount,
		expiry:     defaultExpiry,
		lastSignal: make(map[string]time.Time),
	}
	for _, option := range options {
		option(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Calendar) Name() string      { return calendarComponentName }
func (c *Calendar) Symbols() []string { return c.symbols }

func (c *Calendar) GenerateSignals(_ context.Context, symbol string, now time.Time) ([]common.Signal, error) {
	day := now.UTC().Truncate(24 * time.Hour)
	if last, ok := c.lastSignal[symbol]; ok && last.Equal(day) {
		return nil, nil
	}

	var signal common.Signal
	switch now.UTC().Day() {
	case c.buyDay:
		bar, err := c.quotes.Bar(symbol, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", calendarComponentName, err)
		}
		signal = common.Signal{
			Kind:       common.OrderKindLimitBuy,
			LimitPrice: bar.Close.Mul(c.discount).Round(c.assets[symbol].PriceDigits),
		}
		if c.expiry > 0 {
			signal.ExpiresAt = now.Add(c.expiry)
		}
	case c.sellDay:
		signal = common.Signal{Kind: common.OrderKindMarketSell}
	default:
		return nil, nil
	}

	signal.Source = calendarComponentName
	signal.Symbol = symbol
	signal.TimeStamp = now
	c.lastSignal[symbol] = day

	c.logger.Debug("calendar signal",
		zap.String("symbol", symbol),
		zap.Stringer("kind", signal.Kind),
		zap.String("limit_price", signal.LimitPrice.String()))

	return []common.Signal{signal}, nil
}

func (c *Calendar) Bind(field string, value float64) error {
	switch field {
	case FieldBuyDay, FieldSellDay:
		day, err := intParameter(field, value, 1)
		if err != nil || day > 31 {
			return fmt.Errorf("%s: %w: %s must be a day of the month, got %v", calendarComponentName, common.ErrInvalidParameter, field, value)
		}
		if field == FieldBuyDay {
			c.buyDay = day
		} else {
			c.sellDay = day
		}
	case FieldDiscount:
		c.discount = fixed.FromFloat64(value)
	default:
		return fmt.Errorf("%s: %w: %s", calendarComponentName, common.ErrUnknownParameter, field)
	}
	return nil
}

func (c *Calendar) Validate() error {
	if c.buyDay < 1 || c.buyDay > 31 || c.sellDay < 1 || c.sellDay > 31 || c.buyDay == c.sellDay {
		return fmt.Errorf("%s: %w: buy day %d and sell day %d must be distinct days of the month",
			calendarComponentName, common.ErrInvalidParameter, c.buyDay, c.sellDay)
	}
	if !c.discount.IsPos() {
		return fmt.Errorf("%s: %w: discount %s must be positive", calendarComponentName, common.ErrInvalidParameter, c.discount)
	}
	return nil
}
