package account

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange"
	"github.com/peter-kozarec/barsim/pkg/tools/metrics"
	"github.com/peter-kozarec/barsim/pkg/tools/position"
	"github.com/peter-kozarec/barsim/pkg/tools/risk"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

const componentName = "account"

var (
	ErrOversell          = errors.New("sell volume exceeds balance")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAsset      = errors.New("unknown asset")
)

type Series struct {
	Times           []time.Time
	Values          []fixed.Point
	Returns         []fixed.Point
	ReturnsPercent  []fixed.Point
	BaseBalances    []fixed.Point
	Balances        map[string][]fixed.Point
	ActivePositions []int
}

// Account is the ledger of a single run. Cash and balances change only through completed fills,
// any fill that would overdraw either of them is rejected with a hard error.
type Account struct {
	logger *zap.Logger
	broker exchange.Broker
	quotes exchange.BarSource
	risk   risk.Manager

	currency    string
	initialCash fixed.Point
	cash        fixed.Point

	symbols   []string
	assets    map[string]common.Asset
	balances  map[string]fixed.Point
	positions map[string]*position.Container

	tradeLog *TradeLog
	audit    *metrics.Audit
	series   Series
	peak     fixed.Point
}

func NewAccount(logger *zap.Logger, currency string, initialCash fixed.Point, assets []common.Asset,
	broker exchange.Broker, quotes exchange.BarSource, manager risk.Manager) (*Account, error) {

	if initialCash.IsNeg() {
		return nil, fmt.Errorf("%w: initial cash %s", ErrInsufficientFunds, initialCash)
	}

	a := &Account{
		logger:      logger,
		broker:      broker,
		quotes:      quotes,
		risk:        manager,
		currency:    currency,
		initialCash: initialCash,
		cash:        initialCash,
		assets:      make(map[string]common.Asset, len(assets)),
		balances:    make(map[string]fixed.Point, len(assets)),
		positions:   make(map[string]*position.Container, len(assets)),
		tradeLog:    NewTradeLog(),
		audit:       metrics.NewAudit(),
		series:      Series{Balances: make(map[string][]fixed.Point, len(assets))},
		peak:        fixed.Zero,
	}

	for _, asset := range assets {
		if _, ok := a.assets[asset.Symbol]; ok {
			return nil, fmt.Errorf("duplicate asset %s", asset.Symbol)
		}
		a.symbols = append(a.symbols, asset.Symbol)
		a.assets[asset.Symbol] = asset
		a.balances[asset.Symbol] = fixed.Zero
		a.positions[asset.Symbol] = position.NewContainer(asset.Symbol)
	}
	sort.Strings(a.symbols)

	return a, nil
}

func (a *Account) Currency() string         { return a.currency }
func (a *Account) InitialCash() fixed.Point { return a.initialCash }
func (a *Account) Cash() fixed.Point        { return a.cash }

func (a *Account) Balance(symbol string) fixed.Point {
	if balance, ok := a.balances[symbol]; ok {
		return balance
	}
	return fixed.Zero
}

// Drawdown is the distance of the last marked value from its running peak in percent
func (a *Account) Drawdown() fixed.Point {
	if len(a.series.Values) == 0 || !a.peak.IsPos() {
		return fixed.Zero
	}
	last := a.series.Values[len(a.series.Values)-1]
	return fixed.One.Sub(last.Div(a.peak)).MulInt(100)
}

// Value marks every balance to the latest close of its asset
func (a *Account) Value() (fixed.Point, error) {
	value := a.cash
	for _, symbol := range a.symbols {
		balance := a.balances[symbol]
		if balance.IsZero() {
			continue
		}
		bar, err := a.quotes.Bar(symbol, 0)
		if err != nil {
			return fixed.Zero, fmt.Errorf("unable to value %s: %w", symbol, err)
		}
		value = value.Add(balance.Mul(bar.Close))
	}
	return value, nil
}

func (a *Account) Positions(symbol string) (*position.Container, bool) {
	c, ok := a.positions[symbol]
	return c, ok
}

func (a *Account) TradeLog() *TradeLog {
	return a.tradeLog
}

func (a *Account) Series() Series {
	return a.series
}

// PlaceOrder sizes the signal through the risk manager, clamps the volume to what the
// account can settle and hands the order to the broker. Zero sized orders are
// rejected by the broker.
func (a *Account) PlaceOrder(signal common.Signal, now time.Time) (common.PendingOrder, error) {
	if err := signal.Validate(); err != nil {
		return common.PendingOrder{}, fmt.Errorf("%w: %s %s", err, signal.Kind, signal.Symbol)
	}
	asset, ok := a.assets[signal.Symbol]
	if !ok {
		return common.PendingOrder{}, fmt.Errorf("%w: %s", ErrUnknownAsset, signal.Symbol)
	}

	var (
		volume fixed.Point
		err    error
	)
	switch signal.Kind.Side() {
	case common.OrderSideBuy:
		if volume, err = a.risk.PositionSizeEntry(a, signal.Symbol); err == nil {
			volume, err = a.clampBuy(signal, volume)
		}
	case common.OrderSideSell:
		if volume, err = a.risk.PositionSizeExit(a, signal.Symbol); err == nil {
			volume = a.clampSell(signal, volume)
		}
	}
	if err != nil {
		return common.PendingOrder{}, fmt.Errorf("unable to size %s %s: %w", signal.Kind, signal.Symbol, err)
	}

	order := common.Order{
		Symbol:     signal.Symbol,
		Kind:       signal.Kind,
		Volume:     volume.Floor(asset.VolumeDigits),
		LimitPrice: signal.LimitPrice,
		ExpiresAt:  signal.ExpiresAt,
		Source:     signal.Source,
		TimeStamp:  now,
	}
	return a.broker.PlaceOrder(order)
}

// clampBuy limits the volume so that the worst fill plus commission fits into the cash
// not yet reserved by pending buy orders
func (a *Account) clampBuy(signal common.Signal, volume fixed.Point) (fixed.Point, error) {
	worst, err := a.broker.WorstPrice(signal.Symbol, signal.Kind, signal.LimitPrice)
	if err != nil {
		return fixed.Zero, err
	}
	reserved, err := a.broker.ReservedCash()
	if err != nil {
		return fixed.Zero, err
	}

	available := a.cash.Sub(reserved).Sub(a.broker.FixedFee())
	unit := worst.Mul(fixed.One.Add(a.broker.FeeRate()))
	if !available.IsPos() || !unit.IsPos() {
		return fixed.Zero, nil
	}

	affordable := available.Div(unit).Floor(a.assets[signal.Symbol].VolumeDigits)
	return volume.Min(affordable).Max(fixed.Zero), nil
}

func (a *Account) clampSell(signal common.Signal, volume fixed.Point) fixed.Point {
	free := a.Balance(signal.Symbol).Sub(a.broker.PendingVolume(signal.Symbol, common.OrderSideSell))
	return volume.Min(free).Max(fixed.Zero)
}

// CompleteOrder settles a fill on the ledger. It never clamps, an overdraft is returned as an error.
func (a *Account) CompleteOrder(fill common.OrderFilled) error {
	container, ok := a.positions[fill.Symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, fill.Symbol)
	}

	switch fill.Kind.Side() {
	case common.OrderSideBuy:
		debit := fill.Size.Add(fill.Commission)
		if debit.Gt(a.cash) {
			return fmt.Errorf("%w: order %d costs %s, cash %s", ErrInsufficientFunds, fill.OrderId, debit, a.cash)
		}
		if err := container.Enter(fill.Volume, fill.FillPrice, fill.TimeStamp); err != nil {
			return fmt.Errorf("unable to enter %s: %w", fill.Symbol, err)
		}
		a.cash = a.cash.Sub(debit)
		a.balances[fill.Symbol] = a.balances[fill.Symbol].Add(fill.Volume)

	case common.OrderSideSell:
		balance := a.balances[fill.Symbol]
		if fill.Volume.Gt(balance) {
			return fmt.Errorf("%w: order %d sells %s of %s %s", ErrOversell, fill.OrderId, fill.Volume, balance, fill.Symbol)
		}
		cash := a.cash.Add(fill.Size).Sub(fill.Commission)
		if cash.IsNeg() {
			return fmt.Errorf("%w: commission %s of order %d", ErrInsufficientFunds, fill.Commission, fill.OrderId)
		}

		current, _ := container.Current()
		if err := container.SellOff(fill.Volume, fill.FillPrice, fill.TimeStamp); err != nil {
			return fmt.Errorf("%w: %w", ErrOversell, err)
		}
		a.cash = cash
		a.balances[fill.Symbol] = balance.Sub(fill.Volume)

		if current != nil && current.Closed {
			a.audit.AddTrade(metrics.Trade{
				OpenedAt: current.OpenedAt,
				ClosedAt: current.ClosedAt,
				Return:   current.TotalReturnPercent.MulInt(100),
			})
			a.logger.Debug("position closed",
				zap.Int64("id", current.Id),
				zap.String("symbol", current.Symbol),
				zap.String("return", current.TotalReturn.String()))
		}

	default:
		return fmt.Errorf("unable to complete order %d: unknown kind %d", fill.OrderId, fill.Kind)
	}

	a.tradeLog.Add(fill)
	return nil
}

// Update marks the account to market and appends one sample to every series
func (a *Account) Update(now time.Time) error {
	value, err := a.Value()
	if err != nil {
		return err
	}
	returns := value.Sub(a.initialCash)

	a.series.Times = append(a.series.Times, now)
	a.series.Values = append(a.series.Values, value)
	a.series.Returns = append(a.series.Returns, returns)
	a.series.ReturnsPercent = append(a.series.ReturnsPercent, returns.DivOrZero(a.initialCash))
	a.series.BaseBalances = append(a.series.BaseBalances, a.cash)

	active := 0
	for _, symbol := range a.symbols {
		a.series.Balances[symbol] = append(a.series.Balances[symbol], a.balances[symbol])

		container := a.positions[symbol]
		if _, ok := container.Current(); !ok {
			continue
		}
		active++

		bar, err := a.quotes.Bar(symbol, 0)
		if err != nil {
			return fmt.Errorf("unable to mark %s: %w", symbol, err)
		}
		container.Update(now, bar.Close)
	}
	a.series.ActivePositions = append(a.series.ActivePositions, active)

	if value.Gt(a.peak) {
		a.peak = value
	}
	a.audit.AddValue(now, value)
	return nil
}
