package position

import (
	"errors"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var (
	ErrOversell       = errors.New("sell volume exceeds held volume")
	ErrInvalidVolume  = errors.New("volume must be positive")
	ErrPositionClosed = errors.New("position is closed")
)

type Id = int64

// Lot is a slice of the position bought at one price, lots are consumed first in first out
type Lot struct {
	Volume    fixed.Point `json:"volume"`
	Price     fixed.Point `json:"price"`
	TimeStamp time.Time   `json:"ts"`
}

type Transaction struct {
	Side      common.OrderSide `json:"side"`
	Volume    fixed.Point      `json:"volume"`
	Price     fixed.Point      `json:"price"`
	Size      fixed.Point      `json:"size"`
	CostPrice fixed.Point      `json:"cost_price"`
	TimeStamp time.Time        `json:"ts"`
}

type Series struct {
	Times          []time.Time
	Values         []fixed.Point
	Volumes        []fixed.Point
	Returns        []fixed.Point
	ReturnsPercent []fixed.Point
	ClosedAmounts  []fixed.Point
}

// Position is a long holding of one asset, it is opened by the first buy fill and
// closed once its volume drops to zero
type Position struct {
	Id       Id
	Symbol   string
	OpenedAt time.Time
	ClosedAt time.Time

	EnterPrice   fixed.Point
	Volume       fixed.Point
	ClosedAmount fixed.Point

	Closed             bool
	AvgClosePrice      fixed.Point
	TotalReturn        fixed.Point
	TotalReturnPercent fixed.Point
	Winning            bool

	lots         []Lot
	transactions []Transaction
	series       Series
	timeInTrade  time.Duration
}

func Open(id Id, symbol string, volume, price fixed.Point, at time.Time) (*Position, error) {
	if !volume.IsPos() {
		return nil, ErrInvalidVolume
	}
	p := &Position{
		Id:           id,
		Symbol:       symbol,
		OpenedAt:     at,
		EnterPrice:   price,
		Volume:       fixed.Zero,
		ClosedAmount: fixed.Zero,
	}
	p.buy(volume, price, at)
	return p, nil
}

func (p *Position) Increase(volume, price fixed.Point, at time.Time) error {
	if p.Closed {
		return ErrPositionClosed
	}
	if !volume.IsPos() {
		return ErrInvalidVolume
	}
	p.buy(volume, price, at)
	return nil
}

// SellOff consumes lots first in first out, one sell transaction per consumed lot.
// Selling more than the position holds is rejected without touching the position.
func (p *Position) SellOff(volume, price fixed.Point, at time.Time) (bool, error) {
	if p.Closed {
		return false, ErrPositionClosed
	}
	if !volume.IsPos() {
		return false, ErrInvalidVolume
	}
	if volume.Gt(p.Volume) {
		return false, fmt.Errorf("%w: selling %s of %s %s", ErrOversell, volume, p.Volume, p.Symbol)
	}

	remaining := volume
	for remaining.IsPos() {
		lot := &p.lots[0]
		consumed := remaining.Min(lot.Volume)

		p.transactions = append(p.transactions, Transaction{
			Side:      common.OrderSideSell,
			Volume:    consumed,
			Price:     price,
			Size:      consumed.Mul(price),
			CostPrice: lot.Price,
			TimeStamp: at,
		})

		lot.Volume = lot.Volume.Sub(consumed)
		if lot.Volume.IsZero() {
			p.lots = p.lots[1:]
		}
		remaining = remaining.Sub(consumed)
	}

	p.Volume = p.Volume.Sub(volume)
	p.ClosedAmount = p.ClosedAmount.Add(volume.Mul(price))

	if p.Volume.IsZero() {
		p.closeOut(price, at)
	}
	return p.Closed, nil
}

// Update appends the mark to market state of the position to its series
func (p *Position) Update(at time.Time, mark fixed.Point) {
	p.series.Times = append(p.series.Times, at)
	p.series.Values = append(p.series.Values, p.Value(mark))
	p.series.Volumes = append(p.series.Volumes, p.Volume)
	p.series.Returns = append(p.series.Returns, p.CurrentReturn(mark))
	p.series.ReturnsPercent = append(p.series.ReturnsPercent, p.CurrentReturnPercent(mark))
	p.series.ClosedAmounts = append(p.series.ClosedAmounts, p.ClosedAmount)
	p.timeInTrade = at.Sub(p.OpenedAt)
}

func (p *Position) Value(mark fixed.Point) fixed.Point {
	return p.Volume.Mul(mark)
}

// CurrentReturn is realized sell amount plus the marked value of the remainder minus the cost basis
func (p *Position) CurrentReturn(mark fixed.Point) fixed.Point {
	return p.Value(mark).Add(p.ClosedAmount).Sub(p.TotalBuySize())
}

func (p *Position) CurrentReturnPercent(mark fixed.Point) fixed.Point {
	return p.CurrentReturn(mark).DivOrZero(p.TotalBuySize())
}

// RealizedReturn is the profit of the consumed lots measured against their own cost
func (p *Position) RealizedReturn() fixed.Point {
	realized := fixed.Zero
	for _, t := range p.transactions {
		if t.Side == common.OrderSideSell {
			realized = realized.Add(t.Price.Sub(t.CostPrice).Mul(t.Volume))
		}
	}
	return realized
}

func (p *Position) TotalBuySize() fixed.Point {
	return p.totalSize(common.OrderSideBuy)
}

func (p *Position) TotalSellSize() fixed.Point {
	return p.totalSize(common.OrderSideSell)
}

func (p *Position) Lots() []Lot {
	return append([]Lot(nil), p.lots...)
}

func (p *Position) Transactions() []Transaction {
	return append([]Transaction(nil), p.transactions...)
}

func (p *Position) Series() Series {
	return p.series
}

func (p *Position) buy(volume, price fixed.Point, at time.Time) {
	p.lots = append(p.lots, Lot{Volume: volume, Price: price, TimeStamp: at})
	p.transactions = append(p.transactions, Transaction{
		Side:      common.OrderSideBuy,
		Volume:    volume,
		Price:     price,
		Size:      volume.Mul(price),
		CostPrice: price,
		TimeStamp: at,
	})
	p.Volume = p.Volume.Add(volume)
}

func (p *Position) closeOut(price fixed.Point, at time.Time) {
	p.Update(at, price)

	sold, weighted := fixed.Zero, fixed.Zero
	for _, t := range p.transactions {
		if t.Side == common.OrderSideSell {
			sold = sold.Add(t.Volume)
			weighted = weighted.Add(t.Size)
		}
	}

	p.Closed = true
	p.ClosedAt = at
	p.AvgClosePrice = weighted.DivOrZero(sold)
	p.TotalReturn = p.CurrentReturn(price)
	p.TotalReturnPercent = p.CurrentReturnPercent(price)
	p.Winning = p.TotalReturn.IsPos()
}

func (p *Position) totalSize(side common.OrderSide) fixed.Point {
	total := fixed.Zero
	for _, t := range p.transactions {
		if t.Side == side {
			total = total.Add(t.Size)
		}
	}
	return total
}
