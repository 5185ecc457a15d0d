package account

import (
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type Trade struct {
	Number     int
	OrderId    common.OrderId
	Symbol     string
	Kind       common.OrderKind
	Volume     fixed.Point
	Size       fixed.Point
	FillPrice  fixed.Point
	OrderPrice fixed.Point
	Commission fixed.Point
	TimeStamp  time.Time
}

// SlippageCost is the absolute distance between fill and requested price over the whole volume
func (t Trade) SlippageCost() fixed.Point {
	return t.FillPrice.Sub(t.OrderPrice).Mul(t.Volume).Abs()
}

type TradeReport struct {
	Number       int         `json:"trade_number"`
	OrderId      int64       `json:"order_id"`
	Symbol       string      `json:"asset"`
	Kind         string      `json:"type"`
	Side         string      `json:"side"`
	Size         fixed.Point `json:"size"`
	FillPrice    fixed.Point `json:"fill_price"`
	OrderPrice   fixed.Point `json:"order_price"`
	SlippageCost fixed.Point `json:"slippage_cost"`
	Volume       fixed.Point `json:"volume"`
	Commission   fixed.Point `json:"commission"`
	Time         string      `json:"time"`
}

// TradeLog is the append only record of every fill the account completed
type TradeLog struct {
	trades []Trade
}

func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

func (l *TradeLog) Add(fill common.OrderFilled) Trade {
	trade := Trade{
		Number:     len(l.trades),
		OrderId:    fill.OrderId,
		Symbol:     fill.Symbol,
		Kind:       fill.Kind,
		Volume:     fill.Volume,
		Size:       fill.Size,
		FillPrice:  fill.FillPrice,
		OrderPrice: fill.RequestedPrice,
		Commission: fill.Commission,
		TimeStamp:  fill.TimeStamp,
	}
	l.trades = append(l.trades, trade)
	return trade
}

func (l *TradeLog) Len() int {
	return len(l.trades)
}

func (l *TradeLog) Trades() []Trade {
	return append([]Trade(nil), l.trades...)
}

func (l *TradeLog) TotalCommission() fixed.Point {
	total := fixed.Zero
	for _, t := range l.trades {
		total = total.Add(t.Commission)
	}
	return total
}

func (l *TradeLog) TotalSlippage() fixed.Point {
	total := fixed.Zero
	for _, t := range l.trades {
		total = total.Add(t.SlippageCost())
	}
	return total
}

func (l *TradeLog) Report() []TradeReport {
	reports := make([]TradeReport, len(l.trades))
	for i, t := range l.trades {
		reports[i] = TradeReport{
			Number:       t.Number,
			OrderId:      t.OrderId,
			Symbol:       t.Symbol,
			Kind:         t.Kind.String(),
			Side:         t.Kind.Side().String(),
			Size:         t.Size,
			FillPrice:    t.FillPrice,
			OrderPrice:   t.OrderPrice,
			SlippageCost: t.SlippageCost(),
			Volume:       t.Volume,
			Commission:   t.Commission,
			Time:         common.FormatTime(t.TimeStamp),
		}
	}
	return reports
}
