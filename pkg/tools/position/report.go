package position

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/tools/metrics"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type TransactionReport struct {
	Side      string      `json:"side"`
	Volume    fixed.Point `json:"volume"`
	Price     fixed.Point `json:"price"`
	Size      fixed.Point `json:"size"`
	CostPrice fixed.Point `json:"cost_price"`
	Time      string      `json:"time"`
}

type Report struct {
	Id                 Id                  `json:"id"`
	Symbol             string              `json:"symbol"`
	OpenedTime         string              `json:"opened_time"`
	ClosedTime         string              `json:"closed_time,omitempty"`
	Closed             bool                `json:"closed"`
	Volume             fixed.Point         `json:"volume"`
	EnterPrice         fixed.Point         `json:"enter_price"`
	AvgClosePrice      fixed.Point         `json:"avg_close_price"`
	TotalReturn        fixed.Point         `json:"total_return"`
	TotalReturnPercent fixed.Point         `json:"total_return_percent"`
	RealizedReturn     fixed.Point         `json:"realized_return"`
	TotalBuySize       fixed.Point         `json:"total_buy_size"`
	TotalSellSize      fixed.Point         `json:"total_sell_size"`
	Winning            bool                `json:"winning"`
	MaximumDrawdown    fixed.Point         `json:"maximum_drawdown"`
	HoursInTrade       float64             `json:"hours_in_trade"`
	Times              []string            `json:"times"`
	Values             []fixed.Point       `json:"values"`
	Volumes            []fixed.Point       `json:"volumes"`
	Returns            []fixed.Point       `json:"returns"`
	ReturnsPercent     []fixed.Point       `json:"return_percent"`
	ClosedAmounts      []fixed.Point       `json:"closed_amounts"`
	Transactions       []TransactionReport `json:"transactions"`
	NumBuys            int                 `json:"num_buys"`
	NumSells           int                 `json:"num_sells"`
}

func (p *Position) Report() Report {
	r := Report{
		Id:                 p.Id,
		Symbol:             p.Symbol,
		OpenedTime:         common.FormatTime(p.OpenedAt),
		ClosedTime:         common.FormatTime(p.ClosedAt),
		Closed:             p.Closed,
		Volume:             p.Volume,
		EnterPrice:         p.EnterPrice,
		AvgClosePrice:      p.AvgClosePrice,
		TotalReturn:        p.TotalReturn,
		TotalReturnPercent: p.TotalReturnPercent,
		RealizedReturn:     p.RealizedReturn(),
		TotalBuySize:       p.TotalBuySize(),
		TotalSellSize:      p.TotalSellSize(),
		Winning:            p.Winning,
		MaximumDrawdown:    metrics.Drawdown(p.series.Values),
		HoursInTrade:       p.timeInTrade.Hours(),
		Values:             p.series.Values,
		Volumes:            p.series.Volumes,
		Returns:            p.series.Returns,
		ReturnsPercent:     p.series.ReturnsPercent,
		ClosedAmounts:      p.series.ClosedAmounts,
	}

	r.Times = make([]string, len(p.series.Times))
	for i, t := range p.series.Times {
		r.Times[i] = common.FormatTime(t)
	}

	for _, t := range p.transactions {
		if t.Side == common.OrderSideBuy {
			r.NumBuys++
		} else {
			r.NumSells++
		}
		r.Transactions = append(r.Transactions, TransactionReport{
			Side:      t.Side.String(),
			Volume:    t.Volume,
			Price:     t.Price,
			Size:      t.Size,
			CostPrice: t.CostPrice,
			Time:      common.FormatTime(t.TimeStamp),
		})
	}

	return r
}
