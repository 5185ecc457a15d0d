package metrics

import (
	"math"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

const maxAnnualizedReturn = 1e9

var sqrt252 = fixed.FromInt(252, 0).Sqrt()

type Trade struct {
	OpenedAt time.Time
	ClosedAt time.Time
	Return   fixed.Point
}

type sample struct {
	timeStamp time.Time
	value     fixed.Point
}

// Audit collects account values and closed trades and condenses them into a Report
type Audit struct {
	samples []sample
	trades  []Trade
}

func NewAudit() *Audit {
	return &Audit{}
}

func (a *Audit) AddValue(timeStamp time.Time, value fixed.Point) {
	a.samples = append(a.samples, sample{timeStamp, value})
}

func (a *Audit) AddTrade(trade Trade) {
	a.trades = append(a.trades, trade)
}

func (a *Audit) GenerateReport() Report {
	report := Report{}
	if len(a.samples) == 0 {
		return report
	}

	first, last := a.samples[0], a.samples[len(a.samples)-1]
	report.StartDate = first.timeStamp
	report.EndDate = last.timeStamp
	report.InitialValue = first.value
	report.FinalValue = last.value

	if first.value.IsPos() {
		report.TotalProfit = last.value.Div(first.value).Sub(fixed.One).MulInt64(100).Rescale(2)
	}
	if days := a.dayCount(); days > 0 && first.value.IsPos() && last.value.IsPos() {
		report.AnnualizedReturn = annualize(last.value.Div(first.value), days)
	}

	values := make([]fixed.Point, len(a.samples))
	for i, s := range a.samples {
		values[i] = s.value
	}
	report.MaxDrawdown = Drawdown(values).Neg().MulInt64(100).Rescale(2)

	var (
		totalDuration time.Duration
		totalProfit   = fixed.Zero
		totalLoss     = fixed.Zero
	)
	for _, trade := range a.trades {
		report.TotalTrades++
		if trade.ClosedAt.After(trade.OpenedAt) {
			totalDuration += trade.ClosedAt.Sub(trade.OpenedAt)
		}
		if trade.Return.IsPos() {
			totalProfit = totalProfit.Add(trade.Return)
			report.WinningTrades++
		} else {
			totalLoss = totalLoss.Add(trade.Return.Neg())
			report.LosingTrades++
		}
	}

	if report.WinningTrades > 0 {
		report.AverageWin = totalProfit.DivInt(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = totalLoss.DivInt(report.LosingTrades)
	}
	report.ProfitFactor = totalProfit.DivOrZero(totalLoss)
	report.RiskRewardRatio = report.AverageWin.DivOrZero(report.AverageLoss)
	if report.TotalTrades > 0 {
		report.Expectancy = totalProfit.Sub(totalLoss).DivInt(report.TotalTrades)
		report.AverageTradeDuration = totalDuration / time.Duration(report.TotalTrades)
		report.WinRate = fixed.FromInt(report.WinningTrades, 0).DivInt(report.TotalTrades).MulInt64(100).Rescale(2)
	}
	report.RecoveryFactor = report.TotalProfit.DivOrZero(report.MaxDrawdown)

	dailyReturns := a.dailyReturns()
	mean := fixed.Mean(dailyReturns)
	if vol := fixed.StdDev(dailyReturns, mean); !vol.IsZero() {
		report.AnnualizedVolatility = vol.Mul(sqrt252).MulInt64(100).Rescale(2)
		report.SharpeRatio = fixed.SharpeRatio(dailyReturns, fixed.Zero).Mul(sqrt252).Rescale(5)
		report.SortinoRatio = fixed.SortinoRatio(dailyReturns, fixed.Zero).Mul(sqrt252).Rescale(5)
	}

	return report
}

func (a *Audit) dayCount() int {
	if len(a.samples) < 2 {
		return 1
	}
	start := a.samples[0].timeStamp
	end := a.samples[len(a.samples)-1].timeStamp
	return int(end.Sub(start).Hours()/24) + 1
}

func (a *Audit) dailyReturns() []fixed.Point {
	var dailyReturns []fixed.Point
	if len(a.samples) < 2 {
		return dailyReturns
	}

	prevDate := a.samples[0].timeStamp.Truncate(24 * time.Hour)
	prevValue := a.samples[0].value

	for _, s := range a.samples[1:] {
		currDate := s.timeStamp.Truncate(24 * time.Hour)
		if currDate.After(prevDate) {
			dailyReturns = append(dailyReturns, s.value.DivOrZero(prevValue).Sub(fixed.One))
			prevDate = currDate
			prevValue = s.value
		}
	}

	return dailyReturns
}

// annualize compounds the growth ratio to a yearly percentage, short samples can explode so the result is bounded
func annualize(ratio fixed.Point, days int) fixed.Point {
	v := (math.Pow(ratio.F64(), 365/float64(days)) - 1) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fixed.Zero
	}
	return fixed.FromFloat64(math.Max(math.Min(v, maxAnnualizedReturn), -100)).Round(2)
}
