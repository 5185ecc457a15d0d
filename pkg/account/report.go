package account

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/tools/metrics"
	"github.com/peter-kozarec/barsim/pkg/tools/position"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

type Report struct {
	Currency    string      `json:"currency"`
	InitialCash fixed.Point `json:"initial_cash"`
	Cash        fixed.Point `json:"cash"`

	Return        fixed.Point `json:"return"`
	ReturnPercent fixed.Point `json:"return_percent"`

	Trades          []TradeReport            `json:"trades"`
	TotalCommission fixed.Point              `json:"total_commission"`
	TotalSlippage   fixed.Point              `json:"total_slippage"`
	Times           []string                 `json:"times"`
	Values          []fixed.Point            `json:"values"`
	Returns         []fixed.Point            `json:"returns"`
	ReturnsPercent  []fixed.Point            `json:"returns_percent"`
	BaseBalances    []fixed.Point            `json:"base_balances"`
	Balances        map[string][]fixed.Point `json:"balances"`
	ActivePositions []int                    `json:"active_positions"`

	Positions map[string][]position.Report `json:"positions"`

	MaximumDrawdown      fixed.Point `json:"maximum_drawdown"`
	NumWinningPositions  int         `json:"num_winning_positions"`
	NumLosingPositions   int         `json:"num_losing_positions"`
	FracWinning          fixed.Point `json:"frac_winning"`
	AvgWinReturn         fixed.Point `json:"avg_win_return"`
	AvgLossReturn        fixed.Point `json:"avg_loss_return"`
	AvgWinReturnPercent  fixed.Point `json:"avg_win_return_percent"`
	AvgLossReturnPercent fixed.Point `json:"avg_loss_return_percent"`
	SharpeRatio          fixed.Point `json:"sharpe_ratio"`
	SortinoRatio         fixed.Point `json:"sortino_ratio"`

	Performance metrics.Report `json:"performance"`
}

func (a *Account) Report() Report {
	r := Report{
		Currency:        a.currency,
		InitialCash:     a.initialCash,
		Cash:            a.cash,
		Return:          fixed.Zero,
		ReturnPercent:   fixed.Zero,
		Trades:          a.tradeLog.Report(),
		TotalCommission: a.tradeLog.TotalCommission(),
		TotalSlippage:   a.tradeLog.TotalSlippage(),
		Values:          a.series.Values,
		Returns:         a.series.Returns,
		ReturnsPercent:  a.series.ReturnsPercent,
		BaseBalances:    a.series.BaseBalances,
		Balances:        a.series.Balances,
		ActivePositions: a.series.ActivePositions,
		Positions:       make(map[string][]position.Report, len(a.symbols)),
		MaximumDrawdown: metrics.Drawdown(a.series.Values),
		Performance:     a.audit.GenerateReport(),
	}

	if n := len(a.series.Returns); n > 0 {
		r.Return = a.series.Returns[n-1]
		r.ReturnPercent = a.series.ReturnsPercent[n-1]
	}

	r.Times = make([]string, len(a.series.Times))
	for i, t := range a.series.Times {
		r.Times[i] = common.FormatTime(t)
	}

	var (
		winReturn, lossReturn               = fixed.Zero, fixed.Zero
		winReturnPercent, lossReturnPercent = fixed.Zero, fixed.Zero
	)
	for _, symbol := range a.symbols {
		container := a.positions[symbol]
		r.Positions[symbol] = container.Reports()

		stats := container.Stats()
		r.NumWinningPositions += stats.NumWinning
		r.NumLosingPositions += stats.NumLosing
		winReturn = winReturn.Add(stats.WinReturn)
		lossReturn = lossReturn.Add(stats.LossReturn)
		winReturnPercent = winReturnPercent.Add(stats.WinReturnPercent)
		lossReturnPercent = lossReturnPercent.Add(stats.LossReturnPercent)
	}

	wins := fixed.FromInt(r.NumWinningPositions, 0)
	losses := fixed.FromInt(r.NumLosingPositions, 0)
	r.AvgWinReturn = winReturn.DivOrZero(wins)
	r.AvgLossReturn = lossReturn.DivOrZero(losses)
	r.AvgWinReturnPercent = winReturnPercent.DivOrZero(wins)
	r.AvgLossReturnPercent = lossReturnPercent.DivOrZero(losses)
	r.FracWinning = wins.DivOrZero(wins.Add(losses))

	tickReturns := tickReturns(a.series.Values)
	r.SharpeRatio = fixed.SharpeRatio(tickReturns, fixed.Zero)
	r.SortinoRatio = fixed.SortinoRatio(tickReturns, fixed.Zero)

	return r
}

func (r Report) Print(logger *zap.Logger) {
	logger.Info("account report",
		zap.String("currency", r.Currency),
		zap.String("initial_cash", r.InitialCash.String()),
		zap.String("cash", r.Cash.String()),
		zap.String("return", r.Return.String()),
		zap.String("return_percent", r.ReturnPercent.String()),
		zap.Int("trades", len(r.Trades)),
		zap.String("total_commission", r.TotalCommission.String()),
		zap.String("total_slippage", r.TotalSlippage.String()),
		zap.String("maximum_drawdown", r.MaximumDrawdown.String()),
		zap.Int("winning_positions", r.NumWinningPositions),
		zap.Int("losing_positions", r.NumLosingPositions),
		zap.String("frac_winning", r.FracWinning.String()),
		zap.String("sharpe", r.SharpeRatio.String()),
		zap.String("sortino", r.SortinoRatio.String()))
}

func tickReturns(values []fixed.Point) []fixed.Point {
	if len(values) < 2 {
		return nil
	}
	returns := make([]fixed.Point, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, values[i].DivOrZero(values[i-1]).Sub(fixed.One))
	}
	return returns
}
