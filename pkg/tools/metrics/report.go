package metrics

import (
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"go.uber.org/zap"
)

type Report struct {
	StartDate            time.Time     `json:"start_date"`
	EndDate              time.Time     `json:"end_date"`
	InitialValue         fixed.Point   `json:"initial_value"`
	FinalValue           fixed.Point   `json:"final_value"`
	TotalProfit          fixed.Point   `json:"total_profit_percent"`
	AnnualizedReturn     fixed.Point   `json:"annualized_return_percent"`
	MaxDrawdown          fixed.Point   `json:"max_drawdown_percent"`
	TotalTrades          int           `json:"total_trades"`
	WinningTrades        int           `json:"winning_trades"`
	LosingTrades         int           `json:"losing_trades"`
	WinRate              fixed.Point   `json:"win_rate_percent"`
	Expectancy           fixed.Point   `json:"expectancy"`
	ProfitFactor         fixed.Point   `json:"profit_factor"`
	AverageWin           fixed.Point   `json:"average_win"`
	AverageLoss          fixed.Point   `json:"average_loss"`
	RiskRewardRatio      fixed.Point   `json:"risk_reward_ratio"`
	AverageTradeDuration time.Duration `json:"average_trade_duration"`
	RecoveryFactor       fixed.Point   `json:"recovery_factor"`
	SharpeRatio          fixed.Point   `json:"sharpe_ratio"`
	SortinoRatio         fixed.Point   `json:"sortino_ratio"`
	AnnualizedVolatility fixed.Point   `json:"annualized_volatility_percent"`
}

func (r Report) Print(logger *zap.Logger) {
	logger.Info("performance report",
		zap.String("initial_value", r.InitialValue.String()),
		zap.String("final_value", r.FinalValue.String()),
		zap.String("total_profit", fmt.Sprintf("%s%%", r.TotalProfit)),
		zap.String("annualized_return", fmt.Sprintf("%s%%", r.AnnualizedReturn)),
		zap.String("max_drawdown", fmt.Sprintf("%s%%", r.MaxDrawdown)),
		zap.String("recovery_factor", r.RecoveryFactor.String()))

	logger.Info("trade statistics",
		zap.Int("total_trades", r.TotalTrades),
		zap.Int("winning_trades", r.WinningTrades),
		zap.Int("losing_trades", r.LosingTrades),
		zap.String("win_rate", fmt.Sprintf("%s%%", r.WinRate)),
		zap.String("expectancy", r.Expectancy.String()),
		zap.String("profit_factor", r.ProfitFactor.String()),
		zap.String("average_win", r.AverageWin.String()),
		zap.String("average_loss", r.AverageLoss.String()),
		zap.String("risk_reward_ratio", r.RiskRewardRatio.String()),
		zap.String("average_trade_duration", fmt.Sprintf("%.2fh", r.AverageTradeDuration.Hours())))

	logger.Info("risk metrics",
		zap.String("sharpe_ratio", r.SharpeRatio.String()),
		zap.String("sortino_ratio", r.SortinoRatio.String()),
		zap.String("annualized_volatility", fmt.Sprintf("%s%%", r.AnnualizedVolatility)))
}
