package simulation

import (
	"github.com/peter-kozarec/barsim/pkg/account"
	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange/sandbox"
	"github.com/peter-kozarec/barsim/pkg/middleware"
	"go.uber.org/zap"
)

// Report holds no wall clock values, two runs of the same spec serialize identically
type Report struct {
	RunId           string                     `json:"run_id"`
	Name            string                     `json:"name"`
	Seed            int64                      `json:"seed"`
	From            string                     `json:"from"`
	To              string                     `json:"to"`
	Ticks           int                        `json:"ticks"`
	Assets          []common.Asset             `json:"assets"`
	Strategies      []string                   `json:"strategies"`
	Parameters      map[string]float64         `json:"parameters,omitempty"`
	RejectedSignals int                        `json:"rejected_signals"`
	Router          bus.Statistics             `json:"router"`
	Events          middleware.TelemetryReport `json:"events"`
	Broker          sandbox.BrokerReport       `json:"broker"`
	Account         account.Report             `json:"account"`
}

func (r Report) Print(logger *zap.Logger) {
	logger.Info("simulation report",
		zap.String("run_id", r.RunId),
		zap.String("name", r.Name),
		zap.Int64("seed", r.Seed),
		zap.String("from", r.From),
		zap.String("to", r.To),
		zap.Int("ticks", r.Ticks),
		zap.Strings("strategies", r.Strategies),
		zap.Int("rejected_signals", r.RejectedSignals))
	r.Router.Print(logger)
	r.Events.Print(logger)
	r.Broker.Print(logger)
	r.Account.Print(logger)
}
