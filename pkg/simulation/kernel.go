package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/peter-kozarec/barsim/pkg/account"
	"github.com/peter-kozarec/barsim/pkg/bus"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/datasource/historical"
	"github.com/peter-kozarec/barsim/pkg/exchange/sandbox"
	"github.com/peter-kozarec/barsim/pkg/middleware"
	"github.com/peter-kozarec/barsim/pkg/strategy"
	"github.com/peter-kozarec/barsim/pkg/utility"
	"go.uber.org/zap"
)

const kernelComponentName = "simulation.kernel"

var ErrKernelUsed = errors.New("kernel already ran")

// Kernel is one single threaded run. Every tick the provider posts a time series event per
// updated symbol, the router drains, pending orders are re-armed for the next tick and the
// account is marked to market.
type Kernel struct {
	logger *zap.Logger
	spec   Spec
	runId  utility.RunID

	router     *bus.Router
	provider   *historical.Provider
	broker     *sandbox.Broker
	account    *account.Account
	strategies []strategy.Strategy
	bySymbol   map[string][]strategy.Strategy

	telemetry   *middleware.Telemetry
	performance *middleware.Performance

	now      time.Time
	first    time.Time
	ticks    int
	rejected int
	ran      bool
}

func NewKernel(logger *zap.Logger, spec Spec) (*Kernel, error) {
	cfg := spec.Configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if spec.Strategies == nil {
		return nil, fmt.Errorf("%s: no strategy factory", kernelComponentName)
	}
	if cfg.Step > 0 && (spec.From.IsZero() || spec.To.IsZero()) {
		return nil, fmt.Errorf("%s: a fixed step needs both ends of the time window", kernelComponentName)
	}
	if spec.Risk == nil {
		spec.Risk = DefaultRisk
	}
	for _, asset := range spec.Assets {
		if _, ok := spec.Series[asset.Symbol]; !ok {
			return nil, fmt.Errorf("%s: no bars for asset %s", kernelComponentName, asset.Symbol)
		}
	}

	k := &Kernel{
		logger:    logger.With(zap.String("run", spec.Name)),
		spec:      spec,
		runId:     utility.NewRunID(spec.Name, spec.Seed),
		router:    bus.NewRouter(cfg.RouterCapacity),
		bySymbol:  make(map[string][]strategy.Strategy),
		telemetry: middleware.NewTelemetry(),
	}

	var err error
	if k.provider, err = historical.NewProvider(spec.Series, k.providerOptions()...); err != nil {
		return nil, fmt.Errorf("unable to create provider: %w", err)
	}
	if k.broker, err = sandbox.NewBroker(k.logger, k.provider, spec.Seed, cfg.brokerOptions(spec.Assets)...); err != nil {
		return nil, fmt.Errorf("unable to create broker: %w", err)
	}

	manager, err := spec.Risk(k.logger, k.provider, spec.Assets)
	if err != nil {
		return nil, fmt.Errorf("unable to create risk manager: %w", err)
	}
	if k.account, err = account.NewAccount(k.logger, cfg.Currency, cfg.InitialCash, spec.Assets, k.broker, k.provider, manager); err != nil {
		return nil, fmt.Errorf("unable to create account: %w", err)
	}
	if k.strategies, err = spec.Strategies(k.logger, k.provider, spec.Assets); err != nil {
		return nil, fmt.Errorf("unable to create strategies: %w", err)
	}

	targets := make(map[string]Bindable, len(k.strategies)+1)
	if b, ok := manager.(Bindable); ok {
		targets[RiskTarget] = b
	}
	for _, s := range k.strategies {
		if b, ok := s.(Bindable); ok {
			targets[s.Name()] = b
		}
		for _, symbol := range s.Symbols() {
			if _, ok := spec.Series[symbol]; !ok {
				return nil, fmt.Errorf("%s: strategy %s trades unknown symbol %s", kernelComponentName, s.Name(), symbol)
			}
			k.bySymbol[symbol] = append(k.bySymbol[symbol], s)
		}
	}
	if err := spec.Manifest.Apply(targets, spec.Realization); err != nil {
		return nil, err
	}

	k.wire(cfg)
	return k, nil
}

func (k *Kernel) providerOptions() []historical.Option {
	cfg := k.spec.Configuration
	options := []historical.Option{historical.WithBufferSize(cfg.BufferSize)}
	switch {
	case cfg.Step > 0:
		options = append(options, historical.WithStep(cfg.Step, k.spec.From, k.spec.To))
	case !k.spec.From.IsZero() || !k.spec.To.IsZero():
		options = append(options, historical.WithWindow(k.spec.From, k.spec.To))
	}
	return options
}

func (k *Kernel) wire(cfg Configuration) {
	flags, unknown := middleware.ParseMonitorFlags(cfg.Monitor)
	if len(unknown) > 0 {
		k.logger.Warn("unknown monitor flags", zap.Strings("flags", unknown))
	}
	monitor := middleware.NewMonitor(k.logger, flags)

	tsWrappers := []func(bus.TimeSeriesEventHandler) bus.TimeSeriesEventHandler{monitor.WithTimeSeries, k.telemetry.WithTimeSeries}
	signalWrappers := []func(bus.SignalEventHandler) bus.SignalEventHandler{monitor.WithSignal, k.telemetry.WithSignal}
	pendingWrappers := []func(bus.PendingOrderEventHandler) bus.PendingOrderEventHandler{monitor.WithPendingOrder, k.telemetry.WithPendingOrder}
	filledWrappers := []func(bus.OrderFilledEventHandler) bus.OrderFilledEventHandler{monitor.WithOrderFilled, k.telemetry.WithOrderFilled}

	if cfg.Profile {
		k.performance = middleware.NewPerformance(k.logger)
		tsWrappers = append(tsWrappers, k.performance.WithTimeSeries)
		signalWrappers = append(signalWrappers, k.performance.WithSignal)
		pendingWrappers = append(pendingWrappers, k.performance.WithPendingOrder)
		filledWrappers = append(filledWrappers, k.performance.WithOrderFilled)
	}
	if k.spec.Journal != nil {
		filledWrappers = append(filledWrappers, middleware.NewLedger(k.spec.Journal).WithOrderFilled)
	}

	k.router.OnTimeSeries = middleware.Chain(tsWrappers...)(k.onTimeSeries)
	k.router.OnSignal = middleware.Chain(signalWrappers...)(k.onSignal)
	k.router.OnPendingOrder = middleware.Chain(pendingWrappers...)(k.onPendingOrder)
	k.router.OnOrderFilled = middleware.Chain(filledWrappers...)(k.onOrderFilled)
}

// Run replays the whole time axis. A kernel runs once, rerunning needs a new kernel built from the same Spec.
func (k *Kernel) Run(ctx context.Context) (Report, error) {
	if k.ran {
		return Report{}, ErrKernelUsed
	}
	k.ran = true

	k.logger.Info("run started",
		zap.String("run_id", k.runId.String()),
		zap.Int64("seed", k.spec.Seed),
		zap.Int("assets", len(k.spec.Assets)),
		zap.Int("strategies", len(k.strategies)))

	step := datasource.CreateTimeSeriesDispatcher(k.router, k.provider)
	for {
		now, err := step(ctx)
		if errors.Is(err, datasource.ErrEof) {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("unable to advance to the next tick: %w", err)
		}
		if err := k.tick(ctx, now); err != nil {
			return Report{}, fmt.Errorf("tick %s: %w", common.FormatTime(now), err)
		}
	}

	report := k.Report()
	k.logger.Info("run finished",
		zap.Int("ticks", report.Ticks),
		zap.Int("rejected_signals", report.RejectedSignals),
		zap.String("return", report.Account.Return.String()))
	if k.performance != nil {
		k.performance.PrintStatistics()
	}
	return report, nil
}

func (k *Kernel) tick(ctx context.Context, now time.Time) error {
	k.now = now
	if k.ticks == 0 {
		k.first = now
	}
	k.ticks++

	if err := k.router.Drain(ctx); err != nil {
		return err
	}
	for _, pending := range k.broker.RearmPending(now) {
		if err := k.router.Post(bus.PendingOrderEvent, pending); err != nil {
			return err
		}
	}
	return k.account.Update(now)
}

func (k *Kernel) onTimeSeries(ctx context.Context, ts common.TimeSeries) error {
	var signals []common.Signal
	for _, s := range k.bySymbol[ts.Symbol] {
		generated, err := s.GenerateSignals(ctx, ts.Symbol, k.now)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
		signals = append(signals, generated...)
	}

	// Buys go on the primary stack in reverse so they dispatch in the order they were generated.
	// Sells wait for the deferred stack.
	for i := len(signals) - 1; i >= 0; i-- {
		signal := signals[i]
		if signal.Kind.Side() != common.OrderSideBuy {
			continue
		}
		if err := k.router.Post(bus.SignalEvent, signal); err != nil {
			return err
		}
	}
	for _, signal := range signals {
		if signal.Kind.Side() != common.OrderSideSell {
			continue
		}
		if err := k.router.Defer(bus.SignalEvent, signal); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kernel) onSignal(_ context.Context, signal common.Signal) error {
	pending, err := k.account.PlaceOrder(signal, k.now)
	if errors.Is(err, sandbox.ErrEmptyOrder) {
		k.rejected++
		k.logger.Warn("signal rejected",
			zap.String("symbol", signal.Symbol),
			zap.Stringer("kind", signal.Kind),
			zap.String("source", signal.Source))
		return nil
	}
	if err != nil {
		return err
	}
	return k.router.Post(bus.PendingOrderEvent, pending)
}

func (k *Kernel) onPendingOrder(_ context.Context, pending common.PendingOrder) error {
	filled, ok, err := k.broker.CheckForFill(pending.OrderId, k.now)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return k.router.Post(bus.OrderFilledEvent, filled)
}

func (k *Kernel) onOrderFilled(_ context.Context, filled common.OrderFilled) error {
	return k.account.CompleteOrder(filled)
}

func (k *Kernel) Account() *account.Account { return k.account }
func (k *Kernel) Broker() *sandbox.Broker   { return k.broker }
func (k *Kernel) Router() *bus.Router       { return k.router }

func (k *Kernel) Report() Report {
	names := make([]string, 0, len(k.strategies))
	for _, s := range k.strategies {
		names = append(names, s.Name())
	}

	var parameters map[string]float64
	if len(k.spec.Realization) > 0 {
		parameters = make(map[string]float64, len(k.spec.Realization))
		for name, value := range k.spec.Realization {
			parameters[name] = value
		}
	}

	assets := append([]common.Asset(nil), k.spec.Assets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })

	return Report{
		RunId:           k.runId.String(),
		Name:            k.spec.Name,
		Seed:            k.spec.Seed,
		From:            common.FormatTime(k.first),
		To:              common.FormatTime(k.now),
		Ticks:           k.ticks,
		Assets:          assets,
		Strategies:      names,
		Parameters:      parameters,
		RejectedSignals: k.rejected,
		Router:          k.router.Statistics(),
		Events:          k.telemetry.Report(),
		Broker:          k.broker.Report(),
		Account:         k.account.Report(),
	}
}
