package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peter-kozarec/barsim/internal/dbg"
	"github.com/peter-kozarec/barsim/pkg/simulation"
	"github.com/peter-kozarec/barsim/pkg/tools/recorder"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const Version = "0.3.0"

func main() {
	configPath := flag.String("config", "barsim.yaml", "path of the yaml configuration")
	envPath := flag.String("env", ".env", "optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "unable to load %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("barsim", zap.String("version", Version), zap.String("config", *configPath))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("done")
}

func newLogger(cfg LogConfiguration) *zap.Logger {
	logger := dbg.NewProdLogger()
	if cfg.Dev {
		logger = dbg.NewDevLogger()
	}
	return dbg.WithFile(logger, cfg.File, zapcore.DebugLevel)
}

func run(ctx context.Context, logger *zap.Logger, cfg Config) (err error) {
	series, err := LoadSeries(ctx, logger, cfg)
	if err != nil {
		return err
	}

	spec := simulation.Spec{
		Name:          cfg.Name,
		Configuration: cfg.Simulation,
		Assets:        cfg.AssetList(),
		Series:        series,
		Strategies:    StrategyFactory(cfg.Strategies),
		Risk:          RiskFactory(cfg.Risk),
		Seed:          cfg.Seed,
		From:          cfg.From,
		To:            cfg.To,
		Manifest:      cfg.Manifest,
		Realization:   cfg.Realization,
	}

	var output *recorder.JSONFileRecorder
	if cfg.Output.Report != "" {
		if output, err = recorder.NewJSONFileRecorder(cfg.Output.Report); err != nil {
			return err
		}
		defer multierr.AppendInvoke(&err, multierr.Close(output))
	}

	if cfg.Study.Enabled {
		return runStudy(ctx, logger, cfg, spec, output)
	}

	if cfg.Output.Journal != "" {
		var journal *os.File
		if journal, err = os.Create(cfg.Output.Journal); err != nil {
			return fmt.Errorf("unable to create journal: %w", err)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(journal))
		spec.Journal = journal
	}

	kernel, err := simulation.NewKernel(logger, spec)
	if err != nil {
		return err
	}
	report, err := kernel.Run(ctx)
	if err != nil {
		return err
	}
	report.Print(logger)

	if output != nil {
		return output.Record(report)
	}
	return nil
}

func runStudy(ctx context.Context, logger *zap.Logger, cfg Config, spec simulation.Spec, output *recorder.JSONFileRecorder) error {
	study := simulation.Study{
		Base:           spec,
		Realizations:   cfg.Study.Realizations,
		SubRuns:        cfg.Study.SubRuns,
		StochasticRuns: cfg.Study.StochasticRuns,
		OutOfSample:    cfg.Study.OutOfSample,
		Kind:           cfg.Study.Kind,
		From:           cfg.From,
		To:             cfg.To,
		Parallelism:    cfg.Study.Parallelism,
	}

	results, runErr := study.Run(ctx, logger)
	for _, result := range results {
		if result.Report != nil {
			logger.Info("run finished",
				zap.String("name", result.Name),
				zap.String("return", result.Report.Account.Return.String()),
				zap.String("sharpe", result.Report.Account.SharpeRatio.String()),
				zap.String("max_drawdown", result.Report.Account.MaximumDrawdown.String()))
		}
		if output != nil {
			if err := output.Record(result); err != nil {
				return multierr.Append(runErr, err)
			}
		}
	}
	return runErr
}
