package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
	"github.com/peter-kozarec/barsim/pkg/data/clickhouse"
	"github.com/peter-kozarec/barsim/pkg/data/duckdb"
	"github.com/peter-kozarec/barsim/pkg/data/psql"
	"github.com/peter-kozarec/barsim/pkg/datasource/historical"
	"github.com/peter-kozarec/barsim/pkg/simulation"
	"github.com/peter-kozarec/barsim/pkg/tools/bar"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LoadSeries reads one bar series per asset from the configured source
func LoadSeries(ctx context.Context, logger *zap.Logger, cfg Config) (series map[string][]common.Bar, err error) {
	assets := cfg.AssetList()

	if cfg.Data.Source == SourceSynthetic {
		series, err = simulation.MonteCarloSeries(cfg.Data.MonteCarlo, assets, cfg.Seed)
		if err != nil {
			return nil, err
		}
		return resample(series, cfg.Data.Resample)
	}

	period, err := data.ParseInterval(cfg.Data.Interval)
	if err != nil {
		return nil, err
	}

	var load func(asset common.Asset) ([]common.Bar, error)
	switch cfg.Data.Source {
	case SourceCSV:
		reader := duckdb.NewReader("")
		if err := reader.Connect(); err != nil {
			return nil, err
		}
		defer multierr.AppendInvoke(&err, multierr.Close(reader))
		load = func(asset common.Asset) ([]common.Bar, error) {
			return reader.LoadCSV(ctx, symbolPath(cfg.Data.Path, asset.Symbol), asset, period)
		}

	case SourceBinary:
		load = func(asset common.Asset) ([]common.Bar, error) {
			return loadBinary(symbolPath(cfg.Data.Path, asset.Symbol), asset, period, cfg.From, cfg.To)
		}

	case SourceDuckDB:
		if err := requireWindow(cfg); err != nil {
			return nil, err
		}
		reader := duckdb.NewReader(cfg.Data.DSN)
		if err := reader.Connect(); err != nil {
			return nil, err
		}
		defer multierr.AppendInvoke(&err, multierr.Close(reader))
		load = func(asset common.Asset) ([]common.Bar, error) {
			return reader.LoadBars(ctx, cfg.Data.Table, asset, period, cfg.From, cfg.To)
		}

	case SourcePostgres:
		if err := requireWindow(cfg); err != nil {
			return nil, err
		}
		pg := cfg.Data.Postgres
		var reader *psql.Reader
		if reader, err = psql.Connect(ctx, pg.Host, pg.Port, pg.User, pg.Password, pg.Database); err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(reader))
		load = func(asset common.Asset) ([]common.Bar, error) {
			return reader.LoadBars(ctx, cfg.Data.Table, asset, period, cfg.From, cfg.To)
		}

	case SourceClickHouse:
		if err := requireWindow(cfg); err != nil {
			return nil, err
		}
		reader := clickhouse.NewReader(cfg.Data.DSN, cfg.Data.Table)
		if err := reader.Connect(ctx); err != nil {
			return nil, err
		}
		defer multierr.AppendInvoke(&err, multierr.Close(reader))
		load = func(asset common.Asset) ([]common.Bar, error) {
			return reader.LoadBars(ctx, asset, cfg.Data.Interval, cfg.From, cfg.To)
		}

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	series = make(map[string][]common.Bar, len(assets))
	for _, asset := range assets {
		bars, err := load(asset)
		if err != nil {
			return nil, fmt.Errorf("unable to load %s: %w", asset.Symbol, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("no bars for %s from %s", asset.Symbol, cfg.Data.Source)
		}
		logger.Info("bars loaded",
			zap.String("symbol", asset.Symbol),
			zap.String("source", cfg.Data.Source),
			zap.Int("count", len(bars)),
			zap.String("first", common.FormatTime(bars[0].TimeStamp)),
			zap.String("last", common.FormatTime(bars[len(bars)-1].TimeStamp)))
		series[asset.Symbol] = bars
	}
	return resample(series, cfg.Data.Resample)
}

func loadBinary(path string, asset common.Asset, period time.Duration, from, to time.Time) (bars []common.Bar, err error) {
	source := historical.NewSource[historical.BinaryBar](path)
	if err := source.Open(); err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(source))

	if to.IsZero() {
		to = time.Unix(0, math.MaxInt64)
	}
	return historical.NewBarReader(source, asset, period, from, to).ReadAll()
}

func resample(series map[string][]common.Bar, period string) (map[string][]common.Bar, error) {
	if period == "" {
		return series, nil
	}
	d, err := data.ParseInterval(period)
	if err != nil {
		return nil, err
	}
	for symbol, bars := range series {
		if series[symbol], err = bar.Resample(bars, d); err != nil {
			return nil, fmt.Errorf("unable to resample %s: %w", symbol, err)
		}
	}
	return series, nil
}

func requireWindow(cfg Config) error {
	if cfg.From.IsZero() || cfg.To.IsZero() {
		return fmt.Errorf("data source %s needs from and to", cfg.Data.Source)
	}
	return nil
}

func symbolPath(path, symbol string) string {
	return strings.ReplaceAll(path, "{symbol}", symbol)
}
