package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peter-kozarec/barsim/internal/dbg"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
	"github.com/peter-kozarec/barsim/pkg/data/duckdb"
	"github.com/peter-kozarec/barsim/pkg/datasource/historical"
	"github.com/peter-kozarec/barsim/pkg/tools/bar"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// dumpIt converts the csv files of one symbol into a single binary bar file.
// Files are read in the given order and must not overlap in time.
func dumpIt(ctx context.Context, logger *zap.Logger, out string, asset common.Asset, interval, resample string, files []string) (err error) {
	period, err := data.ParseInterval(interval)
	if err != nil {
		return err
	}

	reader := duckdb.NewReader("")
	if err := reader.Connect(); err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(reader))

	var bars []common.Bar
	for _, file := range files {
		loaded, err := reader.LoadCSV(ctx, file, asset, period)
		if err != nil {
			return err
		}
		if n := len(bars); n > 0 && len(loaded) > 0 && !loaded[0].TimeStamp.After(bars[n-1].TimeStamp) {
			return fmt.Errorf("%s overlaps the previous file at %s", file, common.FormatTime(loaded[0].TimeStamp))
		}
		bars = append(bars, loaded...)
		logger.Info("csv loaded", zap.String("file", file), zap.Int("bars", len(loaded)))
	}

	if resample != "" {
		target, err := data.ParseInterval(resample)
		if err != nil {
			return err
		}
		if bars, err = bar.Resample(bars, target); err != nil {
			return err
		}
	}

	binFile, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := historical.WriteBars(binFile, bars); err != nil {
		return multierr.Combine(err, binFile.Close(), os.Remove(out))
	}
	logger.Info("dump finished", zap.String("symbol", asset.Symbol), zap.String("file", out), zap.Int("bars", len(bars)))
	return binFile.Close()
}

func main() {
	symbol := flag.String("symbol", "", "symbol of the bars")
	class := flag.String("class", string(common.AssetClassStock), "asset class")
	digits := flag.Int("digits", 8, "price digits")
	interval := flag.String("interval", "1d", "period of the csv bars")
	resample := flag.String("resample", "", "optional coarser period to fold the bars into")
	out := flag.String("out", "", "binary output file, defaults to <symbol>.bin")
	flag.Parse()

	logger := dbg.NewDevLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	if *symbol == "" || flag.NArg() == 0 {
		logger.Error("usage: dumpit -symbol SPY [flags] file.csv...")
		os.Exit(2)
	}
	if *out == "" {
		*out = *symbol + ".bin"
	}

	asset := common.NewAsset(*symbol, common.AssetClass(*class))
	asset.PriceDigits = *digits

	if err := dumpIt(context.Background(), logger, *out, asset, *interval, *resample, flag.Args()); err != nil {
		logger.Error("failed to dump", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("done")
}
