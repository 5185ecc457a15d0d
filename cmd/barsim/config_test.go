package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/simulation"
	"github.com/peter-kozarec/barsim/pkg/tools/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
name: ${BARSIM_TEST_NAME}
seed: 7
assets:
  - symbol: SPY
  - symbol: BTC
    class: crypto
    price_digits: 2
data:
  source: synthetic
  monte_carlo:
    bars: 90
strategies:
  - kind: calendar
    symbols: [SPY]
    parameters:
      discount: 0.97
  - kind: sma
    parameters:
      fast: 3
      slow: 8
risk:
  fraction: 0.2
simulation:
  slippage:
    disabled: true
`

func TestParseConfig(t *testing.T) {
	t.Setenv("BARSIM_TEST_NAME", "smoke")

	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	assert.Equal(t, "smoke", cfg.Name)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, int64(90), cfg.Data.MonteCarlo.Bars)
	assert.Equal(t, 24, cfg.Data.MonteCarlo.SubSteps)
	assert.True(t, cfg.Simulation.Slippage.Disabled)
	assert.Equal(t, "USD", cfg.Simulation.Currency)

	assets := cfg.AssetList()
	require.Len(t, assets, 2)
	assert.Equal(t, common.AssetClassStock, assets[0].Class)
	assert.Equal(t, 8, assets[0].PriceDigits)
	assert.Equal(t, 8, assets[1].VolumeDigits)
	assert.Equal(t, 2, assets[1].PriceDigits)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no assets", "name: x\nstrategies: [{kind: sma}]"},
		{"no strategies", "name: x\nassets: [{symbol: SPY}]"},
		{"duplicate asset", "name: x\nassets: [{symbol: SPY}, {symbol: SPY}]\nstrategies: [{kind: sma}]"},
		{"study without window", "name: x\nassets: [{symbol: SPY}]\nstrategies: [{kind: sma}]\nstudy: {enabled: true}"},
		{"not yaml", "name: [x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestStrategyFactory(t *testing.T) {
	assets := []common.Asset{common.NewAsset("SPY", common.AssetClassStock), common.NewAsset("QQQ", common.AssetClassStock)}

	tests := []struct {
		name    string
		configs []StrategyConfiguration
		names   []string
		wantErr bool
	}{
		{
			name:    "every kind",
			configs: []StrategyConfiguration{{Kind: StrategySMA}, {Kind: StrategyCalendar}, {Kind: StrategyReversion}},
			names:   []string{"strategy.sma_crossover", "strategy.calendar", "strategy.mean_reversion"},
		},
		{
			name:    "unknown kind",
			configs: []StrategyConfiguration{{Kind: "arima"}},
			wantErr: true,
		},
		{
			name:    "unknown symbol",
			configs: []StrategyConfiguration{{Kind: StrategySMA, Symbols: []string{"IWM"}}},
			wantErr: true,
		},
		{
			name:    "invalid parameters",
			configs: []StrategyConfiguration{{Kind: StrategySMA, Parameters: map[string]float64{"fast": 30, "slow": 10}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategies, err := StrategyFactory(tt.configs)(zap.NewNop(), nil, assets)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, s := range strategies {
				names = append(names, s.Name())
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestRun(t *testing.T) {
	t.Setenv("BARSIM_TEST_NAME", "smoke")
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Output.Report = filepath.Join(dir, "report.jsonl")
	cfg.Output.Journal = filepath.Join(dir, "journal.jsonl")

	require.NoError(t, run(context.Background(), zap.NewNop(), cfg))

	reports, err := recorder.ReadAll[simulation.Report](cfg.Output.Report)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "smoke", reports[0].Name)
	assert.Equal(t, 90, reports[0].Ticks)
	assert.Equal(t, []string{"strategy.calendar", "strategy.sma_crossover"}, reports[0].Strategies)
}

func TestRunStudy(t *testing.T) {
	t.Setenv("BARSIM_TEST_NAME", "study")
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	cfg.From = cfg.Data.MonteCarlo.Start
	cfg.To = cfg.From.Add(89 * 24 * time.Hour)
	cfg.Study = StudyConfiguration{
		Enabled:        true,
		Realizations:   []map[string]float64{{"fast": 2}, {"fast": 4}},
		SubRuns:        2,
		StochasticRuns: 1,
		OutOfSample:    0.25,
		Kind:           simulation.WindowAnchored,
		Parallelism:    2,
	}
	cfg.Manifest = simulation.Manifest{{Target: "strategy.sma_crossover", Field: "fast", Name: "fast"}}
	cfg.Output.Report = filepath.Join(t.TempDir(), "study.jsonl")

	require.NoError(t, run(context.Background(), zap.NewNop(), cfg))

	results, err := recorder.ReadAll[simulation.Result](cfg.Output.Report)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "study run_1 sub_run_1", results[3].Name)
	for _, result := range results {
		require.NotNil(t, result.Report)
		assert.Empty(t, result.Error)
	}
}
