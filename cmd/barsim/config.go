package main

import (
	"fmt"
	"os"
	"time"

	"github.com/peter-kozarec/barsim/internal/dbg"
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/simulation"
	"gopkg.in/yaml.v3"
)

const (
	SourceSynthetic  = "synthetic"
	SourceCSV        = "csv"
	SourceBinary     = "binary"
	SourceDuckDB     = "duckdb"
	SourcePostgres   = "psql"
	SourceClickHouse = "clickhouse"
)

type PostgresConfiguration struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type DataConfiguration struct {
	Source string `yaml:"source"`
	// Path of csv and binary files, {symbol} is replaced by the asset symbol
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	Interval string `yaml:"interval"`
	Resample string `yaml:"resample"`

	Postgres   PostgresConfiguration              `yaml:"postgres"`
	MonteCarlo simulation.MonteCarloConfiguration `yaml:"monte_carlo"`
}

// AssetConfiguration falls back to the class defaults for the digits it leaves unset
type AssetConfiguration struct {
	Symbol       string            `yaml:"symbol"`
	Name         string            `yaml:"name"`
	Class        common.AssetClass `yaml:"class"`
	VolumeDigits *int              `yaml:"volume_digits"`
	PriceDigits  *int              `yaml:"price_digits"`
}

func (a AssetConfiguration) Asset() common.Asset {
	class := a.Class
	if class == "" {
		class = common.AssetClassStock
	}
	asset := common.NewAsset(a.Symbol, class)
	if a.Name != "" {
		asset.Name = a.Name
	}
	if a.VolumeDigits != nil {
		asset.VolumeDigits = *a.VolumeDigits
	}
	if a.PriceDigits != nil {
		asset.PriceDigits = *a.PriceDigits
	}
	return asset
}

type StrategyConfiguration struct {
	Kind string `yaml:"kind"`
	// empty means every asset
	Symbols    []string           `yaml:"symbols"`
	Parameters map[string]float64 `yaml:"parameters"`
}

type StudyConfiguration struct {
	Enabled        bool                  `yaml:"enabled"`
	Realizations   []map[string]float64  `yaml:"realizations"`
	SubRuns        int                   `yaml:"sub_runs"`
	StochasticRuns int                   `yaml:"stochastic_runs"`
	OutOfSample    float64               `yaml:"out_of_sample"`
	Kind           simulation.WindowKind `yaml:"kind"`
	Parallelism    int                   `yaml:"parallelism"`
}

type OutputConfiguration struct {
	Report  string `yaml:"report"`
	Journal string `yaml:"journal"`
}

type LogConfiguration struct {
	Dev  bool            `yaml:"dev"`
	File dbg.FileOptions `yaml:"file"`
}

type Config struct {
	Name string    `yaml:"name"`
	Seed int64     `yaml:"seed"`
	From time.Time `yaml:"from"`
	To   time.Time `yaml:"to"`

	Simulation  simulation.Configuration `yaml:"simulation"`
	Assets      []AssetConfiguration     `yaml:"assets"`
	Data        DataConfiguration        `yaml:"data"`
	Strategies  []StrategyConfiguration  `yaml:"strategies"`
	Risk        map[string]float64       `yaml:"risk"`
	Manifest    simulation.Manifest      `yaml:"manifest"`
	Realization map[string]float64       `yaml:"realization"`
	Study       StudyConfiguration       `yaml:"study"`
	Output      OutputConfiguration      `yaml:"output"`
	Log         LogConfiguration         `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Name:       "barsim",
		Seed:       1,
		Simulation: simulation.DefaultConfiguration(),
		Data: DataConfiguration{
			Source:     SourceSynthetic,
			Interval:   "1d",
			MonteCarlo: simulation.DefaultMonteCarloConfiguration(),
		},
		Study: StudyConfiguration{
			SubRuns:        1,
			StochasticRuns: 1,
			Kind:           simulation.WindowRolling,
		},
	}
}

// LoadConfig decodes the yaml file over the defaults. Environment variables in the file are
// expanded before decoding so credentials can live in a .env file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AssetList() []common.Asset {
	assets := make([]common.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		assets = append(assets, a.Asset())
	}
	return assets
}

func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name must be set")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("config: at least one asset is required")
	}
	seen := make(map[string]struct{}, len(c.Assets))
	for i, asset := range c.Assets {
		if asset.Symbol == "" {
			return fmt.Errorf("config: asset %d has no symbol", i)
		}
		if _, ok := seen[asset.Symbol]; ok {
			return fmt.Errorf("config: duplicate asset %s", asset.Symbol)
		}
		seen[asset.Symbol] = struct{}{}
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("config: at least one strategy is required")
	}
	if c.Study.Enabled && (c.From.IsZero() || c.To.IsZero()) {
		return fmt.Errorf("config: a study needs from and to")
	}
	return c.Simulation.Validate()
}
