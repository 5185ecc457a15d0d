package simulation

import (
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/exchange/sandbox"
	"github.com/peter-kozarec/barsim/pkg/intrabar"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type SlippageConfiguration struct {
	Disabled bool    `yaml:"disabled"`
	Count    int     `yaml:"count"`
	Sigma    float64 `yaml:"sigma"`
	Limit    float64 `yaml:"limit"`
}

type Configuration struct {
	Currency    string      `yaml:"currency"`
	InitialCash fixed.Point `yaml:"initial_cash"`
	FeeRate     fixed.Point `yaml:"fee_rate"`
	FixedFee    fixed.Point `yaml:"fixed_fee"`

	Slippage SlippageConfiguration `yaml:"slippage"`
	Intrabar intrabar.Options      `yaml:"intrabar"`

	// 0 means unbounded
	RouterCapacity int  `yaml:"router_capacity"`
	BufferSize     uint `yaml:"buffer_size"`
	// Step replaces the union of bar timestamps with a fixed clock when positive
	Step time.Duration `yaml:"step"`

	Monitor []string `yaml:"monitor"`
	Profile bool     `yaml:"profile"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Currency:    "USD",
		InitialCash: fixed.FromInt(100_000, 0),
		FeeRate:     fixed.Zero,
		FixedFee:    fixed.Zero,
		Slippage: SlippageConfiguration{
			Count: 100_000,
			Sigma: 0.05,
			Limit: 0.25,
		},
		Intrabar:       intrabar.DefaultOptions(),
		RouterCapacity: 10_000,
		BufferSize:     512,
		Monitor:        []string{"errors"},
	}
}

func (c Configuration) Validate() error {
	if c.Currency == "" {
		return fmt.Errorf("currency must be set")
	}
	if c.InitialCash.IsNeg() {
		return fmt.Errorf("initial cash %s must not be negative", c.InitialCash)
	}
	if c.FeeRate.IsNeg() || c.FixedFee.IsNeg() {
		return fmt.Errorf("fees must not be negative")
	}
	if c.RouterCapacity < 0 {
		return fmt.Errorf("router capacity %d must not be negative", c.RouterCapacity)
	}
	if c.BufferSize == 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.Step < 0 {
		return fmt.Errorf("step %s must not be negative", c.Step)
	}
	return c.Intrabar.Validate()
}

func (c Configuration) brokerOptions(assets []common.Asset) []sandbox.Option {
	options := []sandbox.Option{
		sandbox.WithFeeRate(c.FeeRate),
		sandbox.WithFixedFee(c.FixedFee),
		sandbox.WithIntrabarOptions(c.Intrabar),
		sandbox.WithAssets(assets...),
	}
	if c.Slippage.Disabled {
		options = append(options, sandbox.WithoutSlippage())
	} else {
		options = append(options, sandbox.WithSlippage(c.Slippage.Count, c.Slippage.Sigma, c.Slippage.Limit))
	}
	return options
}
