package intrabar

import (
	"errors"
	"fmt"
)

var ErrInvalidOptions = errors.New("invalid intrabar options")

type Options struct {
	// TotalTime is the duration the path is laid over, expressed in bar units
	TotalTime float64 `yaml:"total_time"`
	// Step is the time between two path points
	Step float64 `yaml:"step"`
	// BoundaryDistance is the minimal relative distance between two anchors
	BoundaryDistance float64 `yaml:"boundary_distance"`
	// NoiseScale overrides the derived sigma when positive
	NoiseScale float64 `yaml:"noise_scale"`
	// Dampening divides the deviation of the bar prices when NoiseScale is unset
	Dampening   float64 `yaml:"dampening"`
	PriceDigits int     `yaml:"price_digits"`
}

func DefaultOptions() Options {
	return Options{
		TotalTime:        1,
		Step:             0.01,
		BoundaryDistance: 0.2,
		Dampening:        20,
		PriceDigits:      8,
	}
}

func (o Options) Validate() error {
	if o.TotalTime <= 0 {
		return fmt.Errorf("%w: total time must be positive", ErrInvalidOptions)
	}
	if o.Step <= 0 || o.Step > o.TotalTime {
		return fmt.Errorf("%w: step must be in (0, total time]", ErrInvalidOptions)
	}
	if o.BoundaryDistance < 0 || o.BoundaryDistance*3 >= 1 {
		return fmt.Errorf("%w: boundary distance must be in [0, 1/3)", ErrInvalidOptions)
	}
	if o.NoiseScale < 0 {
		return fmt.Errorf("%w: noise scale must not be negative", ErrInvalidOptions)
	}
	if o.NoiseScale == 0 && o.Dampening <= 0 {
		return fmt.Errorf("%w: dampening must be positive", ErrInvalidOptions)
	}
	if o.PriceDigits < 0 {
		return fmt.Errorf("%w: price digits must not be negative", ErrInvalidOptions)
	}
	return nil
}
