package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var ErrInvalidBar = errors.New("invalid bar")

type Bar struct {
	Source    string        `json:"src,omitempty"`
	Symbol    string        `json:"symbol,omitempty"`
	TimeStamp time.Time     `json:"ts"`
	Period    time.Duration `json:"period"`
	Open      fixed.Point   `json:"open"`
	High      fixed.Point   `json:"high"`
	Low       fixed.Point   `json:"low"`
	Close     fixed.Point   `json:"close"`
	Volume    fixed.Point   `json:"volume"`
}

// Validate checks low <= open, close <= high and a non-negative volume
func (b Bar) Validate() error {
	if b.Low.Gt(b.High) {
		return fmt.Errorf("%w: %s low %s above high %s at %s", ErrInvalidBar, b.Symbol, b.Low, b.High, FormatTime(b.TimeStamp))
	}
	for _, price := range []fixed.Point{b.Open, b.Close} {
		if price.Lt(b.Low) || price.Gt(b.High) {
			return fmt.Errorf("%w: %s price %s outside [%s, %s] at %s", ErrInvalidBar, b.Symbol, price, b.Low, b.High, FormatTime(b.TimeStamp))
		}
	}
	if b.Volume.IsNeg() {
		return fmt.Errorf("%w: %s negative volume at %s", ErrInvalidBar, b.Symbol, FormatTime(b.TimeStamp))
	}
	return nil
}

// Touches reports whether the price lies within the bar range
func (b Bar) Touches(price fixed.Point) bool {
	return b.Low.Lte(price) && price.Lte(b.High)
}
