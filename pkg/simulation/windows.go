package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
)

type WindowKind string

const (
	WindowRolling  WindowKind = "rolling"
	WindowAnchored WindowKind = "anchored"
)

type Range struct {
	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

const rangeSeparator = " - "

func (r Range) MarshalText() ([]byte, error) {
	return []byte(common.FormatTime(r.From) + rangeSeparator + common.FormatTime(r.To)), nil
}

func (r *Range) UnmarshalText(text []byte) error {
	from, to, ok := strings.Cut(string(text), rangeSeparator)
	if !ok {
		return fmt.Errorf("invalid range %q", text)
	}
	var err error
	if r.From, err = parseRangeTime(from); err != nil {
		return err
	}
	if r.To, err = parseRangeTime(to); err != nil {
		return err
	}
	return nil
}

func parseRangeTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(common.TimeFormat, value, time.UTC)
}

// Window pairs the range a sub run optimises on with the out of sample range following it
type Window struct {
	Optimisation Range `json:"optimisation"`
	OutOfSample  Range `json:"out_of_sample"`
}

// Windows splits [from, to] for a walk-forward analysis. The in sample share of the data is cut
// into subRuns equal slices. Rolling windows optimise on one slice each, anchored windows on
// everything from the start up to the end of their slice. Each out of sample range starts where
// its optimisation range ends and covers outOfSample of the whole span. Offsets are whole days
// scaled by the split fractions.
func Windows(kind WindowKind, from, to time.Time, outOfSample float64, subRuns int) ([]Window, error) {
	if kind != WindowRolling && kind != WindowAnchored {
		return nil, fmt.Errorf("unknown walk-forward kind %q", kind)
	}
	if subRuns <= 0 {
		return nil, fmt.Errorf("sub runs %d must be positive", subRuns)
	}
	if outOfSample < 0 || outOfSample >= 1 {
		return nil, fmt.Errorf("out of sample size %v must be in [0, 1)", outOfSample)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("window end %s must be after its start %s", common.FormatTime(to), common.FormatTime(from))
	}

	days := float64(to.Sub(from) / (24 * time.Hour))
	at := func(frac float64) time.Time {
		return from.Add(time.Duration(frac * days * float64(24*time.Hour)).Round(time.Second))
	}

	slice := (1 - outOfSample) / float64(subRuns)
	windows := make([]Window, 0, subRuns)
	for i := 0; i < subRuns; i++ {
		start := float64(i) * slice
		if kind == WindowAnchored {
			start = 0
		}
		end := float64(i+1) * slice
		windows = append(windows, Window{
			Optimisation: Range{From: at(start), To: at(end)},
			OutOfSample:  Range{From: at(end), To: at(end + outOfSample)},
		})
	}
	return windows, nil
}
