package bar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
)

const builderComponentName = "tools.bar.builder"

var ErrOutOfOrder = errors.New("bar out of order")

type Option func(*Builder)

func WithSource(source string) Option {
	return func(b *Builder) {
		b.source = source
	}
}

// Builder folds bars of a finer period into bars of a coarser period aligned to multiples of it.
// A bar in construction is closed by the first bar of its symbol that belongs to a later period.
type Builder struct {
	period         time.Duration
	source         string
	inConstruction map[string]*common.Bar
	last           map[string]time.Time
}

func NewBuilder(period time.Duration, options ...Option) (*Builder, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%s: period %s must be positive", builderComponentName, period)
	}

	b := &Builder{
		period:         period,
		source:         builderComponentName,
		inConstruction: make(map[string]*common.Bar),
		last:           make(map[string]time.Time),
	}
	for _, option := range options {
		option(b)
	}
	return b, nil
}

// Add merges the bar into its period. The bar of the previous period is returned once it is complete.
func (b *Builder) Add(bar common.Bar) (common.Bar, bool, error) {
	if bar.Period <= 0 || bar.Period > b.period || b.period%bar.Period != 0 {
		return common.Bar{}, false, fmt.Errorf("%s: unable to build %s bars from %s bars", builderComponentName, b.period, bar.Period)
	}
	if last, ok := b.last[bar.Symbol]; ok && !bar.TimeStamp.After(last) {
		return common.Bar{}, false, fmt.Errorf("%w: %s at %s", ErrOutOfOrder, bar.Symbol, common.FormatTime(bar.TimeStamp))
	}
	b.last[bar.Symbol] = bar.TimeStamp

	start := bar.TimeStamp.Truncate(b.period)
	current, ok := b.inConstruction[bar.Symbol]
	if ok && current.TimeStamp.Equal(start) {
		current.High = current.High.Max(bar.High)
		current.Low = current.Low.Min(bar.Low)
		current.Close = bar.Close
		current.Volume = current.Volume.Add(bar.Volume)
		return common.Bar{}, false, nil
	}

	b.inConstruction[bar.Symbol] = &common.Bar{
		Source:    b.source,
		Symbol:    bar.Symbol,
		TimeStamp: start,
		Period:    b.period,
		Open:      bar.Open,
		High:      bar.High,
		Low:       bar.Low,
		Close:     bar.Close,
		Volume:    bar.Volume,
	}
	if !ok {
		return common.Bar{}, false, nil
	}
	return *current, true, nil
}

// Flush closes every bar in construction, ordered by symbol
func (b *Builder) Flush() []common.Bar {
	bars := make([]common.Bar, 0, len(b.inConstruction))
	for _, bar := range b.inConstruction {
		bars = append(bars, *bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Symbol < bars[j].Symbol })
	clear(b.inConstruction)
	return bars
}

// Resample folds a single symbol series into the given period
func Resample(bars []common.Bar, period time.Duration) ([]common.Bar, error) {
	builder, err := NewBuilder(period)
	if err != nil {
		return nil, err
	}

	var out []common.Bar
	for _, bar := range bars {
		closed, ok, err := builder.Add(bar)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, closed)
		}
	}
	return append(out, builder.Flush()...), nil
}
