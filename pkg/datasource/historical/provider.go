package historical

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/utility/circular"
)

const defaultBufferSize = 512

type Option func(*Provider)

// WithStep replaces the union of bar timestamps with a fixed clock from from to to inclusive
func WithStep(step time.Duration, from, to time.Time) Option {
	return func(p *Provider) {
		p.step = step
		p.from = from
		p.to = to
	}
}

// WithWindow drops every point of the time axis outside [from, to]
func WithWindow(from, to time.Time) Option {
	return func(p *Provider) {
		p.from = from
		p.to = to
	}
}

func WithBufferSize(size uint) Option {
	return func(p *Provider) {
		p.bufferSize = size
	}
}

// Provider replays in memory bar series. Each symbol keeps a rolling buffer of the bars
// already replayed, bars are never visible before their timestamp.
type Provider struct {
	symbols []string
	series  map[string][]common.Bar
	cursor  map[string]int
	buffers map[string]*circular.Buffer[common.Bar]

	step       time.Duration
	from, to   time.Time
	bufferSize uint

	axis []time.Time
	idx  int
}

func NewProvider(series map[string][]common.Bar, options ...Option) (*Provider, error) {
	p := &Provider{
		series:     make(map[string][]common.Bar, len(series)),
		cursor:     make(map[string]int, len(series)),
		buffers:    make(map[string]*circular.Buffer[common.Bar], len(series)),
		bufferSize: defaultBufferSize,
	}

	for _, option := range options {
		option(p)
	}
	if p.bufferSize == 0 {
		return nil, fmt.Errorf("buffer size must be positive")
	}

	for symbol, bars := range series {
		for i, bar := range bars {
			if err := bar.Validate(); err != nil {
				return nil, err
			}
			if i > 0 && !bar.TimeStamp.After(bars[i-1].TimeStamp) {
				return nil, fmt.Errorf("%s bars are not strictly ascending at %s", symbol, common.FormatTime(bar.TimeStamp))
			}
		}
		p.symbols = append(p.symbols, symbol)
		p.series[symbol] = bars
		p.buffers[symbol] = circular.NewBuffer[common.Bar](p.bufferSize)
	}
	sort.Strings(p.symbols)

	if p.step > 0 {
		p.axis = p.stepAxis()
	} else {
		p.axis = p.unionAxis()
	}

	return p, nil
}

func (p *Provider) Symbols() []string {
	return append([]string(nil), p.symbols...)
}

// Axis is the full sequence of simulation times the provider will step through
func (p *Provider) Axis() []time.Time {
	return append([]time.Time(nil), p.axis...)
}

func (p *Provider) Next(ctx context.Context) (time.Time, []common.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, nil, err
	}
	if p.idx >= len(p.axis) {
		return time.Time{}, nil, datasource.ErrEof
	}

	now := p.axis[p.idx]
	p.idx++

	var updated []common.TimeSeries
	for _, symbol := range p.symbols {
		bars := p.series[symbol]
		pushed := false
		for p.cursor[symbol] < len(bars) && !bars[p.cursor[symbol]].TimeStamp.After(now) {
			p.buffers[symbol].Push(bars[p.cursor[symbol]])
			p.cursor[symbol]++
			pushed = true
		}
		if pushed {
			updated = append(updated, common.TimeSeries{Symbol: symbol, TimeStamp: now})
		}
	}

	return now, updated, nil
}

func (p *Provider) Bar(symbol string, offset uint) (common.Bar, error) {
	buffer, ok := p.buffers[symbol]
	if !ok {
		return common.Bar{}, fmt.Errorf("%w: unknown symbol %s", datasource.ErrNoBar, symbol)
	}
	if offset >= buffer.Size() {
		return common.Bar{}, fmt.Errorf("%w: %s offset %d of %d", datasource.ErrNoBar, symbol, offset, buffer.Size())
	}
	return buffer.Get(offset), nil
}

// Bars returns up to n of the latest bars ordered from the oldest to the newest
func (p *Provider) Bars(symbol string, n uint) ([]common.Bar, error) {
	buffer, ok := p.buffers[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %s", datasource.ErrNoBar, symbol)
	}
	if n > buffer.Size() {
		n = buffer.Size()
	}
	bars := make([]common.Bar, n)
	for i := uint(0); i < n; i++ {
		bars[n-1-i] = buffer.Get(i)
	}
	return bars, nil
}

func (p *Provider) unionAxis() []time.Time {
	seen := make(map[int64]struct{})
	var axis []time.Time
	for _, symbol := range p.symbols {
		for _, bar := range p.series[symbol] {
			if !p.inWindow(bar.TimeStamp) {
				continue
			}
			key := bar.TimeStamp.UnixNano()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			axis = append(axis, bar.TimeStamp)
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}

func (p *Provider) stepAxis() []time.Time {
	var axis []time.Time
	for t := p.from; !t.After(p.to); t = t.Add(p.step) {
		axis = append(axis, t)
	}
	return axis
}

func (p *Provider) inWindow(t time.Time) bool {
	if !p.from.IsZero() && t.Before(p.from) {
		return false
	}
	if !p.to.IsZero() && t.After(p.to) {
		return false
	}
	return true
}
