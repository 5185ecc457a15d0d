package historical

import (
	"errors"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource"
)

const (
	invalidIndex           = -1
	barReaderComponentName = "datasource.historical.reader"
)

// BarReader walks a binary bar file from the first bar at or after from up to to
type BarReader struct {
	source *Source[BinaryBar]

	symbol      string
	period      time.Duration
	priceDigits int
	from        int64
	to          int64
	idx         int64
}

func NewBarReader(source *Source[BinaryBar], asset common.Asset, period time.Duration, from, to time.Time) *BarReader {
	return &BarReader{
		source:      source,
		symbol:      asset.Symbol,
		period:      period,
		priceDigits: asset.PriceDigits,
		from:        from.UnixNano(),
		to:          to.UnixNano(),
		idx:         invalidIndex,
	}
}

func (r *BarReader) Next() (common.Bar, error) {
	var binBar BinaryBar

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return common.Bar{}, err
		}
	}

	if err := r.source.Read(r.idx, &binBar); err != nil {
		if errors.Is(err, datasource.ErrEof) {
			return common.Bar{}, err
		}
		return common.Bar{}, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if binBar.TimeStamp < r.from {
		return common.Bar{}, fmt.Errorf("timestamp is not from the proposed range")
	}
	if binBar.TimeStamp > r.to {
		return common.Bar{}, datasource.ErrEof
	}

	bar := binBar.ToBar(r.symbol, r.period, r.priceDigits)
	bar.Source = barReaderComponentName
	return bar, bar.Validate()
}

// ReadAll collects the remaining bars of the range
func (r *BarReader) ReadAll() ([]common.Bar, error) {
	var bars []common.Bar
	for {
		bar, err := r.Next()
		if errors.Is(err, datasource.ErrEof) {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
}

func (r *BarReader) lookupStartIndex() error {
	entryCount, err := r.source.EntryCount()
	if err != nil {
		return fmt.Errorf("error getting entry count: %w", err)
	}

	if entryCount == 0 {
		return datasource.ErrEof
	}

	var entry BinaryBar

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := r.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return datasource.ErrEof
	}

	r.idx = low
	return nil
}
