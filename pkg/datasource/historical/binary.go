package historical

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// BinaryBar is the on disk layout of a bar, fixed size and free of padding so it can be mapped directly
type BinaryBar struct {
	TimeStamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (b BinaryBar) ToBar(symbol string, period time.Duration, priceDigits int) common.Bar {
	return common.Bar{
		Symbol:    symbol,
		TimeStamp: time.Unix(0, b.TimeStamp).UTC(),
		Period:    period,
		Open:      fixed.FromFloat64(b.Open).Round(priceDigits),
		High:      fixed.FromFloat64(b.High).Round(priceDigits),
		Low:       fixed.FromFloat64(b.Low).Round(priceDigits),
		Close:     fixed.FromFloat64(b.Close).Round(priceDigits),
		Volume:    fixed.FromFloat64(b.Volume),
	}
}

func FromBar(bar common.Bar) BinaryBar {
	return BinaryBar{
		TimeStamp: bar.TimeStamp.UnixNano(),
		Open:      bar.Open.F64(),
		High:      bar.High.F64(),
		Low:       bar.Low.F64(),
		Close:     bar.Close.F64(),
		Volume:    bar.Volume.F64(),
	}
}

// WriteBars appends bars in the little endian layout the mmap source reads back
func WriteBars(w io.Writer, bars []common.Bar) error {
	for _, bar := range bars {
		if err := binary.Write(w, binary.LittleEndian, FromBar(bar)); err != nil {
			return fmt.Errorf("unable to write bar %s: %w", common.FormatTime(bar.TimeStamp), err)
		}
	}
	return nil
}
