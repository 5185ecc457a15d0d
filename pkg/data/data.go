package data

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Rows is the part of a result set the loaders read, satisfied by database/sql and the clickhouse driver
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// ValidateIdentifier guards table names that have to be formatted into a query
func ValidateIdentifier(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// ParseInterval understands the exchange style intervals (1m, 4h, 1d, 1w) on top of time.ParseDuration
func ParseInterval(interval string) (time.Duration, error) {
	if n := len(interval); n > 1 {
		unit := map[byte]time.Duration{'d': 24 * time.Hour, 'w': 7 * 24 * time.Hour}[interval[n-1]]
		if unit > 0 {
			count, err := strconv.Atoi(strings.TrimSpace(interval[:n-1]))
			if err != nil || count <= 0 {
				return 0, fmt.Errorf("invalid interval %q", interval)
			}
			return time.Duration(count) * unit, nil
		}
	}
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	return d, nil
}

// BarRow is one OHLCV row as the loaders scan it
type BarRow struct {
	TimeStamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (r BarRow) ToBar(asset common.Asset, period time.Duration, source string) common.Bar {
	return common.Bar{
		Source:    source,
		Symbol:    asset.Symbol,
		TimeStamp: r.TimeStamp.UTC(),
		Period:    period,
		Open:      fixed.FromFloat64(r.Open).Round(asset.PriceDigits),
		High:      fixed.FromFloat64(r.High).Round(asset.PriceDigits),
		Low:       fixed.FromFloat64(r.Low).Round(asset.PriceDigits),
		Close:     fixed.FromFloat64(r.Close).Round(asset.PriceDigits),
		Volume:    fixed.FromFloat64(r.Volume),
	}
}

// ScanBars reads rows of (ts, open, high, low, close, volume) and validates every bar
func ScanBars(rows Rows, scan func(Rows, *BarRow) error, asset common.Asset, period time.Duration, source string) ([]common.Bar, error) {
	var bars []common.Bar
	for rows.Next() {
		var row BarRow
		if err := scan(rows, &row); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		bar := row.ToBar(asset, period, source)
		if err := bar.Validate(); err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning rows: %w", err)
	}
	return bars, nil
}

// ScanTimeRow scans a row whose first column is a timestamp
func ScanTimeRow(rows Rows, row *BarRow) error {
	return rows.Scan(&row.TimeStamp, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume)
}
