package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
)

type candleRows struct {
	rows [][]any
	idx  int
}

func (r *candleRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *candleRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	*dest[0].(*uint64) = row[0].(uint64)
	for i := 1; i < len(row); i++ {
		*dest[i].(*float64) = row[i].(float64)
	}
	return nil
}

func (r *candleRows) Err() error { return nil }

func TestScanMillisRow(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := &candleRows{rows: [][]any{
		{uint64(ts.UnixMilli()), 60000.5, 60100.0, 59900.0, 60050.25, 12.5},
	}}

	asset := common.NewAsset("BTCUSDT", common.AssetClassCrypto)
	bars, err := data.ScanBars(rows, scanMillisRow, asset, time.Minute, readerComponentName)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, ts, bars[0].TimeStamp)
	assert.Equal(t, "60050.25", bars[0].Close.String())
	assert.Equal(t, readerComponentName, bars[0].Source)
}

func TestReader_ConnectRejectsTable(t *testing.T) {
	r := NewReader("clickhouse://localhost:9000/default", "candles where 1=1")
	assert.Error(t, r.Connect(context.Background()))
}
