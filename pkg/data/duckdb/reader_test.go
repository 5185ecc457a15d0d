package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/common"
)

func TestReader_LoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aapl.csv")
	content := "ts,open,high,low,close,volume\n" +
		"2024-01-03 00:00:00,101.5,103,100,102,2000\n" +
		"2024-01-02 00:00:00,100,102,99,101.5,1500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r := NewReader("")
	require.NoError(t, r.Connect())
	defer func() { _ = r.Close() }()

	asset := common.NewAsset("AAPL", common.AssetClassStock)
	bars, err := r.LoadCSV(context.Background(), path, asset, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].TimeStamp)
	assert.Equal(t, "101.5", bars[0].Close.String())
	assert.Equal(t, "AAPL", bars[1].Symbol)
	assert.Equal(t, 24*time.Hour, bars[1].Period)
}

func TestReader_LoadBars(t *testing.T) {
	r := NewReader("")
	require.NoError(t, r.Connect())
	defer func() { _ = r.Close() }()

	ctx := context.Background()
	_, err := r.db.ExecContext(ctx, `CREATE TABLE bars (symbol VARCHAR, ts TIMESTAMP, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE)`)
	require.NoError(t, err)
	_, err = r.db.ExecContext(ctx, `INSERT INTO bars VALUES
		('AAPL', '2024-01-02 00:00:00', 10, 11, 9, 10.5, 100),
		('AAPL', '2024-01-03 00:00:00', 10.5, 12, 10, 11, 100),
		('MSFT', '2024-01-02 00:00:00', 20, 21, 19, 20, 100),
		('AAPL', '2024-01-04 00:00:00', 11, 11, 10, 10, 100)`)
	require.NoError(t, err)

	asset := common.NewAsset("AAPL", common.AssetClassStock)
	bars, err := r.LoadBars(ctx, "bars", asset, 24*time.Hour,
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "11", bars[1].Close.String())

	_, err = r.LoadBars(ctx, "bars; DROP TABLE bars", asset, time.Hour, time.Time{}, time.Time{})
	assert.Error(t, err)
}
