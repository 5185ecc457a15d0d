package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/datasource/historical"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("ts,open,high,low,close,volume\n"+body), 0o600))
	return path
}

func TestDumpIt(t *testing.T) {
	dir := t.TempDir()
	first := writeCSV(t, dir, "a.csv", "2024-01-01 00:00:00,10,12,9,11,100\n2024-01-01 01:00:00,11,13,10,12,50\n")
	second := writeCSV(t, dir, "b.csv", "2024-01-01 02:00:00,12,12,8,9,10\n2024-01-01 03:00:00,9,10,9,10,5\n")

	asset := common.NewAsset("SPY", common.AssetClassStock)
	asset.PriceDigits = 2
	out := filepath.Join(dir, "spy.bin")

	ctx := t.Context()
	require.NoError(t, dumpIt(ctx, zap.NewNop(), out, asset, "1h", "2h", []string{first, second}))

	source := historical.NewSource[historical.BinaryBar](out)
	require.NoError(t, source.Open())
	defer func() { _ = source.Close() }()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := historical.NewBarReader(source, asset, 2*time.Hour, from, from.Add(24*time.Hour)).ReadAll()
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].High.Eq(fixed.FromInt(13, 0)), bars[0].High.String())
	assert.True(t, bars[0].Volume.Eq(fixed.FromInt(150, 0)), bars[0].Volume.String())
	assert.True(t, bars[1].Low.Eq(fixed.FromInt(8, 0)), bars[1].Low.String())
	assert.Equal(t, from.Add(2*time.Hour), bars[1].TimeStamp)
}

func TestDumpIt_Overlap(t *testing.T) {
	dir := t.TempDir()
	first := writeCSV(t, dir, "a.csv", "2024-01-01 00:00:00,10,12,9,11,100\n")
	asset := common.NewAsset("SPY", common.AssetClassStock)

	err := dumpIt(t.Context(), zap.NewNop(), filepath.Join(dir, "spy.bin"), asset, "1h", "", []string{first, first})
	assert.Error(t, err)
}
