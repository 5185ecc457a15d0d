package historical

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/common"
)

func writeTestFile(t *testing.T, bars []common.Bar) string {
	path := filepath.Join(t.TempDir(), "AAPL.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteBars(f, bars))
	require.NoError(t, f.Close())
	return path
}

func TestBarReader_ReadRange(t *testing.T) {
	var bars []common.Bar
	for i := 0; i < 10; i++ {
		bars = append(bars, flatBar("AAPL", day(i), 100+i))
	}
	path := writeTestFile(t, bars)

	source := NewSource[BinaryBar](path)
	require.NoError(t, source.Open())
	defer func() { _ = source.Close() }()

	count, err := source.EntryCount()
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	asset := common.NewAsset("AAPL", common.AssetClassStock)
	reader := NewBarReader(source, asset, 24*time.Hour, day(3), day(6))

	got, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, day(3), got[0].TimeStamp)
	assert.Equal(t, day(6), got[3].TimeStamp)
	assert.Equal(t, "103", got[0].Close.String())
	assert.Equal(t, "AAPL", got[0].Symbol)
}

func TestBarReader_StartAfterLastEntry(t *testing.T) {
	path := writeTestFile(t, []common.Bar{flatBar("AAPL", day(0), 1)})

	source := NewSource[BinaryBar](path)
	require.NoError(t, source.Open())
	defer func() { _ = source.Close() }()

	reader := NewBarReader(source, common.NewAsset("AAPL", common.AssetClassStock), time.Hour, day(1), day(2))
	got, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}
