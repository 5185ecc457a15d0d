package synthetic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/barsim/pkg/datasource"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

func newGenerator(seed int64) *BarGenerator {
	return NewBarGenerator("SYN", rand.New(rand.NewSource(seed)), // #nosec G404
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 24*time.Hour,
		fixed.FromInt(100, 0), fixed.FromFloat64(0.05), fixed.FromFloat64(0.3), 50, 24)
}

func TestBarGenerator_Bars(t *testing.T) {
	bars, err := newGenerator(7).Generate()
	require.NoError(t, err)
	require.Len(t, bars, 50)

	for i, bar := range bars {
		require.NoError(t, bar.Validate())
		assert.True(t, bar.Volume.IsPos())
		if i > 0 {
			assert.Equal(t, 24*time.Hour, bar.TimeStamp.Sub(bars[i-1].TimeStamp))
			assert.True(t, bar.Open.Eq(bars[i-1].Close), "bar %d opens at %s after close %s", i, bar.Open, bars[i-1].Close)
		}
	}

	_, err = newGenerator(7).Next()
	require.NoError(t, err)
}

func TestBarGenerator_Deterministic(t *testing.T) {
	a, err := newGenerator(11).Generate()
	require.NoError(t, err)
	b, err := newGenerator(11).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBarGenerator_Eof(t *testing.T) {
	g := newGenerator(1)
	_, err := g.Generate()
	require.NoError(t, err)

	_, err = g.Next()
	assert.ErrorIs(t, err, datasource.ErrEof)
}
