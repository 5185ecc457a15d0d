package indicators

import (
	"testing"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
)

func TestZScore_Value(t *testing.T) {
	tests := []struct {
		name       string
		windowSize uint
		data       []float64
		want       float64
		wantReady  bool
	}{
		{"not enough data", 3, []float64{1, 2}, 0, false},
		{"exact window size", 3, []float64{1, 2, 3}, 1.224744871, true},
		{"more than window size", 3, []float64{1, 2, 3, 4}, 1.224744871, true},
		{"larger window", 5, []float64{10, 12, 14, 16, 18}, 1.414213562, true},
		{"negative values", 3, []float64{-3, -2, -1}, 1.224744871, true},
		{"flat window", 3, []float64{5, 5, 5}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := NewZScore(tt.windowSize)
			for _, v := range tt.data {
				z.AddPoint(fixed.FromFloat64(v))
			}
			assert.Equal(t, tt.wantReady, z.IsReady())
			assert.InDelta(t, tt.want, z.Value().F64(), 1e-6)
		})
	}
}

func TestAtr_OnBar(t *testing.T) {
	bar := func(high, low, closePrice string) common.Bar {
		return common.Bar{
			TimeStamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			High:      fixed.MustParse(high),
			Low:       fixed.MustParse(low),
			Close:     fixed.MustParse(closePrice),
		}
	}

	a := NewAtr(2)
	a.OnBar(bar("10", "8", "9"))
	assert.False(t, a.Ready())
	assert.True(t, a.AverageTrueRange().IsZero())

	// gap up, true range measured from the previous close
	a.OnBar(bar("13", "12", "12.5"))
	assert.Equal(t, "4", a.TrueRange().String())
	assert.Equal(t, "4", a.AverageTrueRange().String())
	assert.False(t, a.Ready())

	a.OnBar(bar("13", "11", "12"))
	assert.Equal(t, "2", a.TrueRange().String())
	assert.True(t, a.AverageTrueRange().Eq(fixed.FromInt(3, 0)))
	assert.True(t, a.Ready())

	a.Reset()
	assert.False(t, a.Ready())
	assert.True(t, a.TrueRange().IsZero())
}
