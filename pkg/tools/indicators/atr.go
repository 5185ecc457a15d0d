package indicators

import (
	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// Atr is Wilder's average true range
type Atr struct {
	windowSize int

	seen       bool
	lastClose  fixed.Point
	currentAtr fixed.Point
	currentTr  fixed.Point
	samples    int
}

func NewAtr(windowSize int) *Atr {
	return &Atr{
		windowSize: windowSize,
		lastClose:  fixed.Zero,
		currentAtr: fixed.Zero,
		currentTr:  fixed.Zero,
	}
}

func (a *Atr) OnBar(b common.Bar) {
	defer func() {
		a.lastClose = b.Close
		a.seen = true
	}()

	if !a.seen {
		return
	}

	a.currentTr = b.High.Sub(b.Low).
		Max(b.High.Sub(a.lastClose).Abs()).
		Max(b.Low.Sub(a.lastClose).Abs())

	if a.samples == 0 {
		a.currentAtr = a.currentTr
	} else {
		a.currentAtr = a.currentAtr.MulInt(a.windowSize - 1).Add(a.currentTr).DivInt(a.windowSize)
	}
	a.samples++
}

func (a *Atr) AverageTrueRange() fixed.Point {
	return a.currentAtr
}

func (a *Atr) TrueRange() fixed.Point {
	return a.currentTr
}

func (a *Atr) Ready() bool {
	return a.samples >= a.windowSize
}

func (a *Atr) Reset() {
	a.seen = false
	a.samples = 0
	a.lastClose = fixed.Zero
	a.currentAtr = fixed.Zero
	a.currentTr = fixed.Zero
}
