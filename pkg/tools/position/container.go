package position

import (
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

// Container holds at most one open position of an asset and the positions exited before it
type Container struct {
	Symbol string

	current  *Position
	exited   []*Position
	latestId Id
}

func NewContainer(symbol string) *Container {
	return &Container{Symbol: symbol}
}

// Enter opens a new position or extends the open one
func (c *Container) Enter(volume, price fixed.Point, at time.Time) error {
	if c.current != nil {
		return c.current.Increase(volume, price, at)
	}

	p, err := Open(c.latestId+1, c.Symbol, volume, price, at)
	if err != nil {
		return err
	}
	c.latestId++
	c.current = p
	return nil
}

func (c *Container) SellOff(volume, price fixed.Point, at time.Time) error {
	if c.current == nil {
		return fmt.Errorf("%w: no open %s position", ErrOversell, c.Symbol)
	}

	closed, err := c.current.SellOff(volume, price, at)
	if err != nil {
		return err
	}
	if closed {
		c.exited = append(c.exited, c.current)
		c.current = nil
	}
	return nil
}

func (c *Container) Update(at time.Time, mark fixed.Point) {
	if c.current != nil {
		c.current.Update(at, mark)
	}
}

func (c *Container) Current() (*Position, bool) {
	return c.current, c.current != nil
}

func (c *Container) Exited() []*Position {
	return append([]*Position(nil), c.exited...)
}

func (c *Container) Count() int {
	n := len(c.exited)
	if c.current != nil {
		n++
	}
	return n
}

func (c *Container) Winning() []*Position {
	return c.filter(true)
}

func (c *Container) Losing() []*Position {
	return c.filter(false)
}

type Stats struct {
	NumWinning        int
	NumLosing         int
	WinReturn         fixed.Point
	WinReturnPercent  fixed.Point
	LossReturn        fixed.Point
	LossReturnPercent fixed.Point
}

func (c *Container) Stats() Stats {
	s := Stats{
		WinReturn:         fixed.Zero,
		WinReturnPercent:  fixed.Zero,
		LossReturn:        fixed.Zero,
		LossReturnPercent: fixed.Zero,
	}
	for _, p := range c.exited {
		if p.Winning {
			s.NumWinning++
			s.WinReturn = s.WinReturn.Add(p.TotalReturn)
			s.WinReturnPercent = s.WinReturnPercent.Add(p.TotalReturnPercent)
		} else {
			s.NumLosing++
			s.LossReturn = s.LossReturn.Add(p.TotalReturn)
			s.LossReturnPercent = s.LossReturnPercent.Add(p.TotalReturnPercent)
		}
	}
	return s
}

// Reports lists the exited positions followed by the open one
func (c *Container) Reports() []Report {
	reports := make([]Report, 0, c.Count())
	for _, p := range c.exited {
		reports = append(reports, p.Report())
	}
	if c.current != nil {
		reports = append(reports, c.current.Report())
	}
	return reports
}

func (c *Container) filter(winning bool) []*Position {
	var out []*Position
	for _, p := range c.exited {
		if p.Winning == winning {
			out = append(out, p)
		}
	}
	return out
}
