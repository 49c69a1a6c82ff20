package scatter

import (
	"time"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/scale"
)

// Default plot geometry.
const (
	DefaultWidth     = 1000
	DefaultHeight    = 600
	DefaultMinRadius = 2
	DefaultMaxRadius = 30
	hoursPerDay      = 24
)

// Margin is the space reserved around the usable area for axes.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for the axis labels.
var DefaultMargin = Margin{Top: 10, Right: 10, Bottom: 30, Left: 20}

// Area is the usable plotting rectangle in viewBox pixels.
type Area struct {
	Left, Right, Top, Bottom float64
}

// Width of the area.
func (a Area) Width() float64 { return a.Right - a.Left }

// Height of the area.
func (a Area) Height() float64 { return a.Bottom - a.Top }

// Config sizes the render context.
type Config struct {
	Width, Height        float64
	Margin               Margin
	MinRadius, MaxRadius float64
	// Location sets calendar boundaries for axis ticks.
	Location *time.Location
}

// DefaultConfig returns the standard 1000x600 layout.
func DefaultConfig() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Margin:    DefaultMargin,
		MinRadius: DefaultMinRadius,
		MaxRadius: DefaultMaxRadius,
		Location:  time.UTC,
	}
}

// Context owns the scales shared by the plot, the brush and the tooltip.
type Context struct {
	Width, Height float64
	Margin        Margin

	X *scale.Time
	Y *scale.Linear
	R *scale.Sqrt
}

// NewContext builds scales over default domains. Call FitAll before drawing.
func NewContext(cfg Config) *Context {
	area := Area{
		Left:   cfg.Margin.Left,
		Right:  cfg.Width - cfg.Margin.Right,
		Top:    cfg.Margin.Top,
		Bottom: cfg.Height - cfg.Margin.Bottom,
	}

	start, end := scale.DefaultTimeDomain()

	return &Context{
		Width:  cfg.Width,
		Height: cfg.Height,
		Margin: cfg.Margin,
		X:      scale.NewTime(start, end, area.Left, area.Right).In(cfg.Location),
		Y:      scale.NewLinear(0, hoursPerDay, area.Bottom, area.Top),
		R:      scale.NewSqrt(0, 1, cfg.MinRadius, cfg.MaxRadius),
	}
}

// Area returns the usable plotting rectangle.
func (c *Context) Area() Area {
	return Area{
		Left:   c.Margin.Left,
		Right:  c.Width - c.Margin.Right,
		Top:    c.Margin.Top,
		Bottom: c.Height - c.Margin.Bottom,
	}
}

// FitAll fits the time and radius domains to cs. It runs once, on the full
// history, before the first draw.
func (c *Context) FitAll(cs []*commits.Commit) {
	c.FitX(cs)

	lo, hi, ok := commits.LineExtent(cs)
	if !ok {
		c.R.SetDomain(0, 1)

		return
	}

	c.R.SetDomain(float64(lo), float64(hi))
}

// FitX fits only the time domain to cs, rounded outward to tick boundaries.
func (c *Context) FitX(cs []*commits.Commit) {
	start, end, ok := commits.Extent(cs)
	if !ok {
		start, end = scale.DefaultTimeDomain()
	}

	c.X.SetDomain(start, end)
	c.X.Nice()
}

// Position maps a commit to its mark center and radius.
func (c *Context) Position(cm *commits.Commit) (x, y, r float64) {
	return c.X.Map(cm.Datetime), c.Y.Map(cm.HourFrac), c.R.Map(float64(cm.TotalLines()))
}
