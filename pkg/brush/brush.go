// Package brush implements rectangular selection over the scatter plot.
package brush

import (
	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
)

// Rect is an axis-aligned region in plot pixels with X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect normalizes two corners into a Rect.
func NewRect(a, b events.Point) Rect {
	return Rect{
		X0: min(a.X, b.X),
		Y0: min(a.Y, b.Y),
		X1: max(a.X, b.X),
		Y1: max(a.Y, b.Y),
	}
}

// Contains reports whether p lies inside r. Every edge is inclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.X0 == r.X1 || r.Y0 == r.Y1
}

// Result is the outcome of a selection change.
type Result struct {
	// Region is nil when there is no active selection.
	Region *Rect
	// Selected lists the commits inside Region in paint order.
	Selected []*commits.Commit
	// Fallback is the set the breakdown panels describe when nothing is
	// selected: every plotted commit.
	Fallback []*commits.Commit
}

// Listener receives every selection change.
type Listener func(Result)

// Controller tracks a drag over the plot and classifies its marks.
type Controller struct {
	plot     *scatter.Plot
	listener Listener

	anchor   events.Point
	dragging bool
	moved    bool
	region   *Rect
}

// NewController creates a controller over plot. listener may be nil.
func NewController(plot *scatter.Plot, listener Listener) *Controller {
	return &Controller{plot: plot, listener: listener}
}

// Extent is the region drags are clamped to: the plot's usable area.
func (c *Controller) Extent() Rect {
	a := c.plot.Context().Area()

	return Rect{X0: a.Left, Y0: a.Top, X1: a.Right, Y1: a.Bottom}
}

// Region returns the active selection, or nil.
func (c *Controller) Region() *Rect {
	if c.region == nil {
		return nil
	}

	r := *c.region

	return &r
}

// Start begins a drag at p.
func (c *Controller) Start(p events.Point) Result {
	c.anchor = c.clamp(p)
	c.dragging = true
	c.moved = false
	c.region = nil

	return c.Classify()
}

// Move extends the drag to p.
func (c *Controller) Move(p events.Point) Result {
	if c.dragging {
		c.extend(p)
	}

	return c.Classify()
}

// End finishes the drag at p. A drag that never moved or has no area clears
// the selection.
func (c *Controller) End(p events.Point) Result {
	if !c.dragging {
		return c.Classify()
	}

	c.extend(p)
	c.dragging = false

	if !c.moved || c.region == nil || c.region.Empty() {
		return c.Clear()
	}

	return c.Classify()
}

// Select sets the region directly, as if dragged from one corner to the
// other.
func (c *Controller) Select(r Rect) Result {
	c.dragging = false

	clamped := NewRect(c.clamp(events.Point{X: r.X0, Y: r.Y0}), c.clamp(events.Point{X: r.X1, Y: r.Y1}))
	c.region = &clamped

	return c.Classify()
}

// Clear drops the selection.
func (c *Controller) Clear() Result {
	c.region = nil
	c.dragging = false

	return c.Classify()
}

// Classify marks the plot's current marks against the region, updates the
// drawn rectangle and notifies the listener.
func (c *Controller) Classify() Result {
	marks := c.plot.Marks()

	inside := func(m scatter.Mark) bool {
		return c.region != nil && c.region.Contains(m.X, m.Y)
	}

	for _, m := range marks {
		c.plot.SetSelected(m.ID, inside(m))
	}

	res := Result{
		Region: c.Region(),
		Selected: lo.FilterMap(marks, func(m scatter.Mark, _ int) (*commits.Commit, bool) {
			return m.Commit, inside(m)
		}),
		Fallback: lo.Map(marks, func(m scatter.Mark, _ int) *commits.Commit { return m.Commit }),
	}

	if c.region != nil {
		c.plot.ShowSelection(c.region.X0, c.region.Y0, c.region.X1, c.region.Y1)
	} else {
		c.plot.HideSelection()
	}

	if c.listener != nil {
		c.listener(res)
	}

	return res
}

func (c *Controller) extend(p events.Point) {
	p = c.clamp(p)
	if p != c.anchor {
		c.moved = true
	}

	if c.moved {
		r := NewRect(c.anchor, p)
		c.region = &r
	}
}

func (c *Controller) clamp(p events.Point) events.Point {
	e := c.Extent()

	return events.Point{
		X: min(max(p.X, e.X0), e.X1),
		Y: min(max(p.Y, e.Y0), e.Y1),
	}
}
