// Package scatter draws commits as a time-of-day scatter plot and keeps the
// marks bound to commit IDs across updates.
package scatter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
)

// ChartID is the container the plot draws into.
const ChartID = "chart"

// Mark styling.
const (
	MarkFill        = "steelblue"
	MarkOpacity     = "0.7"
	HoverOpacity    = "1"
	SelectedClass   = "selected"
	DaylightColor   = "#e76f51"
	NightColor      = "#1d3557"
	GridOpacity     = "0.6"
	daylightStart   = 6
	daylightEnd     = 18
	xTickCount      = 10
	yTickCount      = 10
	tickSize        = 6
	tickLabelOffset = 9
)

// Tooltip offset from the pointer, in page pixels.
const (
	TooltipOffsetX = 100
	TooltipOffsetY = 50
)

// ErrUnknownMark is returned when an interaction names a commit that has no
// mark.
var ErrUnknownMark = errors.New("no mark for commit")

// Tooltip is the detail view driven by hover.
type Tooltip interface {
	Render(c *commits.Commit)
	SetVisible(on bool)
	MoveTo(left, top float64)
}

// Mark is one plotted commit.
type Mark struct {
	ID      string
	X, Y, R float64
	Commit  *commits.Commit

	el dom.Element
}

// JoinResult lists the commit IDs a join added, kept and removed.
type JoinResult struct {
	Enter, Update, Exit []string
}

// Plot renders commits into the #chart container.
type Plot struct {
	ctx     *Context
	logger  *slog.Logger
	tooltip Tooltip

	svg       dom.Element
	xAxis     dom.Element
	dots      dom.Element
	selection dom.Element

	marks   []*Mark
	byID    map[string]*Mark
	hovered string
}

// Option configures a Plot.
type Option func(*Plot)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plot) { p.logger = l }
}

// WithTooltip sets the hover tooltip.
func WithTooltip(t Tooltip) Option {
	return func(p *Plot) { p.tooltip = t }
}

// NewPlot creates a plot over ctx.
func NewPlot(ctx *Context, opts ...Option) *Plot {
	p := &Plot{
		ctx:    ctx,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		byID:   make(map[string]*Mark),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Context returns the plot's render context.
func (p *Plot) Context() *Context { return p.ctx }

// Drawn reports whether Draw found a container.
func (p *Plot) Drawn() bool { return p.svg != nil }

// Draw builds the chart for cs from scratch: canvas, gridlines, axes, brush
// overlay and marks. The context's time and radius domains are fit to cs.
func (p *Plot) Draw(doc dom.Document, cs []*commits.Commit) JoinResult {
	chart := doc.ElementByID(ChartID)
	if chart == nil {
		p.logger.Debug("chart container missing, skipping draw", "id", ChartID)

		return JoinResult{}
	}

	p.ctx.FitAll(cs)

	chart.Clear()
	p.marks = nil
	p.byID = make(map[string]*Mark)
	p.hovered = ""

	p.svg = chart.Append("svg")
	p.svg.SetAttr("viewBox", fmt.Sprintf("0 0 %s %s", num(p.ctx.Width), num(p.ctx.Height)))
	p.svg.SetStyle("overflow", "visible")

	p.drawGridlines()

	p.xAxis = p.svg.Append("g")
	p.xAxis.SetClass("x-axis", true)
	p.drawXAxis()
	p.drawYAxis()
	p.drawBrushLayer()

	p.dots = p.svg.Append("g")
	p.dots.SetClass("dots", true)
	p.dots.Raise()

	return p.join(cs)
}

// Update refits only the time scale to cs, redraws the time axis and
// rebinds the marks by commit ID. The radius scale keeps its full-history
// domain.
func (p *Plot) Update(cs []*commits.Commit) JoinResult {
	if p.svg == nil {
		p.logger.Debug("chart not drawn, skipping update")

		return JoinResult{}
	}

	p.ctx.FitX(cs)
	p.drawXAxis()

	return p.join(cs)
}

// Marks returns the current marks in paint order.
func (p *Plot) Marks() []Mark {
	out := make([]Mark, len(p.marks))
	for i, m := range p.marks {
		out[i] = *m
	}

	return out
}

// SetSelected toggles the selected class on a mark.
func (p *Plot) SetSelected(id string, on bool) {
	if m, ok := p.byID[id]; ok {
		m.el.SetClass(SelectedClass, on)
	}
}

// IsSelected reports whether a mark carries the selected class.
func (p *Plot) IsSelected(id string) bool {
	m, ok := p.byID[id]

	return ok && m.el.HasClass(SelectedClass)
}

// HoverEnter highlights the mark, fills and shows the tooltip and places it
// next to the pointer.
func (p *Plot) HoverEnter(id string, client events.Point) error {
	m, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMark, id)
	}

	if p.hovered != "" && p.hovered != id {
		p.unhover(p.hovered)
	}

	p.hovered = id
	m.el.SetStyle("fill-opacity", HoverOpacity)

	if p.tooltip != nil {
		p.tooltip.Render(m.Commit)
		p.tooltip.SetVisible(true)
		p.tooltip.MoveTo(client.X+TooltipOffsetX, client.Y+TooltipOffsetY)
	}

	return nil
}

// HoverMove keeps the tooltip next to the pointer.
func (p *Plot) HoverMove(client events.Point) {
	if p.hovered == "" || p.tooltip == nil {
		return
	}

	p.tooltip.MoveTo(client.X+TooltipOffsetX, client.Y+TooltipOffsetY)
}

// HoverLeave restores the mark and hides the tooltip.
func (p *Plot) HoverLeave(id string) {
	p.unhover(id)

	if p.hovered == id {
		p.hovered = ""
	}

	if p.tooltip != nil {
		p.tooltip.SetVisible(false)
	}
}

func (p *Plot) unhover(id string) {
	if m, ok := p.byID[id]; ok {
		m.el.SetStyle("fill-opacity", MarkOpacity)
	}
}

// ShowSelection draws the brush rectangle.
func (p *Plot) ShowSelection(x0, y0, x1, y1 float64) {
	if p.selection == nil {
		return
	}

	p.selection.SetAttr("x", num(min(x0, x1)))
	p.selection.SetAttr("y", num(min(y0, y1)))
	p.selection.SetAttr("width", num(max(x0, x1)-min(x0, x1)))
	p.selection.SetAttr("height", num(max(y0, y1)-min(y0, y1)))
	p.selection.SetStyle("display", "")
}

// HideSelection hides the brush rectangle.
func (p *Plot) HideSelection() {
	if p.selection != nil {
		p.selection.SetStyle("display", "none")
	}
}

// join binds cs to marks keyed by commit ID. Marks are painted largest
// first so small commits stay reachable; equal sizes keep input order.
func (p *Plot) join(cs []*commits.Commit) JoinResult {
	sorted := lo.UniqBy(cs, func(c *commits.Commit) string { return c.ID })
	slices.SortStableFunc(sorted, func(a, b *commits.Commit) int {
		return b.TotalLines() - a.TotalLines()
	})

	var res JoinResult

	next := make(map[string]*Mark, len(sorted))
	marks := make([]*Mark, 0, len(sorted))

	for _, c := range sorted {
		m, ok := p.byID[c.ID]
		if ok {
			res.Update = append(res.Update, c.ID)
		} else {
			m = &Mark{ID: c.ID, el: p.dots.Append("circle")}
			m.el.SetAttr("data-id", c.ID)
			m.el.SetAttr("fill", MarkFill)
			m.el.SetStyle("fill-opacity", MarkOpacity)
			res.Enter = append(res.Enter, c.ID)
		}

		m.Commit = c
		m.X, m.Y, m.R = p.ctx.Position(c)
		m.el.SetAttr("cx", num(m.X))
		m.el.SetAttr("cy", num(m.Y))
		m.el.SetAttr("r", num(m.R))
		m.el.SetStyle("--r", num(m.R))

		next[c.ID] = m
		marks = append(marks, m)
	}

	gone := lo.Reject(p.marks, func(m *Mark, _ int) bool {
		_, keep := next[m.ID]

		return keep
	})

	for _, m := range gone {
		m.el.Remove()
		res.Exit = append(res.Exit, m.ID)

		if p.hovered == m.ID {
			p.hovered = ""
		}
	}

	for _, m := range marks {
		m.el.Raise()
	}

	p.marks = marks
	p.byID = next

	return res
}

func (p *Plot) drawGridlines() {
	area := p.ctx.Area()

	g := p.svg.Append("g")
	g.SetClass("gridlines", true)
	g.SetAttr("transform", translate(area.Left, 0))

	for h := range hoursPerDay {
		y := num(p.ctx.Y.Map(float64(h)))

		color := NightColor
		if h >= daylightStart && h <= daylightEnd {
			color = DaylightColor
		}

		line := g.Append("line")
		line.SetAttr("data-hour", strconv.Itoa(h))
		line.SetAttr("x1", "0")
		line.SetAttr("x2", num(area.Width()))
		line.SetAttr("y1", y)
		line.SetAttr("y2", y)
		line.SetAttr("stroke", color)
		line.SetAttr("stroke-opacity", GridOpacity)
	}
}

func (p *Plot) drawXAxis() {
	area := p.ctx.Area()

	p.xAxis.Clear()
	p.xAxis.SetAttr("transform", translate(0, area.Bottom))

	domain := p.xAxis.Append("path")
	domain.SetClass("domain", true)
	domain.SetAttr("stroke", "currentColor")
	domain.SetAttr("d", fmt.Sprintf("M%s,%dV0H%sV%d", num(area.Left), tickSize, num(area.Right), tickSize))

	for _, t := range p.ctx.X.Ticks(xTickCount) {
		tick := p.xAxis.Append("g")
		tick.SetClass("tick", true)
		tick.SetAttr("transform", translate(p.ctx.X.Map(t), 0))

		line := tick.Append("line")
		line.SetAttr("stroke", "currentColor")
		line.SetAttr("y2", strconv.Itoa(tickSize))

		label := tick.Append("text")
		label.SetAttr("fill", "currentColor")
		label.SetAttr("y", strconv.Itoa(tickLabelOffset))
		label.SetAttr("dy", "0.71em")
		label.SetAttr("text-anchor", "middle")
		label.SetText(p.ctx.X.TickFormat(t))
	}
}

func (p *Plot) drawYAxis() {
	area := p.ctx.Area()

	g := p.svg.Append("g")
	g.SetClass("y-axis", true)
	g.SetAttr("transform", translate(area.Left, 0))

	domain := g.Append("path")
	domain.SetClass("domain", true)
	domain.SetAttr("stroke", "currentColor")
	domain.SetAttr("d", fmt.Sprintf("M-%d,%sH0V%sH-%d", tickSize, num(area.Bottom), num(area.Top), tickSize))

	for _, v := range p.ctx.Y.Ticks(yTickCount) {
		tick := g.Append("g")
		tick.SetClass("tick", true)
		tick.SetAttr("transform", translate(0, p.ctx.Y.Map(v)))

		line := tick.Append("line")
		line.SetAttr("stroke", "currentColor")
		line.SetAttr("x2", strconv.Itoa(-tickSize))

		label := tick.Append("text")
		label.SetAttr("fill", "currentColor")
		label.SetAttr("x", strconv.Itoa(-tickLabelOffset))
		label.SetAttr("dy", "0.32em")
		label.SetAttr("text-anchor", "end")
		label.SetText(HourLabel(v))
	}
}

func (p *Plot) drawBrushLayer() {
	area := p.ctx.Area()

	g := p.svg.Append("g")
	g.SetClass("brush", true)

	overlay := g.Append("rect")
	overlay.SetClass("overlay", true)
	overlay.SetAttr("x", num(area.Left))
	overlay.SetAttr("y", num(area.Top))
	overlay.SetAttr("width", num(area.Width()))
	overlay.SetAttr("height", num(area.Height()))
	overlay.SetAttr("fill", "none")
	overlay.SetAttr("pointer-events", "all")
	overlay.SetStyle("cursor", "crosshair")

	p.selection = g.Append("rect")
	p.selection.SetClass("selection", true)
	p.selection.SetAttr("fill", "#777")
	p.selection.SetAttr("fill-opacity", "0.3")
	p.selection.SetAttr("stroke", "#fff")
	p.selection.SetStyle("display", "none")
}

// HourLabel formats an hour-of-day tick as HH:00.
func HourLabel(v float64) string {
	return fmt.Sprintf("%02d:00", int(v)%hoursPerDay)
}

func translate(x, y float64) string {
	return "translate(" + num(x) + "," + num(y) + ")"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
