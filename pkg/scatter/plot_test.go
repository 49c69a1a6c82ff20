package scatter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom/htmldoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
)

var day0 = time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

func commit(id string, dayOffset, hour, lines int) *commits.Commit {
	when := day0.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
	recs := make([]loc.LineRecord, lines)

	for i := range recs {
		recs[i] = loc.LineRecord{Commit: id, Datetime: when, File: "a.js", Line: i + 1}
	}

	return commits.New(id, "https://example.com/", recs)
}

func newDoc(t *testing.T) *htmldoc.Document {
	t.Helper()

	doc, err := htmldoc.ParseString(`<html><body><div id="chart"></div></body></html>`)
	require.NoError(t, err)

	return doc
}

type fakeTooltip struct {
	rendered  *commits.Commit
	visible   bool
	left, top float64
}

func (f *fakeTooltip) Render(c *commits.Commit) { f.rendered = c }

func (f *fakeTooltip) SetVisible(on bool) { f.visible = on }

func (f *fakeTooltip) MoveTo(left, top float64) { f.left, f.top = left, top }

func TestContext_Scales(t *testing.T) {
	t.Parallel()

	ctx := scatter.NewContext(scatter.DefaultConfig())
	area := ctx.Area()

	assert.InDelta(t, 20.0, area.Left, 0)
	assert.InDelta(t, 990.0, area.Right, 0)
	assert.InDelta(t, 10.0, area.Top, 0)
	assert.InDelta(t, 570.0, area.Bottom, 0)
	assert.InDelta(t, 570.0, ctx.Y.Map(0), 1e-9)
	assert.InDelta(t, 10.0, ctx.Y.Map(24), 1e-9)

	cs := []*commits.Commit{commit("a", 0, 6, 1), commit("b", 4, 12, 100)}
	ctx.FitAll(cs)

	_, _, r := ctx.Position(cs[0])
	assert.InDelta(t, 2.0, r, 1e-9)

	_, y, r := ctx.Position(cs[1])
	assert.InDelta(t, 30.0, r, 1e-9)
	assert.InDelta(t, 290.0, y, 1e-9)
}

func TestDraw_BuildsChart(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))

	cs := []*commits.Commit{
		commit("small", 0, 9, 1),
		commit("big", 1, 14, 40),
		commit("mid", 2, 22, 10),
	}

	res := plot.Draw(doc, cs)
	require.True(t, plot.Drawn())
	assert.ElementsMatch(t, []string{"small", "big", "mid"}, res.Enter)

	chart := doc.ElementByID(scatter.ChartID)
	svgs := dom.FindAll(chart, dom.ByTag("svg"))
	require.Len(t, svgs, 1)
	assert.Equal(t, "0 0 1000 600", dom.AttrOr(svgs[0], "viewBox", ""))

	grid := dom.FindAll(chart, dom.ByClass("gridlines"))
	require.Len(t, grid, 1)

	lines := grid[0].Children()
	require.Len(t, lines, 24)
	assert.Equal(t, scatter.NightColor, dom.AttrOr(lines[5], "stroke", ""))
	assert.Equal(t, scatter.DaylightColor, dom.AttrOr(lines[6], "stroke", ""))
	assert.Equal(t, scatter.DaylightColor, dom.AttrOr(lines[18], "stroke", ""))
	assert.Equal(t, scatter.NightColor, dom.AttrOr(lines[19], "stroke", ""))

	assert.Len(t, dom.FindAll(chart, dom.ByClass("x-axis")), 1)
	assert.Len(t, dom.FindAll(chart, dom.ByClass("y-axis")), 1)
	assert.Len(t, dom.FindAll(chart, dom.ByClass("overlay")), 1)

	top := svgs[0].Children()
	assert.True(t, top[len(top)-1].HasClass("dots"), "dots must be painted above the brush overlay")

	circles := dom.FindAll(chart, dom.ByTag("circle"))
	require.Len(t, circles, 3)
	assert.Equal(t, "big", dom.AttrOr(circles[0], "data-id", ""))
	assert.Equal(t, "mid", dom.AttrOr(circles[1], "data-id", ""))
	assert.Equal(t, "small", dom.AttrOr(circles[2], "data-id", ""))
	assert.Equal(t, scatter.MarkFill, dom.AttrOr(circles[0], "fill", ""))
	assert.Equal(t, scatter.MarkOpacity, circles[0].Style("fill-opacity"))
	assert.NotEmpty(t, circles[0].Style("--r"))
}

func TestDraw_MissingContainerIsNoop(t *testing.T) {
	t.Parallel()

	doc, err := htmldoc.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)

	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))
	res := plot.Draw(doc, []*commits.Commit{commit("a", 0, 1, 1)})

	assert.Empty(t, res.Enter)
	assert.False(t, plot.Drawn())
	assert.Empty(t, plot.Update(nil).Enter)
}

func TestUpdate_KeyedJoin(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))

	a, b, c, d := commit("a", 0, 1, 5), commit("b", 1, 2, 5), commit("c", 2, 3, 5), commit("d", 3, 4, 5)
	plot.Draw(doc, []*commits.Commit{a, b, c})

	before := plot.Marks()
	rBefore := before[1].R

	res := plot.Update([]*commits.Commit{b, c, d})
	assert.Equal(t, []string{"d"}, res.Enter)
	assert.Equal(t, []string{"b", "c"}, res.Update)
	assert.Equal(t, []string{"a"}, res.Exit)

	marks := plot.Marks()
	require.Len(t, marks, 3)
	assert.Equal(t, "b", marks[0].ID)
	assert.InDelta(t, rBefore, marks[0].R, 1e-9)

	circles := dom.FindAll(doc.ElementByID(scatter.ChartID), dom.ByTag("circle"))
	assert.Len(t, circles, 3)
}

func TestUpdate_KeepsRadiusDomain(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	ctx := scatter.NewContext(scatter.DefaultConfig())
	plot := scatter.NewPlot(ctx)

	small, big := commit("s", 0, 1, 1), commit("b", 1, 1, 100)
	plot.Draw(doc, []*commits.Commit{small, big})
	plot.Update([]*commits.Commit{small})

	lo, hi := ctx.R.Domain()
	assert.InDelta(t, 1.0, lo, 0)
	assert.InDelta(t, 100.0, hi, 0)
}

func TestMarks_TiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))

	plot.Draw(doc, []*commits.Commit{
		commit("x", 0, 1, 3),
		commit("y", 1, 1, 7),
		commit("z", 2, 1, 3),
	})

	marks := plot.Marks()
	assert.Equal(t, "y", marks[0].ID)
	assert.Equal(t, "x", marks[1].ID)
	assert.Equal(t, "z", marks[2].ID)
}

func TestDraw_DuplicateIDsShareOneMark(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))

	a := commit("a", 0, 9, 3)
	res := plot.Draw(doc, []*commits.Commit{a, commit("b", 1, 10, 1), a})

	assert.Equal(t, []string{"a", "b"}, res.Enter)
	assert.Len(t, plot.Marks(), 2)
	assert.Len(t, dom.FindAll(doc.ElementByID(scatter.ChartID), dom.ByTag("circle")), 2)
}

func TestHover(t *testing.T) {
	t.Parallel()

	doc := newDoc(t)
	tip := &fakeTooltip{}
	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()), scatter.WithTooltip(tip))

	a := commit("a", 0, 1, 5)
	plot.Draw(doc, []*commits.Commit{a})

	require.ErrorIs(t, plot.HoverEnter("nope", events.Point{}), scatter.ErrUnknownMark)

	require.NoError(t, plot.HoverEnter("a", events.Point{X: 10, Y: 20}))
	assert.Same(t, a, tip.rendered)
	assert.True(t, tip.visible)
	assert.InDelta(t, 110.0, tip.left, 0)
	assert.InDelta(t, 70.0, tip.top, 0)

	circle := dom.FindAll(doc.ElementByID(scatter.ChartID), dom.ByTag("circle"))[0]
	assert.Equal(t, scatter.HoverOpacity, circle.Style("fill-opacity"))

	plot.HoverMove(events.Point{X: 1, Y: 2})
	assert.InDelta(t, 101.0, tip.left, 0)
	assert.InDelta(t, 52.0, tip.top, 0)

	plot.HoverLeave("a")
	assert.False(t, tip.visible)
	assert.Equal(t, scatter.MarkOpacity, circle.Style("fill-opacity"))
}

func TestHourLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00", scatter.HourLabel(0))
	assert.Equal(t, "06:00", scatter.HourLabel(6))
	assert.Equal(t, "00:00", scatter.HourLabel(24))
}
