package brush_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/commitviz/pkg/brush"
	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom/htmldoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
)

func commit(id string, day, hour, lines int) *commits.Commit {
	when := time.Date(2025, 2, 1+day, hour, 0, 0, 0, time.UTC)
	recs := make([]loc.LineRecord, lines)

	for i := range recs {
		recs[i] = loc.LineRecord{Commit: id, Datetime: when, File: "f.go", Line: i + 1}
	}

	return commits.New(id, "", recs)
}

func setup(t *testing.T) (*scatter.Plot, []*commits.Commit) {
	t.Helper()

	doc, err := htmldoc.ParseString(`<html><body><div id="chart"></div></body></html>`)
	require.NoError(t, err)

	cs := []*commits.Commit{
		commit("early", 0, 3, 2),
		commit("mid", 5, 12, 8),
		commit("late", 10, 20, 4),
	}

	plot := scatter.NewPlot(scatter.NewContext(scatter.DefaultConfig()))
	plot.Draw(doc, cs)

	return plot, cs
}

func markOf(t *testing.T, plot *scatter.Plot, id string) scatter.Mark {
	t.Helper()

	for _, m := range plot.Marks() {
		if m.ID == id {
			return m
		}
	}

	t.Fatalf("no mark %s", id)

	return scatter.Mark{}
}

func ids(cs []*commits.Commit) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}

	return out
}

func TestRect(t *testing.T) {
	t.Parallel()

	r := brush.NewRect(events.Point{X: 10, Y: 40}, events.Point{X: 0, Y: 20})
	assert.Equal(t, brush.Rect{X0: 0, Y0: 20, X1: 10, Y1: 40}, r)

	assert.True(t, r.Contains(0, 20))
	assert.True(t, r.Contains(10, 40))
	assert.True(t, r.Contains(5, 30))
	assert.False(t, r.Contains(10.001, 30))
	assert.False(t, r.Contains(5, 19.999))
	assert.False(t, r.Empty())
	assert.True(t, brush.Rect{X0: 1, X1: 1, Y1: 5}.Empty())
}

func TestSelect_BoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	plot, _ := setup(t)
	ctrl := brush.NewController(plot, nil)
	m := markOf(t, plot, "mid")

	res := ctrl.Select(brush.Rect{X0: m.X, Y0: m.Y, X1: m.X + 1, Y1: m.Y + 1})
	require.NotNil(t, res.Region)
	assert.Equal(t, []string{"mid"}, ids(res.Selected))
	assert.True(t, plot.IsSelected("mid"))
	assert.False(t, plot.IsSelected("early"))
}

func TestSelect_ZeroMatchesIsNotNoSelection(t *testing.T) {
	t.Parallel()

	plot, cs := setup(t)
	ctrl := brush.NewController(plot, nil)
	m := markOf(t, plot, "early")

	res := ctrl.Select(brush.Rect{X0: m.X + 1, Y0: m.Y + 1, X1: m.X + 2, Y1: m.Y + 2})
	require.NotNil(t, res.Region)
	assert.Empty(t, res.Selected)
	assert.Len(t, res.Fallback, len(cs))

	cleared := ctrl.Clear()
	assert.Nil(t, cleared.Region)
	assert.Empty(t, cleared.Selected)
}

func TestClassify_FollowsMarkOrder(t *testing.T) {
	t.Parallel()

	plot, _ := setup(t)
	ctrl := brush.NewController(plot, nil)

	res := ctrl.Select(ctrl.Extent())

	// Marks are drawn largest first.
	assert.Equal(t, []string{"mid", "late", "early"}, ids(res.Selected))
	assert.Equal(t, []string{"mid", "late", "early"}, ids(res.Fallback))
}

func TestDrag_SelectsAndNotifies(t *testing.T) {
	t.Parallel()

	plot, _ := setup(t)

	var seen []brush.Result

	ctrl := brush.NewController(plot, func(r brush.Result) { seen = append(seen, r) })

	early, late := markOf(t, plot, "early"), markOf(t, plot, "late")

	ctrl.Start(events.Point{X: early.X - 1, Y: early.Y + 1})
	ctrl.Move(events.Point{X: late.X, Y: late.Y})
	res := ctrl.End(events.Point{X: late.X + 1, Y: late.Y - 1})

	require.NotNil(t, res.Region)
	assert.ElementsMatch(t, []string{"early", "mid", "late"}, ids(res.Selected))
	assert.Len(t, seen, 3)
	assert.NotNil(t, ctrl.Region())
}

func TestClickWithoutMovementClears(t *testing.T) {
	t.Parallel()

	plot, _ := setup(t)
	ctrl := brush.NewController(plot, nil)
	m := markOf(t, plot, "mid")

	ctrl.Select(brush.Rect{X0: 0, Y0: 0, X1: 2000, Y1: 2000})
	require.True(t, plot.IsSelected("mid"))

	ctrl.Start(events.Point{X: m.X, Y: m.Y})
	res := ctrl.End(events.Point{X: m.X, Y: m.Y})

	assert.Nil(t, res.Region)
	assert.Nil(t, ctrl.Region())
	assert.False(t, plot.IsSelected("mid"))
}

func TestSelect_ClampsToExtent(t *testing.T) {
	t.Parallel()

	plot, cs := setup(t)
	ctrl := brush.NewController(plot, nil)

	res := ctrl.Select(brush.Rect{X0: -500, Y0: -500, X1: 5000, Y1: 5000})
	require.NotNil(t, res.Region)
	assert.Equal(t, ctrl.Extent(), *res.Region)
	assert.Len(t, res.Selected, len(cs))
}
