// Package snapshot exports a static image of the commit scatter plot:
// time on x, hour of day on y, dot size by lines edited.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/scale"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

const (
	hoursPerDay   = 24
	hourTickStep  = 2
	xTickCount    = 10
	markAlpha     = 178
	selectedAlpha = 230
)

// Errors.
var (
	ErrUnknownFormat = errors.New("unknown snapshot format")
	ErrNoCommits     = errors.New("no commits to plot")
)

var (
	markColor     = drawing.Color{R: 70, G: 130, B: 180, A: markAlpha}     // steelblue.
	selectedColor = drawing.Color{R: 255, G: 107, B: 107, A: selectedAlpha} // #ff6b6b.
	gridColor     = drawing.ColorFromHex("e7e5e4")
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options control a snapshot.
type Options struct {
	Title  string
	Format Format
	// Scatter sizes the image and the dot radius range.
	Scatter scatter.Config
	// Selected commits are drawn in the selection color.
	Selected []string
}

// DefaultOptions returns a PNG at the plot's default size.
func DefaultOptions() Options {
	return Options{
		Title:   "Commits by time of day",
		Format:  FormatPNG,
		Scatter: scatter.DefaultConfig(),
	}
}

// Render draws cs into w.
func Render(w io.Writer, cs []*commits.Commit, o Options) error {
	if len(cs) == 0 {
		return ErrNoCommits
	}

	provider, err := rendererFor(o.Format)
	if err != nil {
		return err
	}

	ch := Build(cs, o)

	err = ch.Render(provider, w)
	if err != nil {
		return fmt.Errorf("render %s snapshot: %w", o.Format, err)
	}

	return nil
}

// Build lays out the chart for cs. Larger commits are drawn first so small
// ones stay visible on top.
func Build(cs []*commits.Commit, o Options) chart.Chart {
	ctx := scatter.NewContext(o.Scatter)
	ctx.FitAll(cs)

	ordered := slices.Clone(cs)
	slices.SortStableFunc(ordered, func(a, b *commits.Commit) int {
		return b.TotalLines() - a.TotalLines()
	})

	xs := make([]time.Time, len(ordered))
	ys := make([]float64, len(ordered))
	radii := make([]float64, len(ordered))
	selected := make([]bool, len(ordered))

	for i, c := range ordered {
		xs[i] = c.Datetime
		ys[i] = c.HourFrac
		radii[i] = ctx.R.Map(float64(c.TotalLines()))
		selected[i] = slices.Contains(o.Selected, c.ID)
	}

	series := chart.TimeSeries{
		Name:    "Commits",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return radii[index]
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				if selected[index] {
					return selectedColor
				}

				return markColor
			},
		},
	}

	return chart.Chart{
		Title:      o.Title,
		Width:      int(o.Scatter.Width),
		Height:     int(o.Scatter.Height),
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      timeAxis(ctx.X),
		YAxis:      hourAxis(),
		Series:     []chart.Series{series},
	}
}

func timeAxis(x *scale.Time) chart.XAxis {
	d0, d1 := x.Domain()
	if !d1.After(d0) {
		d1 = d0.Add(time.Hour)
	}

	ticks := make([]chart.Tick, 0, xTickCount)
	for _, t := range x.Ticks(xTickCount) {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: x.TickFormat(t)})
	}

	return chart.XAxis{
		Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(d0), Max: chart.TimeToFloat64(d1)},
		Ticks: ticks,
	}
}

func hourAxis() chart.YAxis {
	var ticks []chart.Tick

	var grid []chart.GridLine

	for h := 0; h <= hoursPerDay; h += hourTickStep {
		ticks = append(ticks, chart.Tick{Value: float64(h), Label: scatter.HourLabel(float64(h))})
		grid = append(grid, chart.GridLine{Value: float64(h)})
	}

	return chart.YAxis{
		Name:           "Hour",
		Range:          &chart.ContinuousRange{Min: 0, Max: hoursPerDay},
		Ticks:          ticks,
		GridLines:      grid,
		GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 1},
	}
}

func rendererFor(f Format) (chart.RendererProvider, error) {
	switch f {
	case FormatPNG, "":
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
