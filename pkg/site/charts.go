package site

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/panels"
)

const (
	chartWidth       = "100%"
	chartHeight      = "360px"
	emptyChartHeight = "120px"
	pieRadius        = "60%"
	fileLabelRotate  = 30
	styleTagLen      = len("</style>")
)

// DefaultTopFiles is the number of files in the top-files chart.
const DefaultTopFiles = 10

// Renderable is the interface for chart components.
type Renderable interface {
	Render(w io.Writer) error
}

// Section is one overview chart below the commit view.
type Section struct {
	ID       string
	Title    string
	Subtitle string
	Chart    Renderable
}

// Overview builds the overview sections for the full history. Language
// slices take their colors from palette so they match the file panel.
func Overview(cs []*commits.Commit, palette *panels.Palette, co *ChartOpts, topFiles int) []Section {
	return []Section{
		{
			ID:       "overview-languages",
			Title:    "Lines by language",
			Subtitle: "Every line of every commit, grouped by content type.",
			Chart:    LanguagePie(cs, palette, co),
		},
		{
			ID:       "overview-periods",
			Title:    "Commits by time of day",
			Subtitle: "Morning 6-12, afternoon 12-18, evening 18-21, night otherwise.",
			Chart:    PeriodBar(cs, co),
		},
		{
			ID:       "overview-files",
			Title:    "Largest files",
			Subtitle: fmt.Sprintf("The %d files with the most lines across the history.", topFiles),
			Chart:    TopFilesBar(cs, co, topFiles),
		},
	}
}

// LanguagePie plots line counts per content type.
func LanguagePie(cs []*commits.Commit, palette *panels.Palette, co *ChartOpts) *charts.Pie {
	pie := charts.NewPie()
	shares := panels.Languages(cs)

	if len(shares) == 0 {
		pie.SetGlobalOptions(
			charts.WithInitializationOpts(co.Init(chartWidth, emptyChartHeight)),
			charts.WithTitleOpts(co.Title("Lines by language", "No data")),
		)

		return pie
	}

	pie.SetGlobalOptions(
		charts.WithTooltipOpts(co.Tooltip("item")),
		charts.WithInitializationOpts(co.Init(chartWidth, chartHeight)),
		charts.WithLegendOpts(co.Legend()),
	)

	data := lo.Map(shares, func(s panels.LanguageShare, _ int) opts.PieData {
		name := s.Type
		if name == "" {
			name = panels.UnknownType
		}

		return opts.PieData{
			Name:      name,
			Value:     s.Lines,
			ItemStyle: &opts.ItemStyle{Color: palette.Color(s.Type)},
		}
	})

	pie.AddSeries("Lines", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
				Color:     co.TextMutedColor(),
			}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)

	return pie
}

// Periods lists the day periods in chart order.
var Periods = []string{panels.Morning, panels.Afternoon, panels.Evening, panels.Night}

// PeriodCounts counts commits per day period, in Periods order.
func PeriodCounts(cs []*commits.Commit) []int {
	groups := lo.GroupBy(cs, func(c *commits.Commit) string {
		return panels.DayPeriod(int(c.HourFrac))
	})

	return lo.Map(Periods, func(p string, _ int) int { return len(groups[p]) })
}

// PeriodBar plots the number of commits per day period.
func PeriodBar(cs []*commits.Commit, co *ChartOpts) *charts.Bar {
	return buildBar(co, "Commits by time of day", Periods, PeriodCounts(cs), "Commits", 0)
}

// TopFilesBar plots the n files with the most lines.
func TopFilesBar(cs []*commits.Commit, co *ChartOpts, n int) *charts.Bar {
	files := panels.Files(cs)
	if n > 0 && len(files) > n {
		files = files[:n]
	}

	names := lo.Map(files, func(f panels.FileLines, _ int) string { return f.Name })
	lines := lo.Map(files, func(f panels.FileLines, _ int) int { return len(f.Lines) })

	return buildBar(co, "Largest files", names, lines, "Lines", fileLabelRotate)
}

func buildBar(co *ChartOpts, title string, labels []string, values []int, yName string, rotate float64) *charts.Bar {
	bar := charts.NewBar()

	if lo.Sum(values) == 0 {
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(co.Init(chartWidth, emptyChartHeight)),
			charts.WithTitleOpts(co.Title(title, "No data")),
		)

		return bar
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(chartWidth, chartHeight)),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithGridOpts(co.Grid()),
		charts.WithXAxisOpts(co.XAxis("", rotate)),
		charts.WithYAxisOpts(co.YAxis(yName)),
	)

	bar.SetXAxis(labels)
	bar.AddSeries(yName, lo.Map(values, func(v int, _ int) opts.BarData {
		return opts.BarData{Value: v}
	}))

	return bar
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	if cw.chart == nil {
		return nil
	}

	var buf bytes.Buffer

	err := cw.chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	_, err = io.WriteString(w, extractChartContent(buf.String()))
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func extractChartContent(page string) string {
	trimmed := strings.TrimSpace(page)

	// Fragments pass through; only full echarts pages are cut down.
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return page
	}

	start := strings.Index(page, `<div class="container">`)
	if start == -1 {
		return page
	}

	end := strings.Index(page, `</body>`)
	if end == -1 {
		return page
	}

	content := page[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
