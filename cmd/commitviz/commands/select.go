package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/brush"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/page"
	"github.com/Sumatoshi-tech/commitviz/pkg/report"
)

// Select flag errors.
var (
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD or RFC 3339")
	ErrInvalidHours = errors.New("invalid hour range, want FROM-TO within 0..24")
)

const hoursPerDay = 24

var pixelFlags = []string{"x0", "y0", "x1", "y1"}

type selectFlags struct {
	data     string
	format   string
	progress float64

	x0, y0, x1, y1 float64

	from, to, hours string
}

// NewSelectCommand creates the command that brushes a region of the plot.
func NewSelectCommand(g *Globals) *cobra.Command {
	f := &selectFlags{}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "List the commits inside a region of the scatter plot",
		Long: `List the commits inside a region of the scatter plot and their language
breakdown.

The region is given either in plot pixels (--x0 --y0 --x1 --y1) or in data
terms (--from, --to and --hours, e.g. --hours 9-17). Without a region nothing
is selected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runE(g, "select", func(ctx context.Context, e *env, cmd *cobra.Command) error {
			err := checkProgress(f.progress)
			if err != nil {
				return err
			}

			format, err := report.ParseFormat(f.format)
			if err != nil {
				return err
			}

			records, err := e.load(ctx, f.data)
			if err != nil {
				return err
			}

			p, err := e.mount(records, f.progress)
			if err != nil {
				return err
			}

			res, err := f.apply(cmd, p)
			if err != nil {
				return err
			}

			return report.NewWriter(e.globals.NoColor).Write(e.out, report.NewSelection(res), format)
		}),
	}

	addDataFlags(cmd, &f.data, &f.format, &f.progress)
	cmd.Flags().Float64Var(&f.x0, "x0", 0, "region left edge in plot pixels")
	cmd.Flags().Float64Var(&f.y0, "y0", 0, "region top edge in plot pixels")
	cmd.Flags().Float64Var(&f.x1, "x1", 0, "region right edge in plot pixels")
	cmd.Flags().Float64Var(&f.y1, "y1", 0, "region bottom edge in plot pixels")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest commit date")
	cmd.Flags().StringVar(&f.to, "to", "", "latest commit date")
	cmd.Flags().StringVar(&f.hours, "hours", "", "hour-of-day range, e.g. 9-17")
	cmd.MarkFlagsMutuallyExclusive("x0", "from")
	cmd.MarkFlagsMutuallyExclusive("x0", "hours")

	return cmd
}

func (f *selectFlags) apply(cmd *cobra.Command, p *page.Page) (brush.Result, error) {
	flags := cmd.Flags()

	pixels := false
	for _, name := range pixelFlags {
		pixels = pixels || flags.Changed(name)
	}

	switch {
	case pixels:
		return p.Brush().Select(brush.NewRect(events.Point{X: f.x0, Y: f.y0}, events.Point{X: f.x1, Y: f.y1})), nil
	case f.from != "" || f.to != "" || f.hours != "":
		rect, err := f.dataRect(p)
		if err != nil {
			return brush.Result{}, err
		}

		return p.Brush().Select(rect), nil
	default:
		return p.Brush().Clear(), nil
	}
}

// dataRect maps the date and hour bounds through the plot's current scales.
// Open bounds extend to the edge of the plot.
func (f *selectFlags) dataRect(p *page.Page) (brush.Rect, error) {
	ctx := p.Plot().Context()
	start, end := ctx.X.Domain()
	loc := ctx.X.Location()

	var err error

	if f.from != "" {
		start, err = parseDate(f.from, loc, false)
		if err != nil {
			return brush.Rect{}, err
		}
	}

	if f.to != "" {
		end, err = parseDate(f.to, loc, true)
		if err != nil {
			return brush.Rect{}, err
		}
	}

	lo, hi := 0.0, float64(hoursPerDay)
	if f.hours != "" {
		lo, hi, err = parseHours(f.hours)
		if err != nil {
			return brush.Rect{}, err
		}
	}

	return brush.NewRect(
		events.Point{X: ctx.X.Map(start), Y: ctx.Y.Map(lo)},
		events.Point{X: ctx.X.Map(end), Y: ctx.Y.Map(hi)},
	), nil
}

// parseDate reads a day or an instant. A bare day used as an upper bound
// covers the whole day.
func parseDate(s string, loc *time.Location, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	if loc == nil {
		loc = time.UTC
	}

	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	if upper {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}

	return day, nil
}

func parseHours(s string) (lo, hi float64, err error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidHours, s)
	}

	lo, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	hi, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)

	if errA != nil || errB != nil || lo < 0 || hi > hoursPerDay || lo > hi {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidHours, s)
	}

	return lo, hi, nil
}
