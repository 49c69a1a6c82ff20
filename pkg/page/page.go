// Package page wires the commit view together: it owns the filtered commit
// state and routes pointer, brush, slider and scroll events to the plot,
// the selection controller, the panels and the story.
package page

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/commitviz/pkg/brush"
	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/panels"
	"github.com/Sumatoshi-tech/commitviz/pkg/progress"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
	"github.com/Sumatoshi-tech/commitviz/pkg/story"
)

// SliderID is the 0..100 progress input.
const SliderID = "commit-progress"

// ErrNotMounted is returned when events arrive before Mount.
var ErrNotMounted = errors.New("page is not mounted")

// Page is the commit view bound to one document. It is confined to the
// goroutine that owns the document.
type Page struct {
	doc      dom.Document
	logger   *slog.Logger
	location *time.Location

	records  []loc.LineRecord
	all      []*commits.Commit
	filtered []*commits.Commit
	cutoff   time.Time

	timeline  *progress.Timeline
	plot      *scatter.Plot
	brush     *brush.Controller
	tooltip   *panels.Tooltip
	palette   *panels.Palette
	steps     []story.Step
	story     *story.Controller
	bus       *events.Bus
	selection brush.Result
	mounted   bool
}

type options struct {
	logger        *slog.Logger
	location      *time.Location
	scatter       scatter.Config
	commitOptions []commits.Option
}

// Option configures a Page.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLocation shows times and computes hours in loc instead of each
// commit's own offset.
func WithLocation(l *time.Location) Option {
	return func(o *options) { o.location = l }
}

// WithScatterConfig overrides the plot geometry.
func WithScatterConfig(cfg scatter.Config) Option {
	return func(o *options) { o.scatter = cfg }
}

// WithCommitOptions passes options to the aggregator.
func WithCommitOptions(opts ...commits.Option) Option {
	return func(o *options) { o.commitOptions = append(o.commitOptions, opts...) }
}

// New aggregates records and prepares the view. Nothing is rendered until
// Mount.
func New(doc dom.Document, records []loc.LineRecord, opts ...Option) (*Page, error) {
	o := &options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		scatter: scatter.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(o)
	}

	commitOpts := o.commitOptions
	if o.location != nil {
		commitOpts = append(commitOpts, commits.WithLocation(o.location))
		o.scatter.Location = o.location
	}

	all, err := commits.Aggregate(records, commitOpts...)
	if err != nil {
		return nil, fmt.Errorf("aggregate commits: %w", err)
	}

	p := &Page{
		doc:      doc,
		logger:   o.logger,
		location: o.location,
		records:  records,
		all:      all,
		filtered: all,
		timeline: progress.NewTimeline(all),
		tooltip:  panels.NewTooltip(doc, o.location),
		palette:  panels.NewPalette(),
		steps:    story.Steps(all, o.location),
		bus:      events.NewBus(),
	}

	if o.location != nil {
		p.timeline.In(o.location)
	}

	_, p.cutoff = p.timeline.Bounds()

	p.plot = scatter.NewPlot(scatter.NewContext(o.scatter),
		scatter.WithLogger(o.logger), scatter.WithTooltip(p.tooltip))
	p.brush = brush.NewController(p.plot, p.onSelection)
	p.story = story.NewController(p.steps, p.ApplyCutoff)

	return p, nil
}

// Mount renders the full history and registers the event handlers.
func (p *Page) Mount() {
	p.plot.Draw(p.doc, p.all)
	story.Render(p.doc, p.steps)

	if slider := p.doc.ElementByID(SliderID); slider != nil {
		slider.SetAttr("min", strconv.Itoa(int(progress.Min)))
		slider.SetAttr("max", strconv.Itoa(int(progress.Max)))
	}

	if !p.mounted {
		p.register()
	}

	p.mounted = true

	p.render()
	p.brush.Clear()

	p.logger.Info("commit view mounted", "records", len(p.records), "commits", len(p.all))
}

func (p *Page) register() {
	p.bus.On(events.PointerEnter, func(ev events.Event) error {
		return p.plot.HoverEnter(ev.Target, ev.Client)
	})
	p.bus.On(events.PointerMove, func(ev events.Event) error {
		p.plot.HoverMove(ev.Client)

		return nil
	})
	p.bus.On(events.PointerLeave, func(ev events.Event) error {
		p.plot.HoverLeave(ev.Target)

		return nil
	})
	p.bus.On(events.BrushStart, func(ev events.Event) error {
		p.brush.Start(ev.Point)

		return nil
	})
	p.bus.On(events.BrushMove, func(ev events.Event) error {
		p.brush.Move(ev.Point)

		return nil
	})
	p.bus.On(events.BrushEnd, func(ev events.Event) error {
		p.brush.End(ev.Point)

		return nil
	})
	p.bus.On(events.SliderInput, func(ev events.Event) error {
		return p.SetProgress(ev.Value)
	})
	p.bus.On(events.StepEnter, func(ev events.Event) error {
		return p.story.Enter(ev.Step)
	})
}

// Dispatch routes ev to its handlers. Handler failures are logged and
// returned; the view stays usable.
func (p *Page) Dispatch(ev events.Event) error {
	if !p.mounted {
		return ErrNotMounted
	}

	err := p.bus.Emit(ev)
	if err != nil {
		p.logger.Warn("event handler failed", "event", string(ev.Name), "error", err)
	}

	return err
}

// SetProgress moves the cutoff to the instant at progress (0..100).
func (p *Page) SetProgress(value float64) error {
	return p.ApplyCutoff(p.timeline.Cutoff(value))
}

// ApplyCutoff keeps the commits at or before cutoff and redraws the
// statistics, the plot, the file list and the selection. Slider and story
// both land here, so one cutoff always yields one commit set.
func (p *Page) ApplyCutoff(cutoff time.Time) error {
	if !p.mounted {
		return ErrNotMounted
	}

	p.cutoff = cutoff
	p.filtered = progress.Filter(p.all, cutoff)

	p.plot.Update(p.filtered)
	p.render()
	p.brush.Classify()

	p.logger.Debug("cutoff applied", "cutoff", cutoff, "visible", len(p.filtered))

	return nil
}

func (p *Page) render() {
	panels.RenderSummary(p.doc, p.Summary())
	panels.RenderFiles(p.doc, panels.Files(p.filtered), p.palette)
	panels.RenderProgressTime(p.doc, p.displayTime(p.cutoff))

	if slider := p.doc.ElementByID(SliderID); slider != nil {
		value := math.Round(p.timeline.Progress(p.cutoff))
		slider.SetAttr("value", strconv.Itoa(int(progress.Clamp(value))))
	}
}

func (p *Page) onSelection(res brush.Result) {
	p.selection = res

	panels.RenderSelectionCount(p.doc, res.Region != nil, len(res.Selected))

	if res.Region == nil || len(res.Selected) == 0 {
		panels.RenderLanguages(p.doc, nil)

		return
	}

	panels.RenderLanguages(p.doc, panels.Languages(res.Selected))
}

func (p *Page) displayTime(t time.Time) time.Time {
	if p.location != nil {
		return t.In(p.location)
	}

	return t
}

// Records returns the loaded line records.
func (p *Page) Records() []loc.LineRecord { return p.records }

// Commits returns every commit in time order.
func (p *Page) Commits() []*commits.Commit { return p.all }

// Filtered returns the commits at or before the current cutoff.
func (p *Page) Filtered() []*commits.Commit { return p.filtered }

// Cutoff returns the current cutoff.
func (p *Page) Cutoff() time.Time { return p.cutoff }

// Timeline returns the progress scale.
func (p *Page) Timeline() *progress.Timeline { return p.timeline }

// Plot returns the scatter plot.
func (p *Page) Plot() *scatter.Plot { return p.plot }

// Brush returns the selection controller.
func (p *Page) Brush() *brush.Controller { return p.brush }

// Story returns the scroll story controller.
func (p *Page) Story() *story.Controller { return p.story }

// Steps returns the story steps.
func (p *Page) Steps() []story.Step { return p.steps }

// Selection returns the latest selection result.
func (p *Page) Selection() brush.Result { return p.selection }

// Summary computes the statistics of the full log with the visible commit
// count.
func (p *Page) Summary() panels.Summary {
	return panels.Compute(p.records, p.filtered, p.location)
}

// Palette returns the type colors shared by the file and language panels.
func (p *Page) Palette() *panels.Palette { return p.palette }
