//go:build js && wasm

package main

import (
	"log/slog"
	"strconv"
	"syscall/js"

	"github.com/Sumatoshi-tech/commitviz/pkg/dom/jsdoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/page"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
	"github.com/Sumatoshi-tech/commitviz/pkg/story"
)

// stepThreshold is the share of a story step that must be visible before it
// becomes current.
const stepThreshold = 0.5

// host translates browser events into page events.
type host struct {
	doc      *jsdoc.Document
	page     *page.Page
	logger   *slog.Logger
	dragging bool
	releases []func()
}

func newHost(doc *jsdoc.Document, p *page.Page, logger *slog.Logger) *host {
	return &host{doc: doc, page: p, logger: logger}
}

func (h *host) bind() {
	h.bindChart()
	h.bindSlider()
	h.bindStory()
}

func (h *host) dispatch(ev events.Event) {
	// Page.Dispatch logs handler failures itself.
	h.page.Dispatch(ev)
}

func (h *host) bindChart() {
	el, ok := h.doc.ElementByID(scatter.ChartID).(*jsdoc.Element)
	if !ok {
		return
	}

	h.on(el, "pointerover", func(ev js.Value) {
		if id := markID(ev); id != "" {
			h.dispatch(events.Event{Name: events.PointerEnter, Target: id, Client: pagePoint(ev)})
		}
	})
	h.on(el, "pointerout", func(ev js.Value) {
		if id := markID(ev); id != "" {
			h.dispatch(events.Event{Name: events.PointerLeave, Target: id})
		}
	})
	h.on(el, "pointermove", func(ev js.Value) {
		h.dispatch(events.Event{Name: events.PointerMove, Client: pagePoint(ev)})

		if h.dragging {
			h.dispatch(events.Event{Name: events.BrushMove, Point: h.plotPoint(el, ev)})
		}
	})
	h.on(el, "pointerdown", func(ev js.Value) {
		h.dragging = true
		el.Value().Call("setPointerCapture", ev.Get("pointerId"))
		h.dispatch(events.Event{Name: events.BrushStart, Point: h.plotPoint(el, ev)})
	})
	h.on(el, "pointerup", func(ev js.Value) {
		if !h.dragging {
			return
		}

		h.dragging = false
		h.dispatch(events.Event{Name: events.BrushEnd, Point: h.plotPoint(el, ev)})
	})
}

func (h *host) bindSlider() {
	el, ok := h.doc.ElementByID(page.SliderID).(*jsdoc.Element)
	if !ok {
		return
	}

	h.on(el, "input", func(ev js.Value) {
		v, err := strconv.ParseFloat(ev.Get("target").Get("value").String(), 64)
		if err != nil {
			h.logger.Warn("unreadable slider value", "error", err)

			return
		}

		h.dispatch(events.Event{Name: events.SliderInput, Value: v})
	})
}

// bindStory makes the step that scrolls into view current.
func (h *host) bindStory() {
	box := js.Global().Get("document").Call("getElementById", story.ContainerID)
	if box.IsNull() {
		return
	}

	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries := args[0]

		for i := range entries.Length() {
			entry := entries.Index(i)
			if !entry.Get("isIntersecting").Bool() {
				continue
			}

			step, err := strconv.Atoi(entry.Get("target").Get("dataset").Get("step").String())
			if err != nil {
				continue
			}

			h.dispatch(events.Event{Name: events.StepEnter, Step: step})
		}

		return nil
	})

	observer := js.Global().Get("IntersectionObserver").New(cb, map[string]any{"threshold": stepThreshold})

	steps := box.Call("querySelectorAll", "."+story.StepClass)
	for i := range steps.Length() {
		observer.Call("observe", steps.Index(i))
	}

	h.releases = append(h.releases, func() {
		observer.Call("disconnect")
		cb.Release()
	})
}

func (h *host) on(el *jsdoc.Element, event string, fn func(js.Value)) {
	h.releases = append(h.releases, el.On(event, fn))
}

// plotPoint converts the pointer position to viewBox coordinates of the
// chart's svg, which may be scaled by CSS.
func (h *host) plotPoint(el *jsdoc.Element, ev js.Value) events.Point {
	svg := el.Value().Call("querySelector", "svg")
	if svg.IsNull() {
		return events.Point{}
	}

	rect := svg.Call("getBoundingClientRect")
	ctx := h.page.Plot().Context()

	sx, sy := 1.0, 1.0
	if w := rect.Get("width").Float(); w > 0 {
		sx = ctx.Width / w
	}

	if ht := rect.Get("height").Float(); ht > 0 {
		sy = ctx.Height / ht
	}

	return events.Point{
		X: (ev.Get("clientX").Float() - rect.Get("left").Float()) * sx,
		Y: (ev.Get("clientY").Float() - rect.Get("top").Float()) * sy,
	}
}

func pagePoint(ev js.Value) events.Point {
	return events.Point{X: ev.Get("pageX").Float(), Y: ev.Get("pageY").Float()}
}

// markID returns the commit ID of the mark under the event, or "".
func markID(ev js.Value) string {
	id := ev.Get("target").Call("getAttribute", "data-id")
	if id.IsNull() {
		return ""
	}

	return id.String()
}
