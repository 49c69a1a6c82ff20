// Package events is a synchronous named-event bus for pointer, brush,
// slider and scroll interactions.
package events

import (
	"errors"
	"fmt"
)

// Name identifies an event kind.
type Name string

// Event names.
const (
	PointerEnter Name = "pointer.enter"
	PointerMove  Name = "pointer.move"
	PointerLeave Name = "pointer.leave"
	BrushStart   Name = "brush.start"
	BrushMove    Name = "brush.move"
	BrushEnd     Name = "brush.end"
	SliderInput  Name = "slider.input"
	StepEnter    Name = "story.step"
)

// Point is a position in plot pixel coordinates.
type Point struct {
	X, Y float64
}

// Event carries the payload of a dispatch. Fields unused by an event kind
// stay zero.
type Event struct {
	Name Name
	// Target is the commit ID under the pointer.
	Target string
	// Point is the pointer position in plot coordinates.
	Point Point
	// Client is the pointer position in page coordinates, used to place the
	// tooltip.
	Client Point
	// Value is the slider progress.
	Value float64
	// Step is the story step index.
	Step int
}

// Handler reacts to an event.
type Handler func(Event) error

// Bus dispatches events to handlers in registration order. It is not safe
// for concurrent use.
type Bus struct {
	handlers map[Name][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Name][]Handler)}
}

// On registers h for name.
func (b *Bus) On(name Name, h Handler) {
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit runs every handler for ev.Name. All handlers run even when some fail;
// their errors are joined.
func (b *Bus) Emit(ev Event) error {
	var errs []error

	for i, h := range b.handlers[ev.Name] {
		err := h(ev)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s handler %d: %w", ev.Name, i, err))
		}
	}

	return errors.Join(errs...)
}

// Has reports whether any handler is registered for name.
func (b *Bus) Has(name Name) bool {
	return len(b.handlers[name]) > 0
}
