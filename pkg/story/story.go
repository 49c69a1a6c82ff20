// Package story drives the scroll narrative: one step per commit, where
// entering a step moves the history cutoff to that commit.
package story

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/panels"
)

// Container ids.
const (
	ContainerID = "scatter-story"
	ScrollyID   = "scrolly-1"
	StepClass   = "step"
)

const (
	firstCommitText = "my first commit, and it was glorious"
	laterCommitText = "another glorious commit"
)

// ErrStepOutOfRange is returned when a step index has no commit.
var ErrStepOutOfRange = errors.New("story step out of range")

// Step is the narrative for one commit.
type Step struct {
	Index  int
	Commit *commits.Commit
	// Lead, LinkText and Tail make up the sentence; LinkText links to the
	// commit.
	Lead     string
	LinkText string
	Tail     string
}

// Text returns the narrative as plain text.
func (s Step) Text() string {
	return s.Lead + s.LinkText + s.Tail
}

// Steps builds the narrative for cs in order. Times are shown in loc, or in
// each commit's own offset when loc is nil.
func Steps(cs []*commits.Commit, loc *time.Location) []Step {
	out := make([]Step, len(cs))

	for i, c := range cs {
		when := c.Datetime
		if loc != nil {
			when = when.In(loc)
		}

		link := laterCommitText
		if i == 0 {
			link = firstCommitText
		}

		out[i] = Step{
			Index:    i,
			Commit:   c,
			Lead:     fmt.Sprintf("On %s at %s, I made ", panels.FullDate(when), panels.ShortTime(when)),
			LinkText: link,
			Tail: fmt.Sprintf(". I edited %d lines across %d files. "+
				"Then I looked over all I had made, and I saw that it was very good.",
				c.TotalLines(), c.FileCount()),
		}
	}

	return out
}

// CutoffSink applies a new history cutoff.
type CutoffSink func(cutoff time.Time) error

// Controller tracks the current step.
type Controller struct {
	steps   []Step
	current int
	sink    CutoffSink
}

// NewController starts before the first step.
func NewController(steps []Step, sink CutoffSink) *Controller {
	return &Controller{steps: steps, current: -1, sink: sink}
}

// Current is the index of the last entered step, or -1.
func (c *Controller) Current() int { return c.current }

// Len is the number of steps.
func (c *Controller) Len() int { return len(c.steps) }

// Enter makes step i current and moves the cutoff to its commit.
func (c *Controller) Enter(i int) error {
	if i < 0 || i >= len(c.steps) {
		return fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, i, len(c.steps))
	}

	c.current = i

	if c.sink == nil {
		return nil
	}

	return c.sink(c.steps[i].Commit.Datetime)
}

// Render writes one div.step per step into #scatter-story.
func Render(doc dom.Document, steps []Step) {
	box := doc.ElementByID(ContainerID)
	if box == nil {
		return
	}

	box.Clear()

	for _, s := range steps {
		div := box.Append("div")
		div.SetClass(StepClass, true)
		div.SetAttr("data-step", strconv.Itoa(s.Index))

		div.Append("span").SetText(s.Lead)

		a := div.Append("a")
		a.SetAttr("href", s.Commit.URL)
		a.SetAttr("target", "_blank")
		a.SetText(s.LinkText)

		div.Append("span").SetText(s.Tail)
	}
}
