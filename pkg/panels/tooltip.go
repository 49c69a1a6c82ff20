// Package panels renders the detail views around the scatter plot: the
// commit tooltip, summary statistics, the file and language breakdowns and
// the selection count.
package panels

import (
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
)

// Container ids.
const (
	TooltipID          = "commit-tooltip"
	TooltipLinkID      = "commit-link"
	TooltipDateID      = "commit-date"
	TooltipTimeID      = "commit-time"
	TooltipAuthorID    = "commit-author"
	TooltipLinesID     = "commit-lines"
	StatsID            = "meta-stats"
	FilesID            = "files"
	SelectionCountID   = "selection-count"
	LanguageID         = "language-breakdown"
	ProgressTimeID     = "commit-progress-time"
	fullDateLayout     = "Monday, January 2, 2006"
	shortTimeLayout    = "3:04 PM"
	longDateTimeLayout = "January 2, 2006 at 3:04 PM"
)

// FullDate formats t like "Wednesday, February 5, 2025".
func FullDate(t time.Time) string { return t.Format(fullDateLayout) }

// ShortTime formats t like "4:17 PM".
func ShortTime(t time.Time) string { return t.Format(shortTimeLayout) }

// LongDateTime formats t like "February 5, 2025 at 4:17 PM".
func LongDateTime(t time.Time) string { return t.Format(longDateTimeLayout) }

// Tooltip fills the #commit-tooltip box.
type Tooltip struct {
	doc dom.Document
	loc *time.Location
}

// NewTooltip binds a tooltip to doc. Times are shown in loc, or in each
// commit's own offset when loc is nil.
func NewTooltip(doc dom.Document, loc *time.Location) *Tooltip {
	return &Tooltip{doc: doc, loc: loc}
}

// Render writes c into the tooltip fields. A nil or zero commit leaves the
// tooltip untouched.
func (t *Tooltip) Render(c *commits.Commit) {
	if c == nil || c.ID == "" {
		return
	}

	when := c.Datetime
	if t.loc != nil {
		when = when.In(t.loc)
	}

	if link := t.doc.ElementByID(TooltipLinkID); link != nil {
		link.SetAttr("href", c.URL)
		link.SetText(c.ID)
	}

	setText(t.doc, TooltipDateID, FullDate(when))
	setText(t.doc, TooltipTimeID, ShortTime(when))
	setText(t.doc, TooltipAuthorID, c.Author)
	setText(t.doc, TooltipLinesID, strconv.Itoa(c.TotalLines()))
}

// SetVisible shows or hides the tooltip.
func (t *Tooltip) SetVisible(on bool) {
	box := t.doc.ElementByID(TooltipID)
	if box == nil {
		return
	}

	if on {
		box.SetStyle("opacity", "1")
		box.SetStyle("visibility", "visible")

		return
	}

	box.SetStyle("opacity", "0")
	box.SetStyle("visibility", "hidden")
}

// MoveTo positions the tooltip in page pixels.
func (t *Tooltip) MoveTo(left, top float64) {
	box := t.doc.ElementByID(TooltipID)
	if box == nil {
		return
	}

	box.SetStyle("left", px(left))
	box.SetStyle("top", px(top))
}

// RenderProgressTime shows the slider cutoff next to the slider.
func RenderProgressTime(doc dom.Document, cutoff time.Time) {
	setText(doc, ProgressTimeID, LongDateTime(cutoff))
}

func setText(doc dom.Document, id, text string) {
	if el := doc.ElementByID(id); el != nil {
		el.SetText(text)
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
