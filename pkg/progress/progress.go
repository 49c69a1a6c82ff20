// Package progress maps a 0..100 progress value onto a cutoff instant within
// the commit history and filters commits up to that cutoff.
package progress

import (
	"time"

	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/scale"
)

// Progress bounds.
const (
	Min = 0.0
	Max = 100.0
)

// Timeline is the progress scale over the full commit history.
type Timeline struct {
	scale *scale.Time
	empty bool
}

// NewTimeline spans the datetime extent of all commits. With no commits the
// default domain is used and every filter yields nothing.
func NewTimeline(all []*commits.Commit) *Timeline {
	start, end, ok := commits.Extent(all)
	if !ok {
		start, end = scale.DefaultTimeDomain()
	}

	return &Timeline{scale: scale.NewTime(start, end, Min, Max), empty: !ok}
}

// In sets the location of returned cutoffs.
func (tl *Timeline) In(loc *time.Location) *Timeline {
	tl.scale.In(loc)

	return tl
}

// Bounds returns the earliest and latest instants of the timeline.
func (tl *Timeline) Bounds() (start, end time.Time) {
	return tl.scale.Domain()
}

// Cutoff converts progress to an instant. Progress outside [0, 100] is
// clamped.
func (tl *Timeline) Cutoff(progress float64) time.Time {
	return tl.scale.Invert(Clamp(progress))
}

// Progress is the forward map from an instant to progress.
func (tl *Timeline) Progress(t time.Time) float64 {
	return tl.scale.Map(t)
}

// FilterAt keeps the commits at or before the cutoff for progress.
func (tl *Timeline) FilterAt(all []*commits.Commit, progress float64) []*commits.Commit {
	if tl.empty {
		return nil
	}

	return Filter(all, tl.Cutoff(progress))
}

// Filter keeps commits whose datetime is at or before cutoff, preserving
// order.
func Filter(all []*commits.Commit, cutoff time.Time) []*commits.Commit {
	return lo.Filter(all, func(c *commits.Commit, _ int) bool {
		return !c.Datetime.After(cutoff)
	})
}

// Clamp limits progress to [0, 100].
func Clamp(progress float64) float64 {
	return min(max(progress, Min), Max)
}
