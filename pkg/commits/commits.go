// Package commits folds line records into per-commit summaries.
package commits

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
)

// DefaultURLPrefix is prepended to a commit ID to form its link.
const DefaultURLPrefix = "https://github.com/YOUR_REPO/commit/"

const minutesPerHour = 60

// ErrInconsistentCommit is returned in strict mode when rows of one commit
// disagree on commit-level metadata.
var ErrInconsistentCommit = errors.New("rows of one commit disagree on metadata")

// Commit summarizes every line record sharing one commit ID.
type Commit struct {
	ID       string    `json:"id"       yaml:"id"`
	URL      string    `json:"url"      yaml:"url"`
	Author   string    `json:"author"   yaml:"author"`
	Date     time.Time `json:"date"     yaml:"date"`
	Time     string    `json:"time"     yaml:"time"`
	Timezone string    `json:"timezone" yaml:"timezone"`
	Datetime time.Time `json:"datetime" yaml:"datetime"`
	// HourFrac is the wall-clock hour of Datetime with minutes as a fraction,
	// in [0, 24).
	HourFrac float64 `json:"hourFrac" yaml:"hour_frac"`

	lines []loc.LineRecord
}

// TotalLines is the number of line records in the commit.
func (c *Commit) TotalLines() int {
	return len(c.lines)
}

// Lines returns a copy of the commit's line records in log order.
func (c *Commit) Lines() []loc.LineRecord {
	return slices.Clone(c.lines)
}

// FileCount is the number of distinct files the commit touches.
func (c *Commit) FileCount() int {
	return len(lo.UniqBy(c.lines, func(r loc.LineRecord) string { return r.File }))
}

// HourFrac converts t to a fractional hour of day.
func HourFrac(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/minutesPerHour
}

type options struct {
	urlPrefix string
	location  *time.Location
	strict    bool
}

// Option configures Aggregate.
type Option func(*options)

// WithURLPrefix sets the prefix used to build commit links.
func WithURLPrefix(prefix string) Option {
	return func(o *options) { o.urlPrefix = prefix }
}

// WithLocation evaluates HourFrac in loc instead of each row's own offset.
func WithLocation(location *time.Location) Option {
	return func(o *options) { o.location = location }
}

// WithStrictMetadata rejects commits whose rows disagree on author, date,
// time, timezone or datetime. Without it the first row wins.
func WithStrictMetadata() Option {
	return func(o *options) { o.strict = true }
}

// Aggregate groups records by commit ID and returns one Commit per ID sorted
// ascending by datetime. Equal datetimes keep first-seen order.
func Aggregate(records []loc.LineRecord, opts ...Option) ([]*Commit, error) {
	o := &options{urlPrefix: DefaultURLPrefix}

	for _, opt := range opts {
		opt(o)
	}

	groups := lo.GroupBy(records, func(r loc.LineRecord) string { return r.Commit })
	ids := lo.Uniq(lo.Map(records, func(r loc.LineRecord, _ int) string { return r.Commit }))

	out := make([]*Commit, 0, len(ids))

	for _, id := range ids {
		lines := groups[id]
		first := lines[0]

		if o.strict {
			err := checkConsistent(id, lines)
			if err != nil {
				return nil, err
			}
		}

		when := first.Datetime
		if o.location != nil {
			when = when.In(o.location)
		}

		out = append(out, &Commit{
			ID:       id,
			URL:      o.urlPrefix + id,
			Author:   first.Author,
			Date:     first.Date,
			Time:     first.Time,
			Timezone: first.Timezone,
			Datetime: first.Datetime,
			HourFrac: HourFrac(when),
			lines:    slices.Clip(lines),
		})
	}

	slices.SortStableFunc(out, func(a, b *Commit) int {
		return a.Datetime.Compare(b.Datetime)
	})

	return out, nil
}

func checkConsistent(id string, lines []loc.LineRecord) error {
	first := lines[0]

	for _, r := range lines[1:] {
		if r.Author != first.Author || r.Time != first.Time || r.Timezone != first.Timezone ||
			!r.Date.Equal(first.Date) || !r.Datetime.Equal(first.Datetime) {
			return fmt.Errorf("%w: commit %s, file %s line %d", ErrInconsistentCommit, id, r.File, r.Line)
		}
	}

	return nil
}

// Flatten concatenates the line records of commits in order.
func Flatten(commits []*Commit) []loc.LineRecord {
	return lo.FlatMap(commits, func(c *Commit, _ int) []loc.LineRecord { return c.lines })
}

// Extent returns the earliest and latest datetimes. ok is false when commits
// is empty.
func Extent(commits []*Commit) (earliest, latest time.Time, ok bool) {
	if len(commits) == 0 {
		return time.Time{}, time.Time{}, false
	}

	earliest, latest = commits[0].Datetime, commits[0].Datetime

	for _, c := range commits[1:] {
		if c.Datetime.Before(earliest) {
			earliest = c.Datetime
		}

		if c.Datetime.After(latest) {
			latest = c.Datetime
		}
	}

	return earliest, latest, true
}

// LineExtent returns the smallest and largest TotalLines. ok is false when
// commits is empty.
func LineExtent(commits []*Commit) (smallest, largest int, ok bool) {
	if len(commits) == 0 {
		return 0, 0, false
	}

	smallest, largest = commits[0].TotalLines(), commits[0].TotalLines()

	for _, c := range commits[1:] {
		smallest = min(smallest, c.TotalLines())
		largest = max(largest, c.TotalLines())
	}

	return smallest, largest, true
}

// New builds a commit directly from its lines. The first record supplies
// the metadata. It is meant for fixtures and adapters that already grouped
// their rows.
func New(id, urlPrefix string, lines []loc.LineRecord) *Commit {
	c := &Commit{ID: id, URL: urlPrefix + id, lines: slices.Clone(lines)}

	if len(lines) > 0 {
		first := lines[0]
		c.Author = first.Author
		c.Date = first.Date
		c.Time = first.Time
		c.Timezone = first.Timezone
		c.Datetime = first.Datetime
		c.HourFrac = HourFrac(first.Datetime)
	}

	return c
}
