package panels

import (
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
)

// Day periods.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
	Night     = "night"
)

// DayPeriod buckets an hour of day: morning 06-12, afternoon 12-18,
// evening 18-21, night otherwise.
func DayPeriod(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// Summary holds the headline statistics of a record set.
type Summary struct {
	TotalLOC       int     `json:"totalLoc"       yaml:"total_loc"`
	Commits        int     `json:"commits"        yaml:"commits"`
	Files          int     `json:"files"          yaml:"files"`
	MaxFileLength  int     `json:"maxFileLength"  yaml:"max_file_length"`
	MeanLineLength float64 `json:"meanLineLength" yaml:"mean_line_length"`
	// MostActive is the day period holding the most lines; empty with no
	// records.
	MostActive string `json:"mostActive" yaml:"most_active"`
}

// Compute summarizes the full record set and the visible commits cs. Only
// the commit count follows cs. File length is the highest line number seen
// in a file. The most active period is the one holding the most lines,
// bucketed on each line's own timestamp in location (nil keeps the line's
// offset); ties go to the period seen first.
func Compute(records []loc.LineRecord, cs []*commits.Commit, location *time.Location) Summary {
	s := Summary{
		TotalLOC: len(records),
		Commits:  len(cs),
	}

	if len(records) == 0 {
		return s
	}

	byFile := lo.PartitionBy(records, func(r loc.LineRecord) string { return r.File })
	s.Files = len(byFile)

	for _, group := range byFile {
		longest := lo.MaxBy(group, func(a, b loc.LineRecord) bool { return a.Line > b.Line })
		s.MaxFileLength = max(s.MaxFileLength, longest.Line)
	}

	total := lo.SumBy(records, func(r loc.LineRecord) int { return r.Length })
	s.MeanLineLength = math.Round(float64(total)/float64(len(records))*100) / 100

	periodOf := func(r loc.LineRecord) string {
		t := r.Datetime
		if location != nil {
			t = t.In(location)
		}

		return DayPeriod(t.Hour())
	}

	byPeriod := lo.PartitionBy(records, periodOf)
	busiest := lo.MaxBy(byPeriod, func(a, b []loc.LineRecord) bool { return len(a) > len(b) })
	s.MostActive = periodOf(busiest[0])

	return s
}

// Stat is one labeled summary value.
type Stat struct {
	Label string
	Value string
}

// Stats lists the summary in display order.
func (s Summary) Stats() []Stat {
	active := s.MostActive
	if active == "" {
		active = "n/a"
	}

	return []Stat{
		{"Total LOC", strconv.Itoa(s.TotalLOC)},
		{"Total commits", strconv.Itoa(s.Commits)},
		{"Number of files", strconv.Itoa(s.Files)},
		{"Maximum file length", strconv.Itoa(s.MaxFileLength)},
		{"Average line length", strconv.FormatFloat(s.MeanLineLength, 'f', 2, 64)},
		{"Most active time period", active},
	}
}

// RenderSummary replaces the content of #meta-stats with a definition list.
func RenderSummary(doc dom.Document, s Summary) {
	box := doc.ElementByID(StatsID)
	if box == nil {
		return
	}

	box.Clear()

	dl := box.Append("dl")
	dl.SetClass("stats", true)

	for _, st := range s.Stats() {
		dl.Append("dt").SetText(st.Label)
		dl.Append("dd").SetText(st.Value)
	}
}
