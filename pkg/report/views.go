package report

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/brush"
	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/panels"
	"github.com/Sumatoshi-tech/commitviz/pkg/story"
)

// FileRow is one file of the file breakdown.
type FileRow struct {
	Name  string `json:"name"  yaml:"name"`
	Lines int    `json:"lines" yaml:"lines"`
}

// Stats reports the statistics of the commits at or before a cutoff.
type Stats struct {
	Progress  float64                `json:"progress"  yaml:"progress"`
	Cutoff    time.Time              `json:"cutoff"    yaml:"cutoff"`
	Summary   panels.Summary         `json:"summary"   yaml:"summary"`
	Languages []panels.LanguageShare `json:"languages" yaml:"languages"`
	Files     []FileRow              `json:"files"     yaml:"files"`
	// FileCount is the number of files before the top-files limit.
	FileCount int `json:"fileCount" yaml:"file_count"`
}

// NewStats builds the report for the visible commits cs under summary.
// topFiles bounds the file list; zero keeps every file.
func NewStats(summary panels.Summary, cs []*commits.Commit, progress float64, cutoff time.Time, topFiles int) *Stats {
	files := panels.Files(cs)
	count := len(files)

	if topFiles > 0 && len(files) > topFiles {
		files = files[:topFiles]
	}

	return &Stats{
		Progress:  progress,
		Cutoff:    cutoff,
		Summary:   summary,
		Languages: panels.Languages(cs),
		Files: lo.Map(files, func(f panels.FileLines, _ int) FileRow {
			return FileRow{Name: f.Name, Lines: len(f.Lines)}
		}),
		FileCount: count,
	}
}

// Title implements Report.
func (s *Stats) Title() string {
	return "Commits until " + panels.LongDateTime(s.Cutoff)
}

// Tables implements Report.
func (s *Stats) Tables() []Table {
	summary := Table{Title: "Summary"}
	for _, st := range s.Summary.Stats() {
		summary.Rows = append(summary.Rows, table.Row{st.Label, st.Value})
	}

	summary.Rows = append(summary.Rows, table.Row{"Progress", strconv.FormatFloat(s.Progress, 'f', 1, 64) + "%"})

	return []Table{
		summary,
		languageTable(s.Languages),
		{
			Title:  "Files",
			Header: table.Row{"File", "Lines"},
			Rows: lo.Map(s.Files, func(f FileRow, _ int) table.Row {
				return table.Row{f.Name, humanize.Comma(int64(f.Lines))}
			}),
			Footer: "Total: " + humanize.Comma(int64(s.FileCount)) + " files",
		},
	}
}

// Region is a selection rectangle in plot pixels.
type Region struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// CommitRow is one commit of a listing.
type CommitRow struct {
	ID       string    `json:"id"       yaml:"id"`
	URL      string    `json:"url"      yaml:"url"`
	Author   string    `json:"author"   yaml:"author"`
	Datetime time.Time `json:"datetime" yaml:"datetime"`
	Lines    int       `json:"lines"    yaml:"lines"`
	Files    int       `json:"files"    yaml:"files"`
}

// Selection reports the commits inside a brushed region.
type Selection struct {
	Region    *Region                `json:"region,omitempty" yaml:"region,omitempty"`
	Count     string                 `json:"count"            yaml:"count"`
	Commits   []CommitRow            `json:"commits"          yaml:"commits"`
	Languages []panels.LanguageShare `json:"languages"        yaml:"languages"`
}

// NewSelection builds the report for a selection result.
func NewSelection(res brush.Result) *Selection {
	s := &Selection{
		Count:   panels.SelectionText(res.Region != nil, len(res.Selected)),
		Commits: commitRows(res.Selected),
	}

	if res.Region != nil {
		s.Region = &Region{X0: res.Region.X0, Y0: res.Region.Y0, X1: res.Region.X1, Y1: res.Region.Y1}
		s.Languages = panels.Languages(res.Selected)
	}

	return s
}

// Title implements Report.
func (s *Selection) Title() string { return s.Count }

// Tables implements Report.
func (s *Selection) Tables() []Table {
	commitsTable := Table{
		Title:  "Commits",
		Header: table.Row{"Commit", "When", "Author", "Lines", "Files"},
		Rows: lo.Map(s.Commits, func(c CommitRow, _ int) table.Row {
			return table.Row{c.ID, panels.LongDateTime(c.Datetime), c.Author, humanize.Comma(int64(c.Lines)), c.Files}
		}),
	}

	return []Table{commitsTable, languageTable(s.Languages)}
}

// StepRow is one step of the scroll story.
type StepRow struct {
	Step   int    `json:"step"   yaml:"step"`
	Commit string `json:"commit" yaml:"commit"`
	URL    string `json:"url"    yaml:"url"`
	Text   string `json:"text"   yaml:"text"`
}

// Story reports the narrative steps.
type Story struct {
	Steps []StepRow `json:"steps" yaml:"steps"`
}

// NewStory builds the report for steps.
func NewStory(steps []story.Step) *Story {
	return &Story{Steps: lo.Map(steps, func(s story.Step, _ int) StepRow {
		return StepRow{Step: s.Index, Commit: s.Commit.ID, URL: s.Commit.URL, Text: s.Text()}
	})}
}

// Title implements Report.
func (s *Story) Title() string { return "Story of " + humanize.Comma(int64(len(s.Steps))) + " commits" }

// Tables implements Report.
func (s *Story) Tables() []Table {
	return []Table{{
		Header: table.Row{"Step", "Commit", "Narrative"},
		Rows: lo.Map(s.Steps, func(r StepRow, _ int) table.Row {
			return table.Row{humanize.Ordinal(r.Step + 1), r.Commit, r.Text}
		}),
	}}
}

func languageTable(shares []panels.LanguageShare) Table {
	return Table{
		Title:  "Languages",
		Header: table.Row{"Type", "Lines", "Share"},
		Rows: lo.Map(shares, func(l panels.LanguageShare, _ int) table.Row {
			name := l.Type
			if name == "" {
				name = panels.UnknownType
			}

			return table.Row{name, humanize.Comma(int64(l.Lines)), panels.FormatPercent(l.Percent)}
		}),
	}
}

func commitRows(cs []*commits.Commit) []CommitRow {
	return lo.Map(cs, func(c *commits.Commit, _ int) CommitRow {
		return CommitRow{
			ID:       c.ID,
			URL:      c.URL,
			Author:   c.Author,
			Datetime: c.Datetime,
			Lines:    c.TotalLines(),
			Files:    c.FileCount(),
		}
	})
}
