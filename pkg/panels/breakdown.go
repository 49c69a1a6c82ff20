package panels

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
)

// UnknownType labels lines without a content type.
const UnknownType = "unknown"

// FileLines is one row of the file breakdown.
type FileLines struct {
	Name  string
	Lines []loc.LineRecord
}

// Files groups the lines of cs by file, largest first. Files with equal
// counts keep first-seen order.
func Files(cs []*commits.Commit) []FileLines {
	groups := lo.PartitionBy(commits.Flatten(cs), func(r loc.LineRecord) string { return r.File })

	out := lo.Map(groups, func(g []loc.LineRecord, _ int) FileLines {
		return FileLines{Name: g[0].File, Lines: g}
	})

	slices.SortStableFunc(out, func(a, b FileLines) int { return len(b.Lines) - len(a.Lines) })

	return out
}

// RenderFiles rebuilds #files: per file a dt with the name and line count
// and a dd holding one colored marker per line.
func RenderFiles(doc dom.Document, files []FileLines, palette *Palette) {
	box := doc.ElementByID(FilesID)
	if box == nil {
		return
	}

	box.Clear()

	for _, f := range files {
		row := box.Append("div")
		row.SetAttr("data-file", f.Name)

		code := row.Append("dt").Append("code")
		code.Append("span").SetText(f.Name)
		code.Append("small").SetText(fmt.Sprintf("%d lines", len(f.Lines)))

		dd := row.Append("dd")

		for _, line := range f.Lines {
			marker := dd.Append("div")
			marker.SetClass("loc", true)
			marker.SetStyle("--color", palette.Color(line.Type))
		}
	}
}

// LanguageShare is one row of the language breakdown.
type LanguageShare struct {
	Type    string  `json:"type"    yaml:"type"`
	Lines   int     `json:"lines"   yaml:"lines"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Languages counts the lines of cs per content type in first-seen order.
func Languages(cs []*commits.Commit) []LanguageShare {
	lines := commits.Flatten(cs)
	if len(lines) == 0 {
		return nil
	}

	groups := lo.PartitionBy(lines, func(r loc.LineRecord) string { return r.Type })

	return lo.Map(groups, func(g []loc.LineRecord, _ int) LanguageShare {
		return LanguageShare{
			Type:    g[0].Type,
			Lines:   len(g),
			Percent: float64(len(g)) / float64(len(lines)) * 100,
		}
	})
}

// FormatPercent renders p with one decimal, dropping a trailing ".0".
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(math.Round(p*10)/10, 'f', 1, 64)

	return strings.TrimSuffix(s, ".0") + "%"
}

// RenderLanguages writes dt/dd pairs into #language-breakdown. An empty
// share list clears it.
func RenderLanguages(doc dom.Document, shares []LanguageShare) {
	box := doc.ElementByID(LanguageID)
	if box == nil {
		return
	}

	box.Clear()

	for _, s := range shares {
		name := s.Type
		if name == "" {
			name = UnknownType
		}

		box.Append("dt").SetText(name)
		box.Append("dd").SetText(fmt.Sprintf("%d lines (%s)", s.Lines, FormatPercent(s.Percent)))
	}
}

// SelectionText describes the selection: no region at all reads "No commits
// selected", a region reads its match count even when it is zero.
func SelectionText(hasRegion bool, n int) string {
	if !hasRegion {
		return "No commits selected"
	}

	if n == 1 {
		return "1 commit selected"
	}

	return strconv.Itoa(n) + " commits selected"
}

// RenderSelectionCount writes SelectionText into #selection-count.
func RenderSelectionCount(doc dom.Document, hasRegion bool, n int) {
	setText(doc, SelectionCountID, SelectionText(hasRegion, n))
}
