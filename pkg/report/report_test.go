package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/commitviz/pkg/brush"
	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/panels"
	"github.com/Sumatoshi-tech/commitviz/pkg/report"
	"github.com/Sumatoshi-tech/commitviz/pkg/story"
)

const ansiEscape = "\033["

var (
	ta = time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)
	tb = time.Date(2025, 2, 7, 15, 30, 0, 0, time.UTC)
)

var historyLog = []loc.LineRecord{
	{Commit: "a", Author: "Ada", Datetime: ta, File: "main.js", Line: 1, Length: 12, Type: "js"},
	{Commit: "a", Author: "Ada", Datetime: ta, File: "types.ts", Line: 1, Length: 30, Type: "ts"},
	{Commit: "b", Author: "Ada", Datetime: tb, File: "main.js", Line: 2, Length: 8, Type: "js"},
}

func history(t *testing.T) []*commits.Commit {
	t.Helper()

	cs, err := commits.Aggregate(historyLog)
	require.NoError(t, err)

	return cs
}

func stats(t *testing.T, visible int, progress float64, cutoff time.Time, topFiles int) *report.Stats {
	t.Helper()

	cs := history(t)[:visible]

	return report.NewStats(panels.Compute(historyLog, cs, nil), cs, progress, cutoff, topFiles)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]report.Format{
		"":      report.FormatText,
		"text":  report.FormatText,
		"JSON":  report.FormatJSON,
		" yaml": report.FormatYAML,
	}

	for in, want := range tests {
		got, err := report.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := report.ParseFormat("xml")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestStats_Text(t *testing.T) {
	t.Parallel()

	r := stats(t, 2, 100, tb, 1)

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(true).Write(&buf, r, report.FormatText))

	out := buf.String()
	assert.Contains(t, out, "=== Commits until February 7, 2025 at 3:30 PM ===")
	assert.Contains(t, out, "Total LOC")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "main.js")
	assert.NotContains(t, out, "types.ts")
	assert.Contains(t, out, "TOTAL: 2 FILES")
	assert.NotContains(t, out, ansiEscape)
}

func TestStats_ColorText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(false).Write(&buf, stats(t, 2, 100, tb, 0), report.FormatText))
	assert.Contains(t, buf.String(), ansiEscape)
}

func TestStats_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(true).Write(&buf, stats(t, 1, 0, ta, 0), report.FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	summary, ok := got["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3, summary["totalLoc"], 0)
	assert.InDelta(t, 1, summary["commits"], 0)
	assert.Equal(t, "morning", summary["mostActive"])
	assert.Len(t, got["files"], 2)
}

func TestSelection_YAML(t *testing.T) {
	t.Parallel()

	cs := history(t)
	res := brush.Result{Region: &brush.Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}, Selected: cs[1:]}

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(true).Write(&buf, report.NewSelection(res), report.FormatYAML))

	var got struct {
		Region struct {
			X1 float64 `yaml:"x1"`
		} `yaml:"region"`
		Count   string `yaml:"count"`
		Commits []struct {
			ID    string `yaml:"id"`
			Lines int    `yaml:"lines"`
		} `yaml:"commits"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.InDelta(t, 3.0, got.Region.X1, 0)
	assert.Equal(t, "1 commit selected", got.Count)
	require.Len(t, got.Commits, 1)
	assert.Equal(t, "b", got.Commits[0].ID)
	assert.Equal(t, 1, got.Commits[0].Lines)
}

func TestSelection_NoRegion(t *testing.T) {
	t.Parallel()

	r := report.NewSelection(brush.Result{Fallback: history(t)})

	assert.Nil(t, r.Region)
	assert.Empty(t, r.Languages)
	assert.Equal(t, "No commits selected", r.Title())
}

func TestStory_Text(t *testing.T) {
	t.Parallel()

	r := report.NewStory(story.Steps(history(t), nil))
	require.Len(t, r.Steps, 2)
	assert.Equal(t, "Story of 2 commits", r.Title())

	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(true).Write(&buf, r, report.FormatText))
	assert.Contains(t, buf.String(), "1st")
	assert.Contains(t, buf.String(), "2nd")
	assert.Contains(t, buf.String(), "my first commit, and it was glorious")
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := report.NewWriter(true)
	require.ErrorIs(t, w.Write(&buf, nil, report.FormatText), report.ErrNilReport)
	require.ErrorIs(t, w.Write(&buf, report.NewStory(nil), "csv"), report.ErrUnknownFormat)
}
