// Package report renders commit view state for the terminal, as JSON or as
// YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Errors.
var (
	ErrUnknownFormat = errors.New("unknown report format")
	ErrNilReport     = errors.New("report is nil")
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Report is implemented by every CLI report. The value itself is what JSON
// and YAML output serialize.
type Report interface {
	// Title heads the text output.
	Title() string
	// Tables lists the text output sections.
	Tables() []Table
}

// Table is one section of text output.
type Table struct {
	Title  string
	Header table.Row
	Rows   []table.Row
	// Footer is printed under the rows when set.
	Footer string
}

// Writer renders reports.
type Writer struct {
	noColor bool
}

// NewWriter creates a writer. noColor strips ANSI styling from text output.
func NewWriter(noColor bool) *Writer {
	return &Writer{noColor: noColor}
}

// Write renders r to w in format f.
func (wr *Writer) Write(w io.Writer, r Report, f Format) error {
	if r == nil {
		return ErrNilReport
	}

	switch f {
	case FormatText, "":
		return wr.writeText(w, r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func (wr *Writer) writeText(w io.Writer, r Report) error {
	heading := wr.style(color.FgCyan, color.Bold)
	section := wr.style(color.FgYellow)

	var b strings.Builder

	b.WriteString(heading.Sprintf("=== %s ===", r.Title()))
	b.WriteString("\n")

	for _, t := range r.Tables() {
		b.WriteString("\n")

		if t.Title != "" {
			b.WriteString(section.Sprint(t.Title))
			b.WriteString("\n")
		}

		b.WriteString(renderTable(t))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func (wr *Writer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if wr.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}

	return c
}

func renderTable(t Table) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	if len(t.Header) > 0 {
		tbl.AppendHeader(t.Header)
	}

	tbl.AppendRows(t.Rows)

	if t.Footer != "" {
		tbl.AppendFooter(table.Row{t.Footer})
	}

	return tbl.Render()
}

func writeJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("marshal report to JSON: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("marshal report to YAML: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush YAML: %w", err)
	}

	return nil
}
