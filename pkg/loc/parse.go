package loc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors.
var (
	ErrEmptyLog          = errors.New("commit log is empty")
	ErrMissingColumn     = errors.New("commit log is missing a required column")
	ErrSourceUnavailable = errors.New("commit log source unavailable")
)

// Row-level defects. A row hitting one of these is dropped, never fatal.
var (
	errShortRow  = errors.New("row has too few fields")
	errBadNumber = errors.New("invalid numeric field")
	errBadDate   = errors.New("invalid date field")
)

const byteOrderMark = "\ufeff"

// dateLayouts are tried in order for the date column combined with its timezone.
var dateLayouts = []string{
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
}

// datetimeLayouts are tried in order for the datetime column.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
}

// Offset-less datetime layouts; the row's timezone column supplies the offset.
var localDatetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

type columnIndex map[string]int

// Parse reads a commit log in CSV form. Rows that fail coercion are dropped
// and counted; structural problems (no header, missing columns, unreadable
// input) fail the whole parse.
func Parse(r io.Reader, opts ...Option) (Result, error) {
	o := buildOptions(opts)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrEmptyLog
	}

	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return Result{}, err
	}

	var result Result

	for rowNum := 2; ; rowNum++ {
		fields, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			var parseErr *csv.ParseError
			if !errors.As(readErr, &parseErr) {
				return Result{}, fmt.Errorf("read row %d: %w", rowNum, readErr)
			}

			result.Dropped++
			o.logger.Warn("dropping malformed row", "row", rowNum, "error", readErr)

			continue
		}

		rec, rowErr := parseRow(fields, idx)
		if rowErr != nil {
			result.Dropped++
			o.logger.Warn("dropping malformed row", "row", rowNum, "error", rowErr)

			continue
		}

		if rec.Type == "" && o.detectLanguage {
			rec.Type = DetectType(rec.File)
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}

		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string

	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return idx, nil
}

func (idx columnIndex) width() int {
	widest := 0

	for _, col := range Columns {
		widest = max(widest, idx[col]+1)
	}

	return widest
}

func parseRow(fields []string, idx columnIndex) (LineRecord, error) {
	if want := idx.width(); len(fields) < want {
		return LineRecord{}, fmt.Errorf("%w: got %d, want %d", errShortRow, len(fields), want)
	}

	get := func(col string) string {
		return strings.TrimSpace(fields[idx[col]])
	}

	line, err := parseCount(ColLine, get(ColLine), 1)
	if err != nil {
		return LineRecord{}, err
	}

	depth, err := parseCount(ColDepth, get(ColDepth), 0)
	if err != nil {
		return LineRecord{}, err
	}

	length, err := parseCount(ColLength, get(ColLength), 0)
	if err != nil {
		return LineRecord{}, err
	}

	tz := get(ColTimezone)

	date, err := parseDate(get(ColDate), tz)
	if err != nil {
		return LineRecord{}, err
	}

	datetime, err := parseDatetime(get(ColDatetime), tz)
	if err != nil {
		return LineRecord{}, err
	}

	return LineRecord{
		Commit:   get(ColCommit),
		Author:   get(ColAuthor),
		Date:     date,
		Time:     get(ColTime),
		Timezone: tz,
		Datetime: datetime,
		File:     get(ColFile),
		Line:     line,
		Depth:    depth,
		Length:   length,
		Type:     get(ColType),
	}, nil
}

func parseCount(col, raw string, minValue int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadNumber, col, raw)
	}

	if n < minValue {
		return 0, fmt.Errorf("%w: %s=%d below %d", errBadNumber, col, n, minValue)
	}

	return n, nil
}

// parseDate anchors a calendar date at midnight in the row's own offset.
func parseDate(raw, tz string) (time.Time, error) {
	if tz == "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date=%q", errBadDate, raw)
		}

		return t, nil
	}

	value := raw + "T00:00" + tz

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: date=%q timezone=%q", errBadDate, raw, tz)
}

func parseDatetime(raw, tz string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
	}

	loc := time.UTC

	if tz != "" {
		offset, err := time.Parse("Z07:00", tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timezone=%q", errBadDate, tz)
		}

		loc = offset.Location()
	}

	for _, layout := range localDatetimeLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: datetime=%q", errBadDate, raw)
}
