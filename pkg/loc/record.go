// Package loc loads the per-line commit log (one row per line of code per
// commit) that feeds every commit view.
package loc

import "time"

// Column names of the commit log, in the order the generator writes them.
const (
	ColCommit   = "commit"
	ColAuthor   = "author"
	ColDate     = "date"
	ColTime     = "time"
	ColTimezone = "timezone"
	ColDatetime = "datetime"
	ColFile     = "file"
	ColLine     = "line"
	ColDepth    = "depth"
	ColLength   = "length"
	ColType     = "type"
)

// Columns lists every column a commit log must carry.
var Columns = []string{
	ColCommit, ColAuthor, ColDate, ColTime, ColTimezone, ColDatetime,
	ColFile, ColLine, ColDepth, ColLength, ColType,
}

// LineRecord is one line of code as it stood in one commit.
type LineRecord struct {
	Commit   string    `json:"commit"   yaml:"commit"`
	Author   string    `json:"author"   yaml:"author"`
	Date     time.Time `json:"date"     yaml:"date"`
	Time     string    `json:"time"     yaml:"time"`
	Timezone string    `json:"timezone" yaml:"timezone"`
	Datetime time.Time `json:"datetime" yaml:"datetime"`
	File     string    `json:"file"     yaml:"file"`
	Line     int       `json:"line"     yaml:"line"`
	Depth    int       `json:"depth"    yaml:"depth"`
	Length   int       `json:"length"   yaml:"length"`
	Type     string    `json:"type"     yaml:"type"`
}

// Result is a parsed commit log.
type Result struct {
	Records []LineRecord
	// Dropped counts rows rejected by the malformed-row policy.
	Dropped int
}
