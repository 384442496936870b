package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a single normalized fact pulled out of one day's feed snapshot.
// Rows are immutable once built - ingestion never updates a stored row.
type Row struct {
	// Date is the calendar day in YYYY-MM-DD form.
	Date    string
	Section string
	Title   string
	// Extra is the auxiliary content for the row. For most-read rows
	// it's the composed "rank=N;views=V" encoding, for featured rows
	// it's descriptive text.
	Extra string
	URL   string
}

// section vocabulary
const (
	SectionMostRead  = "most_read"
	SectionTFA       = "tfa"
	SectionNewsStory = "news_story"
	SectionNewsLink  = "news_link"
	SectionDYK       = "dyk"
	SectionOnThisDay = "onthisday"
)

// Variant describes one of the two archive tables. The two feed variants
// have different natural keys - most-read rows are unique per
// (date,section,title), featured rows also key on url because the same
// title can appear under several links in one day.
type Variant struct {
	Name    string
	Table   string
	AuxCol  string   // column holding Row.Extra
	KeyCols []string // composite primary key
}

var (
	MostRead = Variant{
		Name:    "most-read",
		Table:   "most_read",
		AuxCol:  "extra",
		KeyCols: []string{"date", "section", "title"},
	}
	Featured = Variant{
		Name:    "featured",
		Table:   "featured",
		AuxCol:  "text",
		KeyCols: []string{"date", "section", "title", "url"},
	}
)

// VariantByName resolves a variant from its table name, for CLI flags
// and API query params.
func VariantByName(name string) (Variant, error) {
	switch name {
	case MostRead.Table:
		return MostRead, nil
	case Featured.Table:
		return Featured, nil
	}
	return Variant{}, fmt.Errorf("unknown variant %q (want %q or %q)", name, MostRead.Table, Featured.Table)
}

type Logger interface {
	Printf(format string, v ...interface{})
}

type NullLogger struct{}

func (l NullLogger) Printf(format string, v ...interface{}) {}

// Filter narrows row fetches. Date bounds are inclusive and in
// YYYY-MM-DD form; empty means unbounded.
type Filter struct {
	DateFrom string
	DateTo   string
	Sections []string
	// max number of rows wanted (0 = no limit)
	Count int
}

// Describe returns a concise description of the filter for logging.
func (filt *Filter) Describe() string {
	s := "[ "
	if filt.DateFrom != "" && filt.DateTo != "" {
		s += fmt.Sprintf("date %s..%s ", filt.DateFrom, filt.DateTo)
	} else if filt.DateFrom != "" {
		s += fmt.Sprintf("date %s.. ", filt.DateFrom)
	} else if filt.DateTo != "" {
		s += fmt.Sprintf("date ..%s ", filt.DateTo)
	}
	if len(filt.Sections) > 0 {
		s += strings.Join(filt.Sections, "|") + " "
	}
	if filt.Count > 0 {
		s += fmt.Sprintf("cnt %d ", filt.Count)
	}
	s += "]"
	return s
}

// RowIter is a stream of rows from a store query.
type RowIter interface {
	Next() bool
	Row() *Row
	Err() error
	Close() error
}

// DayCount is the number of rows stored for one date+section.
type DayCount struct {
	Date    string `json:"date"`
	Section string `json:"section"`
	Count   int    `json:"count"`
}

// DateFormat is the calendar-day layout used throughout the archive.
const DateFormat = "2006-01-02"

// Day formats a time as an archive date string.
func Day(t time.Time) string {
	return t.Format(DateFormat)
}

// EncodeViews builds the auxiliary encoding carried by most-read rows.
// The composed text form is what gets stored - it matches the external
// dataset format, so it's decoded again only at the export boundary.
func EncodeViews(rank, views int) string {
	return fmt.Sprintf("rank=%d;views=%d", rank, views)
}

// DecodeViews pulls the view count back out of an encoded extra field.
// Anything unparseable counts as zero views.
func DecodeViews(extra string) int {
	for _, part := range strings.Split(extra, ";") {
		if strings.HasPrefix(part, "views=") {
			if v, err := strconv.Atoi(part[len("views="):]); err == nil {
				return v
			}
		}
	}
	return 0
}
