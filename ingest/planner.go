package ingest

import (
	"fmt"
	"time"

	"github.com/sukanto-m/wiki-featured/store"
)

// DefaultFloor is the earliest day the archive will ever fetch -
// there's no feed data to speak of before the pageview era.
const DefaultFloor = "2015-10-01"

// Range is a closed, inclusive interval of calendar days, walked
// ascending one day at a time.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) String() string {
	return store.Day(r.Start) + ".." + store.Day(r.End)
}

// Days enumerates every day in the range, ascending.
func (r Range) Days() []time.Time {
	out := []time.Time{}
	end := r.End.AddDate(0, 0, 1)
	for day := r.Start; day.Before(end); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

// Today returns the current UTC calendar day at midnight.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD flag value as a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(store.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ResolveFloor picks the floor date: explicit flag value first, then
// the config file, then the default.
func ResolveFloor(flagVal, cfgVal string) (time.Time, error) {
	s := flagVal
	if s == "" {
		s = cfgVal
	}
	if s == "" {
		s = DefaultFloor
	}
	return ParseDay(s)
}

// CatchupRange plans the days still missing from the store: from the
// day after the watermark up to today, clamped so nothing before the
// floor is ever fetched. With no watermark the whole [floor, today]
// span is planned. A watermark at or past today collapses the range to
// [today, today] - harmless to walk, the store dedups it to a no-op.
func CatchupRange(watermark string, today, floor time.Time) (Range, error) {
	if watermark == "" {
		return Range{Start: floor, End: today}, nil
	}

	w, err := ParseDay(watermark)
	if err != nil {
		return Range{}, fmt.Errorf("bad watermark: %w", err)
	}

	next := w.AddDate(0, 0, 1)
	if next.After(today) {
		return Range{Start: today, End: today}, nil
	}
	if next.Before(floor) {
		next = floor
	}
	return Range{Start: next, End: today}, nil
}

// ExplicitRange validates a caller-supplied backfill interval against
// the floor. Failures here are configuration errors - they happen
// before any fetch.
func ExplicitRange(start, end, floor time.Time) (Range, error) {
	if end.Before(floor) {
		return Range{}, fmt.Errorf("end %s is before floor %s", store.Day(end), store.Day(floor))
	}
	if start.Before(floor) {
		start = floor
	}
	if start.After(end) {
		return Range{}, fmt.Errorf("start %s is after end %s", store.Day(start), store.Day(end))
	}
	return Range{Start: start, End: end}, nil
}
