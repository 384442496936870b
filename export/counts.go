package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sukanto-m/wiki-featured/store"
)

// WriteDayCounts renders per-day/section row counts as a text table:
// one row per section, one column per day.
func WriteDayCounts(w io.Writer, counts []store.DayCount) {
	daySet := map[string]int{}
	sectionSet := map[string]bool{}
	for _, dc := range counts {
		daySet[dc.Date] = 0
		sectionSet[dc.Section] = true
	}

	days := make([]string, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Strings(days)
	for idx, day := range days {
		daySet[day] = idx
	}

	sections := make([]string, 0, len(sectionSet))
	for sec := range sectionSet {
		sections = append(sections, sec)
	}
	sort.Strings(sections)

	grid := map[string][]int{}
	for _, sec := range sections {
		grid[sec] = make([]int, len(days))
	}
	for _, dc := range counts {
		grid[dc.Section][daySet[dc.Date]] = dc.Count
	}

	fmt.Fprintf(w, "%-12s", "")
	for _, day := range days {
		fmt.Fprintf(w, "%8s", shortDay(day))
	}
	fmt.Fprintf(w, "\n")

	for _, sec := range sections {
		fmt.Fprintf(w, "%-12s", sec)
		for _, cnt := range grid[sec] {
			fmt.Fprintf(w, "%8d", cnt)
		}
		fmt.Fprintf(w, "\n")
	}
}

func shortDay(day string) string {
	t, err := time.Parse(store.DateFormat, day)
	if err != nil {
		return day
	}
	return t.Format("02Jan")
}
