// Package export derives output artifacts from an archive store. It
// only ever reads.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

type nullLogger struct{}

func (l nullLogger) Printf(format string, v ...interface{}) {}

type Exporter struct {
	DB      *sqlstore.SQLStore
	InfoLog store.Logger
}

func New(db *sqlstore.SQLStore, infoLog store.Logger) *Exporter {
	if infoLog == nil {
		infoLog = nullLogger{}
	}
	return &Exporter{DB: db, InfoLog: infoLog}
}

// MonthDoc is the monthly rollup document (most_read.json).
type MonthDoc struct {
	SchemaVersion int         `json:"schema_version"`
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	GeneratedAt   string      `json:"generated_at"`
	Items         []MonthItem `json:"items"`
}

type MonthItem struct {
	Title         string  `json:"title"`
	Views         int     `json:"views"`
	DaysPresent   int     `json:"days_present"`
	AvgDailyViews float64 `json:"avg_daily_views"`
	URL           string  `json:"url"`
}

// MonthSummary is the compact companion document (summary.json).
type MonthSummary struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	TotalArticles int     `json:"total_articles"`
	TopArticle    *string `json:"top_article"`
	TopViews      *int    `json:"top_views"`
}

// MonthItems aggregates a month of most-read rows: per title, total
// views across the month, days present, average daily views (one
// decimal) and a representative URL. Sorted by views descending.
func (ex *Exporter) MonthItems(year, month int) ([]MonthItem, error) {
	rows, err := ex.DB.MonthRows(store.MostRead, store.SectionMostRead, year, month)
	if err != nil {
		return nil, err
	}

	type agg struct {
		views int
		days  int
		url   string
	}
	byTitle := map[string]*agg{}
	for _, r := range rows {
		a := byTitle[r.Title]
		if a == nil {
			a = &agg{}
			byTitle[r.Title] = a
		}
		a.views += store.DecodeViews(r.Extra)
		a.days++
		if r.URL > a.url {
			a.url = r.URL
		}
	}

	items := make([]MonthItem, 0, len(byTitle))
	for title, a := range byTitle {
		avg := 0.0
		if a.days > 0 {
			avg = math.Round(float64(a.views)/float64(a.days)*10) / 10
		}
		items = append(items, MonthItem{
			Title:         title,
			Views:         a.views,
			DaysPresent:   a.days,
			AvgDailyViews: avg,
			URL:           a.url,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Views != items[j].Views {
			return items[i].Views > items[j].Views
		}
		return items[i].Title < items[j].Title
	})
	return items, nil
}

// ExportMonth writes most_read.json and summary.json for one month
// into outDir.
func (ex *Exporter) ExportMonth(year, month int, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	items, err := ex.MonthItems(year, month)
	if err != nil {
		return err
	}

	doc := MonthDoc{
		SchemaVersion: 1,
		Year:          year,
		Month:         month,
		GeneratedAt:   time.Now().UTC().Format("2006-01-02T15:04:05") + "Z",
		Items:         items,
	}
	if err := writeJSON(filepath.Join(outDir, "most_read.json"), &doc); err != nil {
		return err
	}

	summary := MonthSummary{
		Year:          year,
		Month:         month,
		TotalArticles: len(items),
	}
	if len(items) > 0 {
		summary.TopArticle = &items[0].Title
		summary.TopViews = &items[0].Views
	}
	return writeJSON(filepath.Join(outDir, "summary.json"), &summary)
}

// ExportMonthlies writes rollups for every month present in the store,
// one {siteDir}/{yyyy}/{mm}/ directory per month.
func (ex *Exporter) ExportMonthlies(siteDir string) error {
	months, err := ex.DB.Months(store.MostRead)
	if err != nil {
		return err
	}
	for _, ym := range months {
		year, month, err := splitMonth(ym)
		if err != nil {
			return err
		}
		out := filepath.Join(siteDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
		if err := ex.ExportMonth(year, month, out); err != nil {
			return err
		}
		ex.InfoLog.Printf("exported %s\n", ym)
	}
	return nil
}

func splitMonth(ym string) (int, int, error) {
	parts := strings.SplitN(ym, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad month %q", ym)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad month %q", ym)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad month %q", ym)
	}
	return year, month, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
