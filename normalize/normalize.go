// Package normalize flattens raw day payloads into archive rows.
//
// Normalization is total: whatever shape the upstream JSON is in, these
// functions return the rows that could be extracted and never fail. An
// absent or misshapen subsection contributes zero rows; it is never an
// error and never blocks the other subsections.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/purell"
	"github.com/bcampbell/htmlutil"
	"golang.org/x/net/html"

	"github.com/sukanto-m/wiki-featured/feed"
	"github.com/sukanto-m/wiki-featured/store"
)

// placeholder titles for rows whose source carries none
const (
	newsTitle = "(news)"
	dykTitle  = "(dyk)"
	otdTitle  = "(onthisday)"
)

// max title length synthesized from yearless on-this-day text
const otdTitleMax = 120

// MostRead maps one day's most-read payload to rows, one per article
// entry in rank order. Missing views count as zero; missing titles and
// URLs become empty strings.
func MostRead(day time.Time, payload *feed.MostReadPayload) []*store.Row {
	date := store.Day(day)
	rows := []*store.Row{}
	for _, ra := range payload.DecodeArticles() {
		rows = append(rows, &store.Row{
			Date:    date,
			Section: store.SectionMostRead,
			Title:   ra.Article.Title,
			Extra:   store.EncodeViews(ra.Rank, ra.Article.Views),
			URL:     cleanURL(ra.Article.ContentURLs.PageLink()),
		})
	}
	return rows
}

// Featured maps one day's featured-content payload to rows: the four
// subsections are handled independently and their rows concatenated.
func Featured(day time.Time, payload *feed.FeaturedPayload) []*store.Row {
	date := store.Day(day)
	rows := []*store.Row{}
	rows = append(rows, tfaRows(date, payload)...)
	rows = append(rows, newsRows(date, payload)...)
	rows = append(rows, dykRows(date, payload)...)
	rows = append(rows, onThisDayRows(date, payload)...)
	return rows
}

// at most one row, and only when the source names an article
func tfaRows(date string, payload *feed.FeaturedPayload) []*store.Row {
	tfa, got := payload.DecodeTFA()
	if !got || tfa.Title == "" {
		return nil
	}
	return []*store.Row{{
		Date:    date,
		Section: store.SectionTFA,
		Title:   tfa.Title,
		Extra:   tfa.Extract,
		URL:     cleanURL(tfa.ContentURLs.PageLink()),
	}}
}

// one news_story row per item with narrative text, plus one news_link
// row per titled link within the item
func newsRows(date string, payload *feed.FeaturedPayload) []*store.Row {
	rows := []*store.Row{}
	for _, item := range payload.DecodeNews() {
		if story := htmlText(item.Story); story != "" {
			rows = append(rows, &store.Row{
				Date:    date,
				Section: store.SectionNewsStory,
				Title:   newsTitle,
				Extra:   story,
			})
		}
		for _, link := range item.Links {
			if link.Title == "" {
				continue
			}
			rows = append(rows, &store.Row{
				Date:    date,
				Section: store.SectionNewsLink,
				Title:   link.Title,
				URL:     cleanURL(link.ContentURLs.PageLink()),
			})
		}
	}
	return rows
}

func dykRows(date string, payload *feed.FeaturedPayload) []*store.Row {
	sec := payload.DecodeDYK()

	if sec.Blob != nil {
		text := dykText(sec.Blob.Text, sec.Blob.HTML)
		if text == "" {
			return nil
		}
		return []*store.Row{{
			Date:    date,
			Section: store.SectionDYK,
			Title:   dykTitle,
			Extra:   text,
		}}
	}

	rows := []*store.Row{}
	for _, fact := range sec.Facts {
		title := fact.Title
		if title == "" {
			title = dykTitle
		}
		text := dykText(fact.Text, fact.HTML)
		if text == "" && fact.Title == "" {
			continue
		}
		rows = append(rows, &store.Row{
			Date:    date,
			Section: store.SectionDYK,
			Title:   title,
			Extra:   text,
		})
	}
	return rows
}

// plain text preferred, markup stripped as a fallback
func dykText(text, markup string) string {
	if text != "" {
		return text
	}
	return htmlText(markup)
}

func onThisDayRows(date string, payload *feed.FeaturedPayload) []*store.Row {
	rows := []*store.Row{}
	for _, ev := range payload.DecodeOnThisDay() {
		var title string
		if ev.Year != nil {
			title = fmt.Sprintf("%d: %s", *ev.Year, ev.Text)
		} else {
			title = ev.Text
			if r := []rune(title); len(r) > otdTitleMax {
				title = string(r[:otdTitleMax])
			}
		}
		if title == "" {
			title = otdTitle
		}
		rows = append(rows, &store.Row{
			Date:    date,
			Section: store.SectionOnThisDay,
			Title:   title,
			Extra:   ev.Text, // full text kept whatever the title got
		})
	}
	return rows
}

// cleanURL normalizes a page URL before it becomes part of a row key.
// Unparseable URLs are kept verbatim rather than dropped.
func cleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	normalized, err := purell.NormalizeURLString(raw, purell.FlagsSafe)
	if err != nil {
		return raw
	}
	return normalized
}

// htmlText strips markup from an HTML fragment, leaving trimmed text.
func htmlText(fragment string) string {
	if fragment == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(htmlutil.TextContent(root))
}
