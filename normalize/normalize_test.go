package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sukanto-m/wiki-featured/feed"
	"github.com/sukanto-m/wiki-featured/store"
)

func day() time.Time {
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

func mostReadPayload(t *testing.T, raw string) *feed.MostReadPayload {
	t.Helper()
	var p feed.MostReadPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	return &p
}

func featuredPayload(t *testing.T, raw string) *feed.FeaturedPayload {
	t.Helper()
	var p feed.FeaturedPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	return &p
}

func TestMostRead(t *testing.T) {
	p := mostReadPayload(t, `{"articles": [
		{"title": "Foo", "views": 500, "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Foo"}}},
		{"title": "Bar", "views": 300},
		{"title": "Baz"}
	]}`)

	rows := MostRead(day(), p)
	if len(rows) != 3 {
		t.Fatalf("wrong row count (got %d, expected 3)", len(rows))
	}
	if rows[0].Date != "2025-01-15" || rows[0].Section != store.SectionMostRead {
		t.Errorf("bad row shape: %+v", rows[0])
	}
	if rows[0].Extra != "rank=1;views=500" {
		t.Errorf("bad extra encoding: %q", rows[0].Extra)
	}
	if rows[0].URL != "https://en.wikipedia.org/wiki/Foo" {
		t.Errorf("bad url: %q", rows[0].URL)
	}
	// missing views encode as zero, missing url stays empty
	if rows[2].Extra != "rank=3;views=0" || rows[2].URL != "" {
		t.Errorf("bad sparse row: %+v", rows[2])
	}
}

func TestMostReadEmpty(t *testing.T) {
	rows := MostRead(day(), mostReadPayload(t, `{}`))
	if len(rows) != 0 {
		t.Errorf("empty payload should give no rows, got %d", len(rows))
	}
}

func TestFeaturedTFA(t *testing.T) {
	p := featuredPayload(t, `{"tfa": {
		"title": "Foo",
		"extract": "Foo is a thing.",
		"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Foo"}}
	}}`)

	rows := Featured(day(), p)
	if len(rows) != 1 {
		t.Fatalf("wrong row count (got %d, expected 1)", len(rows))
	}
	r := rows[0]
	if r.Section != store.SectionTFA || r.Title != "Foo" || r.Extra != "Foo is a thing." {
		t.Errorf("bad tfa row: %+v", r)
	}
}

func TestFeaturedTFAUntitled(t *testing.T) {
	p := featuredPayload(t, `{"tfa": {"extract": "mystery article"}}`)
	if rows := Featured(day(), p); len(rows) != 0 {
		t.Errorf("untitled tfa should give no rows, got %d", len(rows))
	}
}

func TestFeaturedNews(t *testing.T) {
	p := featuredPayload(t, `{"news": [{
		"story": "<p>Something <b>happened</b>.</p>",
		"links": [
			{"title": "Foo", "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Foo"}}},
			{"title": ""}
		]
	}]}`)

	rows := Featured(day(), p)
	if len(rows) != 2 {
		t.Fatalf("wrong row count (got %d, expected 2)", len(rows))
	}
	story := rows[0]
	if story.Section != store.SectionNewsStory || story.Title != "(news)" {
		t.Errorf("bad story row: %+v", story)
	}
	if story.Extra != "Something happened." {
		t.Errorf("markup not stripped: %q", story.Extra)
	}
	link := rows[1]
	if link.Section != store.SectionNewsLink || link.Title != "Foo" {
		t.Errorf("bad link row: %+v", link)
	}
}

func TestFeaturedDYKFacts(t *testing.T) {
	p := featuredPayload(t, `{"dyk": [
		{"title": "Foo", "text": "that foo exists"},
		{"html": "<b>that bar does too</b>"},
		{"title": "", "text": ""}
	]}`)

	rows := Featured(day(), p)
	if len(rows) != 2 {
		t.Fatalf("wrong row count (got %d, expected 2)", len(rows))
	}
	if rows[0].Title != "Foo" || rows[0].Extra != "that foo exists" {
		t.Errorf("bad fact row: %+v", rows[0])
	}
	// untitled facts get the placeholder, html falls back to stripped text
	if rows[1].Title != "(dyk)" || rows[1].Extra != "that bar does too" {
		t.Errorf("bad fallback fact row: %+v", rows[1])
	}
}

func TestFeaturedDYKBlob(t *testing.T) {
	p := featuredPayload(t, `{"dyk": {"text": "assorted facts"}}`)
	rows := Featured(day(), p)
	if len(rows) != 1 {
		t.Fatalf("wrong row count (got %d, expected 1)", len(rows))
	}
	if rows[0].Title != "(dyk)" || rows[0].Extra != "assorted facts" {
		t.Errorf("bad blob row: %+v", rows[0])
	}
}

func TestFeaturedOnThisDay(t *testing.T) {
	long := strings.Repeat("x", 300)
	p := featuredPayload(t, `{"onthisday": [
		{"year": 1969, "text": "moon landing"},
		{"text": "`+long+`"},
		{}
	]}`)

	rows := Featured(day(), p)
	if len(rows) != 3 {
		t.Fatalf("wrong row count (got %d, expected 3)", len(rows))
	}
	if rows[0].Title != "1969: moon landing" || rows[0].Extra != "moon landing" {
		t.Errorf("bad dated row: %+v", rows[0])
	}
	// yearless title is truncated, full text kept in extra
	if len([]rune(rows[1].Title)) != 120 {
		t.Errorf("title not truncated (len %d)", len([]rune(rows[1].Title)))
	}
	if rows[1].Extra != long {
		t.Errorf("extra should keep the full text")
	}
	// nothing at all still yields a placeholder row
	if rows[2].Title != "(onthisday)" || rows[2].Extra != "" {
		t.Errorf("bad empty row: %+v", rows[2])
	}
}

func TestFeaturedSubsectionsIndependent(t *testing.T) {
	// a misshapen subsection contributes nothing but never blocks the rest
	p := featuredPayload(t, `{
		"tfa": {"title": "Foo"},
		"news": "garbage",
		"dyk": 42,
		"onthisday": [{"year": 2000, "text": "ok"}]
	}`)

	rows := Featured(day(), p)
	if len(rows) != 2 {
		t.Fatalf("wrong row count (got %d, expected 2)", len(rows))
	}
	if rows[0].Section != store.SectionTFA || rows[1].Section != store.SectionOnThisDay {
		t.Errorf("wrong sections: %+v", rows)
	}
}

func TestCleanURL(t *testing.T) {
	got := cleanURL("HTTPS://EN.Wikipedia.org/wiki/Foo")
	if got != "https://en.wikipedia.org/wiki/Foo" {
		t.Errorf("cleanURL: got %q", got)
	}
	// unparseable urls are kept verbatim
	bad := "http://%zz"
	if got := cleanURL(bad); got != bad {
		t.Errorf("cleanURL should keep bad urls, got %q", got)
	}
	if cleanURL("") != "" {
		t.Errorf("empty url should stay empty")
	}
}
