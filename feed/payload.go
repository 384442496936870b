package feed

// Wire shapes for the two day payloads. Nothing upstream is
// contractually guaranteed field-by-field, so every subsection arrives
// as a raw message and is decoded defensively: an absent or
// wrong-shaped subsection decodes to nothing, and malformed items
// inside a list-shaped subsection are skipped one at a time.

import (
	"encoding/json"
)

// MostReadPayload is one day's most-read snapshot.
type MostReadPayload struct {
	Articles json.RawMessage `json:"articles"`
}

// MostReadArticle is a single ranked entry.
type MostReadArticle struct {
	Title       string       `json:"title"`
	Views       int          `json:"views"`
	ContentURLs *ContentURLs `json:"content_urls"`
}

// ContentURLs holds the per-platform page links attached to an entry.
type ContentURLs struct {
	Desktop *PageURL `json:"desktop"`
}

type PageURL struct {
	Page string `json:"page"`
}

// PageLink digs out the desktop page URL, "" when any level is absent.
func (cu *ContentURLs) PageLink() string {
	if cu == nil || cu.Desktop == nil {
		return ""
	}
	return cu.Desktop.Page
}

// DecodeArticles returns the day's entries paired with their 1-based
// rank (list position). Malformed entries are dropped, their rank
// slots with them.
func (p *MostReadPayload) DecodeArticles() []RankedArticle {
	items := decodeItems(p.Articles)
	out := make([]RankedArticle, 0, len(items))
	for i, raw := range items {
		var a MostReadArticle
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		out = append(out, RankedArticle{Rank: i + 1, Article: a})
	}
	return out
}

type RankedArticle struct {
	Rank    int
	Article MostReadArticle
}

// FeaturedPayload is one day's featured-content snapshot. The four
// subsections are independent - any of them may be missing or
// misshapen without affecting the others.
type FeaturedPayload struct {
	TFA       json.RawMessage `json:"tfa"`
	News      json.RawMessage `json:"news"`
	DYK       json.RawMessage `json:"dyk"`
	OnThisDay json.RawMessage `json:"onthisday"`
}

// TFA is "today's featured article".
type TFA struct {
	Title       string       `json:"title"`
	Extract     string       `json:"extract"`
	ContentURLs *ContentURLs `json:"content_urls"`
}

// DecodeTFA returns the featured article and whether one was present.
func (p *FeaturedPayload) DecodeTFA() (*TFA, bool) {
	if len(p.TFA) == 0 {
		return nil, false
	}
	var t TFA
	if err := json.Unmarshal(p.TFA, &t); err != nil {
		return nil, false
	}
	return &t, true
}

// NewsItem is one "in the news" entry: a narrative story plus the
// articles it links to.
type NewsItem struct {
	Story string     `json:"story"`
	Links []NewsLink `json:"links"`
}

type NewsLink struct {
	Title       string       `json:"title"`
	ContentURLs *ContentURLs `json:"content_urls"`
}

func (p *FeaturedPayload) DecodeNews() []NewsItem {
	out := []NewsItem{}
	for _, raw := range decodeItems(p.News) {
		var item NewsItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// DYKFact is one "did you know" hook from the list-shaped variant.
type DYKFact struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
}

// DYKBlob is the single consolidated variant.
type DYKBlob struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// DYKSection is the tagged union the dyk subsection decodes into:
// either a list of facts or one blob, never both.
type DYKSection struct {
	Facts []DYKFact
	Blob  *DYKBlob
}

// DecodeDYK resolves the maybe-list, maybe-dict shape of the dyk
// subsection in one place. Anything unrecognisable decodes to an
// empty section.
func (p *FeaturedPayload) DecodeDYK() DYKSection {
	if len(p.DYK) == 0 {
		return DYKSection{}
	}

	if items := decodeItems(p.DYK); items != nil {
		facts := []DYKFact{}
		for _, raw := range items {
			var f DYKFact
			if err := json.Unmarshal(raw, &f); err != nil {
				continue
			}
			facts = append(facts, f)
		}
		return DYKSection{Facts: facts}
	}

	var blob DYKBlob
	if err := json.Unmarshal(p.DYK, &blob); err != nil {
		return DYKSection{}
	}
	return DYKSection{Blob: &blob}
}

// OTDEvent is one "on this day" entry. Year is optional upstream.
type OTDEvent struct {
	Year *int   `json:"year"`
	Text string `json:"text"`
}

func (p *FeaturedPayload) DecodeOnThisDay() []OTDEvent {
	out := []OTDEvent{}
	for _, raw := range decodeItems(p.OnThisDay) {
		var ev OTDEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// decodeItems splits a list-shaped raw subsection into per-item raw
// messages. Returns nil when the subsection is absent or not a list.
func decodeItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
