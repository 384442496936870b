package feed

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// test client with the politeness machinery stripped out
func newTestClient(baseURL string) *Client {
	c := NewClient("en")
	c.BaseURL = baseURL
	c.client = &http.Client{}
	c.limiter = nil
	return c
}

func testDay() time.Time {
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

func TestDayURL(t *testing.T) {
	c := NewClient("en")
	got := c.DayURL("most-read", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC))
	expect := "https://api.wikimedia.org/feed/v1/wikipedia/en/most-read/2025/03/07"
	if got != expect {
		t.Errorf("DayURL: got %q, expected %q", got, expect)
	}
}

func TestMostReadOK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"articles": [
			{"title": "Foo", "views": 500},
			{"title": "Bar", "views": 300}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	payload, err := c.MostRead(testDay())
	if err != nil {
		t.Fatalf("MostRead: %s", err)
	}
	arts := payload.DecodeArticles()
	if len(arts) != 2 {
		t.Fatalf("wrong article count (got %d, expected 2)", len(arts))
	}
	if arts[0].Rank != 1 || arts[0].Article.Title != "Foo" || arts[0].Article.Views != 500 {
		t.Errorf("bad first article: %+v", arts[0])
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("wrong User-Agent: %q", gotUA)
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.MostRead(testDay())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.MostRead(testDay())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.StatusCode != 500 {
		t.Errorf("wrong status code: %d", te.StatusCode)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("server error must not look like a missing day")
	}
}

func TestBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles": [`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.MostRead(testDay())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError for bad JSON, got %v", err)
	}
}

func TestMemCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"articles": [{"title": "Foo", "views": 1}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.MostRead(testDay()); err != nil {
		t.Fatalf("first fetch: %s", err)
	}
	if _, err := c.MostRead(testDay()); err != nil {
		t.Fatalf("second fetch: %s", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}
}
