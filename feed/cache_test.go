package feed

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestDiskCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"articles": [{"title": "Foo", "views": 1}]}`))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()

	c := newTestClient(srv.URL)
	c.CacheDir = cacheDir
	if _, err := c.MostRead(testDay()); err != nil {
		t.Fatalf("first fetch: %s", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}

	// a fresh client (no memory cache) replays from disk
	c2 := newTestClient(srv.URL)
	c2.CacheDir = cacheDir
	payload, err := c2.MostRead(testDay())
	if err != nil {
		t.Fatalf("cached fetch: %s", err)
	}
	if hits != 1 {
		t.Errorf("cached fetch hit upstream (hits=%d)", hits)
	}
	arts := payload.DecodeArticles()
	if len(arts) != 1 || arts[0].Article.Title != "Foo" {
		t.Errorf("bad cached payload: %+v", arts)
	}
}

func TestDiskCacheSkipsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.CacheDir = t.TempDir()
	if _, err := c.MostRead(testDay()); err == nil {
		t.Fatalf("expected an error")
	}

	// only 200s get cached - nothing should be on disk
	entries, err := os.ReadDir(c.CacheDir)
	if err != nil {
		t.Fatalf("readdir: %s", err)
	}
	if len(entries) != 0 {
		t.Errorf("404 response was cached: %v", entries)
	}
}
