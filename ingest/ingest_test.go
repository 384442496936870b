package ingest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sukanto-m/wiki-featured/config"
	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

func testStore(t *testing.T) *sqlstore.SQLStore {
	t.Helper()
	ss, err := sqlstore.New("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %s", err)
	}
	t.Cleanup(ss.Close)
	return ss
}

func TestRunMostRead(t *testing.T) {
	// three days: first has data, second 404s, third has data
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en/most-read/2025/01/10":
			fmt.Fprint(w, `{"articles": [{"title": "Foo", "views": 500}, {"title": "Bar", "views": 300}]}`)
		case "/en/most-read/2025/01/12":
			fmt.Fprint(w, `{"articles": [{"title": "Baz", "views": 100}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %s", err)
	}
	cfg.Feed.BaseURL = srv.URL
	cfg.Feed.RateLimit = 0
	client := cfg.NewClient("en", nil)

	db := testStore(t)
	ing := &Ingester{Client: client, DB: db, InfoLog: store.NullLogger{}, ErrLog: store.NullLogger{}}

	rng := Range{Start: d("2025-01-10"), End: d("2025-01-12")}
	total, err := ing.RunMostRead(rng)
	if err != nil {
		t.Fatalf("RunMostRead: %s", err)
	}
	if total != 3 {
		t.Errorf("wrong new row count (got %d, expected 3)", total)
	}

	latest, err := db.Latest(store.MostRead)
	if err != nil {
		t.Fatalf("Latest: %s", err)
	}
	if latest != "2025-01-12" {
		t.Errorf("wrong watermark (got %q)", latest)
	}

	// a second run over the same range stores nothing new
	total, err = ing.RunMostRead(rng)
	if err != nil {
		t.Fatalf("re-run: %s", err)
	}
	if total != 0 {
		t.Errorf("re-run stored %d rows, expected 0", total)
	}
}

func TestRunMostReadKeepsPartialProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en/most-read/2025/01/10":
			fmt.Fprint(w, `{"articles": [{"title": "Foo", "views": 500}]}`)
		default:
			http.Error(w, "boom", 503)
		}
	}))
	defer srv.Close()

	cfg, _ := config.Load("")
	cfg.Feed.BaseURL = srv.URL
	cfg.Feed.RateLimit = 0
	client := cfg.NewClient("en", nil)

	db := testStore(t)
	ing := &Ingester{Client: client, DB: db, InfoLog: store.NullLogger{}, ErrLog: store.NullLogger{}}

	_, err := ing.RunMostRead(Range{Start: d("2025-01-10"), End: d("2025-01-12")})
	if err == nil {
		t.Fatalf("expected a transport error")
	}

	// the day stashed before the failure stays committed
	latest, err := db.Latest(store.MostRead)
	if err != nil {
		t.Fatalf("Latest: %s", err)
	}
	if latest != "2025-01-10" {
		t.Errorf("wrong watermark after abort (got %q)", latest)
	}
}

func TestRunFeatured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/featured/2025/01/10" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"tfa": {"title": "Foo", "extract": "Foo is a thing."},
			"onthisday": [{"year": 1969, "text": "moon landing"}]
		}`)
	}))
	defer srv.Close()

	cfg, _ := config.Load("")
	cfg.Feed.BaseURL = srv.URL
	cfg.Feed.RateLimit = 0
	client := cfg.NewClient("en", nil)

	db := testStore(t)
	ing := &Ingester{Client: client, DB: db, InfoLog: store.NullLogger{}, ErrLog: store.NullLogger{}}

	day := d("2025-01-10")
	total, err := ing.RunFeatured(Range{Start: day, End: day})
	if err != nil {
		t.Fatalf("RunFeatured: %s", err)
	}
	if total != 2 {
		t.Errorf("wrong new row count (got %d, expected 2)", total)
	}

	counts, err := db.DayCounts(store.Featured, "", "")
	if err != nil {
		t.Fatalf("DayCounts: %s", err)
	}
	if len(counts) != 2 {
		t.Errorf("expected tfa and onthisday counts, got %+v", counts)
	}
}
