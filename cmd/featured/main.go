package main

// Archive the Wikipedia "featured content" daily feed (today's
// featured article, in-the-news, did-you-know, on-this-day) into an
// SQL store.
//
// Unlike the most-read feed, featured content is published for the
// current day, so catch-up mode runs straight up to today with no
// availability probe. Days the feed 404s are logged and skipped.

import (
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sukanto-m/wiki-featured/config"
	"github.com/sukanto-m/wiki-featured/ingest"
	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

var opts struct {
	lang       string
	driver     string
	connStr    string
	configFile string
	mode       string
	from, to   string
	floor      string
	cacheDir   string
	verbosity  int
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingest the wikipedia featured-content feed into an archive db.\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.lang, "lang", "en", "wikipedia language edition")
	flag.StringVar(&opts.connStr, "db", "", "database connection string (or set WIKIFEED_DB)")
	flag.StringVar(&opts.driver, "driver", "", `database driver name (defaults to sqlite3 if WIKIFEED_DRIVER is unset)`)
	flag.StringVar(&opts.configFile, "config", "", "config file")
	flag.StringVar(&opts.mode, "mode", "catchup", `"catchup" or "range"`)
	flag.StringVar(&opts.from, "from", "", "range mode: first day (YYYY-MM-DD)")
	flag.StringVar(&opts.to, "to", "", "range mode: last day (YYYY-MM-DD, default today)")
	flag.StringVar(&opts.floor, "floor", "", "earliest day ever fetched (YYYY-MM-DD)")
	flag.StringVar(&opts.cacheDir, "cache", "", "response cache dir")
	flag.IntVar(&opts.verbosity, "v", 1, "verbosity (0=errors only, 1=info, 2=debug)")
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	errLog := log.New(os.Stderr, "ERR: ", 0)
	var infoLog store.Logger = store.NullLogger{}
	if opts.verbosity > 0 {
		infoLog = log.New(os.Stderr, "INF: ", 0)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	floor, err := ingest.ResolveFloor(opts.floor, cfg.Floor(opts.lang))
	if err != nil {
		return err
	}
	today := ingest.Today()

	var explicit *ingest.Range
	switch opts.mode {
	case "range":
		if opts.from == "" {
			return fmt.Errorf("range mode needs -from")
		}
		start, err := ingest.ParseDay(opts.from)
		if err != nil {
			return err
		}
		end := today
		if opts.to != "" {
			end, err = ingest.ParseDay(opts.to)
			if err != nil {
				return err
			}
		}
		r, err := ingest.ExplicitRange(start, end, floor)
		if err != nil {
			return err
		}
		explicit = &r
	case "catchup":
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	db, err := sqlstore.NewWithEnv(opts.driver, opts.connStr)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	db.ErrLog = errLog
	if opts.verbosity >= 2 {
		db.DebugLog = log.New(os.Stderr, "store: ", 0)
	}

	client := cfg.NewClient(opts.lang, infoLog)
	if opts.cacheDir != "" {
		client.CacheDir = opts.cacheDir
	}

	var rng ingest.Range
	if explicit != nil {
		rng = *explicit
	} else {
		watermark, err := db.Latest(store.Featured)
		if err != nil {
			return err
		}
		rng, err = ingest.CatchupRange(watermark, today, floor)
		if err != nil {
			return err
		}
	}

	ing := &ingest.Ingester{Client: client, DB: db, InfoLog: infoLog, ErrLog: errLog}
	total, err := ing.RunFeatured(rng)
	if err != nil {
		return err
	}
	infoLog.Printf("ingested %d new rows over %s\n", total, rng)
	return nil
}
