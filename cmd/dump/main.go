package main

// Dump archived rows to a flat file for offline analysis.
// Defaults to csv; -format jsonl gets one JSON object per line.

import (
	"flag"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sukanto-m/wiki-featured/export"
	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

var opts struct {
	connStr     string
	driver      string
	variantName string
	lang        string
	from, to    string
	sections    string
	outDir      string
	format      string
}

func main() {
	flag.StringVar(&opts.connStr, "db", "", "database connection string (or set WIKIFEED_DB)")
	flag.StringVar(&opts.driver, "driver", "", `database driver name (defaults to sqlite3 if WIKIFEED_DRIVER is unset)`)
	flag.StringVar(&opts.variantName, "variant", "most_read", `"most_read" or "featured"`)
	flag.StringVar(&opts.lang, "lang", "en", "language tag used in the output filename")
	flag.StringVar(&opts.from, "from", "", "start day YYYY-MM-DD (default unbounded)")
	flag.StringVar(&opts.to, "to", "", "end day YYYY-MM-DD (default unbounded)")
	flag.StringVar(&opts.sections, "sections", "", "comma-separated section filter")
	flag.StringVar(&opts.outDir, "o", ".", "output directory")
	flag.StringVar(&opts.format, "format", "csv", `output format ("csv" or "jsonl")`)
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	v, err := store.VariantByName(opts.variantName)
	if err != nil {
		return err
	}

	format, got := export.PickDumpFormat(opts.format)
	if !got {
		fmt.Fprintf(os.Stderr, "WARN: no %q format, falling back to %s\n", opts.format, format.Name())
	}

	filt := &store.Filter{DateFrom: opts.from, DateTo: opts.to}
	if opts.sections != "" {
		filt.Sections = strings.Split(opts.sections, ",")
	}

	db, err := sqlstore.NewWithEnv(opts.driver, opts.connStr)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ex := export.New(db, store.NullLogger{})
	path, err := ex.Dump(v, filt, opts.outDir, opts.lang, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
