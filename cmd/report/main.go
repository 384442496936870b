package main

// Print a per-day/section row count table from the archive db.
// Quick sanity check that the ingest cron is keeping up.

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sukanto-m/wiki-featured/export"
	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

func main() {
	fromDefault := time.Now().AddDate(0, 0, -7).Format(store.DateFormat)
	toDefault := time.Now().Format(store.DateFormat)

	var connStr, driver, variantName, from, to string
	flag.StringVar(&connStr, "db", "", "database connection string (or set WIKIFEED_DB)")
	flag.StringVar(&driver, "driver", "", `database driver name (defaults to sqlite3 if WIKIFEED_DRIVER is unset)`)
	flag.StringVar(&variantName, "variant", "most_read", `"most_read" or "featured"`)
	flag.StringVar(&from, "from", fromDefault, "start day YYYY-MM-DD")
	flag.StringVar(&to, "to", toDefault, "end day YYYY-MM-DD")
	flag.Parse()

	if err := run(connStr, driver, variantName, from, to); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run(connStr, driver, variantName, from, to string) error {
	v, err := store.VariantByName(variantName)
	if err != nil {
		return err
	}

	db, err := sqlstore.NewWithEnv(driver, connStr)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	counts, err := db.DayCounts(v, from, to)
	if err != nil {
		return err
	}
	export.WriteDayCounts(os.Stdout, counts)
	return nil
}
