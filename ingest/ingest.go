// Package ingest plans date ranges and runs the fetch-normalize-stash
// loop over them, one day at a time.
package ingest

import (
	"errors"
	"time"

	"github.com/sukanto-m/wiki-featured/feed"
	"github.com/sukanto-m/wiki-featured/normalize"
	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

// Ingester drives one run: sequential, single-threaded, fail-fast.
// Days already stashed stay committed if a later day blows up.
type Ingester struct {
	Client  *feed.Client
	DB      *sqlstore.SQLStore
	InfoLog store.Logger
	ErrLog  store.Logger
}

// RunMostRead ingests the most-read feed over a range. Returns the
// number of newly stored rows. Days the feed has no data for are
// skipped, not errors; anything else aborts the run on the spot.
func (ing *Ingester) RunMostRead(r Range) (int, error) {
	return ing.run(r, func(day time.Time) ([]*store.Row, error) {
		payload, err := ing.Client.MostRead(day)
		if err != nil {
			return nil, err
		}
		return normalize.MostRead(day, payload), nil
	}, store.MostRead)
}

// RunFeatured ingests the featured-content feed over a range.
func (ing *Ingester) RunFeatured(r Range) (int, error) {
	return ing.run(r, func(day time.Time) ([]*store.Row, error) {
		payload, err := ing.Client.Featured(day)
		if err != nil {
			return nil, err
		}
		return normalize.Featured(day, payload), nil
	}, store.Featured)
}

func (ing *Ingester) run(r Range, fetchDay func(time.Time) ([]*store.Row, error), v store.Variant) (int, error) {
	total := 0
	for _, day := range r.Days() {
		rows, err := fetchDay(day)
		if errors.Is(err, feed.ErrNotFound) {
			ing.InfoLog.Printf("%s %s: no data\n", v.Name, store.Day(day))
			continue
		}
		if err != nil {
			return total, err
		}

		n, err := ing.DB.Stash(v, rows...)
		if err != nil {
			return total, err
		}
		total += n
		ing.InfoLog.Printf("%s %s: %d rows (%d new)\n", v.Name, store.Day(day), len(rows), n)
	}
	return total, nil
}
