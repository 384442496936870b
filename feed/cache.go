package feed

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bcampbell/warc"
	"github.com/flytam/filenamify"
)

// get performs a GET, using WARC files in CacheDir to cache successful
// responses. Handy for reworking normalization over a backfill without
// hammering the feed again. If CacheDir is "", don't bother caching.
func (c *Client) get(u string) (*http.Response, error) {
	if c.CacheDir == "" {
		return c.doGet(u)
	}
	if err := os.MkdirAll(c.CacheDir, 0750); err != nil {
		return nil, err
	}

	safeName, err := filenamify.Filenamify(u, filenamify.Options{})
	if err != nil {
		return c.doGet(u)
	}
	cacheName := filepath.Join(c.CacheDir, safeName)

	resp, err := warc.ReadFile(cacheName)
	if err == nil {
		return resp, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	// not in cache - perform a real request
	resp, err = c.doGet(u)
	if err != nil {
		return nil, err
	}

	// only squirrel away days that actually have data; a 404 today
	// may well be a 200 tomorrow
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	out, err := os.Create(cacheName)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	if err := warc.Write(out, resp, u, time.Now()); err != nil {
		return nil, err
	}

	// warc.Write consumed the body - serve the cached copy
	return warc.ReadFile(cacheName)
}
