package feed

// Client for the Wikimedia daily feed API. One GET per (variant, day),
// no retries - a failed attempt propagates straight out as either
// ErrNotFound (the day has no data) or a *TransportError (everything
// else).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bcampbell/arts/util"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.wikimedia.org/feed/v1/wikipedia"
	DefaultUserAgent = "wiki-featured/1.1 (github.com/sukanto-m/wiki-featured)"
	DefaultTimeout   = 30 * time.Second
	// how far back to probe for the latest available day
	DefaultLookback = 7
)

// ErrNotFound means the remote has no data for the requested day.
// It's an expected outcome, not a failure - probing and backfill
// decisions hang off it.
var ErrNotFound = errors.New("no data for day")

// ErrNoData means a probe exhausted its lookback window without
// finding any day with data. Callers treat it as a clean stop.
var ErrNoData = errors.New("no data within lookback window")

// TransportError covers any fetch failure other than a missing day:
// network trouble, non-2xx statuses, unparseable responses.
type TransportError struct {
	URL        string
	StatusCode int // 0 if the request itself failed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Logger interface {
	Printf(format string, v ...interface{})
}

type nullLogger struct{}

func (l nullLogger) Printf(format string, v ...interface{}) {}

// Client fetches day payloads for one language.
type Client struct {
	BaseURL   string
	Lang      string
	UserAgent string
	// CacheDir, if set, caches raw responses on disk as WARC files.
	CacheDir string
	InfoLog  Logger

	client   *http.Client
	limiter  *rate.Limiter
	memCache *gocache.Cache
}

// NewClient builds a client with the stock politeness settings: a
// per-host-delaying transport, a request rate cap, and a short-lived
// in-memory payload cache so probing a day and then ingesting it costs
// one request, not two.
func NewClient(lang string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		Lang:      lang,
		UserAgent: DefaultUserAgent,
		InfoLog:   nullLogger{},
		client: &http.Client{
			Transport: util.NewPoliteTripper(),
			Timeout:   DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
		memCache: gocache.New(15*time.Minute, 30*time.Minute),
	}
}

// SetTimeout replaces the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

// SetRateLimit caps outgoing requests per second (0 disables the cap).
func (c *Client) SetRateLimit(perSec float64) {
	if perSec <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
}

// MostRead fetches one day's most-read payload.
func (c *Client) MostRead(day time.Time) (*MostReadPayload, error) {
	out := &MostReadPayload{}
	if err := c.fetchJSON(c.DayURL("most-read", day), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Featured fetches one day's featured-content payload.
func (c *Client) Featured(day time.Time) (*FeaturedPayload, error) {
	out := &FeaturedPayload{}
	if err := c.fetchJSON(c.DayURL("featured", day), out); err != nil {
		return nil, err
	}
	return out, nil
}

// DayURL builds the feed URL for a variant and day.
func (c *Client) DayURL(variant string, day time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%04d/%02d/%02d",
		c.BaseURL, c.Lang, variant, day.Year(), int(day.Month()), day.Day())
}

func (c *Client) fetchJSON(u string, out interface{}) error {
	if c.memCache != nil {
		if raw, got := c.memCache.Get(u); got {
			return json.Unmarshal(raw.([]byte), out)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(context.Background()); err != nil {
			return &TransportError{URL: u, Err: err}
		}
	}

	resp, err := c.get(u)
	if err != nil {
		return &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{URL: u, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: u, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{URL: u, Err: fmt.Errorf("bad JSON: %w", err)}
	}
	if c.memCache != nil {
		c.memCache.Set(u, raw, gocache.DefaultExpiration)
	}
	return nil
}

func (c *Client) doGet(u string) (*http.Response, error) {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	return c.client.Do(req)
}
