// Package config loads the optional ini-style config file shared by
// the ingest commands. Everything has a compiled-in default, so the
// commands run fine with no file at all; flags override whatever the
// file says.
//
// Example:
//
//	[feed]
//	baseurl = https://api.wikimedia.org/feed/v1/wikipedia
//	useragent = wiki-featured/1.1 (github.com/sukanto-m/wiki-featured)
//	timeout = 30
//	lookback = 7
//	cachedir = .cache
//	ratelimit = 2
//
//	[target "en"]
//	floor = 2016-01-01
package config

import (
	"fmt"
	"time"

	"gopkg.in/gcfg.v1"

	"github.com/sukanto-m/wiki-featured/feed"
)

type FeedConf struct {
	BaseURL   string
	UserAgent string
	// request timeout, seconds
	Timeout int
	// probe window, days
	Lookback int
	// WARC response cache directory ("" disables)
	CacheDir string
	// requests per second (0 disables the cap)
	RateLimit float64
}

// TargetConf is per-language tuning.
type TargetConf struct {
	// earliest date ever fetched for this language, YYYY-MM-DD
	Floor string
}

type Config struct {
	Feed   FeedConf
	Target map[string]*TargetConf
}

// Load reads a config file into defaults. An empty path just returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Feed: FeedConf{
			BaseURL:   feed.DefaultBaseURL,
			UserAgent: feed.DefaultUserAgent,
			Timeout:   30,
			Lookback:  feed.DefaultLookback,
			RateLimit: 2,
		},
	}
	if path == "" {
		return cfg, nil
	}
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, fmt.Errorf("bad config %s: %w", path, err)
	}
	return cfg, nil
}

// Floor returns the configured floor date for a language, "" when the
// config doesn't pin one.
func (cfg *Config) Floor(lang string) string {
	if t, got := cfg.Target[lang]; got && t != nil {
		return t.Floor
	}
	return ""
}

// NewClient builds a feed client configured per the [feed] section.
func (cfg *Config) NewClient(lang string, infoLog feed.Logger) *feed.Client {
	c := feed.NewClient(lang)
	if cfg.Feed.BaseURL != "" {
		c.BaseURL = cfg.Feed.BaseURL
	}
	if cfg.Feed.UserAgent != "" {
		c.UserAgent = cfg.Feed.UserAgent
	}
	c.CacheDir = cfg.Feed.CacheDir
	if infoLog != nil {
		c.InfoLog = infoLog
	}
	if cfg.Feed.Timeout > 0 {
		c.SetTimeout(time.Duration(cfg.Feed.Timeout) * time.Second)
	}
	c.SetRateLimit(cfg.Feed.RateLimit)
	return c
}
