package engine

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultYouTubeBaseURL is the platform origin used to build search and watch URLs.
const DefaultYouTubeBaseURL = "https://www.youtube.com"

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeBaseURL       string
	ForceJSON            bool // request the script-tag JSON shape (desktop UA) instead of legacy markup
	FetchTimeout         time.Duration
	MaxBodyBytes         int64
	RetryInitialWait     time.Duration
	RetryMaxTries        uint
	RateLimitRPS         float64 // <= 0 disables the outbound limiter
	RateLimitBurst       int
	MaxDescriptionChars  int
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // used by FetchBrowserPage; nil = plain net/http
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, toolutil).
// Always points to the current cfg value.
var Cfg = &cfg

// limiter throttles every outbound page fetch. nil = unlimited.
var limiter *rate.Limiter

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = DefaultYouTubeBaseURL
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 8 * 1024 * 1024
	}
	if c.RetryInitialWait <= 0 {
		c.RetryInitialWait = time.Second
	}
	if c.RetryMaxTries == 0 {
		c.RetryMaxTries = 3
	}
	cfg = c
	Cfg = &cfg

	limiter = nil
	if c.RateLimitRPS > 0 {
		burst := c.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(c.RateLimitRPS), burst)
	}
}
