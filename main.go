// go_tube — YouTube video metadata MCP server.
//
// Exposes three MCP tools: video_search, video_page, video_pages.
// Each extracts from either response shape YouTube serves: the script-tag
// embedded JSON payload or the server-rendered markup page.
package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/tubeserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_tube",
		slog.String("port", mcpPort),
		slog.Bool("force_json", engine.Cfg.ForceJSON),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	tubeserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", tubeserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeBaseURL:       env.Str("YOUTUBE_BASE_URL", engine.DefaultYouTubeBaseURL),
		ForceJSON:            envBool("FORCE_JSON", false),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 20*time.Second),
		MaxBodyBytes:         int64(env.Int("MAX_BODY_BYTES", 8*1024*1024)),
		RetryInitialWait:     env.Duration("RETRY_INITIAL_WAIT", time.Second),
		RetryMaxTries:        uint(max(env.Int("RETRY_MAX_TRIES", 3), 1)),
		RateLimitRPS:         env.Float("RATE_LIMIT_RPS", 2),
		RateLimitBurst:       env.Int("RATE_LIMIT_BURST", 4),
		MaxDescriptionChars:  env.Int("MAX_DESCRIPTION_CHARS", 5000),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	// JSON-shape fetches go through the Chrome-fingerprinted client; markup fetches stay on net/http.
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// envBool reads a boolean env var; unparsable values fall back to def.
func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
