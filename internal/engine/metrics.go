package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests  atomic.Int64
	PageRequests    atomic.Int64
	FetchRequests   atomic.Int64
	FetchErrors     atomic.Int64
	JSONResponses   atomic.Int64
	MarkupResponses atomic.Int64
	ParseErrors     atomic.Int64
	SchemaDrift     atomic.Int64
	RowsSkipped     atomic.Int64
}

var metricKeys = []string{
	"search_requests", "page_requests",
	"fetch_requests", "fetch_errors",
	"json_responses", "markup_responses",
	"parse_errors", "schema_drift", "rows_skipped",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":  metrics.SearchRequests.Load(),
		"page_requests":    metrics.PageRequests.Load(),
		"fetch_requests":   metrics.FetchRequests.Load(),
		"fetch_errors":     metrics.FetchErrors.Load(),
		"json_responses":   metrics.JSONResponses.Load(),
		"markup_responses": metrics.MarkupResponses.Load(),
		"parse_errors":     metrics.ParseErrors.Load(),
		"schema_drift":     metrics.SchemaDrift.Load(),
		"rows_skipped":     metrics.RowsSkipped.Load(),
		"cache_hits":       hits,
		"cache_misses":     misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources/ sub-package.
func IncrSearchRequests()  { metrics.SearchRequests.Add(1) }
func IncrPageRequests()    { metrics.PageRequests.Add(1) }
func IncrJSONResponses()   { metrics.JSONResponses.Add(1) }
func IncrMarkupResponses() { metrics.MarkupResponses.Add(1) }
func IncrParseErrors()     { metrics.ParseErrors.Add(1) }
func IncrSchemaDrift()     { metrics.SchemaDrift.Add(1) }
func AddRowsSkipped(n int) { metrics.RowsSkipped.Add(int64(n)) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
