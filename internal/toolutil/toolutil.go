// Package toolutil provides shared helper functions for go_tube MCP tools.
package toolutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	cached, ok := engine.CacheGet(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	var out T
	if err := json.Unmarshal(cached, &out); err != nil {
		slog.Debug("cache: decode failed", slog.String("key", key), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, data)
}

// ForEachParallel runs fn for every input with at most limit calls in flight.
// Results and errors are keyed by input position.
func ForEachParallel[In, Out any](ctx context.Context, inputs []In, limit int, fn func(context.Context, In) (Out, error)) ([]Out, []error) {
	if limit <= 0 {
		limit = 1
	}
	outs := make([]Out, len(inputs))
	errs := make([]error, len(inputs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, in := range inputs {
		wg.Add(1)
		go func(idx int, v In) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			outs[idx], errs[idx] = fn(ctx, v)
		}(i, in)
	}
	wg.Wait()
	return outs, errs
}
