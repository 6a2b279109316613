package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryPolicy builds the backoff options shared by every page fetch.
func retryPolicy(pageURL string) []backoff.RetryOption {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.RetryInitialWait
	bo.MaxInterval = 10 * time.Second

	return []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(cfg.RetryMaxTries),
		backoff.WithMaxElapsedTime(30 * time.Second),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Debug("fetch: retrying", slog.String("url", pageURL), slog.Duration("wait", wait), slog.Any("error", err))
		}),
	}
}

// classify marks err permanent unless it is worth another attempt.
func classify(err error) error {
	if isRetryable(err) {
		return err
	}
	return backoff.Permanent(err)
}

// StatusError reports a non-2xx response from the platform.
type StatusError struct {
	StatusCode int
	Body       string // first bytes of the response body, for diagnostics
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// isRetryable returns true for transient errors worth retrying.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return IsRetryableStatus(statusErr.StatusCode)
	}

	// Connection errors (dial failures, connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// net.Error includes OpError, so check after OpError
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// IsRetryableStatus returns true for HTTP status codes worth retrying.
func IsRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
