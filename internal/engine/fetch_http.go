package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type fetchResult struct {
	body   string
	status int
}

// FetchPage performs a rate-limited GET over plain net/http and returns the
// response body and status. Non-2xx responses come back as *StatusError
// together with the status code.
func FetchPage(ctx context.Context, pageURL string, headers map[string]string) (body string, status int, err error) {
	return fetchPage(ctx, pageURL, headers, false)
}

// FetchBrowserPage is FetchPage through the Chrome-fingerprinted client when
// one is configured, plain net/http otherwise.
func FetchBrowserPage(ctx context.Context, pageURL string, headers map[string]string) (body string, status int, err error) {
	return fetchPage(ctx, pageURL, headers, true)
}

// useBrowser reports whether a fetch asking for the browser transport gets it.
func useBrowser(browser bool) bool {
	return browser && cfg.BrowserClient != nil
}

func fetchPage(ctx context.Context, pageURL string, headers map[string]string, browser bool) (body string, status int, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	var res fetchResult
	if useBrowser(browser) {
		res, err = fetchViaBrowser(ctx, pageURL, headers)
	} else {
		res, err = fetchViaHTTP(ctx, pageURL, headers)
	}
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", statusErr.StatusCode, err
		}
		return "", 0, err
	}
	return res.body, res.status, nil
}

// waitRateLimit blocks until the outbound limiter admits one request.
func waitRateLimit(ctx context.Context) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// newFetchClient creates an HTTP client with proper settings for page scraping.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// fetchViaHTTP performs the GET with exponential backoff on retryable failures.
func fetchViaHTTP(ctx context.Context, pageURL string, headers map[string]string) (fetchResult, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = newFetchClient()
	}

	operation := func() (fetchResult, error) {
		if err := waitRateLimit(ctx); err != nil {
			return fetchResult{}, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fetchResult{}, backoff.Permanent(err)
		}
		for k, v := range headers {
			// net/http negotiates gzip itself; a manual accept-encoding would also ask for br.
			if strings.EqualFold(k, "accept-encoding") {
				continue
			}
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fetchResult{}, classify(err)
		}
		defer resp.Body.Close()

		data, err := readResponseBody(resp, cfg.MaxBodyBytes)
		if err != nil {
			return fetchResult{}, backoff.Permanent(fmt.Errorf("read body: %w", err))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fetchResult{}, classify(&StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(Truncate(string(data), 200))})
		}
		return fetchResult{body: string(data), status: resp.StatusCode}, nil
	}

	return backoff.Retry(ctx, operation, retryPolicy(pageURL)...)
}

// fetchViaBrowser performs the GET through the Chrome-fingerprinted client.
func fetchViaBrowser(ctx context.Context, pageURL string, headers map[string]string) (fetchResult, error) {
	operation := func() (fetchResult, error) {
		if err := waitRateLimit(ctx); err != nil {
			return fetchResult{}, backoff.Permanent(err)
		}
		data, _, status, err := cfg.BrowserClient.Do(http.MethodGet, pageURL, headers, nil)
		if err != nil {
			return fetchResult{}, classify(fmt.Errorf("browser fetch: %w", err))
		}
		if int64(len(data)) > cfg.MaxBodyBytes {
			data = data[:cfg.MaxBodyBytes]
		}
		if status < 200 || status >= 300 {
			return fetchResult{}, classify(&StatusError{StatusCode: status, Body: strings.TrimSpace(Truncate(string(data), 200))})
		}
		return fetchResult{body: string(data), status: status}, nil
	}

	return backoff.Retry(ctx, operation, retryPolicy(pageURL)...)
}

// readResponseBody reads at most limit bytes of the body, handling gzip if the server forced it.
func readResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" && !resp.Uncompressed {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, limit))
}
