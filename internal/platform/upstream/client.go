// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upstream provides the rate-limited, retrying HTTP client shared by every
third-party catalog integration (PokeAPI, TCGdex, PokeWallet).

Behaviour:

  - Rate limiting: a token bucket per client, waited on before every attempt.
  - Retries: network errors, HTTP 429 and 5xx are retried with exponential backoff.
  - Retry-After: honoured on 429 when present.
  - Errors: non-2xx answers surface as [*StatusError] so callers can tell a
    negative lookup (404) apart from an unreachable upstream.
*/
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/binderdex/internal/platform/constants"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second

	// maxBodyBytes bounds a single upstream payload (card images included).
	maxBodyBytes = 16 << 20
)

// ErrBodyTooLarge is returned when a payload exceeds the client's body limit.
var ErrBodyTooLarge = errors.New("upstream body too large")

// StatusError is returned when the upstream answers with a non-success status.
type StatusError struct {
	Upstream   string
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d for %s", e.Upstream, e.StatusCode, e.URL)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Options configures a [Client].
type Options struct {
	// Name labels errors and logs (e.g. "pokeapi").
	Name    string
	BaseURL string

	// RequestsPerSecond and Burst size the token bucket. Zero means 10 rps, burst 1.
	RequestsPerSecond float64
	Burst             int

	// Header is sent with every request (API keys).
	Header http.Header

	// HTTPClient overrides the default client with a 30s timeout.
	HTTPClient *http.Client

	// InitialBackoff overrides the first retry delay. Tests shrink it.
	InitialBackoff time.Duration

	// MaxBodyBytes overrides the 16 MiB payload limit.
	MaxBodyBytes int64
}

// Client is a small JSON/bytes HTTP client with rate limiting and retry logic.
type Client struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	header      http.Header
	backoff     time.Duration
	maxBody     int64
}

// NewClient creates a new upstream client.
func NewClient(options Options) *Client {
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 1
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	backoff := options.InitialBackoff
	if backoff <= 0 {
		backoff = initialBackoff
	}

	maxBody := options.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = maxBodyBytes
	}

	header := options.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("User-Agent", constants.UpstreamUserAgent)

	return &Client{
		name:        options.Name,
		baseURL:     strings.TrimRight(options.BaseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		header:      header,
		backoff:     backoff,
		maxBody:     maxBody,
	}
}

// Name returns the upstream label.
func (c *Client) Name() string {
	return c.name
}

// URL joins the base URL, an already escaped path and an optional query.
func (c *Client) URL(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// GetJSON fetches path and decodes the JSON body into result.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	body, _, err := c.do(ctx, c.URL(path, query), "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%s: failed to parse JSON response: %w", c.name, err)
	}
	return nil
}

// GetBytes fetches path and returns the raw body with its content type.
func (c *Client) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	return c.do(ctx, c.URL(path, query), "*/*")
}

// do performs a GET request with rate limiting and retry logic.
func (c *Client) do(ctx context.Context, target, accept string) ([]byte, string, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return nil, "", err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("%s: rate limiter: %w", c.name, err)
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, "", fmt.Errorf("%s: failed to create request: %w", c.name, err)
		}
		for key, values := range c.header {
			request.Header[key] = values
		}
		request.Header.Set("Accept", accept)

		response, err := c.httpClient.Do(request)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			lastErr = fmt.Errorf("%s: request failed: %w", c.name, err)
			continue
		}

		// One byte past the limit tells a full payload from a truncated one
		body, readErr := io.ReadAll(io.LimitReader(response.Body, c.maxBody+1))
		_ = response.Body.Close()

		switch {
		case response.StatusCode >= 200 && response.StatusCode < 300:
			if readErr != nil {
				return nil, "", fmt.Errorf("%s: failed to read response body: %w", c.name, readErr)
			}
			if int64(len(body)) > c.maxBody {
				return nil, "", fmt.Errorf("%s: %w: over %d bytes from %s", c.name, ErrBodyTooLarge, c.maxBody, target)
			}
			return body, response.Header.Get("Content-Type"), nil

		case response.StatusCode == http.StatusTooManyRequests:
			lastErr = &StatusError{Upstream: c.name, StatusCode: response.StatusCode, URL: target}
			if wait, ok := retryAfter(response.Header.Get("Retry-After")); ok {
				backoff = wait
			}

		case response.StatusCode >= 500:
			lastErr = &StatusError{Upstream: c.name, StatusCode: response.StatusCode, URL: target}

		default:
			// 4xx other than 429 will not get better by retrying
			return nil, "", &StatusError{Upstream: c.name, StatusCode: response.StatusCode, URL: target}
		}
	}

	return nil, "", lastErr
}

func retryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return min(time.Duration(seconds)*time.Second, maxBackoff), true
}

func sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
