package adsb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "sweepscope/1.0"
)

// ClientConfig contains settings shared by the HTTP providers.
type ClientConfig struct {
	// BaseURL overrides the provider's default endpoint (used by tests)
	BaseURL string

	// Timeout per request (default 10s)
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests (default 1, burst 1)
	RequestsPerSecond float64

	// Username/Password enable HTTP basic auth where the provider supports it
	Username string
	Password string

	// UserAgent overrides DefaultUserAgent
	UserAgent string
}

// apiClient performs paced GET requests and maps error statuses.
type apiClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	username    string
	password    string
	userAgent   string
}

func newAPIClient(cfg ClientConfig, defaultURL string) *apiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &apiClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		username:    cfg.Username,
		password:    cfg.Password,
		userAgent:   cfg.UserAgent,
	}
}

// get waits for the rate limiter, performs the request and returns the
// response for a 200 status. The caller closes the body.
func (c *apiClient) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft data: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusTooManyRequests:
		defer resp.Body.Close()
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "Rate limit exceeded",
			Headers:    extractRateLimitHeaders(resp.Header),
		}
	default:
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
// Fields are -1 (or zero time) when the header was absent.
type RateLimitHeaders struct {
	Limit     int       // X-Rate-Limit-Limit
	Remaining int       // X-Rate-Limit-Remaining
	Reset     time.Time // X-Rate-Limit-Reset
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError checks if an error is, or wraps, a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value as a delay.
// Supports both delay-seconds and HTTP-date forms; returns 0 when absent or
// already in the past.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}

// headerValue returns the first non-empty header among the dashed and
// undashed spellings providers use (X-Rate-Limit-* and X-RateLimit-*).
func headerValue(headers http.Header, suffix string) string {
	if v := headers.Get("X-Rate-Limit-" + suffix); v != "" {
		return v
	}
	return headers.Get("X-RateLimit-" + suffix)
}

// extractRateLimitHeaders extracts common rate limit headers from a response.
func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{
		Limit:     -1,
		Remaining: -1,
	}

	if val, err := strconv.Atoi(headerValue(headers, "Limit")); err == nil {
		rlh.Limit = val
	}
	if val, err := strconv.Atoi(headerValue(headers, "Remaining")); err == nil {
		rlh.Remaining = val
	}
	if ts, err := strconv.ParseInt(headerValue(headers, "Reset"), 10, 64); err == nil {
		rlh.Reset = time.Unix(ts, 0)
	}

	return rlh
}
