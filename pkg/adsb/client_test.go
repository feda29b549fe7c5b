package adsb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestParseRetryAfter tests Retry-After header parsing.
func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected time.Duration
	}{
		{"Empty header", "", 0},
		{"Delay seconds", "30", 30 * time.Second},
		{"Zero seconds", "0", 0},
		{"Negative (invalid)", "-10", 0},
		{"HTTP date in the past", "Wed, 21 Oct 2015 07:28:00 GMT", 0},
		{"Invalid string", "invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.header != "" {
				headers.Set("Retry-After", tt.header)
			}
			if result := parseRetryAfter(headers); result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}

	t.Run("HTTP date in the future", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Retry-After", time.Now().Add(2*time.Minute).UTC().Format(http.TimeFormat))
		result := parseRetryAfter(headers)
		if result < time.Minute || result > 2*time.Minute {
			t.Errorf("Expected ~2m, got %v", result)
		}
	})
}

// TestExtractRateLimitHeaders tests rate limit header extraction.
func TestExtractRateLimitHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantLimit     int
		wantRemaining int
		wantReset     time.Time
	}{
		{
			name: "Dashed headers",
			headers: map[string]string{
				"X-Rate-Limit-Limit":     "100",
				"X-Rate-Limit-Remaining": "25",
				"X-Rate-Limit-Reset":     "1609459200",
			},
			wantLimit:     100,
			wantRemaining: 25,
			wantReset:     time.Unix(1609459200, 0),
		},
		{
			name: "Undashed headers",
			headers: map[string]string{
				"X-RateLimit-Limit":     "200",
				"X-RateLimit-Remaining": "50",
			},
			wantLimit:     200,
			wantRemaining: 50,
		},
		{
			name:          "Missing headers",
			headers:       map[string]string{},
			wantLimit:     -1,
			wantRemaining: -1,
		},
		{
			name:          "Garbage values",
			headers:       map[string]string{"X-Rate-Limit-Limit": "lots"},
			wantLimit:     -1,
			wantRemaining: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			for k, v := range tt.headers {
				headers.Set(k, v)
			}

			result := extractRateLimitHeaders(headers)
			if result.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, result.Limit)
			}
			if result.Remaining != tt.wantRemaining {
				t.Errorf("Expected remaining %d, got %d", tt.wantRemaining, result.Remaining)
			}
			if !result.Reset.Equal(tt.wantReset) {
				t.Errorf("Expected reset %v, got %v", tt.wantReset, result.Reset)
			}
		})
	}
}

// TestRateLimitError tests rate limit error formatting and detection.
func TestRateLimitError(t *testing.T) {
	t.Run("Error message with retry after", func(t *testing.T) {
		err := &RateLimitError{StatusCode: 429, RetryAfter: 30 * time.Second, Message: "Rate limit exceeded"}
		if err.Error() != "Rate limit exceeded (retry after 30s)" {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})

	t.Run("Error message without retry after", func(t *testing.T) {
		err := &RateLimitError{StatusCode: 429, Message: "Rate limit exceeded"}
		if err.Error() != "Rate limit exceeded" {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})

	t.Run("Wrapped rate limit error", func(t *testing.T) {
		wrapped := fmt.Errorf("poll failed: %w", &RateLimitError{StatusCode: 429})
		rle, ok := IsRateLimitError(wrapped)
		if !ok {
			t.Fatal("Expected wrapped RateLimitError to be detected")
		}
		if rle.StatusCode != 429 {
			t.Errorf("Expected status 429, got %d", rle.StatusCode)
		}

		if _, ok := IsRateLimitError(fmt.Errorf("normal error")); ok {
			t.Error("Expected false for normal error")
		}
		if _, ok := IsRateLimitError(nil); ok {
			t.Error("Expected false for nil")
		}
	})
}

// TestRequestPacing tests that the limiter spaces consecutive requests.
func TestRequestPacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ac": []}`))
	}))
	defer server.Close()

	client := NewAirplanesLiveClient(ClientConfig{BaseURL: server.URL, RequestsPerSecond: 10})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.GetAircraft(ctx, 47.0, 8.0, 10); err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// Burst of 1: the second and third requests wait ~100ms each
	if elapsed < 150*time.Millisecond {
		t.Errorf("Expected requests to be paced, 3 took %v", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Pacing too slow: %v", elapsed)
	}
}
