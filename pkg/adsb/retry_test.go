package adsb

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// TestRetryAttempts tests basic retry logic.
func TestRetryAttempts(t *testing.T) {
	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		wantErr      bool
		wantAttempts int
	}{
		{"Success on first attempt", 3, 0, false, 1},
		{"Success after retries", 3, 2, false, 3},
		{"Success on last retry", 3, 3, false, 4},
		{"Max retries exceeded", 3, 10, true, 4},
		{"Zero retries", 0, 10, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			_, err := RetryWithBackoffResult(context.Background(), fastRetryConfig(tt.maxRetries), func() (int, error) {
				attempts++
				if attempts <= tt.failures {
					return 0, errors.New("temporary error")
				}
				return attempts, nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got: %v", tt.wantErr, err)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("Expected %d attempts, got %d", tt.wantAttempts, attempts)
			}
		})
	}
}

// TestRetryContext tests cancellation between attempts.
func TestRetryContext(t *testing.T) {
	t.Run("Already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		_, err := RetryWithBackoffResult(ctx, DefaultRetryConfig(), func() (int, error) {
			attempts++
			return 0, errors.New("error")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled error, got: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("Timeout during backoff", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		cfg := RetryConfig{
			MaxRetries:   10,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		}

		start := time.Now()
		_, err := RetryWithBackoffResult(ctx, cfg, func() (int, error) { return 0, errors.New("error") })
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline exceeded, got: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
			t.Errorf("Expected quick timeout, took %v", elapsed)
		}
	})
}

// TestRetryMaxDelay tests that the delay is capped.
func TestRetryMaxDelay(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   10.0,
	}

	start := time.Now()
	_, err := RetryWithBackoffResult(context.Background(), cfg, func() (int, error) { return 0, errors.New("error") })
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected error")
	}
	// Uncapped: 10 + 100 + 1000 + 10000ms. Capped: 10 + 20 + 20 + 20ms.
	if elapsed > 500*time.Millisecond {
		t.Errorf("Expected max delay cap to limit total time, took %v", elapsed)
	}
}

// TestRetryRespectsRetryAfter tests that a rate limit's Retry-After wins.
func TestRetryRespectsRetryAfter(t *testing.T) {
	cfg := fastRetryConfig(1)
	cfg.RespectRetryAfter = true

	attempts := 0
	start := time.Now()
	_, err := RetryWithBackoffResult(context.Background(), cfg, func() (int, error) {
		attempts++
		if attempts == 1 {
			return 0, &RateLimitError{StatusCode: 429, RetryAfter: 150 * time.Millisecond, Message: "slow down"}
		}
		return attempts, nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Errorf("Expected to wait for Retry-After, waited %v", elapsed)
	}
}

// TestRetryWithBackoffResult tests retry with result return.
func TestRetryWithBackoffResult(t *testing.T) {
	t.Run("Success with result", func(t *testing.T) {
		attempts := 0
		result, err := RetryWithBackoffResult(context.Background(), fastRetryConfig(3), func() (string, error) {
			attempts++
			if attempts < 2 {
				return "", errors.New("temporary error")
			}
			return "connected", nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if result != "connected" {
			t.Errorf("Expected result 'connected', got %s", result)
		}
	})

	t.Run("Failure preserves error", func(t *testing.T) {
		expectedErr := errors.New("specific error message")
		result, err := RetryWithBackoffResult(context.Background(), fastRetryConfig(1), func() (int, error) {
			return 0, expectedErr
		})

		if !errors.Is(err, expectedErr) {
			t.Errorf("Expected error to be preserved, got: %v", err)
		}
		if result != 0 {
			t.Errorf("Expected zero value, got %d", result)
		}
	})
}

// TestDefaultRetryConfig tests default configuration.
func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 3 || cfg.InitialDelay != time.Second || cfg.MaxDelay != 60*time.Second {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.Multiplier != 2.0 || !cfg.RespectRetryAfter {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}
