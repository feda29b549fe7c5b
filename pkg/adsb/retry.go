package adsb

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
//
// The display loop never retries a failed poll; its next timer tick is the
// retry. Backoff is for one-shot startup work such as the first database
// connection, and for the collector's fetches.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int

	// InitialDelay is the initial backoff delay (default: 1 second)
	InitialDelay time.Duration

	// MaxDelay is the maximum backoff delay (default: 60 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential)
	Multiplier float64

	// RespectRetryAfter uses the Retry-After of a RateLimitError if present
	RespectRetryAfter bool
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// RetryWithBackoffResult executes fn with exponential backoff and returns its
// result. Rate limit errors use their Retry-After delay when configured to.
//
// Example usage:
//
//	db, err := RetryWithBackoffResult(ctx, DefaultRetryConfig(), func() (*db.DB, error) {
//	    return db.Connect(cfg)
//	})
func RetryWithBackoffResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return result, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}

		result = res
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		// delay = min(InitialDelay * Multiplier^attempt, MaxDelay)
		delay = time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		if rle, ok := IsRateLimitError(err); ok {
			if cfg.RespectRetryAfter && rle.RetryAfter > 0 {
				delay = rle.RetryAfter
			}
			if rle.Headers.Remaining >= 0 {
				log.Printf("Rate limit hit: %d/%d requests remaining, reset at %v",
					rle.Headers.Remaining, rle.Headers.Limit, rle.Headers.Reset)
			}
		}

		log.Printf("Attempt %d/%d failed: %v (retrying in %v)", attempt+1, cfg.MaxRetries+1, err, delay)
	}

	return result, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
