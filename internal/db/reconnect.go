package db

import (
	"context"
	"log"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/config"
)

// ConnectWithRetry connects to the database with exponential backoff. The
// scope only does this at startup; once running, a failed query just skips
// that aircraft update.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, retry adsb.RetryConfig) (*DB, error) {
	attempt := 0
	return adsb.RetryWithBackoffResult(ctx, retry, func() (*DB, error) {
		attempt++
		log.Printf("Database connection attempt %d (%s:%d/%s)...", attempt, cfg.Host, cfg.Port, cfg.Database)

		db, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("✓ Database connected")
		return db, nil
	})
}
