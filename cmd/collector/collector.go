package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/unklstewy/sweepscope/internal/db"
	"github.com/unklstewy/sweepscope/pkg/adsb"
)

var errNoHTTPSource = errors.New("collector needs an enabled opensky or airplanes.live source")

// store is the database side of the collector.
type store interface {
	UpsertAircraft(ctx context.Context, ac adsb.Aircraft, now time.Time) error
	CleanupOldData(ctx context.Context, hideAfter, deleteAfter time.Duration) error
	CountVisible(ctx context.Context, cutoff time.Time) (int, error)
}

// dbStore joins the repository writes with the maintenance queries on DB.
type dbStore struct {
	*db.DB
	repo *db.AircraftRepository
}

func (s *dbStore) UpsertAircraft(ctx context.Context, ac adsb.Aircraft, now time.Time) error {
	return s.repo.UpsertAircraft(ctx, ac, now)
}

// Collector manages the aircraft data collection process.
type Collector struct {
	source adsb.DataSource
	store  store

	latitude  float64
	longitude float64
	radiusNM  float64

	updateInterval time.Duration
	retry          adsb.RetryConfig
	hideAfter      time.Duration
	deleteAfter    time.Duration

	// Statistics
	totalUpdates  int
	totalAircraft int
	totalFailures int
}

// Run performs an update immediately, then on every interval until ctx is
// cancelled. Stale aircraft are hidden every 5 minutes.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.updateInterval)
	defer ticker.Stop()

	// Periodic cleanup (every 5 minutes)
	cleanupTicker := time.NewTicker(5 * time.Minute)
	defer cleanupTicker.Stop()

	// Stats ticker (every 30 seconds)
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	log.Println("Performing initial data fetch...")
	c.update(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.update(ctx)
		case <-cleanupTicker.C:
			c.cleanup(ctx)
		case <-statsTicker.C:
			c.printStats(ctx)
		}
	}
}

// update fetches aircraft around the reference and stores them.
func (c *Collector) update(ctx context.Context) {
	now := time.Now().UTC()
	c.totalUpdates++

	aircraft, err := adsb.RetryWithBackoffResult(ctx, c.retry, func() ([]adsb.Aircraft, error) {
		return c.source.GetAircraft(ctx, c.latitude, c.longitude, c.radiusNM)
	})
	if err != nil {
		c.totalFailures++
		if ctx.Err() == nil {
			log.Printf("✗ Fetch failed after retries: %v (will retry in next update cycle)", err)
		}
		return
	}

	stored := 0
	for _, ac := range aircraft {
		if ac.Latitude == 0 && ac.Longitude == 0 {
			continue // Skip invalid positions
		}
		if err := c.store.UpsertAircraft(ctx, ac, now); err != nil {
			log.Printf("Error storing aircraft %s: %v", ac.ICAO, err)
			continue
		}
		stored++
	}
	c.totalAircraft = stored

	log.Printf("[%s] Update #%d: %d fetched, %d stored",
		now.Format("15:04:05"), c.totalUpdates, len(aircraft), stored)
}

// cleanup hides and then removes aircraft that have left coverage.
func (c *Collector) cleanup(ctx context.Context) {
	if err := c.store.CleanupOldData(ctx, c.hideAfter, c.deleteAfter); err != nil {
		log.Printf("Error during cleanup: %v", err)
		return
	}
	log.Println("✓ Cleanup completed")
}

// printStats logs the visible count and update totals.
func (c *Collector) printStats(ctx context.Context) {
	visible, err := c.store.CountVisible(ctx, time.Now().UTC().Add(-c.hideAfter))
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		return
	}
	log.Printf("📊 Stats: %d visible | %d updates, %d failed",
		visible, c.totalUpdates, c.totalFailures)
}
