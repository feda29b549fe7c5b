package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/sweepscope/internal/db"
	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/config"
)

// Collector continuously fetches aircraft around the reference point and
// stores them in the database. Scopes started with -source postgres read from
// the same table, so several of them share one API budget.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	sourceType := flag.String("source", "", "Aircraft source: opensky or airplanes.live (overrides config)")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  Sweepscope Aircraft Collector")
	log.Println("===========================================")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	src, err := collectorSource(&cfg.ADSB, *sourceType)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	log.Printf("Configuration loaded from: %s", *configPath)
	log.Printf("Reference: %s at %.4f°, %.4f° (%.0f nm)",
		cfg.Reference.Name, cfg.Reference.Latitude, cfg.Reference.Longitude, cfg.Reference.RangeNM)
	log.Printf("Update interval: %d seconds", cfg.ADSB.UpdateIntervalSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	log.Println("Connecting to database...")
	database, err := db.ConnectWithRetry(ctx, cfg.Database, adsb.DefaultRetryConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("✓ Database connected")

	if err := database.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("✓ Database schema initialized")

	client, err := newClient(src)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer client.Close()

	log.Printf("✓ Using ADS-B source: %s", src.Name)
	log.Printf("  Rate limit: %.1f seconds between calls", src.RateLimitSeconds)

	collector := &Collector{
		source:         client,
		store:          &dbStore{DB: database, repo: db.NewAircraftRepository(database, 0)},
		latitude:       cfg.Reference.Latitude,
		longitude:      cfg.Reference.Longitude,
		radiusNM:       cfg.Reference.RangeNM,
		updateInterval: cfg.ADSB.Interval(),
		retry:          collectorRetryConfig(),
		hideAfter:      2 * time.Minute,
		deleteAfter:    time.Hour,
	}

	log.Println("===========================================")
	log.Println("  Collector service started")
	log.Println("  Press Ctrl+C to stop")
	log.Println("===========================================")

	collector.Run(ctx)

	log.Println("Shutting down gracefully...")
	log.Println("✓ Collector service stopped")
}

// collectorSource picks the HTTP source to poll. The database cannot feed
// itself, so a postgres selection is rejected.
func collectorSource(cfg *config.ADSBConfig, override string) (config.ADSBSource, error) {
	if override == "" {
		for _, src := range cfg.Sources {
			if src.Enabled && src.Type != config.SourcePostgres {
				return src, nil
			}
		}
		return config.ADSBSource{}, errNoHTTPSource
	}

	src, err := cfg.ActiveSource(override)
	if err != nil {
		return config.ADSBSource{}, err
	}
	if src.Type == config.SourcePostgres {
		return config.ADSBSource{}, errNoHTTPSource
	}
	return src, nil
}

// newClient creates the HTTP client for src.
func newClient(src config.ADSBSource) (adsb.DataSource, error) {
	cc := adsb.ClientConfig{
		BaseURL:  src.BaseURL,
		Timeout:  adsb.DefaultTimeout,
		Username: src.Username,
		Password: src.Password,
	}
	if src.RateLimitSeconds > 0 {
		cc.RequestsPerSecond = 1 / src.RateLimitSeconds
	}

	switch src.Type {
	case config.SourceOpenSky:
		return adsb.NewOpenSkyClient(cc), nil
	case config.SourceAirplanesLive:
		return adsb.NewAirplanesLiveClient(cc), nil
	}
	return nil, errNoHTTPSource
}

// collectorRetryConfig retries a failed fetch up to four times with delays of
// 2s, 4s, 8s and 16s, or whatever the API asks for.
func collectorRetryConfig() adsb.RetryConfig {
	return adsb.RetryConfig{
		MaxRetries:        4,
		InitialDelay:      2 * time.Second,
		MaxDelay:          32 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}
