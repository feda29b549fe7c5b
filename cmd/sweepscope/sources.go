package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/unklstewy/sweepscope/internal/db"
	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/config"
	"github.com/unklstewy/sweepscope/pkg/scope"
	"github.com/unklstewy/sweepscope/pkg/wx"
)

// reference builds the scope reference point from the configuration.
func reference(cfg config.ReferenceConfig) scope.Reference {
	ref := scope.Reference{
		Name:    cfg.Name,
		RangeNM: cfg.RangeNM,
	}
	ref.Position.Latitude = cfg.Latitude
	ref.Position.Longitude = cfg.Longitude
	return ref
}

// clientConfig converts a configured HTTP source into client settings.
func clientConfig(src config.ADSBSource) adsb.ClientConfig {
	cc := adsb.ClientConfig{
		BaseURL:  src.BaseURL,
		Timeout:  adsb.DefaultTimeout,
		Username: src.Username,
		Password: src.Password,
	}
	if src.RateLimitSeconds > 0 {
		cc.RequestsPerSecond = 1 / src.RateLimitSeconds
	}
	return cc
}

// openAircraftSource creates the data source for src. The database source
// connects with retries; the HTTP sources connect lazily.
func openAircraftSource(ctx context.Context, cfg *config.Config, src config.ADSBSource) (adsb.DataSource, error) {
	switch src.Type {
	case config.SourceOpenSky:
		return adsb.NewOpenSkyClient(clientConfig(src)), nil

	case config.SourceAirplanesLive:
		return adsb.NewAirplanesLiveClient(clientConfig(src)), nil

	case config.SourcePostgres:
		database, err := db.ConnectWithRetry(ctx, cfg.Database, adsb.DefaultRetryConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.InitSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}

		maxAge := cfg.Database.MaxAge()
		if count, err := database.CountVisible(ctx, time.Now().UTC().Add(-maxAge)); err == nil {
			log.Printf("✓ %d aircraft seen in the last %v", count, maxAge)
		}
		return db.NewAircraftRepository(database, maxAge), nil
	}

	return nil, fmt.Errorf("unknown source type %q", src.Type)
}

// labelledWeather is a weather source that names itself in the title line.
type labelledWeather interface {
	scope.WeatherSource
	Label() string
}

// openWeather creates the configured weather source, or nil when weather is
// disabled. Synthetic cells are placed around the reference cell of proj.
func openWeather(cfg config.WeatherConfig, proj scope.Projection) (labelledWeather, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Source {
	case config.WeatherSynthetic:
		col, row := proj.Center()
		return wx.NewSyntheticSource(col, row, cfg.Seed), nil

	case config.WeatherStatic:
		cells := make([]scope.WeatherCell, 0, len(cfg.Cells))
		for _, c := range cfg.Cells {
			cells = append(cells, scope.WeatherCell{
				Latitude:  c.Latitude,
				Longitude: c.Longitude,
				Radius:    c.RadiusRows,
				Peak:      scope.Intensity(c.Peak),
			})
		}
		return wx.NewStaticSource(config.WeatherStatic, cells), nil
	}

	return nil, fmt.Errorf("unknown weather source %q", cfg.Source)
}
