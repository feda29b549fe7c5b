package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Source types
const (
	SourceAirplanesLive = "airplanes.live"
	SourceOpenSky       = "opensky"
	SourcePostgres      = "postgres"
)

// Weather source types
const (
	WeatherSynthetic = "synthetic"
	WeatherStatic    = "static"
)

// Frontends
const (
	UIANSI      = "ansi"
	UIBubbletea = "bubbletea"
	UITview     = "tview"
)

// Config represents the complete application configuration.
type Config struct {
	Reference ReferenceConfig `json:"reference"`
	Display   DisplayConfig   `json:"display"`
	ADSB      ADSBConfig      `json:"adsb"`
	Weather   WeatherConfig   `json:"weather"`
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
}

// ReferenceConfig is the fixed centre of the display.
type ReferenceConfig struct {
	// Name is shown in the title line (e.g., "LSZH")
	Name string `json:"name"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`

	// Elevation in meters above sea level
	Elevation float64 `json:"elevation"`

	// RangeNM is the distance from the centre to the edge of the scope
	RangeNM float64 `json:"range_nm"`
}

// DisplayConfig controls the grid and the animation.
type DisplayConfig struct {
	// UI selects the frontend: "ansi", "bubbletea" or "tview"
	UI string `json:"ui"`

	// Size is the grid height in rows; the width is twice this
	Size int `json:"size"`

	// SweepSteps is the number of sweep steps per rotation (720 = 0.5°)
	SweepSteps int `json:"sweep_steps"`

	// FrameIntervalMS is the pause after each sweep step
	FrameIntervalMS int `json:"frame_interval_ms"`

	// Debug logs every target dropped by the altitude/speed filter
	Debug bool `json:"debug"`
}

// ADSBConfig contains aircraft data source configuration.
type ADSBConfig struct {
	// Sources is a list of configured aircraft sources. The first enabled one
	// is used unless the command line picks another.
	Sources []ADSBSource `json:"sources"`

	// UpdateIntervalSeconds is how often to refresh aircraft data
	UpdateIntervalSeconds int `json:"update_interval_seconds"`
}

// ADSBSource represents a single aircraft source configuration.
type ADSBSource struct {
	// Name is a friendly name for this source
	Name string `json:"name"`

	// Type is the source type: "airplanes.live", "opensky" or "postgres"
	Type string `json:"type"`

	// Enabled determines if this source should be used
	Enabled bool `json:"enabled"`

	// BaseURL is the API base URL for online sources
	BaseURL string `json:"base_url,omitempty"`

	// Username/Password for sources with registered accounts (OpenSky)
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// RateLimitSeconds is the minimum time between API calls in seconds
	RateLimitSeconds float64 `json:"rate_limit_seconds"`
}

// WeatherConfig controls the weather layer.
type WeatherConfig struct {
	// Enabled turns the weather layer on; when off the title reads "Weather: off"
	Enabled bool `json:"enabled"`

	// Source is "synthetic" or "static"
	Source string `json:"source"`

	// UpdateIntervalSeconds is how often to refresh weather
	UpdateIntervalSeconds int `json:"update_interval_seconds"`

	// Replace clears earlier weather when a new set arrives instead of
	// max-combining into it
	Replace bool `json:"replace"`

	// Seed fixes the synthetic generator (0 = random)
	Seed uint64 `json:"seed,omitempty"`

	// Cells are replayed by the static source
	Cells []WeatherCellConfig `json:"cells,omitempty"`
}

// WeatherCellConfig is one configured precipitation cell.
type WeatherCellConfig struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// RadiusRows is the cell radius in grid rows
	RadiusRows float64 `json:"radius_rows"`

	// Peak is the intensity at the centre, 1-6
	Peak int `json:"peak"`
}

// DatabaseConfig contains database connection settings for the postgres
// aircraft source.
type DatabaseConfig struct {
	// Driver is the database driver (postgres)
	Driver string `json:"driver"`

	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`

	// MaxAgeSeconds hides aircraft not seen for this long
	MaxAgeSeconds int `json:"max_age_seconds"`
}

// LoggingConfig controls the rotating log file. The terminal is the display,
// so log output never goes to stdout.
type LoggingConfig struct {
	// File is the log file path ("" disables logging)
	File string `json:"file"`

	// MaxSizeMB rotates the file after this many megabytes
	MaxSizeMB int `json:"max_size_mb"`

	// MaxBackups is the number of rotated files kept
	MaxBackups int `json:"max_backups"`

	// MaxAgeDays removes rotated files older than this
	MaxAgeDays int `json:"max_age_days"`

	// Compress gzips rotated files
	Compress bool `json:"compress"`
}

// Load reads configuration from a JSON file on top of the defaults.
// If the file doesn't exist, returns the default configuration. Environment
// overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration centred on Zurich airport.
func DefaultConfig() *Config {
	return &Config{
		Reference: ReferenceConfig{
			Name:      "LSZH",
			Latitude:  47.458056,
			Longitude: 8.548056,
			Elevation: 432,
			RangeNM:   20.0,
		},
		Display: DisplayConfig{
			UI:              UIANSI,
			Size:            120,
			SweepSteps:      720,
			FrameIntervalMS: 7,
		},
		ADSB: ADSBConfig{
			Sources: []ADSBSource{
				{
					Name:             "OpenSky Network",
					Type:             SourceOpenSky,
					Enabled:          true,
					BaseURL:          "https://opensky-network.org/api",
					RateLimitSeconds: 10.0,
				},
				{
					Name:             "airplanes.live",
					Type:             SourceAirplanesLive,
					Enabled:          false,
					BaseURL:          "https://api.airplanes.live/v2",
					RateLimitSeconds: 1.0,
				},
				{
					Name:    "Local collector database",
					Type:    SourcePostgres,
					Enabled: false,
				},
			},
			UpdateIntervalSeconds: 10,
		},
		Weather: WeatherConfig{
			Enabled:               true,
			Source:                WeatherSynthetic,
			UpdateIntervalSeconds: 60,
		},
		Database: DatabaseConfig{
			Driver:        "postgres",
			Host:          "localhost",
			Port:          5432,
			Database:      "adsbscope",
			Username:      "adsbscope",
			SSLMode:       "disable",
			MaxOpenConns:  5,
			MaxIdleConns:  2,
			MaxAgeSeconds: 60,
		},
		Logging: LoggingConfig{
			File:       "sweepscope.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate checks values that would make the scope unusable.
func (c *Config) Validate() error {
	if c.Reference.Latitude < -90 || c.Reference.Latitude > 90 {
		return fmt.Errorf("reference latitude %.4f out of range", c.Reference.Latitude)
	}
	if c.Reference.Longitude < -180 || c.Reference.Longitude > 180 {
		return fmt.Errorf("reference longitude %.4f out of range", c.Reference.Longitude)
	}
	if c.Reference.RangeNM <= 0 {
		return fmt.Errorf("range must be positive, got %.1f nm", c.Reference.RangeNM)
	}
	if c.Display.Size <= 0 {
		return fmt.Errorf("display size must be positive, got %d", c.Display.Size)
	}

	switch c.Display.UI {
	case UIANSI, UIBubbletea, UITview:
	default:
		return fmt.Errorf("unknown ui %q (want %s, %s or %s)", c.Display.UI, UIANSI, UIBubbletea, UITview)
	}

	for _, src := range c.ADSB.Sources {
		if !knownSource(src.Type) {
			return fmt.Errorf("source %q: unknown type %q", src.Name, src.Type)
		}
	}

	if c.Weather.Enabled {
		switch c.Weather.Source {
		case WeatherSynthetic, WeatherStatic:
		default:
			return fmt.Errorf("unknown weather source %q", c.Weather.Source)
		}
		for i, cell := range c.Weather.Cells {
			if cell.Peak < 0 || cell.Peak > 6 {
				return fmt.Errorf("weather cell %d: peak %d out of range 0-6", i, cell.Peak)
			}
		}
	}

	return nil
}

func knownSource(t string) bool {
	switch t {
	case SourceAirplanesLive, SourceOpenSky, SourcePostgres:
		return true
	}
	return false
}

// ActiveSource returns the aircraft source to use. A non-empty sourceType
// selects the configured source of that type, or a default one if none is
// configured; otherwise the first enabled source is returned.
func (cfg *ADSBConfig) ActiveSource(sourceType string) (ADSBSource, error) {
	if sourceType != "" {
		if !knownSource(sourceType) {
			return ADSBSource{}, fmt.Errorf("unknown source type %q", sourceType)
		}
		for _, src := range cfg.Sources {
			if src.Type == sourceType {
				src.Enabled = true
				return src, nil
			}
		}
		return ADSBSource{Name: sourceType, Type: sourceType, Enabled: true}, nil
	}

	for _, src := range cfg.Sources {
		if src.Enabled {
			return src, nil
		}
	}
	return ADSBSource{}, errors.New("no aircraft source enabled")
}

// FrameInterval returns the pause between sweep steps.
func (c *DisplayConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// Interval returns the aircraft refresh period.
func (cfg *ADSBConfig) Interval() time.Duration {
	return time.Duration(cfg.UpdateIntervalSeconds) * time.Second
}

// Interval returns the weather refresh period.
func (cfg *WeatherConfig) Interval() time.Duration {
	return time.Duration(cfg.UpdateIntervalSeconds) * time.Second
}

// MaxAge returns how long a database row stays visible.
func (cfg *DatabaseConfig) MaxAge() time.Duration {
	return time.Duration(cfg.MaxAgeSeconds) * time.Second
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if dbPassword := os.Getenv("SWEEPSCOPE_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if ui := os.Getenv("SWEEPSCOPE_UI"); ui != "" {
		c.Display.UI = ui
	}
	if logFile, ok := os.LookupEnv("SWEEPSCOPE_LOG_FILE"); ok {
		c.Logging.File = logFile
	}

	// Credentials and endpoint apply to every HTTP source of the matching type
	username := os.Getenv("SWEEPSCOPE_OPENSKY_USERNAME")
	password := os.Getenv("SWEEPSCOPE_OPENSKY_PASSWORD")
	baseURL := os.Getenv("SWEEPSCOPE_ADSB_BASE_URL")
	for i := range c.ADSB.Sources {
		src := &c.ADSB.Sources[i]
		if src.Type == SourceOpenSky && username != "" {
			src.Username = username
			src.Password = password
		}
		if baseURL != "" && src.Type != SourcePostgres {
			src.BaseURL = baseURL
		}
	}

	// SWEEPSCOPE_SOURCE enables exactly one source type
	if sourceType := os.Getenv("SWEEPSCOPE_SOURCE"); sourceType != "" {
		for i := range c.ADSB.Sources {
			c.ADSB.Sources[i].Enabled = c.ADSB.Sources[i].Type == sourceType
		}
	}
}
