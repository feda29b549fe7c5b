package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/unklstewy/sweepscope/pkg/config"
)

// schema is the subset of the collector's schema the scope reads. Creating it
// is a no-op against a populated database and lets the scope start against an
// empty one.
const schema = `
CREATE TABLE IF NOT EXISTS aircraft (
	icao              TEXT PRIMARY KEY,
	callsign          TEXT,
	latitude          DOUBLE PRECISION,
	longitude         DOUBLE PRECISION,
	altitude_ft       DOUBLE PRECISION,
	ground_speed_kts  DOUBLE PRECISION,
	track_deg         DOUBLE PRECISION,
	vertical_rate_fpm DOUBLE PRECISION,
	last_seen         TIMESTAMPTZ NOT NULL,
	is_visible        BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_aircraft_last_seen ON aircraft (last_seen);
`

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// connString builds the lib/pq key/value connection string.
func connString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	sqlDB, err := sql.Open(driver, connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     sqlDB,
		config: cfg,
	}, nil
}

// InitSchema creates the aircraft table if the collector has not.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// CountVisible returns the number of aircraft seen since cutoff.
func (db *DB) CountVisible(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM aircraft WHERE is_visible = TRUE AND last_seen >= $1`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count aircraft: %w", err)
	}
	return count, nil
}

// CleanupOldData hides aircraft not seen within hideAfter and deletes hidden
// aircraft older than deleteAfter.
func (db *DB) CleanupOldData(ctx context.Context, hideAfter, deleteAfter time.Duration) error {
	now := time.Now().UTC()

	// Mark aircraft as not visible if not seen recently
	if _, err := db.ExecContext(ctx,
		`UPDATE aircraft SET is_visible = FALSE WHERE last_seen < $1`,
		now.Add(-hideAfter),
	); err != nil {
		return fmt.Errorf("failed to mark stale aircraft: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM aircraft WHERE last_seen < $1 AND is_visible = FALSE`,
		now.Add(-deleteAfter),
	); err != nil {
		return fmt.Errorf("failed to delete stale aircraft: %w", err)
	}

	return nil
}
