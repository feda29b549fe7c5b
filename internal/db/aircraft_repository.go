package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/coordinates"
)

// AircraftRepository stores aircraft positions written by the collector and
// reads them back. It implements adsb.DataSource, so the scope can share one
// collector with other clients or use a local receiver instead of an online
// aggregator.
type AircraftRepository struct {
	db     *DB
	maxAge time.Duration
	now    func() time.Time
}

// NewAircraftRepository creates a repository that hides aircraft not seen
// within maxAge (0 = show everything marked visible).
func NewAircraftRepository(db *DB, maxAge time.Duration) *AircraftRepository {
	return &AircraftRepository{
		db:     db,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Name identifies the source in logs.
func (r *AircraftRepository) Name() string {
	return "postgres"
}

// Close closes the underlying database connection.
func (r *AircraftRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// UpsertAircraft inserts or updates an aircraft seen at now and marks it
// visible.
func (r *AircraftRepository) UpsertAircraft(ctx context.Context, ac adsb.Aircraft, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO aircraft (
			icao, callsign, latitude, longitude, altitude_ft,
			ground_speed_kts, track_deg, vertical_rate_fpm,
			last_seen, is_visible
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE
		)
		ON CONFLICT (icao) DO UPDATE SET
			callsign = EXCLUDED.callsign,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			altitude_ft = EXCLUDED.altitude_ft,
			ground_speed_kts = EXCLUDED.ground_speed_kts,
			track_deg = EXCLUDED.track_deg,
			vertical_rate_fpm = EXCLUDED.vertical_rate_fpm,
			last_seen = EXCLUDED.last_seen,
			is_visible = TRUE`,
		ac.ICAO, ac.Callsign,
		ac.Latitude, ac.Longitude, ac.Altitude,
		ac.GroundSpeed, ac.Track, ac.VerticalRate,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert aircraft %s: %w", ac.ICAO, err)
	}
	return nil
}

// cutoff returns the oldest last_seen still shown.
func (r *AircraftRepository) cutoff() time.Time {
	if r.maxAge <= 0 {
		return time.Time{}
	}
	return r.now().UTC().Add(-r.maxAge)
}

// GetAircraft returns visible aircraft within radiusNM of the center point.
// The query narrows by bounding box; the exact range check happens here.
func (r *AircraftRepository) GetAircraft(ctx context.Context, centerLat, centerLon, radiusNM float64) ([]adsb.Aircraft, error) {
	center := coordinates.Geographic{Latitude: centerLat, Longitude: centerLon}
	minLat, minLon, maxLat, maxLon := coordinates.BoundingBox(center, radiusNM)

	rows, err := r.db.QueryContext(ctx,
		`SELECT icao, callsign, latitude, longitude, altitude_ft,
		        ground_speed_kts, track_deg, vertical_rate_fpm, last_seen
		 FROM aircraft
		 WHERE is_visible = TRUE
		   AND latitude BETWEEN $1 AND $2
		   AND longitude BETWEEN $3 AND $4
		   AND last_seen >= $5
		 ORDER BY icao`,
		minLat, maxLat, minLon, maxLon, r.cutoff(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft: %w", err)
	}
	defer rows.Close()

	var aircraft []adsb.Aircraft
	for rows.Next() {
		ac, err := scanAircraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aircraft: %w", err)
		}
		aircraft = append(aircraft, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return withinRange(center, radiusNM, aircraft), nil
}

// rowScanner is satisfied by *sql.Rows and *sql.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAircraft reads one aircraft row. The collector leaves callsign and
// velocity columns NULL until the first message carrying them arrives.
func scanAircraft(row rowScanner) (adsb.Aircraft, error) {
	var (
		ac       adsb.Aircraft
		callsign sql.NullString
		speed    sql.NullFloat64
		track    sql.NullFloat64
		vrate    sql.NullFloat64
	)

	err := row.Scan(
		&ac.ICAO, &callsign,
		&ac.Latitude, &ac.Longitude, &ac.Altitude,
		&speed, &track, &vrate,
		&ac.LastSeen,
	)
	if err != nil {
		return adsb.Aircraft{}, err
	}

	ac.Callsign = strings.TrimSpace(callsign.String)
	ac.GroundSpeed = speed.Float64
	ac.Track = track.Float64
	ac.VerticalRate = vrate.Float64

	return ac, nil
}

// withinRange keeps the aircraft no further than radiusNM from center.
func withinRange(center coordinates.Geographic, radiusNM float64, aircraft []adsb.Aircraft) []adsb.Aircraft {
	result := aircraft[:0]
	for _, ac := range aircraft {
		pos := coordinates.Geographic{Latitude: ac.Latitude, Longitude: ac.Longitude}
		if coordinates.DistanceNauticalMiles(center, pos) <= radiusNM {
			result = append(result, ac)
		}
	}
	return result
}
