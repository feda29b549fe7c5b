// Package adsb provides aircraft position feeds for the scope.
//
// Positions come from online aggregators (airplanes.live, OpenSky Network).
// Each provider converts its own wire format into Aircraft, with altitude in
// feet and speed in knots regardless of what the provider reports.
package adsb

import (
	"context"
	"strings"
	"time"
)

// Aircraft represents an aircraft tracked via ADS-B.
// All position data is in WGS84 coordinate system.
type Aircraft struct {
	// ICAO is the unique 24-bit ICAO aircraft address (e.g., "4b1814")
	ICAO string

	// Callsign is the flight number or aircraft registration
	Callsign string

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64

	// Altitude in feet above mean sea level (MSL)
	Altitude float64

	// GroundSpeed in knots
	GroundSpeed float64

	// Track is the ground track in degrees (0 = North, 90 = East)
	Track float64

	// VerticalRate in feet per minute (positive = climbing)
	VerticalRate float64

	// OnGround is set when the transponder reports a surface position
	OnGround bool

	// LastSeen is the timestamp of the last position update
	LastSeen time.Time
}

// Ident returns the label shown for the aircraft: the trimmed callsign, or
// the ICAO address when no callsign is reported.
func (a Aircraft) Ident() string {
	if cs := strings.TrimSpace(a.Callsign); cs != "" {
		return cs
	}
	return strings.ToUpper(a.ICAO)
}

// DataSource is the interface that all ADS-B data providers must implement.
type DataSource interface {
	// GetAircraft returns all currently tracked aircraft within radiusNM of
	// centerLat/centerLon. Providers that query by bounding box may return
	// aircraft slightly outside the radius; callers filter by distance.
	GetAircraft(ctx context.Context, centerLat, centerLon, radiusNM float64) ([]Aircraft, error)

	// Name identifies the provider in logs and the status line.
	Name() string

	// Close cleanly shuts down the data source connection.
	Close() error
}
