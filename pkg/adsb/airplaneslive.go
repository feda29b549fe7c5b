package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// AirplanesLiveURL is the airplanes.live v2 API base URL
	AirplanesLiveURL = "https://api.airplanes.live/v2"

	// airplanesLiveMaxRadius is the largest radius the /point endpoint accepts
	airplanesLiveMaxRadius = 250.0
)

// AirplanesLiveClient implements DataSource for the airplanes.live API.
// API Documentation: https://airplanes.live/api-guide/
// Rate Limit: 1 request per second
type AirplanesLiveClient struct {
	*apiClient
}

// NewAirplanesLiveClient creates a new airplanes.live API client.
func NewAirplanesLiveClient(cfg ClientConfig) *AirplanesLiveClient {
	return &AirplanesLiveClient{apiClient: newAPIClient(cfg, AirplanesLiveURL)}
}

// Name implements DataSource.
func (c *AirplanesLiveClient) Name() string {
	return "airplanes.live"
}

// GetAircraft returns all aircraft within a radius of a given point, using the
// /point/[lat]/[lon]/[radius] endpoint. The radius is capped at 250 nm.
func (c *AirplanesLiveClient) GetAircraft(ctx context.Context, centerLat, centerLon, radiusNM float64) ([]Aircraft, error) {
	if radiusNM > airplanesLiveMaxRadius {
		radiusNM = airplanesLiveMaxRadius
	}

	url := fmt.Sprintf("%s/point/%.4f/%.4f/%.0f", c.baseURL, centerLat, centerLon, radiusNM)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp airplanesLiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	now := time.Now().UTC()
	aircraft := make([]Aircraft, 0, len(apiResp.Aircraft))
	for _, ac := range apiResp.Aircraft {
		// Skip aircraft without a position
		if ac.Lat == nil || ac.Lon == nil {
			continue
		}
		aircraft = append(aircraft, ac.toAircraft(now))
	}

	return aircraft, nil
}

// Close is a no-op; airplanes.live has no persistent connections.
func (c *AirplanesLiveClient) Close() error {
	return nil
}

// airplanesLiveResponse is the JSON envelope returned by airplanes.live.
type airplanesLiveResponse struct {
	Aircraft []airplanesLiveAircraft `json:"ac"`
	Total    int                     `json:"total"`
	Now      float64                 `json:"now"`
	Messages int                     `json:"messages"`
}

// airplanesLiveAircraft is one aircraft in the response.
// Field documentation: https://airplanes.live/adsb-field-explanations/
type airplanesLiveAircraft struct {
	Hex    string   `json:"hex"`
	Flight *string  `json:"flight"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`

	// AltBaro/AltGeom are feet, or the string "ground"
	AltBaro interface{} `json:"alt_baro"`
	AltGeom interface{} `json:"alt_geom"`

	Gs       *float64 `json:"gs"`
	Track    *float64 `json:"track"`
	BaroRate *float64 `json:"baro_rate"`

	// Seen is seconds since the last message
	Seen *float64 `json:"seen"`
}

// toAircraft converts the response record; now anchors LastSeen.
func (ac airplanesLiveAircraft) toAircraft(now time.Time) Aircraft {
	aircraft := Aircraft{
		ICAO:     ac.Hex,
		LastSeen: now,
	}

	if ac.Flight != nil {
		aircraft.Callsign = *ac.Flight
	}
	if ac.Lat != nil {
		aircraft.Latitude = *ac.Lat
	}
	if ac.Lon != nil {
		aircraft.Longitude = *ac.Lon
	}

	// Prefer geometric (GPS) altitude over barometric
	if alt, ground, ok := parseAltitude(ac.AltGeom); ok {
		aircraft.Altitude, aircraft.OnGround = alt, ground
	} else if alt, ground, ok := parseAltitude(ac.AltBaro); ok {
		aircraft.Altitude, aircraft.OnGround = alt, ground
	}

	if ac.Gs != nil {
		aircraft.GroundSpeed = *ac.Gs
	}
	if ac.Track != nil {
		aircraft.Track = *ac.Track
	}
	if ac.BaroRate != nil {
		aircraft.VerticalRate = *ac.BaroRate
	}
	if ac.Seen != nil {
		aircraft.LastSeen = now.Add(-time.Duration(*ac.Seen * float64(time.Second)))
	}

	return aircraft
}

// parseAltitude extracts an altitude that may be a number or "ground".
func parseAltitude(val interface{}) (alt float64, ground, ok bool) {
	switch v := val.(type) {
	case float64:
		return v, false, true
	case string:
		if v == "ground" {
			return 0, true, true
		}
	}
	return 0, false, false
}
