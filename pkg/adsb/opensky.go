package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/unklstewy/sweepscope/pkg/coordinates"
)

// OpenSkyURL is the OpenSky Network REST API base URL.
const OpenSkyURL = "https://opensky-network.org/api"

// State vector indices in the /states/all response
// https://openskynetwork.github.io/opensky-api/rest.html#all-state-vectors
const (
	stateICAO24       = 0
	stateCallsign     = 1
	stateLastContact  = 4
	stateLongitude    = 5
	stateLatitude     = 6
	stateBaroAltitude = 7
	stateOnGround     = 8
	stateVelocity     = 9
	stateTrack        = 10
	stateVerticalRate = 11
)

// OpenSkyClient implements DataSource for the OpenSky Network API.
// Anonymous access is limited to roughly one request every 10 seconds; set
// Username/Password in ClientConfig for the higher registered quota.
type OpenSkyClient struct {
	*apiClient
}

// NewOpenSkyClient creates a new OpenSky Network API client.
func NewOpenSkyClient(cfg ClientConfig) *OpenSkyClient {
	return &OpenSkyClient{apiClient: newAPIClient(cfg, OpenSkyURL)}
}

// Name implements DataSource.
func (c *OpenSkyClient) Name() string {
	return "opensky"
}

// GetAircraft queries /states/all with the bounding box enclosing radiusNM
// around the centre. Aircraft in the box corners lie outside the radius.
func (c *OpenSkyClient) GetAircraft(ctx context.Context, centerLat, centerLon, radiusNM float64) ([]Aircraft, error) {
	center := coordinates.Geographic{Latitude: centerLat, Longitude: centerLon}
	minLat, minLon, maxLat, maxLon := coordinates.BoundingBox(center, radiusNM)

	url := fmt.Sprintf("%s/states/all?lamin=%.4f&lomin=%.4f&lamax=%.4f&lomax=%.4f",
		c.baseURL, minLat, minLon, maxLat, maxLon)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp openSkyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	aircraft := make([]Aircraft, 0, len(apiResp.States))
	for _, state := range apiResp.States {
		if ac, ok := state.toAircraft(); ok {
			aircraft = append(aircraft, ac)
		}
	}

	return aircraft, nil
}

// Close is a no-op; OpenSky has no persistent connections.
func (c *OpenSkyClient) Close() error {
	return nil
}

// openSkyResponse is the JSON envelope of /states/all. States is null when no
// aircraft are in the box.
type openSkyResponse struct {
	Time   int64          `json:"time"`
	States []openSkyState `json:"states"`
}

// openSkyState is one state vector: a heterogeneous JSON array.
type openSkyState []interface{}

func (s openSkyState) str(i int) (string, bool) {
	if i >= len(s) {
		return "", false
	}
	v, ok := s[i].(string)
	return v, ok
}

func (s openSkyState) num(i int) (float64, bool) {
	if i >= len(s) {
		return 0, false
	}
	v, ok := s[i].(float64)
	return v, ok
}

// toAircraft converts a state vector. Records without a callsign string or
// with a missing latitude, longitude or barometric altitude are dropped.
// OpenSky reports metres and metres per second; Aircraft carries feet and knots.
func (s openSkyState) toAircraft() (Aircraft, bool) {
	callsign, ok := s.str(stateCallsign)
	if !ok {
		return Aircraft{}, false
	}
	lat, okLat := s.num(stateLatitude)
	lon, okLon := s.num(stateLongitude)
	alt, okAlt := s.num(stateBaroAltitude)
	if !okLat || !okLon || !okAlt {
		return Aircraft{}, false
	}

	icao, _ := s.str(stateICAO24)
	velocity, _ := s.num(stateVelocity)
	track, _ := s.num(stateTrack)
	vrate, _ := s.num(stateVerticalRate)

	ac := Aircraft{
		ICAO:         icao,
		Callsign:     strings.TrimRight(callsign, " "),
		Latitude:     lat,
		Longitude:    lon,
		Altitude:     alt * coordinates.MetersToFeet,
		GroundSpeed:  velocity * coordinates.MetersPerSecondToKnots,
		Track:        track,
		VerticalRate: vrate * coordinates.MetersPerSecondToFeetPerMinute,
		LastSeen:     time.Now().UTC(),
	}

	if stateOnGround < len(s) {
		ac.OnGround, _ = s[stateOnGround].(bool)
	}
	if ts, ok := s.num(stateLastContact); ok {
		ac.LastSeen = time.Unix(int64(ts), 0).UTC()
	}

	return ac, true
}
