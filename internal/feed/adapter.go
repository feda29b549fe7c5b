// Package feed connects aircraft and weather providers to the scope.
package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/coordinates"
	"github.com/unklstewy/sweepscope/pkg/scope"
)

// AircraftAdapter turns an adsb.DataSource into a scope.AircraftSource by
// querying around the reference point and converting the results to targets.
type AircraftAdapter struct {
	source adsb.DataSource
	ref    scope.Reference
}

// NewAircraftAdapter wraps source for the given reference point.
func NewAircraftAdapter(source adsb.DataSource, ref scope.Reference) *AircraftAdapter {
	return &AircraftAdapter{source: source, ref: ref}
}

// Aircraft fetches the aircraft within range of the reference point.
func (a *AircraftAdapter) Aircraft(ctx context.Context) ([]scope.Target, error) {
	pos := a.ref.Position
	aircraft, err := a.source.GetAircraft(ctx, pos.Latitude, pos.Longitude, a.ref.RangeNM)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.source.Name(), err)
	}
	return Targets(a.ref, aircraft), nil
}

// Targets converts aircraft to targets, keeping only those within the
// reference range, closest first.
func Targets(ref scope.Reference, aircraft []adsb.Aircraft) []scope.Target {
	targets := make([]scope.Target, 0, len(aircraft))

	for _, ac := range aircraft {
		pos := coordinates.Geographic{Latitude: ac.Latitude, Longitude: ac.Longitude}
		dist := coordinates.DistanceNauticalMiles(ref.Position, pos)
		if dist > ref.RangeNM {
			continue
		}

		targets = append(targets, scope.Target{
			Ident:      ac.Ident(),
			Latitude:   ac.Latitude,
			Longitude:  ac.Longitude,
			AltitudeFt: ac.Altitude,
			SpeedKts:   ac.GroundSpeed,
			DistanceNM: dist,
			BearingDeg: coordinates.Bearing(ref.Position, pos),
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].DistanceNM < targets[j].DistanceNM
	})

	return targets
}
