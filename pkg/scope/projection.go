package scope

import (
	"math"

	"github.com/unklstewy/sweepscope/pkg/coordinates"
)

// HeaderRows is the number of rows at the top of the grid reserved for the
// title line. Projected positions never land above it.
const HeaderRows = 6

// Reference is the fixed geographic centre of the display.
type Reference struct {
	// Name is shown in the title line (e.g., "LSZH")
	Name string

	// Position is the centre of the projection
	Position coordinates.Geographic

	// RangeNM is the distance from the centre to the left/right edge of the
	// drawable area, in nautical miles
	RangeNM float64
}

// Projection maps geographic positions to grid cells around a Reference.
//
// Projected columns are in half-width units: the renderer doubles them when
// writing into the grid, which keeps symbols on even columns. A projected
// point therefore spans [0, width/2) horizontally and [HeaderRows, height)
// vertically.
type Projection struct {
	ref    Reference
	width  int
	height int
	cosLat float64
}

// NewProjection creates a projection for a grid of the given dimensions.
func NewProjection(ref Reference, width, height int) Projection {
	return Projection{
		ref:    ref,
		width:  width,
		height: height,
		cosLat: math.Cos(ref.Position.Latitude * coordinates.DegreesToRadians),
	}
}

// Reference returns the projection's reference point.
func (p Projection) Reference() Reference {
	return p.ref
}

// Center returns the projected cell of the reference point itself.
func (p Projection) Center() (col, row int) {
	return p.width / 4, p.height / 2
}

// Unclamped returns the projected position without truncation or clamping.
// Used for weather cells, whose centres may lie outside the drawable range.
func (p Projection) Unclamped(lat, lon float64) (col, row float64) {
	xNM, yNM := p.offsetNM(lat, lon)
	cx, cy := p.Center()

	return float64(cx) + xNM*float64(p.width/4)/p.ref.RangeNM,
		float64(cy) - yNM*float64(p.height/2)/p.ref.RangeNM
}

// Project returns the grid cell (in half-width column units) for lat/lon.
// The result is always clamped inside the drawable area; there is no error.
func (p Projection) Project(lat, lon float64) (col, row int) {
	xNM, yNM := p.offsetNM(lat, lon)
	cx, cy := p.Center()

	col = cx + int(xNM*float64(p.width/4)/p.ref.RangeNM)
	row = cy - int(yNM*float64(p.height/2)/p.ref.RangeNM)

	return p.clamp(col, row)
}

// offsetNM returns the east and north offsets from the reference in nautical miles.
func (p Projection) offsetNM(lat, lon float64) (xNM, yNM float64) {
	yNM = (lat - p.ref.Position.Latitude) * coordinates.NauticalMilesPerDegreeLatitude
	xNM = (lon - p.ref.Position.Longitude) * coordinates.NauticalMilesPerDegreeLatitude * p.cosLat
	return xNM, yNM
}

func (p Projection) clamp(col, row int) (int, int) {
	if col < 0 {
		col = 0
	}
	if col >= p.width/2 {
		col = p.width/2 - 1
	}
	if row < HeaderRows {
		row = HeaderRows
	}
	if row >= p.height {
		row = p.height - 1
	}
	return col, row
}
