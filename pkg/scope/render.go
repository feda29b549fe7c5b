package scope

import (
	"fmt"
	"log"
)

// Display filter thresholds. Contacts at or below either one are presumed to
// be on the ground or taxiing and are not drawn.
const (
	MinAltitudeFt = 1800
	MinSpeedKts   = 60
)

// Glyphs drawn on the character layer
const (
	TargetGlyph    = 'X'
	VectorGlyph    = '/'
	ReferenceGlyph = '+'
)

// labelRise is how many rows above the target the label block starts.
const labelRise = 5

// maxIdentLen is the number of identifier characters shown in a label.
const maxIdentLen = 8

// Target is an aircraft ready to be drawn.
type Target struct {
	// Ident is the callsign or, failing that, the ICAO address
	Ident string

	Latitude  float64
	Longitude float64

	// AltitudeFt in feet MSL
	AltitudeFt float64

	// SpeedKts is ground speed in knots
	SpeedKts float64

	// DistanceNM from the reference point
	DistanceNM float64

	// BearingDeg from the reference point (0 = North, 90 = East)
	BearingDeg float64
}

// Visible reports whether the target passes the altitude and speed filter.
// Values are truncated to whole feet and knots before comparing.
func (t Target) Visible() bool {
	return int(t.AltitudeFt) > MinAltitudeFt && int(t.SpeedKts) > MinSpeedKts
}

// Renderer draws targets, the reference marker, the title and weather into a
// staging grid.
type Renderer struct {
	proj Projection

	// WeatherLabel is shown after "Weather:" in the title line
	WeatherLabel string

	// Debug logs every target dropped by the display filter
	Debug bool
}

// NewRenderer creates a renderer for grids of the projection's dimensions.
func NewRenderer(proj Projection, weatherLabel string) *Renderer {
	return &Renderer{
		proj:         proj,
		WeatherLabel: weatherLabel,
	}
}

// Projection returns the renderer's projection.
func (r *Renderer) Projection() Projection {
	return r.proj
}

// RenderTargets draws the title, the reference marker and every visible target
// into g. The caller is expected to have cleared the character layer. Returns
// the number of targets drawn.
func (r *Renderer) RenderTargets(g *Grid, targets []Target) int {
	r.drawTitle(g, len(targets))

	cx, cy := r.proj.Center()
	g.SetRune(cx*2, cy, ReferenceGlyph)

	drawn := 0
	for _, t := range targets {
		if !t.Visible() {
			if r.Debug {
				log.Printf("scope: filtered %s (alt %.0fft, spd %.0fkt, %.1fnm %03.0f°)",
					t.Ident, t.AltitudeFt, t.SpeedKts, t.DistanceNM, t.BearingDeg)
			}
			continue
		}

		col, row := r.proj.Project(t.Latitude, t.Longitude)
		r.drawTarget(g, col, row, t)
		drawn++
	}

	return drawn
}

// drawTitle writes the summary line into row 0.
func (r *Renderer) drawTitle(g *Grid, count int) {
	name := r.proj.Reference().Name
	label := r.WeatherLabel
	if label == "" {
		label = "off"
	}
	g.WriteString(0, 0, fmt.Sprintf("%s - Aircraft: %d | Weather: %s", name, count, label))
}

// drawTarget draws the marker, the vector indicator and the label block for
// a target projected to (col, row) in half-width units.
func (r *Renderer) drawTarget(g *Grid, col, row int, t Target) {
	g.SetRune(col*2, row, TargetGlyph)

	vx := (col + 1) * 2
	g.SetRune(vx, row-1, VectorGlyph)

	top := row - labelRise
	if top < 0 || top >= g.Height() {
		return
	}

	ident := []rune(t.Ident)
	if len(ident) > maxIdentLen {
		ident = ident[:maxIdentLen]
	}

	g.WriteString(vx, top, string(ident))
	g.WriteString(vx, top+1, fmt.Sprintf("Alt:%dft", int(t.AltitudeFt)))
	g.WriteString(vx, top+2, fmt.Sprintf("Spd:%dkt", int(t.SpeedKts)))
	g.WriteString(vx, top+3, fmt.Sprintf("Dst:%.1fnm", t.DistanceNM))
}
