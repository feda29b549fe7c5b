package scope

import (
	"math"
)

// WeatherCell is a circular precipitation cell whose intensity fades linearly
// from Peak at its centre to nothing at Radius.
type WeatherCell struct {
	// Latitude/Longitude locate the centre when Projected is false
	Latitude  float64
	Longitude float64

	// Col/Row locate the centre in projection units (half-width columns)
	// when Projected is true
	Col, Row  int
	Projected bool

	// Radius in grid rows
	Radius float64

	// Peak is the intensity at the centre
	Peak Intensity
}

// center returns the cell centre in projection units.
func (c WeatherCell) center(p Projection) (col, row float64) {
	if c.Projected {
		return float64(c.Col), float64(c.Row)
	}
	return p.Unclamped(c.Latitude, c.Longitude)
}

// RenderWeather max-combines every cell into the weather layer of g. Cells
// never lower an existing value, so applying the same set twice is a no-op.
// Returns the number of grid cells raised.
func (r *Renderer) RenderWeather(g *Grid, cells []WeatherCell) int {
	raised := 0
	for _, c := range cells {
		raised += r.renderCell(g, c)
	}
	return raised
}

func (r *Renderer) renderCell(g *Grid, c WeatherCell) int {
	if c.Radius <= 0 || c.Peak == IntensityNone {
		return 0
	}

	cx, cy := c.center(r.proj)
	raised := 0

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			// The grid is twice as wide as tall, so horizontal distance counts half.
			dx := float64(x) - cx*2
			dy := float64(y) - cy
			distance := math.Sqrt(dx*dx/4.0 + dy*dy)
			if distance >= c.Radius {
				continue
			}

			fade := 1.0 - distance/c.Radius
			level := Intensity(math.Floor(float64(c.Peak) * fade))
			if g.RaiseIntensity(x, y, level) {
				raised++
			}
		}
	}

	return raised
}
