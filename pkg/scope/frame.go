package scope

// Layer identifies which layer a composited cell came from.
type Layer int

const (
	LayerBlank Layer = iota
	LayerSymbol
	LayerWeather
)

// Cell is the composited content of one grid cell, ready to print.
type Cell struct {
	Rune      rune
	Intensity Intensity
	Layer     Layer
}

// Presenter receives one full frame of the visible grid per sweep step.
type Presenter interface {
	Present(g *Grid) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(g *Grid) error

// Present calls f(g).
func (f PresenterFunc) Present(g *Grid) error { return f(g) }

// Composite applies the layering rule for (col, row): a non-blank character
// wins, then any weather, then blank.
func (g *Grid) Composite(col, row int) Cell {
	if r := g.Rune(col, row); r != Blank {
		return Cell{Rune: r, Layer: LayerSymbol}
	}
	if level := g.Intensity(col, row); level != IntensityNone {
		return Cell{Rune: WeatherGlyph(level), Intensity: level, Layer: LayerWeather}
	}
	return Cell{Rune: Blank, Layer: LayerBlank}
}

// weatherGlyphs get denser with intensity.
var weatherGlyphs = [...]rune{
	IntensityNone:      Blank,
	IntensityLight:     '.',
	IntensityModerate:  ':',
	IntensityHeavy:     '░',
	IntensityVeryHeavy: '▒',
	IntensityIntense:   '▓',
	IntensityExtreme:   '█',
}

// weatherColors are xterm-256 palette indices, blue through red as rainfall
// rate increases.
var weatherColors = [...]uint8{
	IntensityNone:      0,
	IntensityLight:     27,  // 0.5-2 mm/h
	IntensityModerate:  51,  // 2-5 mm/h
	IntensityHeavy:     46,  // 5-10 mm/h
	IntensityVeryHeavy: 226, // 10-20 mm/h
	IntensityIntense:   208, // 20-40 mm/h
	IntensityExtreme:   196, // >40 mm/h
}

// WeatherGlyph returns the character drawn for a weather level.
func WeatherGlyph(level Intensity) rune {
	if level > MaxIntensity {
		level = MaxIntensity
	}
	return weatherGlyphs[level]
}

// WeatherColor returns the xterm-256 colour index for a weather level, or 0
// for IntensityNone.
func WeatherColor(level Intensity) uint8 {
	if level > MaxIntensity {
		level = MaxIntensity
	}
	return weatherColors[level]
}
