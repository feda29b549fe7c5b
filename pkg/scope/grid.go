// Package scope implements the sweep-compositing radar display engine.
//
// A Grid is a character buffer twice as wide as it is tall, so that circles
// drawn on a terminal with cells roughly twice as tall as wide look round. The
// engine keeps two grids: a staging grid that renderers rebuild whenever new
// aircraft or weather data arrives, and a visible grid that a rotating sweep
// fills in one angular slice per frame. The visible grid is what reaches the
// terminal.
package scope

import (
	"fmt"
)

// Blank is the empty character-layer value.
const Blank = ' '

// Intensity is a weather intensity ordinal, 0 (none) through 6 (extreme).
type Intensity uint8

// Weather intensity levels
const (
	IntensityNone Intensity = iota
	IntensityLight
	IntensityModerate
	IntensityHeavy
	IntensityVeryHeavy
	IntensityIntense
	IntensityExtreme
)

// MaxIntensity is the strongest representable weather level.
const MaxIntensity = IntensityExtreme

// String returns a human-readable intensity name.
func (i Intensity) String() string {
	switch i {
	case IntensityNone:
		return "none"
	case IntensityLight:
		return "light"
	case IntensityModerate:
		return "moderate"
	case IntensityHeavy:
		return "heavy"
	case IntensityVeryHeavy:
		return "very heavy"
	case IntensityIntense:
		return "intense"
	case IntensityExtreme:
		return "extreme"
	default:
		return fmt.Sprintf("intensity(%d)", uint8(i))
	}
}

// Grid is a rectangular character-and-intensity buffer.
// Width is always twice Height. Every accessor is bounds-checked: reads outside
// the grid return Blank/IntensityNone and writes outside it are dropped.
type Grid struct {
	width  int
	height int

	runes   []rune
	weather []Intensity
}

// NewGrid allocates a grid with size rows and 2*size columns, all cells blank.
func NewGrid(size int) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid grid size %d", size)
	}

	g := &Grid{
		width:   size * 2,
		height:  size,
		runes:   make([]rune, size*size*2),
		weather: make([]Intensity, size*size*2),
	}
	g.Clear()

	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (col, row) addresses a cell of the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.width && row >= 0 && row < g.height
}

func (g *Grid) index(col, row int) int {
	return row*g.width + col
}

// Clear resets both layers of every cell.
func (g *Grid) Clear() {
	g.ClearSymbols()
	g.ClearWeather()
}

// ClearSymbols resets the character layer and leaves weather untouched.
func (g *Grid) ClearSymbols() {
	for i := range g.runes {
		g.runes[i] = Blank
	}
}

// ClearWeather resets the weather layer and leaves characters untouched.
func (g *Grid) ClearWeather() {
	for i := range g.weather {
		g.weather[i] = IntensityNone
	}
}

// Rune returns the character at (col, row).
func (g *Grid) Rune(col, row int) rune {
	if !g.InBounds(col, row) {
		return Blank
	}
	return g.runes[g.index(col, row)]
}

// SetRune writes a character at (col, row).
func (g *Grid) SetRune(col, row int, r rune) {
	if !g.InBounds(col, row) {
		return
	}
	g.runes[g.index(col, row)] = r
}

// WriteString writes s left to right starting at (col, row), clipped at the
// right edge. Returns the number of characters written.
func (g *Grid) WriteString(col, row int, s string) int {
	if row < 0 || row >= g.height {
		return 0
	}

	written := 0
	x := col
	for _, r := range s {
		if x >= g.width {
			break
		}
		if x >= 0 {
			g.runes[g.index(x, row)] = r
			written++
		}
		x++
	}
	return written
}

// Intensity returns the weather level at (col, row).
func (g *Grid) Intensity(col, row int) Intensity {
	if !g.InBounds(col, row) {
		return IntensityNone
	}
	return g.weather[g.index(col, row)]
}

// SetIntensity overwrites the weather level at (col, row). The renderer only
// raises levels; this is for building fixtures in frontend and scope tests.
func (g *Grid) SetIntensity(col, row int, level Intensity) {
	if !g.InBounds(col, row) {
		return
	}
	if level > MaxIntensity {
		level = MaxIntensity
	}
	g.weather[g.index(col, row)] = level
}

// RaiseIntensity writes level at (col, row) only when it exceeds the current
// value. Overlapping weather combines by maximum, never by sum.
func (g *Grid) RaiseIntensity(col, row int, level Intensity) bool {
	if !g.InBounds(col, row) {
		return false
	}
	if level > MaxIntensity {
		level = MaxIntensity
	}
	i := g.index(col, row)
	if level <= g.weather[i] {
		return false
	}
	g.weather[i] = level
	return true
}

// CopyCell copies both layers of (col, row) from src into g. Both grids must
// have the same dimensions; cells outside either grid are ignored.
func (g *Grid) CopyCell(src *Grid, col, row int) {
	if !g.InBounds(col, row) || !src.InBounds(col, row) {
		return
	}
	i := g.index(col, row)
	j := src.index(col, row)
	g.runes[i] = src.runes[j]
	g.weather[i] = src.weather[j]
}

// Equal reports whether both grids have the same dimensions and contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.runes {
		if g.runes[i] != other.runes[i] || g.weather[i] != other.weather[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		width:   g.width,
		height:  g.height,
		runes:   make([]rune, len(g.runes)),
		weather: make([]Intensity, len(g.weather)),
	}
	copy(c.runes, g.runes)
	copy(c.weather, g.weather)
	return c
}

// Row returns the character layer of one row as a string, for status output
// and tests.
func (g *Grid) Row(row int) string {
	if row < 0 || row >= g.height {
		return ""
	}
	start := g.index(0, row)
	return string(g.runes[start : start+g.width])
}
