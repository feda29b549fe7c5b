package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

// RadarView is a tview primitive that draws the scope's visible grid cell by
// cell. Cells beyond the inner rectangle are cut off.
type RadarView struct {
	*tview.Box
	scope *scope.Scope
}

// NewRadarView creates a bordered radar view for s.
func NewRadarView(s *scope.Scope) *RadarView {
	rv := &RadarView{
		Box:   tview.NewBox(),
		scope: s,
	}
	rv.SetBorder(true).SetTitle(" Radar ")
	return rv
}

var symbolStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)

// cellStyle returns the tcell style for a composited cell.
func cellStyle(c scope.Cell) tcell.Style {
	switch c.Layer {
	case scope.LayerSymbol:
		return symbolStyle
	case scope.LayerWeather:
		return tcell.StyleDefault.Foreground(tcell.PaletteColor(int(scope.WeatherColor(c.Intensity))))
	default:
		return tcell.StyleDefault
	}
}

// Draw renders the visible grid using tcell
func (rv *RadarView) Draw(screen tcell.Screen) {
	rv.Box.DrawForSubclass(screen, rv)

	x, y, width, height := rv.GetInnerRect()

	rv.scope.View(func(g *scope.Grid) {
		rows := min(height, g.Height())
		cols := min(width, g.Width())

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				c := g.Composite(col, row)
				screen.SetContent(x+col, y+row, c.Rune, nil, cellStyle(c))
			}
		}
	})
}
