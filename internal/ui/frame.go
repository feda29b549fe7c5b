// Package ui contains the terminal frontends for the scope: a plain ANSI
// stream, a bubbletea program and a tview application.
package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/unklstewy/sweepscope/internal/feed"
	"github.com/unklstewy/sweepscope/pkg/scope"
)

// Options are shared by all frontends.
type Options struct {
	// FrameInterval is the pause between sweep steps
	FrameInterval time.Duration

	// Source names the aircraft provider in status lines
	Source string

	// PollerStatus reports background poller activity (nil in sync mode)
	PollerStatus func() feed.Status
}

func (o Options) frameInterval() time.Duration {
	if o.FrameInterval <= 0 {
		return scope.DefaultFrameInterval
	}
	return o.FrameInterval
}

// FrameRenderer turns a grid into coloured text. Weather cells get the
// 256-colour palette of their level; characters and blanks are unstyled.
type FrameRenderer struct {
	styles [scope.MaxIntensity + 1]lipgloss.Style
}

// NewFrameRenderer creates a renderer for w. The colour profile is pinned to
// ANSI256 rather than detected.
func NewFrameRenderer(w io.Writer) *FrameRenderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)

	fr := &FrameRenderer{}
	for level := scope.IntensityLight; level <= scope.MaxIntensity; level++ {
		color := strconv.Itoa(int(scope.WeatherColor(level)))
		fr.styles[level] = r.NewStyle().Foreground(lipgloss.Color(color))
	}
	return fr
}

// Render returns the composited grid, one line per row. Runs of cells with
// the same weather level are styled together.
func (fr *FrameRenderer) Render(g *scope.Grid) string {
	var b strings.Builder
	b.Grow(g.Width() * g.Height() * 2)

	var run []rune
	runLevel := scope.IntensityNone

	flush := func() {
		if len(run) == 0 {
			return
		}
		if runLevel == scope.IntensityNone {
			b.WriteString(string(run))
		} else {
			b.WriteString(fr.styles[runLevel].Render(string(run)))
		}
		run = run[:0]
	}

	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			c := g.Composite(col, row)

			level := scope.IntensityNone
			if c.Layer == scope.LayerWeather {
				level = c.Intensity
			}
			if level != runLevel {
				flush()
				runLevel = level
			}
			run = append(run, c.Rune)
		}
		flush()
		if row < g.Height()-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// ANSI presents frames by clearing the terminal and writing the whole frame
// in one write.
type ANSI struct {
	w        io.Writer
	out      *termenv.Output
	renderer *FrameRenderer
	buf      bytes.Buffer
}

// NewANSI creates a presenter writing to w.
func NewANSI(w io.Writer) *ANSI {
	return &ANSI{
		w:        w,
		out:      termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI256)),
		renderer: NewFrameRenderer(w),
	}
}

// Start hides the cursor for the duration of the display.
func (a *ANSI) Start() {
	a.out.HideCursor()
}

// Stop restores the cursor and clears the display.
func (a *ANSI) Stop() {
	a.out.Reset()
	a.out.ClearScreen()
	a.out.ShowCursor()
}

// Present implements scope.Presenter.
func (a *ANSI) Present(g *scope.Grid) error {
	a.buf.Reset()
	fmt.Fprintf(&a.buf, termenv.CSI+termenv.EraseDisplaySeq, 2)
	fmt.Fprintf(&a.buf, termenv.CSI+termenv.CursorPositionSeq, 1, 1)
	a.buf.WriteString(a.renderer.Render(g))
	a.buf.WriteByte('\n')

	_, err := a.w.Write(a.buf.Bytes())
	return err
}

// statusText summarises scope and poller counters on one line.
func statusText(opts Options, st scope.Stats) string {
	text := fmt.Sprintf("%s | frame %d | aircraft %d/%d drawn | updates %d (%d failed) | weather %d (%d failed)",
		opts.Source, st.Frames, st.Drawn, st.Targets,
		st.AircraftUpdates, st.AircraftFailures, st.WeatherUpdates, st.WeatherFailures)

	if opts.PollerStatus != nil {
		ps := opts.PollerStatus()
		text += fmt.Sprintf(" | polls %d (%d errors)", ps.AircraftPolls, ps.AircraftErrors)
		if ps.LastError != "" {
			text += " | last error: " + ps.LastError
		}
	}
	return text
}
