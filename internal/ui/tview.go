package ui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

// App is the tview frontend: radar on the left, status and logs on the right.
type App struct {
	scope *scope.Scope
	opts  Options

	tviewApp *tview.Application
	radar    *RadarView
	status   *tview.TextView
	controls *tview.TextView
	logs     *LogManager
	layout   *tview.Flex
}

// NewApp builds the UI. logs may be shared with the standard logger so log
// lines appear in the panel.
func NewApp(s *scope.Scope, opts Options, logs *LogManager) *App {
	if logs == nil {
		logs = NewLogManager(200)
	}

	a := &App{
		scope:    s,
		opts:     opts,
		tviewApp: tview.NewApplication(),
		radar:    NewRadarView(s),
		logs:     logs,
	}

	a.createStatusPanel()
	a.createControlsPanel()
	a.createLayout()
	a.tviewApp.SetInputCapture(a.handleKeyboard)

	return a
}

func (a *App) createStatusPanel() {
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.status.SetBorder(true).SetTitle(" Status ")
	a.updateStatus()
}

func (a *App) createControlsPanel() {
	a.controls = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.controls.SetBorder(true).SetTitle(" Controls ")

	a.controls.SetText(`[yellow]CONTROL[-]
  [white]c[-]         Clear logs
  [white]q, ESC[-]    Quit`)
}

func (a *App) createLayout() {
	sidebar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.status, 0, 4, false).
		AddItem(a.controls, 4, 0, false).
		AddItem(a.logs.View(), 0, 5, false)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.radar, 0, 7, true).
		AddItem(sidebar, 0, 3, false)

	a.tviewApp.SetRoot(a.layout, true)
}

// updateStatus refreshes the status panel from the scope counters.
func (a *App) updateStatus() {
	st := a.scope.Stats()
	proj := a.scope.Projection()
	ref := proj.Reference()

	text := fmt.Sprintf("[yellow]REFERENCE:[-] [white]%s[-]\n", ref.Name)
	text += fmt.Sprintf("[gray]Pos:[-]   [white]%.4f°, %.4f°[-]\n", ref.Position.Latitude, ref.Position.Longitude)
	text += fmt.Sprintf("[gray]Range:[-] [white]%.0f nm[-]\n\n", ref.RangeNM)

	text += fmt.Sprintf("[yellow]AIRCRAFT:[-] [white]%s[-]\n", a.opts.Source)
	text += fmt.Sprintf("[gray]Drawn:[-]   [white]%d of %d[-]\n", st.Drawn, st.Targets)
	text += fmt.Sprintf("[gray]Updates:[-] [white]%d[-] [gray]Failed:[-] [white]%d[-]\n", st.AircraftUpdates, st.AircraftFailures)
	text += fmt.Sprintf("[gray]Last:[-]    [white]%s[-]\n\n", formatAge(st.LastAircraft))

	text += "[yellow]WEATHER:[-]\n"
	text += fmt.Sprintf("[gray]Updates:[-] [white]%d[-] [gray]Failed:[-] [white]%d[-]\n", st.WeatherUpdates, st.WeatherFailures)
	text += fmt.Sprintf("[gray]Last:[-]    [white]%s[-]\n\n", formatAge(st.LastWeather))

	// Tick advances the sweep under the write lock
	var step int
	var angle float64
	a.scope.View(func(*scope.Grid) {
		sweep := a.scope.Sweep()
		step, angle = sweep.Position(), sweep.Angle()*180/math.Pi
	})
	text += fmt.Sprintf("[yellow]SWEEP:[-] [white]%5.1f°[-] [gray]step[-] [white]%d[-] [gray]frame[-] [white]%d[-]\n", angle, step, st.Frames)

	if a.opts.PollerStatus != nil {
		ps := a.opts.PollerStatus()
		text += fmt.Sprintf("[gray]Polls:[-] [white]%d[-] [gray]errors[-] [white]%d[-]\n", ps.AircraftPolls, ps.AircraftErrors)
		if !ps.NextAircraft.IsZero() {
			text += fmt.Sprintf("[gray]Next:[-]  [white]%s[-]\n", ps.NextAircraft.Format("15:04:05"))
		}
	}

	a.status.SetText(text)
}

// formatAge renders how long ago t was, or "never".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%.0fs ago", time.Since(t).Seconds())
}

// handleKeyboard handles keyboard input
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
		a.tviewApp.Stop()
		return nil
	case event.Rune() == 'c':
		a.logs.Clear()
		return nil
	}
	return event
}

// Run drives the sweep from a background goroutine and runs the tview event
// loop until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- a.sweepLoop(ctx)
	}()

	runErr := a.tviewApp.Run()
	cancel()

	// After a quit from the keyboard the sweep loop may be parked in
	// QueueUpdateDraw with no event loop left to run it
	select {
	case err := <-errc:
		if runErr == nil {
			runErr = err
		}
	case <-time.After(time.Second):
	}
	return runErr
}

// sweepLoop ticks the scope on the frame interval and asks tview to redraw.
func (a *App) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.opts.frameInterval())
	defer ticker.Stop()

	// Refresh the status panel a few times a second, not every frame
	statusEvery := max(1, int(250*time.Millisecond/a.opts.frameInterval()))

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			a.tviewApp.Stop()
			return nil
		case <-ticker.C:
		}

		if err := a.scope.Tick(ctx); err != nil {
			a.tviewApp.Stop()
			return err
		}

		refreshStatus := frame%statusEvery == 0
		a.tviewApp.QueueUpdateDraw(func() {
			if refreshStatus {
				a.updateStatus()
			}
		})
	}
}
