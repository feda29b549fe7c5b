package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

func newSimulationScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	screen.SetSize(width, height)
	return screen
}

// TestRadarViewDraw tests that the visible grid lands inside the border.
func TestRadarViewDraw(t *testing.T) {
	s := newUIScope(t, true, nil)
	sweepOnce(t, s)

	screen := newSimulationScreen(t, 60, 30)
	defer screen.Fini()

	rv := NewRadarView(s)
	rv.SetRect(0, 0, 60, 30)
	rv.Draw(screen)

	// The aircraft sits over the reference at grid (20, 10), shifted by the
	// border, and hides the marker
	if r, _, style, _ := screen.GetContent(21, 11); r != scope.TargetGlyph {
		t.Errorf("Expected %q at (21, 11), got %q", scope.TargetGlyph, r)
	} else if fg, _, _ := style.Decompose(); fg != tcell.ColorWhite {
		t.Errorf("Expected white symbol, got %v", fg)
	}

	// Weather one row below the marker: peak 6 faded by 1/4 is very heavy
	r, _, style, _ := screen.GetContent(21, 12)
	if r != scope.WeatherGlyph(scope.IntensityVeryHeavy) {
		t.Errorf("Expected very heavy glyph at (21, 12), got %q", r)
	}
	if fg, _, _ := style.Decompose(); fg != tcell.PaletteColor(226) {
		t.Errorf("Expected palette colour 226, got %v", fg)
	}

	// Title on the first grid row
	var title strings.Builder
	for x := 1; x < 34; x++ {
		r, _, _, _ := screen.GetContent(x, 1)
		title.WriteRune(r)
	}
	if title.String() != "LSZH - Aircraft: 1 | Weather: sta" {
		t.Errorf("Unexpected title %q", title.String())
	}
}

// emptySource reports an empty sky.
type emptySource struct{}

func (emptySource) Aircraft(ctx context.Context) ([]scope.Target, error) {
	return nil, nil
}

// TestRadarViewDrawMarker tests the reference marker with no traffic.
func TestRadarViewDrawMarker(t *testing.T) {
	s, err := scope.New(scope.Options{Reference: zurich, Size: 20, Steps: 360}, emptySource{}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create scope: %v", err)
	}
	sweepOnce(t, s)

	screen := newSimulationScreen(t, 60, 30)
	defer screen.Fini()

	rv := NewRadarView(s)
	rv.SetRect(0, 0, 60, 30)
	rv.Draw(screen)

	if r, _, style, _ := screen.GetContent(21, 11); r != scope.ReferenceGlyph {
		t.Errorf("Expected %q at (21, 11), got %q", scope.ReferenceGlyph, r)
	} else if fg, _, _ := style.Decompose(); fg != tcell.ColorWhite {
		t.Errorf("Expected white symbol, got %v", fg)
	}
}

// TestRadarViewClipsToRect tests drawing into a view smaller than the grid.
func TestRadarViewClipsToRect(t *testing.T) {
	s := newUIScope(t, false, nil)
	sweepOnce(t, s)

	screen := newSimulationScreen(t, 30, 15)
	defer screen.Fini()

	rv := NewRadarView(s)
	rv.SetRect(0, 0, 12, 8)
	rv.Draw(screen)

	// Nothing drawn right of the view
	for y := 0; y < 15; y++ {
		for x := 12; x < 30; x++ {
			if r, _, _, _ := screen.GetContent(x, y); r != ' ' {
				t.Fatalf("Expected blank outside view at (%d, %d), got %q", x, y, r)
			}
		}
	}
}

// TestAppStatus tests the status panel text.
func TestAppStatus(t *testing.T) {
	s := newUIScope(t, true, nil)
	a := NewApp(s, Options{Source: "opensky"}, nil)

	text := a.status.GetText(true)
	for _, want := range []string{"LSZH", "20 nm", "opensky", "never"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q before the first frame, got %q", want, text)
		}
	}

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	a.updateStatus()

	text = a.status.GetText(true)
	if !strings.Contains(text, "1 of 1") {
		t.Errorf("Expected one drawn aircraft, got %q", text)
	}
	if !strings.Contains(text, "step 1 frame 1") || !strings.Contains(text, "1.0°") {
		t.Errorf("Expected sweep position after one frame, got %q", text)
	}
}

// TestAppKeyboard tests key handling.
func TestAppKeyboard(t *testing.T) {
	logs := NewLogManager(10)
	a := NewApp(newUIScope(t, false, nil), Options{}, logs)

	logs.AddLog(LogLevelInfo, "hello")
	if ev := a.handleKeyboard(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone)); ev != nil {
		t.Error("Expected 'c' to be consumed")
	}
	if len(logs.Messages()) != 0 {
		t.Error("Expected logs to be cleared")
	}

	ev := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	if a.handleKeyboard(ev) != ev {
		t.Error("Expected unknown keys to pass through")
	}
}

// TestAppRun tests that the app sweeps until the context is cancelled.
func TestAppRun(t *testing.T) {
	s := newUIScope(t, false, nil)
	a := NewApp(s, Options{FrameInterval: time.Millisecond}, nil)

	// tview initialises the screen itself
	a.tviewApp.SetScreen(tcell.NewSimulationScreen("UTF-8"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for s.Stats().Frames < 5 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected nil on cancel, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if frames := s.Stats().Frames; frames < 5 {
		t.Errorf("Expected at least 5 frames, got %d", frames)
	}
}
