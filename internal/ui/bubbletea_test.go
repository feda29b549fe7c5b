package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

// TestModelFrames tests that frame ticks advance the sweep.
func TestModelFrames(t *testing.T) {
	s := newUIScope(t, true, nil)
	m := NewModel(context.Background(), s, Options{Source: "test", FrameInterval: time.Millisecond})

	if m.Init() == nil {
		t.Fatal("Expected Init to schedule the first frame")
	}

	var model tea.Model = m
	for i := 0; i < s.Sweep().Steps(); i++ {
		var cmd tea.Cmd
		model, cmd = model.Update(frameMsg(time.Now()))
		if cmd == nil {
			t.Fatalf("Frame %d: expected next tick to be scheduled", i)
		}
	}

	if frames := s.Stats().Frames; frames != s.Sweep().Steps() {
		t.Errorf("Expected %d frames, got %d", s.Sweep().Steps(), frames)
	}

	view := model.View()
	if !strings.Contains(view, "LSZH - Aircraft: 1 | Weather: static") {
		t.Errorf("Expected title in view, got %q", view)
	}
	if !strings.Contains(view, "test | frame 360") {
		t.Errorf("Expected status line in view")
	}
	if !strings.Contains(view, "38;5;226m") {
		t.Errorf("Expected very heavy weather colour in view")
	}
}

// TestModelQuit tests the quit keys.
func TestModelQuit(t *testing.T) {
	m := NewModel(context.Background(), newUIScope(t, false, nil), Options{})

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	}
	for _, key := range keys {
		t.Run(key.String(), func(t *testing.T) {
			_, cmd := m.Update(key)
			if cmd == nil {
				t.Fatal("Expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}
		})
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Error("Expected other keys to be ignored")
	}
}

// TestModelPresenterError tests that a failing frame stops the program.
func TestModelPresenterError(t *testing.T) {
	broken := scope.PresenterFunc(func(*scope.Grid) error { return errors.New("broken pipe") })
	m := NewModel(context.Background(), newUIScope(t, false, broken), Options{})

	model, cmd := m.Update(frameMsg(time.Now()))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if model.(Model).Err() == nil {
		t.Error("Expected error to be kept on the model")
	}
}
