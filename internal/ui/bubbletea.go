package ui

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

type frameMsg time.Time

func frameTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Model is a bubbletea model that advances the sweep on every frame tick and
// renders the visible grid.
type Model struct {
	ctx      context.Context
	scope    *scope.Scope
	opts     Options
	renderer *FrameRenderer
	err      error
}

// NewModel creates the bubbletea model. The scope must have no presenter;
// frames are pulled through View.
func NewModel(ctx context.Context, s *scope.Scope, opts Options) Model {
	return Model{
		ctx:      ctx,
		scope:    s,
		opts:     opts,
		renderer: NewFrameRenderer(os.Stdout),
	}
}

func (m Model) Init() tea.Cmd {
	return frameTick(m.opts.frameInterval())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case frameMsg:
		if err := m.scope.Tick(m.ctx); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, frameTick(m.opts.frameInterval())
	}

	return m, nil
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

func (m Model) View() string {
	var s strings.Builder

	m.scope.View(func(g *scope.Grid) {
		s.WriteString(m.renderer.Render(g))
	})
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(statusText(m.opts, m.scope.Stats()) + " | q quit"))

	return s.String()
}

// Err returns the error that stopped the model, if any.
func (m Model) Err() error {
	return m.err
}

// RunBubbletea runs the model full screen until the user quits or ctx is
// cancelled.
func RunBubbletea(ctx context.Context, s *scope.Scope, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, s, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
