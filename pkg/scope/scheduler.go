package scope

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrNoUpdate is returned by a source that has nothing new since the last
// call. The scope keeps its current data and does not log it as a failure.
var ErrNoUpdate = errors.New("no update available")

// AircraftSource supplies the targets within range of the reference point.
type AircraftSource interface {
	Aircraft(ctx context.Context) ([]Target, error)
}

// WeatherSource supplies the current set of weather cells.
type WeatherSource interface {
	Weather(ctx context.Context) ([]WeatherCell, error)
}

// Default timings
const (
	DefaultFrameInterval    = 7 * time.Millisecond
	DefaultAircraftInterval = 10 * time.Second
	DefaultWeatherInterval  = 60 * time.Second
)

// Options configures a Scope.
type Options struct {
	Reference Reference

	// Size is the grid height; the width is twice this
	Size int

	// Steps is the number of sweep steps per rotation
	Steps int

	// FrameInterval is the pause after each sweep step
	FrameInterval time.Duration

	// AircraftInterval and WeatherInterval pace the sources. Zero polls on
	// every frame, which suits sources that never block.
	AircraftInterval time.Duration
	WeatherInterval  time.Duration

	// ReplaceWeather clears the weather layer before drawing a new set. By
	// default new sets are max-combined into the existing layer, so a refresh
	// never lowers an intensity.
	ReplaceWeather bool

	// WeatherLabel names the weather source in the title line
	WeatherLabel string

	// Debug enables logging of filtered targets
	Debug bool
}

// Stats counts scheduler activity.
type Stats struct {
	Frames           int
	AircraftUpdates  int
	AircraftFailures int
	WeatherUpdates   int
	WeatherFailures  int
	Targets          int
	Drawn            int
	LastAircraft     time.Time
	LastWeather      time.Time
}

// Scope owns the staging and visible grids and drives the sweep.
type Scope struct {
	opts Options

	aircraft  AircraftSource
	weather   WeatherSource
	presenter Presenter

	renderer *Renderer
	sweep    *Sweep

	// staging is only touched by the goroutine calling Tick
	staging *Grid

	// mu guards visible and stats against readers on other goroutines
	mu      sync.RWMutex
	visible *Grid
	stats   Stats

	nextAircraft time.Time
	nextWeather  time.Time

	now func() time.Time
}

// New creates a scope. weather may be nil for an aircraft-only display and
// presenter may be nil when a frontend pulls frames through View.
func New(opts Options, aircraft AircraftSource, weather WeatherSource, presenter Presenter) (*Scope, error) {
	if aircraft == nil {
		return nil, errors.New("aircraft source is required")
	}
	if opts.Reference.RangeNM <= 0 {
		return nil, fmt.Errorf("invalid range %.1f nm", opts.Reference.RangeNM)
	}

	staging, err := NewGrid(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate staging grid: %w", err)
	}
	visible, err := NewGrid(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate visible grid: %w", err)
	}

	if weather == nil {
		opts.WeatherLabel = ""
	}

	proj := NewProjection(opts.Reference, staging.Width(), staging.Height())
	renderer := NewRenderer(proj, opts.WeatherLabel)
	renderer.Debug = opts.Debug

	return &Scope{
		opts:      opts,
		aircraft:  aircraft,
		weather:   weather,
		presenter: presenter,
		renderer:  renderer,
		sweep:     NewSweep(staging.Width(), staging.Height(), opts.Steps),
		staging:   staging,
		visible:   visible,
		now:       time.Now,
	}, nil
}

// Projection returns the projection used for targets and weather.
func (s *Scope) Projection() Projection {
	return s.renderer.Projection()
}

// Sweep returns the sweep state.
func (s *Scope) Sweep() *Sweep {
	return s.sweep
}

// Staging returns the staging grid. It must only be used from the goroutine
// calling Tick.
func (s *Scope) Staging() *Grid {
	return s.staging
}

// View calls fn with the visible grid under a read lock. fn must not retain g.
func (s *Scope) View(fn func(g *Grid)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.visible)
}

// Stats returns a copy of the current counters.
func (s *Scope) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Poll refreshes the staging grid from whichever sources are due at now.
// A failed aircraft fetch leaves the staging grid exactly as it was.
func (s *Scope) Poll(ctx context.Context, now time.Time) {
	if s.weather != nil && !now.Before(s.nextWeather) {
		s.pollWeather(ctx, now)
		s.nextWeather = now.Add(s.opts.WeatherInterval)
	}

	if !now.Before(s.nextAircraft) {
		s.pollAircraft(ctx, now)
		s.nextAircraft = now.Add(s.opts.AircraftInterval)
	}
}

func (s *Scope) pollWeather(ctx context.Context, now time.Time) {
	cells, err := s.weather.Weather(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoUpdate) {
			log.Printf("Weather update failed: %v (keeping previous weather)", err)
			s.mu.Lock()
			s.stats.WeatherFailures++
			s.mu.Unlock()
		}
		return
	}

	if s.opts.ReplaceWeather {
		s.staging.ClearWeather()
	}
	s.renderer.RenderWeather(s.staging, cells)

	s.mu.Lock()
	s.stats.WeatherUpdates++
	s.stats.LastWeather = now
	s.mu.Unlock()
}

func (s *Scope) pollAircraft(ctx context.Context, now time.Time) {
	targets, err := s.aircraft.Aircraft(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoUpdate) {
			log.Printf("Aircraft update failed: %v (keeping last good picture)", err)
			s.mu.Lock()
			s.stats.AircraftFailures++
			s.mu.Unlock()
		}
		return
	}

	s.staging.ClearSymbols()
	drawn := s.renderer.RenderTargets(s.staging, targets)

	s.mu.Lock()
	s.stats.AircraftUpdates++
	s.stats.Targets = len(targets)
	s.stats.Drawn = drawn
	s.stats.LastAircraft = now
	s.mu.Unlock()
}

// Tick runs one scheduler iteration: poll due sources, sweep one step and
// present the visible grid.
func (s *Scope) Tick(ctx context.Context) error {
	s.Poll(ctx, s.now())

	s.mu.Lock()
	s.sweep.Step(s.visible, s.staging)
	s.stats.Frames++
	s.mu.Unlock()

	if s.presenter == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.presenter.Present(s.visible); err != nil {
		return fmt.Errorf("failed to present frame: %w", err)
	}
	return nil
}

// Run ticks until ctx is cancelled, pausing FrameInterval after each frame.
// Returns nil on cancellation and the presenter's error if a frame fails.
func (s *Scope) Run(ctx context.Context) error {
	interval := s.opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.Tick(ctx); err != nil {
			return err
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}
