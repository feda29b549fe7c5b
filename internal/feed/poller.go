package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/scope"
)

// Status summarises poller activity for status lines.
type Status struct {
	AircraftPolls  int
	AircraftErrors int
	WeatherPolls   int
	WeatherErrors  int
	LastError      string
	NextAircraft   time.Time
}

// Poller runs the blocking fetches in background goroutines and hands the
// latest results to the scope without blocking its frame loop. Only the most
// recent result is kept; a result is delivered once.
type Poller struct {
	aircraft scope.AircraftSource
	weather  scope.WeatherSource

	aircraftInterval time.Duration
	weatherInterval  time.Duration

	mu         sync.Mutex
	targets    []scope.Target
	targetsNew bool
	cells      []scope.WeatherCell
	cellsNew   bool
	status     Status
	now        func() time.Time
}

// NewPoller creates a poller. weather may be nil. Non-positive intervals fall
// back to the scope defaults.
func NewPoller(aircraft scope.AircraftSource, weather scope.WeatherSource, aircraftInterval, weatherInterval time.Duration) *Poller {
	if aircraftInterval <= 0 {
		aircraftInterval = scope.DefaultAircraftInterval
	}
	if weatherInterval <= 0 {
		weatherInterval = scope.DefaultWeatherInterval
	}

	return &Poller{
		aircraft:         aircraft,
		weather:          weather,
		aircraftInterval: aircraftInterval,
		weatherInterval:  weatherInterval,
		now:              time.Now,
	}
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.loop(ctx, p.aircraftInterval, p.pollAircraft)
	})
	if p.weather != nil {
		g.Go(func() error {
			return p.loop(ctx, p.weatherInterval, p.pollWeather)
		})
	}

	return g.Wait()
}

// loop calls poll immediately and then after each returned delay.
func (p *Poller) loop(ctx context.Context, interval time.Duration, poll func(context.Context, time.Duration) time.Duration) error {
	for {
		delay := poll(ctx, interval)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (p *Poller) pollAircraft(ctx context.Context, interval time.Duration) time.Duration {
	targets, err := p.aircraft.Aircraft(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.AircraftPolls++
	delay := interval

	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		p.status.AircraftErrors++
		p.status.LastError = err.Error()
		log.Printf("Aircraft poll failed: %v", err)

		// Back off for as long as the provider asks
		if rle, ok := adsb.IsRateLimitError(err); ok && rle.RetryAfter > delay {
			delay = rle.RetryAfter
			log.Printf("Rate limited, next aircraft poll in %v", delay)
		}
	} else {
		p.targets = targets
		p.targetsNew = true
	}

	p.status.NextAircraft = p.now().Add(delay)
	return delay
}

func (p *Poller) pollWeather(ctx context.Context, interval time.Duration) time.Duration {
	cells, err := p.weather.Weather(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.WeatherPolls++

	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		p.status.WeatherErrors++
		p.status.LastError = err.Error()
		log.Printf("Weather poll failed: %v", err)
		return interval
	}

	p.cells = cells
	p.cellsNew = true
	return interval
}

// Aircraft returns the latest targets, or scope.ErrNoUpdate if nothing new
// arrived since the previous call.
func (p *Poller) Aircraft(ctx context.Context) ([]scope.Target, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.targetsNew {
		return nil, scope.ErrNoUpdate
	}
	p.targetsNew = false
	return p.targets, nil
}

// Weather returns the latest weather cells, or scope.ErrNoUpdate if nothing
// new arrived since the previous call.
func (p *Poller) Weather(ctx context.Context) ([]scope.WeatherCell, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cellsNew {
		return nil, scope.ErrNoUpdate
	}
	p.cellsNew = false
	return p.cells, nil
}

// WeatherSource returns the poller as a weather source, or nil when no
// weather provider was configured, so the scope shows the layer as off.
func (p *Poller) WeatherSource() scope.WeatherSource {
	if p.weather == nil {
		return nil
	}
	return p
}

// Status returns a snapshot of the poller counters.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
