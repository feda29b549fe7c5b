// Package wx provides weather sources for the scope.
//
// No live radar feed is wired in yet. SyntheticSource generates a plausible
// scattering of precipitation cells around the display centre so the weather
// layer can be exercised, and StaticSource replays a fixed set (from config or
// tests).
package wx

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/unklstewy/sweepscope/pkg/scope"
)

// Synthetic generation bounds, in projection units and intensity levels
const (
	minCells  = 3
	maxCells  = 7
	maxOffset = 30 // centres land in [-maxOffset, maxOffset)
	minRadius = 5
	maxRadius = 19
	minPeak   = 1
	maxPeak   = 5
)

// SyntheticSource generates a new random set of cells on every call.
type SyntheticSource struct {
	mu      sync.Mutex
	rng     *rand.Rand
	centerX int
	centerY int
}

// NewSyntheticSource creates a generator centred on the projected reference
// cell (col, row). A seed of 0 picks a random seed.
func NewSyntheticSource(col, row int, seed uint64) *SyntheticSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &SyntheticSource{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		centerX: col,
		centerY: row,
	}
}

// Label returns the title-line name of this source.
func (s *SyntheticSource) Label() string {
	return "synthetic"
}

// Weather implements scope.WeatherSource.
func (s *SyntheticSource) Weather(ctx context.Context) ([]scope.WeatherCell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := minCells + s.rng.IntN(maxCells-minCells+1)
	cells := make([]scope.WeatherCell, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, scope.WeatherCell{
			Col:       s.centerX + s.rng.IntN(2*maxOffset) - maxOffset,
			Row:       s.centerY + s.rng.IntN(2*maxOffset) - maxOffset,
			Projected: true,
			Radius:    float64(minRadius + s.rng.IntN(maxRadius-minRadius+1)),
			Peak:      scope.Intensity(minPeak + s.rng.IntN(maxPeak-minPeak+1)),
		})
	}

	return cells, nil
}

// StaticSource always returns the same cells.
type StaticSource struct {
	cells []scope.WeatherCell
	label string
}

// NewStaticSource creates a source replaying cells.
func NewStaticSource(label string, cells []scope.WeatherCell) *StaticSource {
	return &StaticSource{cells: cells, label: label}
}

// Label returns the title-line name of this source.
func (s *StaticSource) Label() string {
	return s.label
}

// Weather implements scope.WeatherSource. The returned slice is a copy.
func (s *StaticSource) Weather(ctx context.Context) ([]scope.WeatherCell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]scope.WeatherCell, len(s.cells))
	copy(out, s.cells)
	return out, nil
}
