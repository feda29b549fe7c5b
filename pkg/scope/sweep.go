package scope

import (
	"math"
)

// DefaultSteps is the number of angular steps in one rotation (0.5° each).
const DefaultSteps = 720

// Sweep is the rotating ray that copies staging cells into the visible grid.
// It has no terminal state: Step wraps around forever.
type Sweep struct {
	steps     int
	step      int
	centerX   int
	centerY   int
	maxRadius int

	// cos/sin of every step's angle, computed once
	cos []float64
	sin []float64
}

// NewSweep creates a sweep over grids of the given dimensions. Steps below 1
// fall back to DefaultSteps.
func NewSweep(width, height, steps int) *Sweep {
	if steps < 1 {
		steps = DefaultSteps
	}

	cx, cy := width/2, height/2
	s := &Sweep{
		steps:     steps,
		centerX:   cx,
		centerY:   cy,
		maxRadius: int(math.Ceil(math.Sqrt(float64(cx*cx+cy*cy)))) + 1,
		cos:       make([]float64, steps),
		sin:       make([]float64, steps),
	}

	for i := 0; i < steps; i++ {
		theta := float64(i) * 2 * math.Pi / float64(steps)
		s.cos[i] = math.Cos(theta)
		s.sin[i] = math.Sin(theta)
	}

	return s
}

// Steps returns the number of steps per rotation.
func (s *Sweep) Steps() int { return s.steps }

// Position returns the step the next call to Step will sweep. Frontends read
// it, and Angle, through Scope.View while the scope is ticking.
func (s *Sweep) Position() int { return s.step }

// Angle returns the angle of the next ray in radians.
func (s *Sweep) Angle() float64 {
	return float64(s.step) * 2 * math.Pi / float64(s.steps)
}

// Step copies the cells under the current ray from staging to visible and
// advances to the next angle. Returns the number of cells copied.
func (s *Sweep) Step(visible, staging *Grid) int {
	copied := s.ray(s.step, func(x, y int) {
		visible.CopyCell(staging, x, y)
	}, visible)

	s.step = (s.step + 1) % s.steps
	return copied
}

// ray calls fn for every in-bounds cell under the ray at step, centre outwards.
// Cells may repeat near the centre where neighbouring radii truncate to the
// same cell.
func (s *Sweep) ray(step int, fn func(x, y int), g *Grid) int {
	n := 0
	cos, sin := s.cos[step], s.sin[step]

	for r := 0; r <= s.maxRadius; r++ {
		x := s.centerX + int(float64(r)*cos)
		y := s.centerY + int(float64(r)*sin)
		if !g.InBounds(x, y) {
			continue
		}
		fn(x, y)
		n++
	}

	return n
}

// Covered returns a mask of the cells of g that some ray of a full rotation
// passes over. Cells outside the mask are never refreshed by the sweep.
func (s *Sweep) Covered(g *Grid) []bool {
	mask := make([]bool, g.Width()*g.Height())
	for step := 0; step < s.steps; step++ {
		s.ray(step, func(x, y int) {
			mask[g.index(x, y)] = true
		}, g)
	}
	return mask
}
