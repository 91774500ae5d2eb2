// Package swarm lays out per-sample values as a beeswarm.
//
// When a point item is spread, each of its samples becomes a small dot.
// The value picks the dot's height inside the budget; dots that would
// collide are nudged sideways, alternating right and left, so the swarm
// fans out around the glyph centre. When the budget width is full, extra
// dots spill into rows below.
package swarm

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Default budget values in pixels.
const (
	DefaultWidth     = 60.0
	DefaultHeight    = 80.0
	DefaultDotRadius = 2.5
)

// Budget is the pixel box a swarm may occupy.
type Budget struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	DotRadius float64 `json:"dot_radius"`
}

// DefaultBudget returns the budget used when none is configured.
func DefaultBudget() Budget {
	return Budget{Width: DefaultWidth, Height: DefaultHeight, DotRadius: DefaultDotRadius}
}

// Position is a dot centre relative to the glyph: DX from its centre, DY
// down from the top of the swarm band.
type Position struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Layouter places sample values. It returns one position per value, in
// input order, and the height the swarm occupies.
type Layouter interface {
	Layout(values []float64, budget Budget) ([]Position, float64)
}

// Accumulate is the default Layouter. Larger values sit higher.
type Accumulate struct{}

var _ Layouter = Accumulate{}

// Layout implements Layouter. Dots try offsets 0, +d, -d, +2d, ... with d
// one dot diameter, staying within the budget width. A dot with no free
// slot on its own row drops to the next row below, and the returned height
// grows to cover it, so no two dots ever overlap.
func (Accumulate) Layout(values []float64, b Budget) ([]Position, float64) {
	if len(values) == 0 {
		return nil, 0
	}
	if b.DotRadius <= 0 {
		b.DotRadius = DefaultDotRadius
	}
	r := b.DotRadius
	d := 2 * r
	height := max(b.Height, d)
	halfWidth := max(b.Width/2-r, 0)

	lo, hi := floats.Min(values), floats.Max(values)
	yOf := func(v float64) float64 {
		if hi == lo {
			return height / 2
		}
		return r + (hi-v)/(hi-lo)*(height-d)
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[a], values[b])
	})

	out := make([]Position, len(values))
	placed := make([]Position, 0, len(values))
	bottom := height
	for _, i := range idx {
		p := slot(placed, yOf(values[i]), d, halfWidth)
		out[i] = p
		placed = append(placed, p)
		bottom = max(bottom, p.DY+r)
	}
	return out, bottom
}

// slot finds the first free position at or below y. The row below every
// placed dot is always free at dx 0, so the search ends.
func slot(placed []Position, y, d, halfWidth float64) Position {
	for ; ; y += d {
		for k := 0; ; k++ {
			dx := float64((k+1)/2) * d
			if k > 0 && k%2 == 0 {
				dx = -dx
			}
			if dx > halfWidth+1e-9 || -dx > halfWidth+1e-9 {
				break
			}
			if !collides(placed, dx, y, d/2) {
				return Position{DX: dx, DY: y}
			}
		}
	}
}

func collides(placed []Position, dx, dy, r float64) bool {
	minDist := 2*r - 1e-9
	for _, p := range placed {
		if math.Hypot(p.DX-dx, p.DY-dy) < minDist {
			return true
		}
	}
	return false
}
