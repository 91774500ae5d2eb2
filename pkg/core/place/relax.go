package place

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// DefaultStep is the pixel increment of the relaxation walk.
const DefaultStep = 1.0

// Point is a disc centred at Ideal with the given Radius.
type Point struct {
	ID     string
	Ideal  float64
	Radius float64
}

// Relaxation is the result of Relax.
type Relaxation struct {
	X            map[string]float64 // final centre per item id
	Order        []string           // ids left to right
	Overflow     []string           // ids whose disc passes the right canvas edge
	Displacement float64            // Σ|x − ideal| over all items
}

// RelaxOption configures Relax.
type RelaxOption func(*relaxConfig)

type relaxConfig struct {
	step  float64
	relax bool
}

// WithStep sets the walk increment in pixels. Non-positive values are
// ignored.
func WithStep(px float64) RelaxOption {
	return func(c *relaxConfig) {
		if px > 0 {
			c.step = px
		}
	}
}

// WithoutRelaxation keeps the edge-to-edge seed positions.
func WithoutRelaxation() RelaxOption {
	return func(c *relaxConfig) { c.relax = false }
}

// Relax places points on one row without overlap, as close to their ideal
// positions as the walk described in the package documentation gets them.
// Item ids must be unique.
//
// Points whose ideal lies off the canvas are still placed; callers drop
// items that are entirely off-screen beforehand. When the discs cannot all
// fit, the seed runs past the right edge and the affected ids are listed
// in Overflow.
func Relax(items []Point, canvasWidth float64, opts ...RelaxOption) Relaxation {
	cfg := relaxConfig{step: DefaultStep, relax: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := Relaxation{X: make(map[string]float64, len(items))}
	n := len(items)
	if n == 0 {
		return res
	}

	order := sortedIndex(items, func(p Point) float64 { return p.Ideal })
	x := make([]float64, n)
	ideal := make([]float64, n)
	r := make([]float64, n)
	for k, i := range order {
		ideal[k] = items[i].Ideal
		r[k] = items[i].Radius
	}

	for k := range n {
		if k == 0 {
			x[0] = r[0]
			continue
		}
		x[k] = x[k-1] + r[k-1] + r[k]
	}

	if cfg.relax {
		climb(x, ideal, canvasWidth-r[n-1], cfg.step)
		centre(x, ideal, r, canvasWidth)
	}

	dev := make([]float64, n)
	for k, i := range order {
		id := items[i].ID
		res.X[id] = x[k]
		res.Order = append(res.Order, id)
		dev[k] = math.Abs(x[k] - ideal[k])
		if x[k]+r[k] > canvasWidth+eps {
			res.Overflow = append(res.Overflow, id)
		}
	}
	res.Displacement = floats.Sum(dev)
	return res
}

// climb walks each suffix x[k:] right while that strictly lowers its
// total displacement. limit caps the last centre.
func climb(x, ideal []float64, limit, step float64) {
	n := len(x)
	for k := range n {
		room := math.Floor((limit-x[n-1])/step + eps)
		if room <= 0 {
			return
		}
		if steps := stopShift(x[k:], ideal[k:], step, int(room)); steps > 0 {
			floats.AddConst(float64(steps)*step, x[k:])
		}
	}
}

// centre shifts each run of touching discs, left to right, within the room
// its neighbours leave. The shift minimises the run's total displacement
// and, among equally good shifts, its squared displacement. Unlike the
// walk, the shift is exact, so a run with room to spare lands on its ideal
// positions even when radii and ideals are fractional.
func centre(x, ideal, r []float64, canvasWidth float64) {
	n := len(x)
	for first := 0; first < n; {
		last := first
		for last+1 < n && x[last+1]-r[last+1]-(x[last]+r[last]) <= eps {
			last++
		}

		lo := -(x[first] - r[first])
		if first > 0 {
			lo = (x[first-1] + r[first-1]) - (x[first] - r[first])
		}
		hi := canvasWidth - (x[last] + r[last])
		if last+1 < n {
			hi = (x[last+1] - r[last+1]) - (x[last] + r[last])
		}
		lo, hi = min(lo, 0), max(hi, 0)

		d := make([]float64, 0, last-first+1)
		for j := first; j <= last; j++ {
			d = append(d, ideal[j]-x[j])
		}
		slices.Sort(d)
		m := len(d)
		medLo, medHi := d[(m-1)/2], d[m/2]

		s := min(max(floats.Sum(d)/float64(m), medLo), medHi)
		s = min(max(s, lo), hi)
		if math.Abs(s) > eps {
			floats.AddConst(s, x[first:last+1])
		}

		first = last + 1
	}
}

// stopShift returns how many steps the suffix x moves before a further
// step stops improving its displacement, capped at maxSteps.
//
// A pixel-by-pixel walk would evaluate every step. The displacement is
// convex in the shift, so "the next step improves" holds for a prefix of
// shifts and fails afterwards. That lets
// the stopping point be found by galloping and bisection with the same
// result as the walk.
func stopShift(x, ideal []float64, step float64, maxSteps int) int {
	improves := func(k int) bool {
		return stepImproves(x, ideal, float64(k)*step, step)
	}

	if maxSteps <= 0 || !improves(0) {
		return 0
	}

	bound := 1
	for bound < maxSteps && improves(bound) {
		bound *= 2
	}
	lo, hi := bound/2+1, min(bound, maxSteps)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if improves(mid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// stepImproves reports whether moving the suffix from shift to shift+step
// strictly lowers Σ|x−ideal|.
func stepImproves(x, ideal []float64, shift, step float64) bool {
	var delta float64
	for j := range x {
		before := x[j] + shift - ideal[j]
		delta += math.Abs(before+step) - math.Abs(before)
	}
	return delta < -eps
}
