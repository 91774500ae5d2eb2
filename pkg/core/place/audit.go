package place

import (
	"math"

	"github.com/biogo/store/interval"
)

// fixedScale converts pixels to the integer coordinates of the audit tree.
// Sub-pixel slack below 1/fixedScale is not reported.
const fixedScale = 1 << 10

// Violation is a pair of items whose footprints overlap.
type Violation struct {
	A, B string
	Row  int // row both items occupy; 0 for points
}

// AuditRows checks that no two intervals sharing a row in p overlap.
func AuditRows(items []Interval, p Packing) ([]Violation, error) {
	byRow := make(map[int][]footprint)
	for i, iv := range items {
		row, ok := p.Row[iv.ID]
		if !ok {
			continue
		}
		byRow[row] = append(byRow[row], newFootprint(i, iv.ID, iv.Start, iv.End()))
	}

	var out []Violation
	for row := range p.Rows {
		vs, err := overlaps(byRow[row])
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			v.Row = row
			out = append(out, v)
		}
	}
	return out, nil
}

// AuditPoints checks that no two discs placed by r overlap.
func AuditPoints(items []Point, r Relaxation) ([]Violation, error) {
	fps := make([]footprint, 0, len(items))
	for i, pt := range items {
		x, ok := r.X[pt.ID]
		if !ok {
			continue
		}
		fps = append(fps, newFootprint(i, pt.ID, x-pt.Radius, x+pt.Radius))
	}
	return overlaps(fps)
}

func overlaps(fps []footprint) ([]Violation, error) {
	if len(fps) < 2 {
		return nil, nil
	}

	var tree interval.IntTree
	for _, f := range fps {
		if f.empty() {
			continue
		}
		if err := tree.Insert(f, true); err != nil {
			return nil, err
		}
	}
	tree.AdjustRanges()

	var out []Violation
	for _, f := range fps {
		if f.empty() {
			continue
		}
		for _, hit := range tree.Get(f) {
			other := hit.(footprint)
			// Report each pair once, from its lower input index.
			if other.uid <= f.uid {
				continue
			}
			out = append(out, Violation{A: f.id, B: other.id})
		}
	}
	return out, nil
}

// footprint is a half-open pixel span in fixed-point coordinates.
type footprint struct {
	uid        uintptr
	id         string
	start, end int
}

func newFootprint(i int, id string, start, end float64) footprint {
	return footprint{
		uid:   uintptr(i),
		id:    id,
		start: int(math.Round(start * fixedScale)),
		end:   int(math.Round(end * fixedScale)),
	}
}

func (f footprint) empty() bool { return f.end <= f.start }

func (f footprint) Overlap(b interval.IntRange) bool {
	return b.Start < f.end && f.start < b.End
}
func (f footprint) ID() uintptr { return f.uid }
func (f footprint) Range() interval.IntRange {
	return interval.IntRange{Start: f.start, End: f.end}
}
