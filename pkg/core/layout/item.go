package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// Kind is the shape of an item.
type Kind int

const (
	KindPoint    Kind = iota // disc at IdealX, sized from Weight
	KindInterval             // bar from IdealStart to IdealStop
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindInterval:
		return "interval"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "point":
		*k = KindPoint
	case "interval":
		*k = KindInterval
	default:
		return fmt.Errorf("unknown item kind %q", b)
	}
	return nil
}

// Item is one feature to lay out. Domain data stays with the caller and is
// joined back by ID.
type Item struct {
	ID         string    `json:"id" toml:"id"`
	Kind       Kind      `json:"kind" toml:"kind"`
	IdealX     float64   `json:"ideal_x,omitempty" toml:"ideal_x"`
	IdealStart float64   `json:"ideal_start,omitempty" toml:"ideal_start"`
	IdealStop  float64   `json:"ideal_stop,omitempty" toml:"ideal_stop"`
	Weight     int       `json:"weight,omitempty" toml:"weight"`
	Samples    []float64 `json:"samples,omitempty" toml:"samples"`
	Label      string    `json:"label,omitempty" toml:"label"`
}

// Canvas is the drawable area of a track.
type Canvas struct {
	Width float64 `json:"width"`
}

// Placement is the geometry of one item after a pass.
//
// For points X is the centre and Extent the radius; for intervals X is the
// left edge and Extent the width. Y is the centre line of the item.
type Placement struct {
	ID          string           `json:"id"`
	Kind        Kind             `json:"kind"`
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Extent      float64          `json:"extent"`
	Row         int              `json:"row"`
	Weight      int              `json:"weight"`
	Label       string           `json:"label,omitempty"`
	Mode        mode.Mode        `json:"mode"`
	Pinned      bool             `json:"pinned"`
	Swarm       []swarm.Position `json:"swarm,omitempty"`
	SwarmTop    float64          `json:"swarm_top,omitempty"`
	SwarmHeight float64          `json:"swarm_height,omitempty"`
}

// Left returns the leftmost pixel of the placement.
func (p Placement) Left() float64 {
	if p.Kind == KindPoint {
		return p.X - p.Extent
	}
	return p.X
}

// Right returns the first pixel right of the placement.
func (p Placement) Right() float64 { return p.X + p.Extent }

// Issue is a non-fatal problem found during a pass.
type Issue struct {
	Code    errs.Code `json:"code"`
	ItemID  string    `json:"item_id,omitempty"`
	Message string    `json:"message"`
}

func issueFrom(err error) Issue {
	return Issue{Code: errs.GetCode(err), ItemID: errs.GetItemID(err), Message: errs.UserMessage(err)}
}

// Result is the output of a pass.
type Result struct {
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Rows         int         `json:"rows"`
	RowHeight    float64     `json:"row_height"`
	PointTop     float64     `json:"point_top"`
	PointHeight  float64     `json:"point_height"`
	Displacement float64     `json:"displacement"`
	Placements   []Placement `json:"placements"`
	Issues       []Issue     `json:"issues,omitempty"`

	index map[string]int
}

// Lookup returns the placement of id.
func (r *Result) Lookup(id string) (Placement, bool) {
	if r.index == nil {
		r.index = make(map[string]int, len(r.Placements))
		for i, p := range r.Placements {
			r.index[p.ID] = i
		}
	}
	i, ok := r.index[id]
	if !ok {
		return Placement{}, false
	}
	return r.Placements[i], true
}

// Points returns the point placements in input order.
func (r *Result) Points() []Placement { return r.filter(KindPoint) }

// Intervals returns the interval placements in input order.
func (r *Result) Intervals() []Placement { return r.filter(KindInterval) }

func (r *Result) filter(k Kind) []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}
