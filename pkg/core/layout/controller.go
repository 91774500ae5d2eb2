package layout

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracklayout/pkg/core/glyph"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/core/place"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// Controller runs layout passes. It is safe for concurrent use; passes
// sharing a Controller also share its mode machine.
type Controller struct {
	sizer   *glyph.Sizer
	machine *mode.Machine
	swarm   swarm.Layouter
	budget  swarm.Budget
	logger  *log.Logger

	rowHeight        float64
	rowGap           float64
	minIntervalWidth float64
	expandedHeight   float64
	expandedWidth    float64
	relax            bool
	strict           bool
	verify           bool

	// auditor runs under verify; tests swap it to force a failed pass.
	auditor func([]place.Interval, place.Packing, []place.Point, place.Relaxation) error
}

// New returns a Controller configured by opts.
func New(opts ...Option) *Controller {
	c := &Controller{
		machine:          mode.New(mode.Options{}),
		swarm:            swarm.Accumulate{},
		budget:           swarm.DefaultBudget(),
		logger:           log.New(io.Discard),
		rowHeight:        DefaultRowHeight,
		minIntervalWidth: DefaultMinIntervalWidth,
		expandedHeight:   DefaultExpandedHeight,
		expandedWidth:    DefaultExpandedWidth,
		relax:            true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.auditor = c.audit
	if c.sizer == nil {
		// Default options always validate.
		c.sizer, _ = glyph.New(glyph.Options{})
	}
	return c
}

// Machine returns the mode machine consulted by every pass.
func (c *Controller) Machine() *mode.Machine { return c.machine }

// Sizer returns the glyph sizer used for point items.
func (c *Controller) Sizer() *glyph.Sizer { return c.sizer }

// Run lays out items on canvas.
//
// An invalid canvas is always an error. Invalid items are reported in
// Result.Issues and left out of the geometry, unless the Controller is
// strict, in which case Run returns the first such error and no result.
func (c *Controller) Run(items []Item, canvas Canvas) (*Result, error) {
	start := time.Now()
	if err := errs.ValidateCanvasWidth(canvas.Width); err != nil {
		return nil, err
	}

	res := &Result{Width: canvas.Width, RowHeight: c.rowHeight}

	valid, issues := c.validate(items)
	if len(issues) > 0 && c.strict {
		return nil, issues[0]
	}
	for _, err := range issues {
		res.Issues = append(res.Issues, issueFrom(err))
	}

	var (
		intervals []place.Interval
		points    []place.Point
		maxWeight int
	)
	for _, it := range valid {
		if it.Kind == KindPoint {
			maxWeight = max(maxWeight, it.Weight)
		}
	}

	radius := make(map[string]float64)
	for _, it := range valid {
		switch it.Kind {
		case KindInterval:
			intervals = append(intervals, place.Interval{
				ID:    it.ID,
				Start: it.IdealStart,
				Width: max(it.IdealStop-it.IdealStart, c.minIntervalWidth),
			})
		case KindPoint:
			r, err := c.sizer.Size(it.Weight, maxWeight)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInternal, err, "size %q", it.ID)
			}
			radius[it.ID] = r
			if 2*r > canvas.Width {
				res.Issues = append(res.Issues, issueFrom(errs.Item(errs.ErrCodeBoundsExceeded, it.ID,
					"diameter %.1f exceeds canvas width %.1f", 2*r, canvas.Width)))
			}
			points = append(points, place.Point{ID: it.ID, Ideal: it.IdealX, Radius: r})
		}
	}

	packing := place.Pack(intervals, place.WithGap(c.rowGap))

	var relaxOpts []place.RelaxOption
	if !c.relax {
		relaxOpts = append(relaxOpts, place.WithoutRelaxation())
	}
	relaxed := place.Relax(points, canvas.Width, relaxOpts...)
	for _, id := range relaxed.Overflow {
		if 2*radius[id] > canvas.Width {
			continue
		}
		res.Issues = append(res.Issues, issueFrom(errs.Item(errs.ErrCodeBoundsExceeded, id,
			"no room left on a %.1f px canvas", canvas.Width)))
	}

	// Audit before touching the machine so a failed pass records no modes.
	if c.verify {
		if err := c.auditor(intervals, packing, points, relaxed); err != nil {
			return nil, err
		}
	}

	res.Rows = packing.Rows
	res.Displacement = relaxed.Displacement
	res.PointTop = float64(packing.Rows) * c.rowHeight

	states := c.resolveModes(valid, relaxed, canvas.Width)
	res.PointHeight = c.pointBand(points, states)

	swarmTop := res.PointTop + res.PointHeight
	var swarmHeight float64

	res.Placements = make([]Placement, 0, len(valid))
	for _, it := range valid {
		p := Placement{ID: it.ID, Kind: it.Kind, Weight: it.Weight, Label: it.Label}
		switch it.Kind {
		case KindInterval:
			p.Row = packing.Row[it.ID]
			p.X = it.IdealStart
			p.Extent = max(it.IdealStop-it.IdealStart, c.minIntervalWidth)
			p.Y = (float64(p.Row) + 0.5) * c.rowHeight
		case KindPoint:
			st := states[it.ID]
			p.X = relaxed.X[it.ID]
			p.Extent = radius[it.ID]
			p.Y = res.PointTop + res.PointHeight/2
			p.Mode, p.Pinned = st.Mode, st.Pinned
			if st.Mode == mode.SampleSpread && len(it.Samples) > 0 {
				p.Swarm, p.SwarmHeight = c.swarm.Layout(it.Samples, c.budget)
				p.SwarmTop = swarmTop
				swarmHeight = max(swarmHeight, p.SwarmHeight)
			}
		}
		res.Placements = append(res.Placements, p)
	}
	res.Height = swarmTop + swarmHeight

	c.logger.Debug("layout pass",
		"items", len(items),
		"intervals", len(intervals),
		"points", len(points),
		"rows", res.Rows,
		"height", res.Height,
		"issues", len(res.Issues),
		"elapsed", time.Since(start),
	)
	return res, nil
}

// validate splits items into usable ones and per-item errors, keeping
// input order in both.
func (c *Controller) validate(items []Item) ([]Item, []error) {
	valid := make([]Item, 0, len(items))
	var issues []error
	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		if err := validateItem(it); err != nil {
			issues = append(issues, err)
			continue
		}
		if _, dup := seen[it.ID]; dup {
			issues = append(issues, errs.Item(errs.ErrCodeInvalidItem, it.ID, "duplicate id"))
			continue
		}
		seen[it.ID] = struct{}{}
		if it.Kind == KindInterval && it.Weight == 0 {
			it.Weight = 1
		}
		valid = append(valid, it)
	}
	return valid, issues
}

func validateItem(it Item) error {
	if err := errs.ValidateItemID(it.ID); err != nil {
		return err
	}
	if err := errs.ValidateFinite(it.ID, "sample", it.Samples...); err != nil {
		return err
	}

	switch it.Kind {
	case KindPoint:
		if err := errs.ValidateFinite(it.ID, "ideal x", it.IdealX); err != nil {
			return err
		}
		if it.Weight < 1 {
			return errs.Item(errs.ErrCodeInvalidItem, it.ID, "weight must be at least 1, got %d", it.Weight)
		}
	case KindInterval:
		if err := errs.ValidateFinite(it.ID, "interval bound", it.IdealStart, it.IdealStop); err != nil {
			return err
		}
		if it.IdealStop < it.IdealStart {
			return errs.Item(errs.ErrCodeInvalidItem, it.ID, "negative extent %v", it.IdealStop-it.IdealStart)
		}
		if it.Weight < 0 {
			return errs.Item(errs.ErrCodeInvalidItem, it.ID, "negative weight %d", it.Weight)
		}
	default:
		return errs.Item(errs.ErrCodeInvalidItem, it.ID, "unknown kind %v", it.Kind)
	}
	return nil
}

// resolveModes asks the machine for every point's mode, left to right.
// Under AutoExpand an unpinned point fits while the expanded glyphs so far
// leave room for one more.
func (c *Controller) resolveModes(valid []Item, relaxed place.Relaxation, width float64) map[string]mode.State {
	weight := make(map[string]int, len(valid))
	for _, it := range valid {
		if it.Kind == KindPoint {
			weight[it.ID] = it.Weight
		}
	}

	states := make(map[string]mode.State, len(relaxed.Order))
	var used float64
	for _, id := range relaxed.Order {
		fits := used+c.expandedWidth <= width
		st := c.machine.Resolve(id, weight[id], fits)
		if st.Mode != mode.Collapsed {
			used += c.expandedWidth
		}
		states[id] = st
	}
	return states
}

func (c *Controller) pointBand(points []place.Point, states map[string]mode.State) float64 {
	var band float64
	for _, pt := range points {
		band = max(band, 2*pt.Radius)
	}
	for _, st := range states {
		if st.Mode != mode.Collapsed {
			return max(band, c.expandedHeight)
		}
	}
	return band
}

func (c *Controller) audit(intervals []place.Interval, p place.Packing, points []place.Point, r place.Relaxation) error {
	rows, err := place.AuditRows(intervals, p)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "audit rows")
	}
	pts, err := place.AuditPoints(points, r)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "audit points")
	}
	if v := append(rows, pts...); len(v) > 0 {
		return errs.New(errs.ErrCodeInternal, "overlap between %q and %q%s", v[0].A, v[0].B, more(len(v)-1))
	}
	return nil
}

func more(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" and %d more", n)
}
