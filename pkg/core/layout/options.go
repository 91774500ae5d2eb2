package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracklayout/pkg/core/glyph"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
)

// Default band sizes in pixels.
const (
	DefaultRowHeight        = 10.0
	DefaultMinIntervalWidth = 1.0
	DefaultExpandedHeight   = 60.0
	DefaultExpandedWidth    = 40.0
)

// Option configures a Controller.
type Option func(*Controller)

// WithSizer sets the glyph sizer for point items.
func WithSizer(s *glyph.Sizer) Option {
	return func(c *Controller) {
		if s != nil {
			c.sizer = s
		}
	}
}

// WithMachine shares mode state with the caller. Without it every
// Controller keeps a private machine.
func WithMachine(m *mode.Machine) Option {
	return func(c *Controller) {
		if m != nil {
			c.machine = m
		}
	}
}

// WithSwarm sets the beeswarm collaborator used for spread items.
func WithSwarm(l swarm.Layouter, budget swarm.Budget) Option {
	return func(c *Controller) {
		if l != nil {
			c.swarm = l
		}
		c.budget = budget
	}
}

// WithRowHeight sets the height of one interval row.
func WithRowHeight(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.rowHeight = px
		}
	}
}

// WithRowGap keeps px pixels between intervals sharing a row.
func WithRowGap(px float64) Option {
	return func(c *Controller) { c.rowGap = max(0, px) }
}

// WithMinIntervalWidth widens narrower intervals so they stay visible.
func WithMinIntervalWidth(px float64) Option {
	return func(c *Controller) { c.minIntervalWidth = max(0, px) }
}

// WithExpandedHeight sets the point band height once any point is expanded.
func WithExpandedHeight(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.expandedHeight = px
		}
	}
}

// WithExpandedWidth sets the width an expanded glyph claims when the
// machine's AutoExpand policy decides which points fit.
func WithExpandedWidth(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.expandedWidth = px
		}
	}
}

// WithoutRelaxation keeps point items packed edge to edge from the left.
func WithoutRelaxation() Option {
	return func(c *Controller) { c.relax = false }
}

// WithStrict fails the whole pass on the first invalid item.
func WithStrict() Option {
	return func(c *Controller) { c.strict = true }
}

// WithVerify re-checks the no-overlap invariants after every pass.
func WithVerify() Option {
	return func(c *Controller) { c.verify = true }
}

// WithLogger sets the logger for per-pass debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
