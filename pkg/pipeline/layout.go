package pipeline

import (
	"sync"

	"github.com/matzehuels/tracklayout/pkg/core/glyph"
	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
	"github.com/matzehuels/tracklayout/pkg/fonts"
	tio "github.com/matzehuels/tracklayout/pkg/io"
)

// labelMeasurer is shared by every pass; parsing the face is the expensive
// part and the measurer memoises per string.
var labelMeasurer = sync.OnceValues(func() (*fonts.Measurer, error) {
	return fonts.NewMeasurer(fonts.DefaultSize)
})

// =============================================================================
// Layout Generation
// =============================================================================

// NewController builds a layout controller from pipeline options.
func NewController(opts Options) (*layout.Controller, error) {
	opts.SetLayoutDefaults()

	sizerOpts := glyph.Options{
		BaseRadius:   opts.BaseRadius,
		LabelPadding: opts.LabelPadding,
	}
	if opts.MeasureLabels {
		m, err := labelMeasurer()
		if err != nil {
			// Fall back to the character-count estimate.
			opts.Logger.Warn("label measurer unavailable", "err", err)
			sizerOpts.Measurer = fonts.Approx{}
		} else {
			sizerOpts.Measurer = m
		}
	}
	sizer, err := glyph.New(sizerOpts)
	if err != nil {
		return nil, err
	}

	layoutOpts := []layout.Option{
		layout.WithSizer(sizer),
		layout.WithMachine(opts.Machine),
		layout.WithSwarm(swarm.Accumulate{}, opts.Swarm),
		layout.WithLogger(opts.Logger),
	}
	if opts.RowHeight > 0 {
		layoutOpts = append(layoutOpts, layout.WithRowHeight(opts.RowHeight))
	}
	if opts.RowGap > 0 {
		layoutOpts = append(layoutOpts, layout.WithRowGap(opts.RowGap))
	}
	if opts.MinIntervalWidth > 0 {
		layoutOpts = append(layoutOpts, layout.WithMinIntervalWidth(opts.MinIntervalWidth))
	}
	if opts.ExpandedWidth > 0 {
		layoutOpts = append(layoutOpts, layout.WithExpandedWidth(opts.ExpandedWidth))
	}
	if opts.ExpandedHeight > 0 {
		layoutOpts = append(layoutOpts, layout.WithExpandedHeight(opts.ExpandedHeight))
	}
	if opts.NoRelax {
		layoutOpts = append(layoutOpts, layout.WithoutRelaxation())
	}
	if opts.Strict {
		layoutOpts = append(layoutOpts, layout.WithStrict())
	}
	if opts.Verify {
		layoutOpts = append(layoutOpts, layout.WithVerify())
	}
	return layout.New(layoutOpts...), nil
}

// GenerateLayout runs one layout pass over the track's items.
func GenerateLayout(t *tio.Track, opts Options) (*layout.Result, error) {
	c, err := NewController(opts)
	if err != nil {
		return nil, err
	}
	return c.Run(t.Items, layout.Canvas{Width: opts.canvasWidth(t)})
}
