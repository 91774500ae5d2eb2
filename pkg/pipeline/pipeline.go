// Package pipeline provides the read -> layout -> render pipeline for
// tracklayout.
//
// The CLI and the HTTP server both run layout passes through this package,
// so caching, defaults and logging behave the same on every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Read: Decode a track file (JSON or TOML) into items and a canvas
//  2. Layout: Run one layout pass, consulting the caller's mode machine
//  3. Render: Produce output in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Path:    "tracks/sv.toml",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	track, err := runner.Read(ctx, opts)
//	res, err := runner.Layout(ctx, track, opts)
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/core/swarm"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	tio "github.com/matzehuels/tracklayout/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCanvasWidth is used when neither the track nor the caller
	// names a width.
	DefaultCanvasWidth = 800.0

	// DefaultScale is the PNG device scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// Zero values select the layout package defaults.
type Options struct {
	// Read options
	Path        string  `json:"path,omitempty"`         // track file, "-" for stdin
	CanvasWidth float64 `json:"canvas_width,omitempty"` // overrides the track's width when set

	// Layout options
	RowHeight        float64      `json:"row_height,omitempty"`
	RowGap           float64      `json:"row_gap,omitempty"`
	MinIntervalWidth float64      `json:"min_interval_width,omitempty"`
	BaseRadius       float64      `json:"base_radius,omitempty"`
	LabelPadding     float64      `json:"label_padding,omitempty"`
	MeasureLabels    bool         `json:"measure_labels,omitempty"`
	NoRelax          bool         `json:"no_relax,omitempty"`
	Strict           bool         `json:"strict,omitempty"`
	Verify           bool         `json:"verify,omitempty"`
	AutoExpand       bool         `json:"auto_expand,omitempty"`
	ExpandedWidth    float64      `json:"expanded_width,omitempty"`
	ExpandedHeight   float64      `json:"expanded_height,omitempty"`
	Swarm            swarm.Budget `json:"swarm,omitzero"`
	Refresh          bool         `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Labels      bool     `json:"labels,omitempty"`
	Interaction bool     `json:"interaction,omitempty"`
	ChromePath  string   `json:"-"`

	// Runtime options (not serialized)
	Logger  *log.Logger   `json:"-"`
	Machine *mode.Machine `json:"-"` // mode state consulted by the pass; fresh when nil
	Session string        `json:"-"` // recorded in JSON output

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Track is the decoded input.
	Track *tio.Track

	// Layout is the geometry of the pass.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	Rows       int
	Issues     int
	ReadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, as given on the
// command line, and validates each entry.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for f := range strings.SplitSeq(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills in runtime defaults for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Machine == nil {
		o.Machine = mode.New(mode.Options{AutoExpand: o.AutoExpand})
	}
	if o.Swarm == (swarm.Budget{}) {
		o.Swarm = swarm.DefaultBudget()
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	for name, v := range map[string]float64{
		"row_height":         o.RowHeight,
		"row_gap":            o.RowGap,
		"min_interval_width": o.MinIntervalWidth,
		"base_radius":        o.BaseRadius,
		"label_padding":      o.LabelPadding,
		"expanded_width":     o.ExpandedWidth,
		"expanded_height":    o.ExpandedHeight,
	} {
		if v < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "%s must not be negative, got %v", name, v)
		}
	}
	if o.CanvasWidth != 0 {
		return errs.ValidateCanvasWidth(o.CanvasWidth)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
// Only pinned modes change a pass, so only they enter the key.
func (o *Options) LayoutKeyOpts(width float64) (cache.LayoutKeyOpts, error) {
	modesHash, err := pinnedHash(o.Machine)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	return cache.LayoutKeyOpts{
		Width:            width,
		RowHeight:        o.RowHeight,
		RowGap:           o.RowGap,
		MinIntervalWidth: o.MinIntervalWidth,
		BaseRadius:       o.BaseRadius,
		LabelPadding:     o.LabelPadding,
		MeasureLabels:    o.MeasureLabels,
		Relax:            !o.NoRelax,
		Strict:           o.Strict,
		AutoExpand:       o.Machine != nil && o.Machine.Options().AutoExpand,
		ExpandedWidth:    o.ExpandedWidth,
		ExpandedHeight:   o.ExpandedHeight,
		SwarmWidth:       o.Swarm.Width,
		SwarmHeight:      o.Swarm.Height,
		ModesHash:        modesHash,
	}, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:      format,
		Labels:      o.Labels,
		Interaction: o.Interaction,
	}
	switch format {
	case FormatPNG:
		opts.Scale = o.Scale
	case FormatJSON:
		opts.Session = o.Session
	}
	return opts
}

func pinnedHash(m *mode.Machine) (string, error) {
	if m == nil {
		return "", nil
	}
	pinned := mode.Snapshot{}
	for id, st := range m.Snapshot() {
		if st.Pinned {
			pinned[id] = st
		}
	}
	if len(pinned) == 0 {
		return "", nil
	}
	return cache.HashJSON(pinned)
}

// canvasWidth picks the width for a pass: the caller's override, then the
// track's own width, then DefaultCanvasWidth.
func (o *Options) canvasWidth(t *tio.Track) float64 {
	switch {
	case o.CanvasWidth > 0:
		return o.CanvasWidth
	case t != nil && t.CanvasWidth != 0:
		return t.CanvasWidth
	}
	return DefaultCanvasWidth
}

func validationError(stage string, err error) error {
	return fmt.Errorf("invalid %s options: %w", stage, err)
}
