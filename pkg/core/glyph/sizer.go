package glyph

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/interp"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// Default sizing parameters.
const (
	DefaultBaseRadius   = 7.0
	DefaultLabelPadding = 1.0
)

// DefaultAnchors is the concave weight-fraction curve used when Options
// leaves Anchors empty.
var DefaultAnchors = []Anchor{
	{Fraction: 0, Share: 0},
	{Fraction: 0.1, Share: 0.4},
	{Fraction: 1, Share: 1},
}

// Measurer reports the rendered width and height of a label in pixels.
// fonts.Measurer and fonts.Approx implement it.
type Measurer interface {
	Measure(text string) (width, height float64)
}

// Anchor maps a weight fraction in [0, 1] to the share of the extra area
// (k − 1)·u granted at that fraction.
type Anchor struct {
	Fraction float64
	Share    float64
}

// Options configures a Sizer.
type Options struct {
	BaseRadius   float64  // r0; DefaultBaseRadius when zero
	LabelPadding float64  // added to the half-diagonal of a label
	Anchors      []Anchor // DefaultAnchors when empty
	Measurer     Measurer // nil disables the text-fit override
}

// Sizer maps weights to radii. It is immutable after New and safe for
// concurrent use provided its Measurer is.
type Sizer struct {
	r0       float64
	padding  float64
	curve    interp.PiecewiseLinear
	measurer Measurer
}

// New validates opts and fits the anchor curve.
//
// Anchors must start at fraction 0, end at fraction 1, have strictly
// increasing fractions and non-decreasing shares within [0, 1]; anything
// else would make the scale non-monotonic or unbounded.
func New(opts Options) (*Sizer, error) {
	r0 := opts.BaseRadius
	if r0 == 0 {
		r0 = DefaultBaseRadius
	}
	if r0 < 0 || math.IsNaN(r0) || math.IsInf(r0, 0) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "base radius must be positive, got %v", r0)
	}
	if opts.LabelPadding < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "label padding must not be negative, got %v", opts.LabelPadding)
	}

	anchors := opts.Anchors
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	if err := validateAnchors(anchors); err != nil {
		return nil, err
	}

	xs := make([]float64, len(anchors))
	ys := make([]float64, len(anchors))
	for i, a := range anchors {
		xs[i], ys[i] = a.Fraction, a.Share
	}

	s := &Sizer{r0: r0, padding: opts.LabelPadding, measurer: opts.Measurer}
	if err := s.curve.Fit(xs, ys); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "fit anchors")
	}
	return s, nil
}

func validateAnchors(anchors []Anchor) error {
	if len(anchors) < 2 {
		return errs.New(errs.ErrCodeInvalidInput, "need at least two anchors, got %d", len(anchors))
	}
	if anchors[0].Fraction != 0 || anchors[len(anchors)-1].Fraction != 1 {
		return errs.New(errs.ErrCodeInvalidInput, "anchors must span fractions 0 to 1")
	}
	for i, a := range anchors {
		if a.Share < 0 || a.Share > 1 {
			return errs.New(errs.ErrCodeInvalidInput, "anchor %d share %v outside [0, 1]", i, a.Share)
		}
		if i == 0 {
			continue
		}
		prev := anchors[i-1]
		if a.Fraction <= prev.Fraction {
			return errs.New(errs.ErrCodeInvalidInput, "anchor fractions must be strictly increasing")
		}
		if a.Share < prev.Share {
			return errs.New(errs.ErrCodeInvalidInput, "anchor shares must not decrease")
		}
	}
	return nil
}

// Multiplier returns the area multiplier k granted to the largest weight
// in view. It is bucketed so the largest disc stays bounded no matter how
// many calls were merged.
func Multiplier(maxWeight int) float64 {
	switch {
	case maxWeight <= 1:
		return 1
	case maxWeight <= 10:
		return max(1, 0.9*float64(maxWeight))
	case maxWeight <= 100:
		return 5
	case maxWeight <= 1000:
		return 7
	default:
		return 10
	}
}

// BaseRadius returns r0.
func (s *Sizer) BaseRadius() float64 { return s.r0 }

// MaxRadius is the area-derived radius of the largest weight in view,
// ignoring label fit.
func (s *Sizer) MaxRadius(maxWeight int) float64 {
	return s.r0 * math.Sqrt(Multiplier(maxWeight))
}

// Size returns the radius for weight when the largest weight in view is
// maxWeight. A weight below one is invalid: callers never build a glyph for
// an empty aggregate. A maxWeight of zero or one treats every weight as 1.
func (s *Sizer) Size(weight, maxWeight int) (float64, error) {
	if weight < 1 {
		return 0, errs.New(errs.ErrCodeInvalidItem, "weight must be at least 1, got %d", weight)
	}

	r := s.areaRadius(weight, maxWeight)
	if weight > 1 && s.measurer != nil {
		w, h := s.measurer.Measure(strconv.Itoa(weight))
		if fit := math.Hypot(w, h)/2 + s.padding; fit > r {
			r = fit
		}
	}
	return r, nil
}

func (s *Sizer) areaRadius(weight, maxWeight int) float64 {
	if maxWeight <= 1 {
		return s.r0
	}
	weight = min(weight, maxWeight)

	f := float64(weight-1) / float64(maxWeight-1)
	share := s.curve.Predict(max(0, min(1, f)))
	k := Multiplier(maxWeight)

	// area = π·r0²·(1 + share·(k−1)), so the π cancels out of the radius.
	return s.r0 * math.Sqrt(1+share*(k-1))
}
