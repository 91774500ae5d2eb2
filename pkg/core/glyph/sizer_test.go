package glyph

import (
	"math"
	"testing"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
	"github.com/matzehuels/tracklayout/pkg/fonts"
)

const tol = 1e-9

func mustSizer(t *testing.T, opts Options) *Sizer {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		max  int
		want float64
	}{
		{0, 1},
		{1, 1},
		{2, 1.8},
		{10, 9},
		{11, 5},
		{100, 5},
		{101, 7},
		{1000, 7},
		{1001, 10},
		{1 << 20, 10},
	}

	for _, tt := range tests {
		if got := Multiplier(tt.max); math.Abs(got-tt.want) > tol {
			t.Errorf("Multiplier(%d) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestSizeBounds(t *testing.T) {
	s := mustSizer(t, Options{BaseRadius: 7})

	// weight 1 is always the unit disc
	r, err := s.Size(1, 1000)
	if err != nil {
		t.Fatalf("Size(1, 1000) error = %v", err)
	}
	if math.Abs(r-7) > tol {
		t.Errorf("Size(1, 1000) = %v, want 7", r)
	}

	// the largest weight gets the bucket multiplier and nothing more
	r, err = s.Size(1000, 1000)
	if err != nil {
		t.Fatalf("Size(1000, 1000) error = %v", err)
	}
	if want := 7 * math.Sqrt(7); math.Abs(r-want) > tol {
		t.Errorf("Size(1000, 1000) = %v, want %v", r, want)
	}
	if want := s.MaxRadius(1000); math.Abs(r-want) > tol {
		t.Errorf("Size(1000, 1000) = %v, MaxRadius = %v", r, want)
	}
}

func TestSizeWithLabelAtMaxBucketStaysBounded(t *testing.T) {
	s := mustSizer(t, Options{BaseRadius: 7, LabelPadding: 1, Measurer: fonts.Approx{Size: 11}})

	r, err := s.Size(1000, 1000)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if want := 7 * math.Sqrt(7); math.Abs(r-want) > tol {
		t.Errorf("Size(1000, 1000) = %v, want %v (label fits inside)", r, want)
	}
}

func TestSizeZeroMaxTreatsAllAsOne(t *testing.T) {
	s := mustSizer(t, Options{})
	for _, w := range []int{1, 5, 50} {
		r, err := s.Size(w, 0)
		if err != nil {
			t.Fatalf("Size(%d, 0) error = %v", w, err)
		}
		if r != DefaultBaseRadius {
			t.Errorf("Size(%d, 0) = %v, want %v", w, r, DefaultBaseRadius)
		}
	}
}

func TestSizeRejectsZeroWeight(t *testing.T) {
	s := mustSizer(t, Options{})
	_, err := s.Size(0, 10)
	if !errs.Is(err, errs.ErrCodeInvalidItem) {
		t.Errorf("Size(0, 10) error = %v, want %s", err, errs.ErrCodeInvalidItem)
	}
}

func TestSizeMonotonic(t *testing.T) {
	sizers := map[string]*Sizer{
		"area only":  mustSizer(t, Options{}),
		"with label": mustSizer(t, Options{LabelPadding: 1, Measurer: fonts.Approx{Size: 11}}),
	}

	for name, s := range sizers {
		for _, maxW := range []int{2, 7, 10, 64, 100, 900, 5000} {
			prev := 0.0
			for w := 1; w <= maxW; w++ {
				r, err := s.Size(w, maxW)
				if err != nil {
					t.Fatalf("%s: Size(%d, %d) error = %v", name, w, maxW, err)
				}
				if r < prev {
					t.Fatalf("%s: Size(%d, %d) = %v < Size(%d) = %v", name, w, maxW, r, w-1, prev)
				}
				prev = r
			}
		}
	}
}

func TestSizeTextFitOverride(t *testing.T) {
	// A tiny base radius forces the label to win.
	s := mustSizer(t, Options{BaseRadius: 1, LabelPadding: 2, Measurer: fonts.Approx{Size: 10}})

	r, err := s.Size(42, 42)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	w, h := fonts.Approx{Size: 10}.Measure("42")
	if want := math.Hypot(w, h)/2 + 2; math.Abs(r-want) > tol {
		t.Errorf("Size(42, 42) = %v, want label fit %v", r, want)
	}

	// weight 1 carries no label
	r, _ = s.Size(1, 42)
	if r != 1 {
		t.Errorf("Size(1, 42) = %v, want 1", r)
	}
}

func TestWeightAboveMaxClamps(t *testing.T) {
	s := mustSizer(t, Options{})
	a, _ := s.Size(50, 50)
	b, _ := s.Size(80, 50)
	if a != b {
		t.Errorf("Size(80, 50) = %v, want clamp to Size(50, 50) = %v", b, a)
	}
}

func TestNewValidatesAnchors(t *testing.T) {
	tests := []struct {
		name    string
		anchors []Anchor
	}{
		{"single", []Anchor{{0, 0}}},
		{"not starting at zero", []Anchor{{0.2, 0}, {1, 1}}},
		{"not ending at one", []Anchor{{0, 0}, {0.8, 1}}},
		{"decreasing share", []Anchor{{0, 0}, {0.5, 0.8}, {1, 0.5}}},
		{"repeated fraction", []Anchor{{0, 0}, {0.5, 0.2}, {0.5, 0.3}, {1, 1}}},
		{"share above one", []Anchor{{0, 0}, {1, 1.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Options{Anchors: tt.anchors}); !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("New() error = %v, want %s", err, errs.ErrCodeInvalidInput)
			}
		})
	}

	if _, err := New(Options{BaseRadius: -1}); err == nil {
		t.Error("New(BaseRadius: -1) error = nil, want error")
	}
}
