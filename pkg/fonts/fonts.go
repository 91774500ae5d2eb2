// Package fonts measures label text for glyph sizing.
//
// Count labels are drawn centred inside point glyphs, so the glyph sizer
// needs the rendered extent of a label before it can decide whether the
// area-derived radius is large enough. The measurement uses the Go Regular
// font, which is embedded in golang.org/x/image and therefore available
// without any system fonts.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultSize is the label font size in points used by the SVG sink.
const DefaultSize = 11.0

// FontFamily is the CSS font-family the SVG sink writes for labels.
// It matches the face used for measurement.
const FontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// Measurer measures strings with an OpenType face.
// Results are memoised per string; a face is not safe for concurrent use,
// so access is serialised.
type Measurer struct {
	mu   sync.Mutex
	face font.Face
	memo map[string][2]float64
}

// NewMeasurer parses Go Regular at the given point size (72 DPI, so one
// point is one pixel).
func NewMeasurer(size float64) (*Measurer, error) {
	if size <= 0 {
		size = DefaultSize
	}
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return &Measurer{face: face, memo: make(map[string][2]float64)}, nil
}

// Measure returns the advance width and line height of text in pixels.
func (m *Measurer) Measure(text string) (width, height float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if wh, ok := m.memo[text]; ok {
		return wh[0], wh[1]
	}
	adv := font.MeasureString(m.face, text)
	metrics := m.face.Metrics()
	width = float64(adv) / 64
	height = float64(metrics.Ascent+metrics.Descent) / 64
	m.memo[text] = [2]float64{width, height}
	return width, height
}

// Close releases the underlying face.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face.Close()
}

const (
	approxCharWidth  = 0.55
	approxLineHeight = 1.15
)

// Approx estimates text extent from the character count alone.
// It is used when no face can be loaded and in tests that need exact
// numbers.
type Approx struct {
	Size float64
}

// Measure returns an estimated width and height for text.
func (a Approx) Measure(text string) (width, height float64) {
	size := a.Size
	if size <= 0 {
		size = DefaultSize
	}
	return float64(len(text)) * size * approxCharWidth, size * approxLineHeight
}
