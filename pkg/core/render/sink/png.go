package sink

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts  []SVGOption
	scale    float64
	execPath string
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the device scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithChromePath points chromedp at a specific Chrome or Chromium binary.
func WithChromePath(path string) PNGOption {
	return func(r *pngRenderer) { r.execPath = path }
}

// RenderPNG renders the result as SVG and rasterises it in headless Chrome.
// Requires a local Chrome or Chromium installation.
func RenderPNG(ctx context.Context, res *layout.Result, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}
	svg := RenderSVG(res, r.svgOpts...)

	// The viewport only has to contain the drawing; the screenshot is
	// clipped to the svg element.
	pad := 2*newSVGRenderer(r.svgOpts...).margin + viewportSlack
	w := int64(math.Ceil(res.Width + pad))
	h := int64(math.Ceil(res.Height + pad))
	return r.rasterise(ctx, svg, w, h)
}

const viewportSlack = 64

func (r pngRenderer) rasterise(ctx context.Context, svg []byte, w, h int64) ([]byte, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if r.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(w, h, chromedp.EmulateScale(r.scale)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.Screenshot("svg", &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp screenshot: %w", err)
	}
	return buf, nil
}
