// Package sink renders a computed [layout.Result] into output formats.
//
// # Overview
//
// A "sink" draws the geometry a layout pass returned. It never re-derives
// positions: every x, y and extent comes from the result. This package
// provides:
//
//   - SVG: vector output with optional labels and hover highlighting
//   - JSON: the result plus row orderings, for other front ends
//   - PNG: raster output, rasterised from the SVG by headless Chrome
//
// # SVG Output
//
// [RenderSVG] draws interval rows as bars, points as discs sized by their
// radius, expanded points as a stem through the point band and sample
// spreads as beeswarm dots below it.
//
//	svg := sink.RenderSVG(res,
//	    sink.WithLabels(),
//	    sink.WithInteraction(),
//	)
//
// # SVG Options
//
//   - [WithLabels]: Draw item labels next to their glyphs
//   - [WithInteraction]: Embed CSS and JS for hover highlighting
//   - [WithPalette]: Override fill and stroke colours
//   - [WithMargin]: Pad the drawing on every side
//
// # PNG Output
//
// [RenderPNG] loads the SVG into headless Chrome through chromedp and
// screenshots it. Chrome or Chromium must be installed; the call honours
// ctx for cancellation.
//
//	png, err := sink.RenderPNG(ctx, res, sink.WithScale(2))
//
// # JSON Output
//
// [RenderJSON] writes the result with its placements, issues and row
// orderings as indented JSON.
//
// [layout.Result]: github.com/matzehuels/tracklayout/pkg/core/layout.Result
package sink
