// Package glyph converts aggregate counts into point-glyph radii.
//
// # Overview
//
// A point item (a structural-variant breakpoint, a splice junction, a
// cluster of merged mutation calls) is drawn as a disc whose area encodes
// how many calls or samples were aggregated into it. [Sizer.Size] maps a
// weight onto a radius with a bounded, non-linear scale so that a track
// with thousands of items never produces discs wider than the track, while
// a handful of items still show visibly distinct sizes.
//
// # Scale
//
// The unit area is u = π·r0² for the baseline radius r0. The largest
// weight in view maps to u·k, where k grows slowly with the largest
// weight (see [Multiplier]). Weights in between are placed on a
// piecewise-linear curve through [Anchor] pairs:
//
//	area(w) = u · (1 + share(f) · (k − 1)),  f = (w − 1) / (max − 1)
//
// The default anchors rise steeply for the first tenth of the weight range
// and flatten afterwards.
//
// # Labels
//
// Weights above one are labelled with their count. When a [Measurer] is
// configured and the label's bounding diagonal does not fit the
// area-derived disc, the radius is raised until it does.
package glyph
