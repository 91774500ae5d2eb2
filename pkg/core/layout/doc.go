// Package layout runs one layout pass over the items of a track.
//
// # Overview
//
// A [Controller] turns caller-supplied [Item]s into a [Result]: one
// [Placement] per item with its final x, footprint, row, display mode and
// optional beeswarm. The pass works in fixed steps:
//
//  1. Validate the canvas and every item. Bad items are isolated into
//     [Result.Issues], or fail the pass under [WithStrict].
//  2. Size point items from their weight with a [glyph.Sizer].
//  3. Stack interval items into rows with [place.Pack].
//  4. Relax point items onto one row with [place.Relax].
//  5. Resolve each point's mode from the [mode.Machine], which keeps user
//     choices across passes, and lay out spread samples with a
//     [swarm.Layouter].
//  6. Stack the bands vertically and total the height.
//
// Geometry is recomputed from scratch on every pass. Only mode state
// survives between passes.
//
// # Vertical Bands
//
// From the top, a result has the interval rows (Rows·RowHeight), the point
// band (twice the largest radius, or the expanded height once any point is
// expanded) and the swarm band (the tallest swarm). Each [Placement]
// carries its Y so renderers never re-derive positions.
//
// # Building a Controller
//
//	c := layout.New(
//	    layout.WithRowHeight(12),
//	    layout.WithSizer(sizer),
//	    layout.WithStrict(),
//	)
//	res, err := c.Run(items, layout.Canvas{Width: 800})
//
// # Options
//
//   - [WithSizer]: glyph sizing (default [glyph.New] with defaults)
//   - [WithMachine]: mode state shared with other controllers
//   - [WithSwarm]: beeswarm collaborator and budget
//   - [WithRowHeight], [WithRowGap], [WithMinIntervalWidth]: interval bands
//   - [WithExpandedHeight], [WithExpandedWidth]: expanded point glyphs
//   - [WithoutRelaxation]: keep points packed edge to edge
//   - [WithStrict]: fail the pass on the first invalid item
//   - [WithVerify]: re-check overlap invariants with an interval tree
//   - [WithLogger]: debug logging of each pass
package layout
