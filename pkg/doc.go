// Package pkg provides the core libraries for Tracklayout genome-track layout.
//
// # Overview
//
// Tracklayout places the items of a 1-D genome track on a canvas: intervals
// are packed into rows, points are spread apart without overlapping, and
// each point can be expanded or spread into a beeswarm of its samples. The
// pkg directory is organized into three main areas:
//
//  1. [core] - Domain logic (sizing, placement, modes, rendering)
//  2. [pipeline] - Orchestration (read → layout → render)
//  3. Infrastructure ([cache], [session], [observability], [io])
//
// # Architecture
//
// The typical data flow through Tracklayout:
//
//	Track file (TOML/JSON)
//	         ↓
//	    [io] package (decode items)
//	         ↓
//	    [core/layout] package (size, pack, relax, resolve modes)
//	         ↓
//	    [core/render/sink] package (SVG, PNG, JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tracklayout/pkg/core/layout"
//	    "github.com/matzehuels/tracklayout/pkg/core/mode"
//	    "github.com/matzehuels/tracklayout/pkg/core/render/sink"
//	)
//
//	machine := mode.New(mode.Options{})
//	ctrl := layout.New(layout.WithMachine(machine))
//
//	res, _ := ctrl.Run(items, layout.Canvas{Width: 800})
//	_, _ = machine.Apply("bnd2", 3, mode.Expand)
//	res, _ = ctrl.Run(items, layout.Canvas{Width: 800})
//
//	svg := sink.RenderSVG(res, sink.WithLabels())
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/glyph] - Point radius from weight on a piecewise-linear scale, with
// optional label measurement.
//
// [core/place] - Interval row packing, point relaxation and the overlap
// audit.
//
// [core/mode] - The per-item display mode state machine. Modes the user sets
// are pinned and survive between passes.
//
// [core/swarm] - Beeswarm layout of a point's samples.
//
// [core/layout] - One layout pass: the [layout.Controller] ties the packages
// above together.
//
// [core/render/sink] - Output formats (SVG, PNG, JSON).
//
// ## Infrastructure
//
// [pipeline] - Read, layout and render with caching. Used by the CLI and the
// HTTP server so both behave the same.
//
// [cache] - Content-addressed caching with file, Redis and null backends.
//
// [session] - Mode snapshots persisted in the cache, one per session.
//
// [observability] - Hooks for pipeline, cache, mode and HTTP events.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core
// [core/glyph]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/glyph
// [core/place]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/place
// [core/mode]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/mode
// [core/swarm]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/swarm
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/layout
// [core/render/sink]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/render/sink
// [io]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/observability
// [layout.Controller]: https://pkg.go.dev/github.com/matzehuels/tracklayout/pkg/core/layout#Controller
package pkg
