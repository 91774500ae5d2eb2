// Package io reads and writes track files: a canvas width plus the items to
// lay out.
//
// # Formats
//
// JSON:
//
//	{
//	  "canvas_width": 800,
//	  "items": [
//	    {"id": "cnv1", "kind": "interval", "ideal_start": 0, "ideal_stop": 10},
//	    {"id": "bnd1", "kind": "point", "ideal_x": 100, "weight": 3,
//	     "samples": [0.1, 0.4, 0.9]}
//	  ]
//	}
//
// TOML uses the same keys:
//
//	canvas_width = 800
//
//	[[items]]
//	id = "bnd1"
//	kind = "point"
//	ideal_x = 100
//	weight = 3
//
// [ImportFile] picks the decoder from the file extension (.json or .toml);
// "-" reads JSON from standard input. Unknown keys are rejected so typos do
// not silently drop data.
//
// Decoding checks the file's structure only. Geometry problems (negative
// extents, non-finite positions) are the layout controller's to report.
package io
