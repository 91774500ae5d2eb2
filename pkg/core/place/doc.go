// Package place resolves one-dimensional overlap between track items.
//
// # Overview
//
// Two entry points share one ordering core:
//
//   - [Pack] stacks interval items (bars with a start and a width) into the
//     fewest rows a greedy first-fit can find. Row count becomes the
//     track's height.
//   - [Relax] places point items (discs with an ideal x and a radius) on a
//     single row so that they never overlap and drift as close as possible
//     to their ideal x without leaving the canvas.
//
// Both sort their input by ideal position with ties broken by input order,
// so the same input always yields the same output.
//
// # Packing
//
// Items are scanned left to right. Each row remembers its rightmost
// occupied pixel; an item goes into the first row whose edge does not
// pass the item's start, otherwise a new row opens:
//
//	p := place.Pack([]place.Interval{
//	    {ID: "a", Start: 0, Width: 10},
//	    {ID: "b", Start: 5, Width: 10},
//	    {ID: "c", Start: 20, Width: 10},
//	})
//	// p.Rows == 2; a and c share row 0, b sits in row 1
//
// # Relaxation
//
// Points are first packed edge to edge from the left canvas edge. Then,
// for each point from the left, the point and everything right of it move
// right one step at a time for as long as the total displacement
// Σ|x − ideal| of the moved points strictly decreases. No step may push the
// last point past the right canvas edge.
//
// The walk stops at the first shift that no longer helps, which leaves a
// crowded group pressed against the left end of its equally good range.
// A final pass slides every run of touching discs, within the room its
// neighbours leave, to the shift that keeps its displacement minimal and
// also minimises its squared displacement. That shift is exact, so a disc
// with room on both sides sits on its ideal. Two discs fighting over the
// same spot end up pushed apart symmetrically.
//
// [WithoutRelaxation] keeps the edge-to-edge seed, which some tracks
// prefer for speed.
//
// # Auditing
//
// [AuditRows] and [AuditPoints] re-check the no-overlap guarantee of a
// finished placement with an interval tree. The layout controller runs
// them when verification is enabled.
package place
