// Package city provides the planar point graph and the quadrilateral cells
// that the block subdivision engine operates on.
//
// # Overview
//
// A [Graph] is an arena of points addressed by stable [PointID] indices.
// Every point has four neighbor slots, one per [Direction]:
//
//	        North (0)
//	           |
//	West (1) --+-- East (3)
//	           |
//	        South (2)
//
// Y grows towards the south. A link is always symmetric: if point A has B
// as its neighbor in direction d, then B has A in direction d.Opposite().
// [Graph.Link], [Graph.InsertPoint] and [Graph.InsertAt] maintain this
// invariant; [Graph.Validate] checks it exhaustively.
//
// A [Cell] is a quadrilateral over four points in a fixed corner order:
//
//	0 ---- 1
//	|      |
//	2 ---- 3
//
// A cell's edges may pass through additional points inserted by neighboring
// splits (T-junctions). [Graph.DirectedPath] recovers the full chain of points
// between two corners by walking neighbor links.
//
// # Snapping
//
// [Graph.CheckNearPoints] implements the stagger policy: a new split point
// that would land within a given distance of an existing interior point of
// the same edge reuses that point instead of creating a near-duplicate.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The subdivision driver
// processes cells sequentially and owns its graph exclusively.
package city
