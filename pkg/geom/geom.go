// Package geom provides the planar geometry used by the block subdivision
// engine.
//
// # Overview
//
// All functions are pure and operate on [r3.Vec] positions. The subdivision
// works in the XY plane with Y growing downward (towards the "south" of the
// extent); Z is carried through interpolation but ignored by every distance,
// angle and area computation.
//
// # Numerical Notes
//
// [Lerp] reproduces its endpoints exactly at r=0 and r=1, so points snapped
// to an existing edge never drift off it. [Angle] special-cases exact
// horizontals to return 0 or π without going through atan2. [Intersect] uses
// slope form and treats near-vertical lines separately; parallel lines are
// reported instead of producing infinities.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// verticalTolerance bounds |cos(angle)| below which a line is treated as
// parallel to the Y axis.
const verticalTolerance = 1e-9

// slopeTolerance is the slope difference below which two lines are parallel.
const slopeTolerance = 1e-12

// flat drops the Z component.
func flat(p r3.Vec) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Length returns the Euclidean length of the segment p0p1 in the XY plane.
func Length(p0, p1 r3.Vec) float64 {
	return r2.Norm(r2.Sub(flat(p1), flat(p0)))
}

// PathLength returns the summed length of the segments joining consecutive
// points. Paths with fewer than two points have zero length.
func PathLength(points []r3.Vec) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Length(points[i-1], points[i])
	}
	return total
}

// Lerp returns the point at parameter r along p0→p1, computed componentwise
// as (1-r)*p0 + r*p1. The parameter is not clamped.
func Lerp(p0, p1 r3.Vec, r float64) r3.Vec {
	return r3.Add(r3.Scale(1-r, p0), r3.Scale(r, p1))
}

// LerpByLength returns the point at distance l from p0 towards p1.
// If l reaches or exceeds the segment length, p1 is returned unchanged.
func LerpByLength(p0, p1 r3.Vec, l float64) r3.Vec {
	total := Length(p0, p1)
	if l >= total {
		return p1
	}
	return Lerp(p0, p1, l/total)
}

// Angle returns the direction of the segment p0→p1 in radians, in [0, 2π).
// Segments with equal Y return exactly 0 when p1 lies at greater X, and π
// otherwise.
func Angle(p0, p1 r3.Vec) float64 {
	if p0.Y == p1.Y {
		if p1.X > p0.X {
			return 0
		}
		return math.Pi
	}
	a := math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
	if p1.Y > p0.Y {
		return a
	}
	return 2*math.Pi + a
}

// PointAsRatio returns the position of p along the line through p0 and p1,
// with p0 at 0 and p1 at 1. The ratio is measured on whichever axis varies
// more between p0 and p1, so axis-aligned lines never divide by zero.
// The result is NaN when p0 and p1 coincide.
func PointAsRatio(p, p0, p1 r3.Vec) float64 {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	if math.Abs(dx) >= math.Abs(dy) {
		return (p.X - p0.X) / dx
	}
	return (p.Y - p0.Y) / dy
}

// QuadArea returns the area of the quadrilateral with corners c0 (top-left),
// c1 (top-right), c2 (bottom-left) and c3 (bottom-right), computed as half
// the absolute cross product of the diagonals c0→c3 and c2→c1.
//
// The formula is exact for any simple quadrilateral, including the
// rectangular seed. For self-intersecting corner orders it is only an
// approximation.
func QuadArea(c0, c1, c2, c3 r3.Vec) float64 {
	d0 := r2.Sub(flat(c3), flat(c0))
	d1 := r2.Sub(flat(c1), flat(c2))
	return math.Abs(r2.Cross(d0, d1)) / 2
}

// Intersect returns the intersection of the line through p0 at angle a0 and
// the line through p1 at angle a1. When the lines are parallel or colinear it
// returns p0 and false. The returned point has Z = 0.
func Intersect(p0 r3.Vec, a0 float64, p1 r3.Vec, a1 float64) (r3.Vec, bool) {
	v0 := math.Abs(math.Cos(a0)) < verticalTolerance
	v1 := math.Abs(math.Cos(a1)) < verticalTolerance
	m0 := math.Tan(a0)
	m1 := math.Tan(a1)

	switch {
	case v0 && v1:
		return p0, false
	case v0:
		x := p0.X
		return r3.Vec{X: x, Y: m1*(x-p1.X) + p1.Y}, true
	case v1:
		x := p1.X
		return r3.Vec{X: x, Y: m0*(x-p0.X) + p0.Y}, true
	case math.Abs(m0-m1) < slopeTolerance:
		return p0, false
	}

	x := (p1.Y - p0.Y + m0*p0.X - m1*p1.X) / (m0 - m1)
	return r3.Vec{X: x, Y: m1*(x-p1.X) + p1.Y}, true
}

// Nearest returns the index of the point closest to target.
// Ties resolve to the earliest index; an empty slice yields -1.
func Nearest(points []r3.Vec, target r3.Vec) int {
	if len(points) == 0 {
		return -1
	}
	best := 0
	shortest := Length(points[0], target)
	for i := 1; i < len(points); i++ {
		if l := Length(points[i], target); l < shortest {
			best = i
			shortest = l
		}
	}
	return best
}
