package city

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/geom"
)

// Corner indices of a [Cell].
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// CellParams are the split parameters copied onto a cell when it is selected
// for subdivision.
type CellParams struct {
	MinEdgeLength float64
	Stagger       float64
	Var1          float64
	Var2          float64
	SeedAngle     float64
}

// Cell is a quadrilateral over four graph points.
//
// EdgeLengths are computed at construction in the order (0–1), (1–3),
// (0–2), (2–3): top, right, left, bottom.
type Cell struct {
	Corners     [4]PointID
	EdgeLengths [4]float64
	Params      CellParams
}

// NewCell builds a cell over the given corners and records its edge lengths.
func NewCell(g *Graph, c0, c1, c2, c3 PointID) (Cell, error) {
	corners := [4]PointID{c0, c1, c2, c3}
	for _, c := range corners {
		if !g.Has(c) {
			return Cell{}, fmt.Errorf("cell corner %d: %w", c, ErrUnknownPoint)
		}
	}
	p0, p1, p2, p3 := g.Pos(c0), g.Pos(c1), g.Pos(c2), g.Pos(c3)
	return Cell{
		Corners: corners,
		EdgeLengths: [4]float64{
			geom.Length(p0, p1),
			geom.Length(p1, p3),
			geom.Length(p0, p2),
			geom.Length(p2, p3),
		},
	}, nil
}

// MakeSimple links the corners of a fresh rectangular cell to each other.
func MakeSimple(g *Graph, c Cell) error {
	c0, c1, c2, c3 := c.Corners[TopLeft], c.Corners[TopRight], c.Corners[BottomLeft], c.Corners[BottomRight]
	links := []struct {
		a PointID
		d Direction
		b PointID
	}{
		{c0, South, c2},
		{c0, East, c1},
		{c1, South, c3},
		{c2, East, c3},
	}
	for _, l := range links {
		if err := g.Link(l.a, l.d, l.b); err != nil {
			return err
		}
	}
	return nil
}

// Positions returns the corner positions in corner order.
func (c Cell) Positions(g *Graph) [4]r3.Vec {
	return [4]r3.Vec{
		g.Pos(c.Corners[0]),
		g.Pos(c.Corners[1]),
		g.Pos(c.Corners[2]),
		g.Pos(c.Corners[3]),
	}
}

// Area returns the cell's area. See [geom.QuadArea].
func (c Cell) Area(g *Graph) float64 {
	p := c.Positions(g)
	return geom.QuadArea(p[0], p[1], p[2], p[3])
}

// MinEdge returns the shortest of the four edge lengths.
func (c Cell) MinEdge() float64 { return slices.Min(c.EdgeLengths[:]) }

// PopCenter returns the population center of a cell: the point at ratio
// density on the segment from the corner nearest to center towards the first
// corner that is not reachable from it along a straight street.
func PopCenter(g *Graph, c Cell, center r3.Vec, density float64) (r3.Vec, bool) {
	pos := c.Positions(g)
	nearest := c.Corners[geom.Nearest(pos[:], center)]
	for _, corner := range c.Corners {
		if corner == nearest {
			continue
		}
		if _, linked := g.Direction(nearest, corner, DefaultMaxSteps); !linked {
			return geom.Lerp(g.Pos(nearest), g.Pos(corner), density), true
		}
	}
	return r3.Vec{}, false
}

// Inset returns the corners of c moved inward by length along each edge, in
// corner order. It reports false when an edge pair is parallel and a corner
// cannot be placed.
func Inset(g *Graph, c Cell, length float64) ([4]r3.Vec, bool) {
	p := c.Positions(g)
	c0, c1, c2, c3 := p[0], p[1], p[2], p[3]

	top := geom.Angle(c0, c1)
	left := geom.Angle(c0, c2)
	right := geom.Angle(c1, c3)
	bottom := geom.Angle(c2, c3)

	type line struct {
		at    r3.Vec
		angle float64
	}
	pairs := [4][2]line{
		{
			{geom.LerpByLength(c0, c1, length), left},
			{geom.LerpByLength(c0, c2, length), top},
		},
		{
			{geom.LerpByLength(c0, c1, geom.Length(c0, c1)-length), right},
			{geom.LerpByLength(c1, c3, length), top},
		},
		{
			{geom.LerpByLength(c0, c2, geom.Length(c0, c2)-length), bottom},
			{geom.LerpByLength(c2, c3, length), left},
		},
		{
			{geom.LerpByLength(c2, c3, geom.Length(c2, c3)-length), right},
			{geom.LerpByLength(c1, c3, geom.Length(c1, c3)-length), bottom},
		},
	}

	var out [4]r3.Vec
	for i, pr := range pairs {
		pt, ok := geom.Intersect(pr[0].at, pr[0].angle, pr[1].at, pr[1].angle)
		if !ok {
			return out, false
		}
		out[i] = pt
	}
	return out, true
}
