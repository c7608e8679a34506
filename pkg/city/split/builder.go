package split

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/city"
	"github.com/matzehuels/streetblock/pkg/geom"
)

var errIncomplete = errors.New("split incomplete")

// edge names a cell edge by corner index, walked in dir.
type edge struct {
	from, to int
	dir      city.Direction
}

// base holds the state shared by both builder variants.
type base struct {
	g    *city.Graph
	cell city.Cell
	opts options

	originEdge edge
	endEdge    edge

	origin   city.PointID
	end      city.PointID
	children [][4]city.PointID

	// originAdded is set when SetOrigin added a point rather than
	// snapping to an existing junction.
	originAdded bool
}

func newBase(g *city.Graph, cell city.Cell, o options, originEdge, endEdge edge) base {
	return base{
		g:          g,
		cell:       cell,
		opts:       o,
		originEdge: originEdge,
		endEdge:    endEdge,
		origin:     city.NoPoint,
		end:        city.NoPoint,
	}
}

func (b *base) corners(e edge) (city.PointID, city.PointID) {
	return b.cell.Corners[e.from], b.cell.Corners[e.to]
}

// SetOrigin places the street start at Var1 along the origin edge, moved
// out to MinEdgeLength when it would sit closer than that to the edge start.
func (b *base) SetOrigin() error {
	start, end := b.corners(b.originEdge)
	p0, p1 := b.g.Pos(start), b.g.Pos(end)

	pos := geom.Lerp(p0, p1, b.cell.Params.Var1)
	if geom.Length(p0, pos) < b.cell.Params.MinEdgeLength {
		pos = geom.LerpByLength(p0, p1, b.cell.Params.MinEdgeLength)
	}
	id, added, err := b.place(pos, start, end, b.originEdge.dir)
	if err != nil {
		return err
	}
	b.origin, b.originAdded = id, added
	return nil
}

// SetEndPoint places the street end at Var2 along the end edge. On failure
// a point added by SetOrigin is removed again, leaving the graph as it was
// before the split.
func (b *base) SetEndPoint() error {
	start, end := b.corners(b.endEdge)
	pos := geom.Lerp(b.g.Pos(start), b.g.Pos(end), b.cell.Params.Var2)
	id, _, err := b.place(pos, start, end, b.endEdge.dir)
	if err != nil {
		return errors.Join(err, b.dropOrigin())
	}
	b.end = id
	return nil
}

func (b *base) dropOrigin() error {
	if !b.originAdded {
		return nil
	}
	if err := b.g.RemoveLast(b.origin); err != nil {
		return fmt.Errorf("drop origin: %w", err)
	}
	b.origin, b.originAdded = city.NoPoint, false
	return nil
}

// place snaps pos onto an existing junction of the edge chain from start to
// end, or inserts a new point into the chain. added reports whether a point
// was appended to the graph. The graph is unchanged when err is non-nil.
func (b *base) place(pos r3.Vec, start, end city.PointID, d city.Direction) (id city.PointID, added bool, err error) {
	path, err := b.g.DirectedPath(start, end, d, city.DefaultMaxSteps)
	if err != nil {
		if errors.Is(err, city.ErrPathNotFound) && b.opts.policy == PathLenient {
			id := b.g.Add(pos)
			b.opts.logger.Warn("edge path not found, adding unlinked point",
				"from", start, "to", end, "heading", d, "point", id)
			return id, true, nil
		}
		return city.NoPoint, false, err
	}

	snap, err := b.g.CheckNearPoints(pos, path, b.cell.Params.Stagger, false)
	if err != nil {
		return city.NoPoint, false, err
	}
	if snap != city.NoPoint {
		b.opts.logger.Debug("snapped to junction", "point", snap)
		return snap, false, nil
	}

	prev, next, err := b.g.NeighborsOn(pos, path)
	if err != nil {
		return city.NoPoint, false, err
	}
	id, err = b.g.InsertAt(pos, prev, next)
	return id, err == nil, err
}

// Origin returns the street start, or city.NoPoint before SetOrigin.
func (b *base) Origin() city.PointID { return b.origin }

// EndPoint returns the street end, or city.NoPoint before SetEndPoint.
func (b *base) EndPoint() city.PointID { return b.end }

// link joins origin to end in direction d and records the child corners.
func (b *base) link(d city.Direction, children [][4]city.PointID) error {
	if b.origin == city.NoPoint || b.end == city.NoPoint {
		return errIncomplete
	}
	if err := b.g.Link(b.origin, d, b.end); err != nil {
		return fmt.Errorf("link street: %w", err)
	}
	b.children = children
	return nil
}

// BuildCells constructs the child cells from the computed corners.
func (b *base) BuildCells() ([]city.Cell, error) {
	if len(b.children) == 0 {
		return nil, errIncomplete
	}
	cells := make([]city.Cell, 0, len(b.children))
	for _, c := range b.children {
		cell, err := city.NewCell(b.g, c[0], c[1], c[2], c[3])
		if err != nil {
			return nil, fmt.Errorf("build child: %w", err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
