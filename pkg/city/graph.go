package city

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/geom"
)

var (
	// ErrUnknownPoint is returned when a PointID does not refer to a point
	// in the graph.
	ErrUnknownPoint = errors.New("unknown point")

	// ErrPathNotFound is returned by [Graph.DirectedPath] when the target is
	// not reached within the step bound or the neighbor chain ends.
	ErrPathNotFound = errors.New("path not found")

	// ErrOffPath is returned when a point's ratio position does not fall
	// strictly inside the path it is being placed on. It means the graph and
	// the geometric positions have diverged.
	ErrOffPath = errors.New("point lies off path")

	// ErrNotNeighbors is returned by [Graph.InsertPoint] when the two points
	// are not linked in any direction.
	ErrNotNeighbors = errors.New("points are not neighbors")

	// ErrAsymmetric is returned by [Graph.Validate] when a neighbor link has
	// no matching reverse link.
	ErrAsymmetric = errors.New("asymmetric neighbor link")
)

// DefaultMaxSteps bounds directed path walks.
const DefaultMaxSteps = 1000

// PointID identifies a point in a [Graph].
type PointID int

// NoPoint marks an empty neighbor slot.
const NoPoint PointID = -1

// Direction indexes a point's neighbor slots.
type Direction int

const (
	North Direction = iota
	West
	South
	East
)

// Directions lists all directions in slot order.
var Directions = [4]Direction{North, West, South, East}

// Opposite returns the direction pointing back along the same link.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Point is a node of the planar graph.
type Point struct {
	Pos       r3.Vec
	Neighbors [4]PointID
}

// Neighbor returns the point linked in direction d, or NoPoint.
func (p Point) Neighbor(d Direction) PointID { return p.Neighbors[d] }

// Edge is an undirected link between two points. Dir is the direction from
// From to To and is always East or South.
type Edge struct {
	From PointID
	To   PointID
	Dir  Direction
}

// Graph is an arena of points with symmetric four-directional links.
// The zero value is an empty, usable graph.
type Graph struct {
	points []Point
}

// NewGraph returns an empty graph.
func NewGraph() *Graph { return &Graph{} }

// Add appends an unlinked point at pos and returns its ID.
func (g *Graph) Add(pos r3.Vec) PointID {
	g.points = append(g.points, Point{
		Pos:       pos,
		Neighbors: [4]PointID{NoPoint, NoPoint, NoPoint, NoPoint},
	})
	return PointID(len(g.points) - 1)
}

// Len returns the number of points.
func (g *Graph) Len() int { return len(g.points) }

// Has reports whether id refers to a point of g.
func (g *Graph) Has(id PointID) bool { return id >= 0 && int(id) < len(g.points) }

// Point returns the point with the given ID.
func (g *Graph) Point(id PointID) (Point, bool) {
	if !g.Has(id) {
		return Point{}, false
	}
	return g.points[id], true
}

// Pos returns the position of id. It panics if id is unknown; callers hold
// IDs that came from the same graph.
func (g *Graph) Pos(id PointID) r3.Vec { return g.points[id].Pos }

// Neighbor returns id's neighbor in direction d, or NoPoint.
func (g *Graph) Neighbor(id PointID, d Direction) PointID { return g.points[id].Neighbors[d] }

// Points returns a copy of all points, indexed by PointID.
func (g *Graph) Points() []Point { return slices.Clone(g.points) }

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph { return &Graph{points: slices.Clone(g.points)} }

// Link makes b the neighbor of a in direction d, and a the neighbor of b in
// the opposite direction.
func (g *Graph) Link(a PointID, d Direction, b PointID) error {
	if !g.Has(a) {
		return fmt.Errorf("link %d: %w", a, ErrUnknownPoint)
	}
	if !g.Has(b) {
		return fmt.Errorf("link %d: %w", b, ErrUnknownPoint)
	}
	g.points[a].Neighbors[d] = b
	g.points[b].Neighbors[d.Opposite()] = a
	return nil
}

// DirectedPath walks neighbor links from `from` in direction d until it
// reaches `to`, returning the visited IDs including both ends. It returns
// ErrPathNotFound if `to` is not reached within maxSteps hops; maxSteps <= 0
// uses DefaultMaxSteps.
func (g *Graph) DirectedPath(from, to PointID, d Direction, maxSteps int) ([]PointID, error) {
	if !g.Has(from) || !g.Has(to) {
		return nil, ErrUnknownPoint
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	path := []PointID{from}
	cur := from
	for steps := 0; cur != to; steps++ {
		if steps == maxSteps {
			return nil, fmt.Errorf("%d→%d heading %s after %d steps: %w", from, to, d, maxSteps, ErrPathNotFound)
		}
		cur = g.points[cur].Neighbors[d]
		if cur == NoPoint {
			return nil, fmt.Errorf("%d→%d heading %s: chain ends: %w", from, to, d, ErrPathNotFound)
		}
		path = append(path, cur)
	}
	return path, nil
}

// NeighborsOn returns the consecutive path points that enclose pos, comparing
// ratio positions along the line from the first to the last path point.
// It returns ErrOffPath if pos does not lie strictly between the path's ends.
func (g *Graph) NeighborsOn(pos r3.Vec, path []PointID) (prev, next PointID, err error) {
	if len(path) < 2 {
		return NoPoint, NoPoint, fmt.Errorf("path of %d points: %w", len(path), ErrOffPath)
	}
	start := g.Pos(path[0])
	end := g.Pos(path[len(path)-1])

	r := geom.PointAsRatio(pos, start, end)
	if !(r > 0 && r < 1) {
		return NoPoint, NoPoint, fmt.Errorf("ratio %v: %w", r, ErrOffPath)
	}
	for i := 1; i < len(path); i++ {
		if geom.PointAsRatio(g.Pos(path[i]), start, end) > r {
			return path[i-1], path[i], nil
		}
	}
	return NoPoint, NoPoint, fmt.Errorf("ratio %v beyond path points: %w", r, ErrOffPath)
}

// direction returns the slot of a that holds b.
func (g *Graph) direction(a, b PointID) (Direction, bool) {
	for _, d := range Directions {
		if g.points[a].Neighbors[d] == b {
			return d, true
		}
	}
	return 0, false
}

// InsertPoint places id between the linked points p0 and p1. If p1 is p0's
// neighbor in direction d, afterwards p0[d] = id, id[d] = p1,
// p1[opposite] = id and id[opposite] = p0. The graph is left unchanged if p0
// and p1 are not neighbors.
func (g *Graph) InsertPoint(id, p0, p1 PointID) error {
	for _, p := range []PointID{id, p0, p1} {
		if !g.Has(p) {
			return fmt.Errorf("insert %d: %w", p, ErrUnknownPoint)
		}
	}
	d, ok := g.direction(p0, p1)
	if !ok {
		return fmt.Errorf("insert between %d and %d: %w", p0, p1, ErrNotNeighbors)
	}
	opp := d.Opposite()
	g.points[p0].Neighbors[d] = id
	g.points[p1].Neighbors[opp] = id
	g.points[id].Neighbors[d] = p1
	g.points[id].Neighbors[opp] = p0
	return nil
}

// InsertAt adds a point at pos and inserts it between p0 and p1. No point is
// added when p0 and p1 are not neighbors.
func (g *Graph) InsertAt(pos r3.Vec, p0, p1 PointID) (PointID, error) {
	if !g.Has(p0) || !g.Has(p1) {
		return NoPoint, ErrUnknownPoint
	}
	if _, ok := g.direction(p0, p1); !ok {
		return NoPoint, fmt.Errorf("insert between %d and %d: %w", p0, p1, ErrNotNeighbors)
	}
	id := g.Add(pos)
	if err := g.InsertPoint(id, p0, p1); err != nil {
		return NoPoint, err
	}
	return id, nil
}

// RemoveLast deletes id, which must be the most recently added point, and
// links its neighbors across it. It undoes an InsertAt or Add.
func (g *Graph) RemoveLast(id PointID) error {
	if !g.Has(id) || int(id) != len(g.points)-1 {
		return fmt.Errorf("remove %d: not the last point: %w", id, ErrUnknownPoint)
	}
	nb := g.points[id].Neighbors
	for _, d := range Directions {
		if n := nb[d]; n != NoPoint && g.points[n].Neighbors[d.Opposite()] == id {
			g.points[n].Neighbors[d.Opposite()] = nb[d.Opposite()]
		}
	}
	g.points = g.points[:id]
	return nil
}

// CheckNearPoints decides whether a new point at pos should reuse an
// existing point of path. Let prev and next be the path points enclosing
// pos. If prev is closer than distance and no farther than next, prev is
// returned; otherwise if next is closer than distance, next is returned.
// Path ends are only returned when includeEnds is set. NoPoint means the
// new point must be kept.
func (g *Graph) CheckNearPoints(pos r3.Vec, path []PointID, distance float64, includeEnds bool) (PointID, error) {
	prev, next, err := g.NeighborsOn(pos, path)
	if err != nil {
		return NoPoint, err
	}
	d0 := geom.Length(g.Pos(prev), pos)
	d1 := geom.Length(pos, g.Pos(next))

	if d0 < distance && d0 <= d1 {
		if prev != path[0] || includeEnds {
			return prev, nil
		}
	} else if d1 < distance {
		if next != path[len(path)-1] || includeEnds {
			return next, nil
		}
	}
	return NoPoint, nil
}

// Direction searches outward from `from` along all four directions in
// lock-step and reports the direction in which `to` is first reached.
// maxSteps <= 0 uses DefaultMaxSteps.
func (g *Graph) Direction(from, to PointID, maxSteps int) (Direction, bool) {
	if !g.Has(from) || !g.Has(to) {
		return 0, false
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	fronts := [4]PointID{from, from, from, from}
	for range maxSteps {
		moved := false
		for _, d := range Directions {
			n := g.points[fronts[d]].Neighbors[d]
			if n == NoPoint {
				continue
			}
			if n == to {
				return d, true
			}
			fronts[d] = n
			moved = true
		}
		if !moved {
			break
		}
	}
	return 0, false
}

// Edges returns every link once, oriented East or South.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i, p := range g.points {
		for _, d := range []Direction{East, South} {
			if n := p.Neighbors[d]; n != NoPoint {
				edges = append(edges, Edge{From: PointID(i), To: n, Dir: d})
			}
		}
	}
	return edges
}

// StreetLength returns the summed length of all links.
func (g *Graph) StreetLength() float64 {
	var total float64
	for _, e := range g.Edges() {
		total += geom.Length(g.Pos(e.From), g.Pos(e.To))
	}
	return total
}

// Validate checks that every neighbor reference points at a known point and
// is matched by the reverse link.
func (g *Graph) Validate() error {
	for i, p := range g.points {
		a := PointID(i)
		for _, d := range Directions {
			b := p.Neighbors[d]
			if b == NoPoint {
				continue
			}
			if !g.Has(b) {
				return fmt.Errorf("point %d %s → %d: %w", a, d, b, ErrUnknownPoint)
			}
			if back := g.points[b].Neighbors[d.Opposite()]; back != a {
				return fmt.Errorf("point %d %s → %d, reverse → %d: %w", a, d, b, back, ErrAsymmetric)
			}
		}
	}
	return nil
}
