package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/city"
	"github.com/matzehuels/streetblock/pkg/city/generate"
	"github.com/matzehuels/streetblock/pkg/geom"
)

// Vec is a serialized position.
type Vec struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z,omitempty" bson:"z,omitempty"`
}

func toVec(v r3.Vec) Vec { return Vec{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vec) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Point is a serialized graph point.
type Point struct {
	ID        int    `json:"id" bson:"id"`
	Pos       Vec    `json:"pos" bson:"pos"`
	Neighbors [4]int `json:"neighbors" bson:"neighbors"`
}

// Cell is a serialized cell. Area is informational and ignored on import.
type Cell struct {
	Corners [4]int  `json:"corners" bson:"corners"`
	Area    float64 `json:"area" bson:"area"`
}

// LotCenterDensity is the ratio along a cell's diagonal, from the corner
// nearest the city center, at which a lot's population center is placed.
const LotCenterDensity = 0.5

// Lot is the inset footprint of the cell at index Cell.
type Lot struct {
	Cell    int    `json:"cell" bson:"cell"`
	Corners [4]Vec `json:"corners" bson:"corners"`
	Center  *Vec   `json:"center,omitempty" bson:"center,omitempty"`
}

// City is a complete snapshot of a generation run.
type City struct {
	ID         string          `json:"id,omitempty" bson:"_id,omitempty"`
	Seed       uint64          `json:"seed" bson:"seed"`
	Generation int             `json:"generation" bson:"generation"`
	Converged  bool            `json:"converged" bson:"converged"`
	Params     generate.Params `json:"params" bson:"params"`
	Points     []Point         `json:"points" bson:"points"`
	Cells      []Cell          `json:"cells" bson:"cells"`
	Lots       []Lot           `json:"lots,omitempty" bson:"lots,omitempty"`
}

// FromGenerator snapshots the generator's current state. When inset is
// positive, a lot is added for every cell whose inset corners are defined,
// carrying the cell's population center relative to the generator's center.
func FromGenerator(g *generate.Generator, inset float64) City {
	graph := g.Graph()
	cells := g.Cells()

	out := City{
		Generation: g.Generation(),
		Converged:  !g.Eligible(),
		Params:     g.Params(),
		Points:     make([]Point, graph.Len()),
		Cells:      make([]Cell, len(cells)),
	}
	for i, p := range graph.Points() {
		pt := Point{ID: i, Pos: toVec(p.Pos)}
		for d, n := range p.Neighbors {
			pt.Neighbors[d] = int(n)
		}
		out.Points[i] = pt
	}
	for i, c := range cells {
		var corners [4]int
		for j, id := range c.Corners {
			corners[j] = int(id)
		}
		out.Cells[i] = Cell{Corners: corners, Area: c.Area(graph)}

		if inset <= 0 {
			continue
		}
		lotCorners, ok := city.Inset(graph, c, inset)
		if !ok {
			continue
		}
		lot := Lot{Cell: i}
		for j, v := range lotCorners {
			lot.Corners[j] = toVec(v)
		}
		if pc, ok := city.PopCenter(graph, c, g.Center(), LotCenterDensity); ok {
			v := toVec(pc)
			lot.Center = &v
		}
		out.Lots = append(out.Lots, lot)
	}
	return out
}

// Restore rebuilds the planar graph and cell list. It fails when point IDs
// are out of order, a link refers to an unknown point, a link is not
// matched by its reverse, or a cell names an unknown corner.
func (c *City) Restore() (*city.Graph, []city.Cell, error) {
	g := city.NewGraph()
	for i, p := range c.Points {
		if p.ID != i {
			return nil, nil, fmt.Errorf("point %d at index %d: ids must be sequential", p.ID, i)
		}
		g.Add(p.Pos.vec())
	}

	for _, p := range c.Points {
		for _, d := range []city.Direction{city.East, city.South} {
			n := p.Neighbors[d]
			if n == int(city.NoPoint) {
				continue
			}
			if err := g.Link(city.PointID(p.ID), d, city.PointID(n)); err != nil {
				return nil, nil, fmt.Errorf("point %d %s: %w", p.ID, d, err)
			}
		}
	}

	// Links were built from east and south slots only; the declared north
	// and west slots must agree with them.
	for _, p := range c.Points {
		for _, d := range city.Directions {
			if got := g.Neighbor(city.PointID(p.ID), d); int(got) != p.Neighbors[d] {
				return nil, nil, fmt.Errorf("point %d %s declares %d, link gives %d: %w",
					p.ID, d, p.Neighbors[d], got, city.ErrAsymmetric)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, nil, err
	}

	cells := make([]city.Cell, len(c.Cells))
	for i, sc := range c.Cells {
		cell, err := city.NewCell(g,
			city.PointID(sc.Corners[0]), city.PointID(sc.Corners[1]),
			city.PointID(sc.Corners[2]), city.PointID(sc.Corners[3]))
		if err != nil {
			return nil, nil, fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = cell
	}
	return g, cells, nil
}

// StreetLength sums the length of every east and south link, which counts
// each street segment once.
func (c *City) StreetLength() float64 {
	var total float64
	for _, p := range c.Points {
		for _, d := range []city.Direction{city.East, city.South} {
			n := p.Neighbors[d]
			if n < 0 || n >= len(c.Points) {
				continue
			}
			total += geom.Length(p.Pos.vec(), c.Points[n].Pos.vec())
		}
	}
	return total
}

// WriteJSON encodes a city snapshot as indented JSON to w.
func WriteJSON(c City, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a city snapshot to a JSON file at path.
func ExportJSON(c City, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(c, f)
}

// ReadJSON decodes a city snapshot from r. The snapshot is not checked; use
// [City.Restore] to validate it. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*City, error) {
	var c City
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &c, nil
}

// ImportJSON reads a city snapshot from the JSON file at path.
func ImportJSON(path string) (*City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
