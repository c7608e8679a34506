package city

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} }

// line builds a chain of points linked in direction d and returns their IDs.
func line(g *Graph, d Direction, positions ...r3.Vec) []PointID {
	ids := make([]PointID, len(positions))
	for i, p := range positions {
		ids[i] = g.Add(p)
		if i > 0 {
			if err := g.Link(ids[i-1], d, ids[i]); err != nil {
				panic(err)
			}
		}
	}
	return ids
}

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d, want Direction
	}{
		{North, South},
		{West, East},
		{South, North},
		{East, West},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			if got := tt.d.Opposite(); got != tt.want {
				t.Errorf("Opposite() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAddAndLink(t *testing.T) {
	g := NewGraph()
	a := g.Add(vec(0, 0))
	b := g.Add(vec(10, 0))

	p, ok := g.Point(a)
	if !ok {
		t.Fatal("Point() not found")
	}
	for _, d := range Directions {
		if p.Neighbor(d) != NoPoint {
			t.Errorf("new point has %s neighbor %d", d, p.Neighbor(d))
		}
	}

	if err := g.Link(a, East, b); err != nil {
		t.Fatalf("Link() error: %v", err)
	}
	if g.Neighbor(a, East) != b || g.Neighbor(b, West) != a {
		t.Error("Link() did not set both directions")
	}
	if err := g.Link(a, East, 99); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("Link(unknown) error = %v, want ErrUnknownPoint", err)
	}
	if _, ok := g.Point(-1); ok {
		t.Error("Point(-1) should not be found")
	}
}

func TestDirectedPath(t *testing.T) {
	g := NewGraph()
	ids := line(g, South, vec(0, 0), vec(0, 100), vec(0, 250), vec(0, 600))

	t.Run("full chain", func(t *testing.T) {
		path, err := g.DirectedPath(ids[0], ids[3], South, DefaultMaxSteps)
		if err != nil {
			t.Fatalf("DirectedPath() error: %v", err)
		}
		if len(path) != 4 {
			t.Fatalf("DirectedPath() = %v, want 4 points", path)
		}
		for i := range ids {
			if path[i] != ids[i] {
				t.Errorf("path[%d] = %d, want %d", i, path[i], ids[i])
			}
		}
	})

	t.Run("same point", func(t *testing.T) {
		path, err := g.DirectedPath(ids[1], ids[1], South, 0)
		if err != nil || len(path) != 1 {
			t.Errorf("DirectedPath(self) = %v, %v", path, err)
		}
	})

	t.Run("wrong direction", func(t *testing.T) {
		_, err := g.DirectedPath(ids[0], ids[3], East, DefaultMaxSteps)
		if !errors.Is(err, ErrPathNotFound) {
			t.Errorf("error = %v, want ErrPathNotFound", err)
		}
	})

	t.Run("step bound", func(t *testing.T) {
		_, err := g.DirectedPath(ids[0], ids[3], South, 2)
		if !errors.Is(err, ErrPathNotFound) {
			t.Errorf("error = %v, want ErrPathNotFound", err)
		}
		if _, err := g.DirectedPath(ids[0], ids[3], South, 3); err != nil {
			t.Errorf("DirectedPath(maxSteps=3) error: %v", err)
		}
	})
}

func TestDirectedPathCycle(t *testing.T) {
	g := NewGraph()
	a := g.Add(vec(0, 0))
	b := g.Add(vec(1, 0))
	c := g.Add(vec(2, 0))
	_ = g.Link(a, East, b)
	_ = g.Link(b, East, a)

	if _, err := g.DirectedPath(a, c, East, 50); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("DirectedPath(cycle) error = %v, want ErrPathNotFound", err)
	}
}

func TestNeighborsOn(t *testing.T) {
	g := NewGraph()
	ids := line(g, East, vec(0, 0), vec(100, 0), vec(300, 0), vec(600, 0))

	tests := []struct {
		name       string
		pos        r3.Vec
		prev, next PointID
		wantErr    bool
	}{
		{"first segment", vec(50, 0), ids[0], ids[1], false},
		{"middle segment", vec(200, 0), ids[1], ids[2], false},
		{"last segment", vec(599, 0), ids[2], ids[3], false},
		{"on interior point", vec(100, 0), ids[1], ids[2], false},
		{"at start", vec(0, 0), NoPoint, NoPoint, true},
		{"at end", vec(600, 0), NoPoint, NoPoint, true},
		{"before start", vec(-5, 0), NoPoint, NoPoint, true},
		{"past end", vec(700, 0), NoPoint, NoPoint, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next, err := g.NeighborsOn(tt.pos, ids)
			if tt.wantErr {
				if !errors.Is(err, ErrOffPath) {
					t.Errorf("error = %v, want ErrOffPath", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NeighborsOn() error: %v", err)
			}
			if prev != tt.prev || next != tt.next {
				t.Errorf("NeighborsOn() = (%d, %d), want (%d, %d)", prev, next, tt.prev, tt.next)
			}
		})
	}
}

func TestNeighborsOnTwoPointPath(t *testing.T) {
	g := NewGraph()
	ids := line(g, South, vec(0, 0), vec(0, 600))

	prev, next, err := g.NeighborsOn(vec(0, 300), ids)
	if err != nil || prev != ids[0] || next != ids[1] {
		t.Errorf("NeighborsOn() = (%d, %d, %v)", prev, next, err)
	}
	if _, _, err := g.NeighborsOn(vec(0, 900), ids); !errors.Is(err, ErrOffPath) {
		t.Errorf("NeighborsOn(outside) error = %v, want ErrOffPath", err)
	}
	if _, _, err := g.NeighborsOn(vec(0, 300), ids[:1]); !errors.Is(err, ErrOffPath) {
		t.Errorf("NeighborsOn(single) error = %v, want ErrOffPath", err)
	}
}

func TestInsertPoint(t *testing.T) {
	for _, d := range Directions {
		t.Run(d.String(), func(t *testing.T) {
			g := NewGraph()
			p0 := g.Add(vec(0, 0))
			p1 := g.Add(vec(10, 10))
			id := g.Add(vec(5, 5))
			_ = g.Link(p0, d, p1)

			if err := g.InsertPoint(id, p0, p1); err != nil {
				t.Fatalf("InsertPoint() error: %v", err)
			}
			opp := d.Opposite()
			if g.Neighbor(p0, d) != id || g.Neighbor(id, d) != p1 {
				t.Error("forward links not rewired")
			}
			if g.Neighbor(p1, opp) != id || g.Neighbor(id, opp) != p0 {
				t.Error("backward links not rewired")
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestInsertPointNotNeighbors(t *testing.T) {
	g := NewGraph()
	p0 := g.Add(vec(0, 0))
	p1 := g.Add(vec(10, 0))
	id := g.Add(vec(5, 0))
	before := g.Points()

	if err := g.InsertPoint(id, p0, p1); !errors.Is(err, ErrNotNeighbors) {
		t.Fatalf("error = %v, want ErrNotNeighbors", err)
	}
	after := g.Points()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("point %d mutated: %v → %v", i, before[i], after[i])
		}
	}
}

func TestInsertAtNoOrphan(t *testing.T) {
	g := NewGraph()
	p0 := g.Add(vec(0, 0))
	p1 := g.Add(vec(10, 0))

	if _, err := g.InsertAt(vec(5, 0), p0, p1); !errors.Is(err, ErrNotNeighbors) {
		t.Fatalf("error = %v, want ErrNotNeighbors", err)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d after failed insert, want 2", g.Len())
	}

	_ = g.Link(p0, East, p1)
	id, err := g.InsertAt(vec(5, 0), p0, p1)
	if err != nil {
		t.Fatalf("InsertAt() error: %v", err)
	}
	if g.Pos(id) != vec(5, 0) || g.Neighbor(p0, East) != id || g.Neighbor(id, East) != p1 {
		t.Error("InsertAt() did not wire the new point")
	}
}

func TestRemoveLast(t *testing.T) {
	g := NewGraph()
	p0 := g.Add(vec(0, 0))
	p1 := g.Add(vec(10, 0))
	_ = g.Link(p0, East, p1)
	before := g.Points()

	id, err := g.InsertAt(vec(5, 0), p0, p1)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveLast(p0); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("RemoveLast(p0) error = %v, want ErrUnknownPoint", err)
	}
	if err := g.RemoveLast(id); err != nil {
		t.Fatalf("RemoveLast() error: %v", err)
	}
	if diff := cmp.Diff(before, g.Points()); diff != "" {
		t.Errorf("graph not restored (-want +got):\n%s", diff)
	}
	if err := g.RemoveLast(NoPoint); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("RemoveLast(NoPoint) error = %v, want ErrUnknownPoint", err)
	}
}

func TestCheckNearPoints(t *testing.T) {
	g := NewGraph()
	ids := line(g, South, vec(0, 0), vec(0, 100), vec(0, 200), vec(0, 600))

	tests := []struct {
		name        string
		pos         r3.Vec
		distance    float64
		includeEnds bool
		want        PointID
	}{
		{"snap to prev", vec(0, 110), 20, false, ids[1]},
		{"snap to next", vec(0, 190), 20, false, ids[2]},
		{"equidistant prefers prev", vec(0, 150), 60, false, ids[1]},
		{"too far", vec(0, 150), 20, false, NoPoint},
		{"zero distance keeps", vec(0, 100.5), 0, false, NoPoint},
		{"start excluded", vec(0, 5), 20, false, NoPoint},
		{"start included", vec(0, 5), 20, true, ids[0]},
		{"end excluded", vec(0, 590), 20, false, NoPoint},
		{"end included", vec(0, 590), 20, true, ids[3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.CheckNearPoints(tt.pos, ids, tt.distance, tt.includeEnds)
			if err != nil {
				t.Fatalf("CheckNearPoints() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckNearPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheckNearPointsStartCloserDoesNotFallThrough(t *testing.T) {
	g := NewGraph()
	ids := line(g, East, vec(0, 0), vec(30, 0), vec(600, 0))

	// Prev is the excluded start and closer than next; next is also within
	// range but must not be chosen.
	got, err := g.CheckNearPoints(vec(10, 0), ids, 25, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != NoPoint {
		t.Errorf("CheckNearPoints() = %d, want NoPoint", got)
	}
}

func TestGraphDirection(t *testing.T) {
	g := NewGraph()
	row := line(g, East, vec(0, 0), vec(100, 0), vec(200, 0))
	below := g.Add(vec(0, 100))
	_ = g.Link(row[0], South, below)
	stray := g.Add(vec(500, 500))

	if d, ok := g.Direction(row[0], row[2], 0); !ok || d != East {
		t.Errorf("Direction(east) = %s, %v", d, ok)
	}
	if d, ok := g.Direction(row[2], row[0], 0); !ok || d != West {
		t.Errorf("Direction(west) = %s, %v", d, ok)
	}
	if d, ok := g.Direction(row[0], below, 0); !ok || d != South {
		t.Errorf("Direction(south) = %s, %v", d, ok)
	}
	if _, ok := g.Direction(row[0], stray, 0); ok {
		t.Error("Direction() found an unlinked point")
	}
}

func TestEdgesAndStreetLength(t *testing.T) {
	g := NewGraph()
	c, err := rect(g, 0, 0, 600, 400)
	if err != nil {
		t.Fatal(err)
	}
	_ = c

	edges := g.Edges()
	if len(edges) != 4 {
		t.Fatalf("Edges() = %d, want 4", len(edges))
	}
	for _, e := range edges {
		if e.Dir != East && e.Dir != South {
			t.Errorf("edge %v has direction %s", e, e.Dir)
		}
	}
	if got := g.StreetLength(); got != 2000 {
		t.Errorf("StreetLength() = %v, want 2000", got)
	}
}

func TestValidate(t *testing.T) {
	g := NewGraph()
	a := g.Add(vec(0, 0))
	b := g.Add(vec(10, 0))
	_ = g.Link(a, East, b)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	// Break symmetry by overwriting one side only.
	c := g.Add(vec(20, 0))
	g.points[a].Neighbors[East] = c
	if err := g.Validate(); !errors.Is(err, ErrAsymmetric) {
		t.Errorf("Validate() error = %v, want ErrAsymmetric", err)
	}

	g.points[a].Neighbors[East] = 42
	if err := g.Validate(); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("Validate() error = %v, want ErrUnknownPoint", err)
	}
}

func TestClone(t *testing.T) {
	g := NewGraph()
	a := g.Add(vec(0, 0))
	b := g.Add(vec(10, 0))

	c := g.Clone()
	_ = c.Link(a, East, b)
	c.Add(vec(5, 5))

	if g.Neighbor(a, East) != NoPoint {
		t.Error("Clone() shares neighbor storage with the original")
	}
	if g.Len() != 2 || c.Len() != 3 {
		t.Errorf("Len() = %d / %d, want 2 / 3", g.Len(), c.Len())
	}
}
