package split

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/city"
)

var defaultParams = city.CellParams{
	MinEdgeLength: 50,
	Stagger:       0,
	Var1:          0.5,
	Var2:          0.5,
	SeedAngle:     0.2,
}

func vec(x, y float64) r3.Vec { return r3.Vec{X: x, Y: y} }

// rect builds a linked rectangle and returns the graph and cell.
func rect(t *testing.T, w, d float64, params city.CellParams) (*city.Graph, city.Cell) {
	t.Helper()
	g := city.NewGraph()
	c0 := g.Add(vec(0, 0))
	c1 := g.Add(vec(w, 0))
	c2 := g.Add(vec(0, d))
	c3 := g.Add(vec(w, d))
	cell, err := city.NewCell(g, c0, c1, c2, c3)
	if err != nil {
		t.Fatalf("NewCell() error: %v", err)
	}
	if err := city.MakeSimple(g, cell); err != nil {
		t.Fatalf("MakeSimple() error: %v", err)
	}
	cell.Params = params
	return g, cell
}

func run(t *testing.T, axis Axis, g *city.Graph, cell city.Cell, opts ...Option) ([]city.Cell, Builder) {
	t.Helper()
	b, err := New(axis, g, cell, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cells, err := Director{}.Execute(b)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	return cells, b
}

func near(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name string
		w, d float64
		want Axis
	}{
		{"square ties to vertical", 600, 600, Vertical},
		{"wide", 600, 100, Vertical},
		{"tall", 100, 600, Horizontal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cell := rect(t, tt.w, tt.d, defaultParams)
			if got := Choose(cell); got != tt.want {
				t.Errorf("Choose() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVerticalSplit(t *testing.T) {
	g, cell := rect(t, 600, 600, defaultParams)
	cells, b := run(t, Vertical, g, cell)
	v := b.(*vertical)

	if !near(g.Pos(v.origin), vec(300, 0)) {
		t.Errorf("origin = %v, want (300, 0)", g.Pos(v.origin))
	}
	if !near(g.Pos(v.end), vec(300, 600)) {
		t.Errorf("end = %v, want (300, 600)", g.Pos(v.end))
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}

	c := cell.Corners
	wantCorners := [][4]city.PointID{
		{c[0], v.origin, c[2], v.end},
		{v.origin, c[1], v.end, c[3]},
	}
	for i, child := range cells {
		if child.Corners != wantCorners[i] {
			t.Errorf("child %d corners = %v, want %v", i, child.Corners, wantCorners[i])
		}
		if a := child.Area(g); math.Abs(a-180000) > 1e-6 {
			t.Errorf("child %d area = %v, want 180000", i, a)
		}
	}

	if g.Neighbor(v.origin, city.South) != v.end || g.Neighbor(v.end, city.North) != v.origin {
		t.Error("origin and end not linked north-south")
	}
	if g.Neighbor(c[0], city.East) != v.origin || g.Neighbor(v.origin, city.East) != c[1] {
		t.Error("origin not inserted into the top edge")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestHorizontalSplit(t *testing.T) {
	g, cell := rect(t, 100, 600, defaultParams)
	cells, b := run(t, Horizontal, g, cell)
	h := b.(*horizontal)

	if !near(g.Pos(h.origin), vec(0, 300)) || !near(g.Pos(h.end), vec(100, 300)) {
		t.Errorf("street = %v → %v, want (0, 300) → (100, 300)", g.Pos(h.origin), g.Pos(h.end))
	}

	c := cell.Corners
	wantCorners := [][4]city.PointID{
		{c[0], c[1], h.origin, h.end},
		{h.origin, h.end, c[2], c[3]},
	}
	for i, child := range cells {
		if child.Corners != wantCorners[i] {
			t.Errorf("child %d corners = %v, want %v", i, child.Corners, wantCorners[i])
		}
	}
	if g.Neighbor(h.origin, city.East) != h.end || g.Neighbor(h.end, city.West) != h.origin {
		t.Error("origin and end not linked east-west")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestChildAreasSumToParent(t *testing.T) {
	params := defaultParams
	params.Var1 = 0.43
	params.Var2 = 0.58
	for _, axis := range []Axis{Horizontal, Vertical} {
		t.Run(axis.String(), func(t *testing.T) {
			g, cell := rect(t, 530, 570, params)
			cells, _ := run(t, axis, g, cell)
			var sum float64
			for _, c := range cells {
				sum += c.Area(g)
			}
			if parent := cell.Area(g); math.Abs(sum-parent) > 1e-6 {
				t.Errorf("children area = %v, parent = %v", sum, parent)
			}
		})
	}
}

func TestOriginMinEdgeCorrection(t *testing.T) {
	params := defaultParams
	params.Var1 = 0.05
	g, cell := rect(t, 600, 600, params)
	_, b := run(t, Vertical, g, cell)

	if got := g.Pos(b.(*vertical).origin); !near(got, vec(50, 0)) {
		t.Errorf("origin = %v, want (50, 0)", got)
	}
}

func TestEndPointHasNoMinEdgeCorrection(t *testing.T) {
	params := defaultParams
	params.Var2 = 0.05
	g, cell := rect(t, 600, 600, params)
	_, b := run(t, Vertical, g, cell)

	if got := g.Pos(b.(*vertical).end); !near(got, vec(30, 600)) {
		t.Errorf("end = %v, want (30, 600)", got)
	}
}

func TestSnapToJunction(t *testing.T) {
	params := defaultParams
	params.Stagger = 20
	g, cell := rect(t, 600, 600, params)

	junction, err := g.InsertAt(vec(290, 0), cell.Corners[0], cell.Corners[1])
	if err != nil {
		t.Fatal(err)
	}
	before := g.Len()

	_, b := run(t, Vertical, g, cell)
	v := b.(*vertical)
	if v.origin != junction {
		t.Errorf("origin = %d, want snapped junction %d", v.origin, junction)
	}
	if g.Len() != before+1 {
		t.Errorf("Len() = %d, want %d (only the end point added)", g.Len(), before+1)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestZeroStaggerNeverSnaps(t *testing.T) {
	g, cell := rect(t, 600, 600, defaultParams)
	junction, err := g.InsertAt(vec(300, 0), cell.Corners[0], cell.Corners[1])
	if err != nil {
		t.Fatal(err)
	}

	// The candidate lands exactly on the junction; with no stagger it is
	// still inserted as a point of its own.
	_, b := run(t, Vertical, g, cell)
	v := b.(*vertical)
	if v.origin == junction {
		t.Error("origin snapped with zero stagger")
	}
	if g.Neighbor(junction, city.East) != v.origin {
		t.Error("origin not inserted after the junction")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestPathPolicy(t *testing.T) {
	unlinked := func(t *testing.T) (*city.Graph, city.Cell) {
		g := city.NewGraph()
		c0 := g.Add(vec(0, 0))
		c1 := g.Add(vec(600, 0))
		c2 := g.Add(vec(0, 600))
		c3 := g.Add(vec(600, 600))
		cell, err := city.NewCell(g, c0, c1, c2, c3)
		if err != nil {
			t.Fatal(err)
		}
		cell.Params = defaultParams
		return g, cell
	}

	t.Run("lenient", func(t *testing.T) {
		g, cell := unlinked(t)
		cells, b := run(t, Vertical, g, cell)
		v := b.(*vertical)
		if len(cells) != 2 {
			t.Fatalf("got %d cells, want 2", len(cells))
		}
		if g.Len() != 6 {
			t.Errorf("Len() = %d, want 6", g.Len())
		}
		if g.Neighbor(v.origin, city.West) != city.NoPoint {
			t.Error("lenient origin should not be wired into the edge")
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})

	t.Run("strict", func(t *testing.T) {
		g, cell := unlinked(t)
		b, err := New(Vertical, g, cell, WithPathPolicy(PathStrict))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := (Director{}).Execute(b); !errors.Is(err, city.ErrPathNotFound) {
			t.Errorf("Execute() error = %v, want ErrPathNotFound", err)
		}
		if g.Len() != 4 {
			t.Errorf("Len() = %d, want 4 (no points added)", g.Len())
		}
	})
}

func TestGeometryInconsistency(t *testing.T) {
	params := defaultParams
	params.Var1 = 0.05
	params.MinEdgeLength = 700
	g, cell := rect(t, 600, 600, params)

	b, err := New(Vertical, g, cell)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (Director{}).Execute(b); !errors.Is(err, city.ErrOffPath) {
		t.Errorf("Execute() error = %v, want ErrOffPath", err)
	}
}

type recorder struct {
	calls   []string
	failAt  string
	cells   []city.Cell
	failure error
}

func (r *recorder) step(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failAt {
		return r.failure
	}
	return nil
}

func (r *recorder) SetOrigin() error       { return r.step("origin") }
func (r *recorder) SetEndPoint() error     { return r.step("end") }
func (r *recorder) ComputeChildren() error { return r.step("children") }
func (r *recorder) BuildCells() ([]city.Cell, error) {
	return r.cells, r.step("build")
}

func TestDirectorOrder(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		failAt  string
		want    []string
		wantErr bool
	}{
		{"all steps", "", []string{"origin", "end", "children", "build"}, false},
		{"origin fails", "origin", []string{"origin"}, true},
		{"end fails", "end", []string{"origin", "end"}, true},
		{"children fail", "children", []string{"origin", "end", "children"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{failAt: tt.failAt, failure: boom}
			_, err := Director{}.Execute(r)
			if !slices.Equal(r.calls, tt.want) {
				t.Errorf("calls = %v, want %v", r.calls, tt.want)
			}
			if tt.wantErr != errors.Is(err, boom) {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildCellsBeforeChildren(t *testing.T) {
	g, cell := rect(t, 600, 600, defaultParams)
	b, err := New(Horizontal, g, cell)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.ComputeChildren(); !errors.Is(err, errIncomplete) {
		t.Errorf("ComputeChildren() error = %v, want errIncomplete", err)
	}
	if _, err := b.BuildCells(); !errors.Is(err, errIncomplete) {
		t.Errorf("BuildCells() error = %v, want errIncomplete", err)
	}
	if err := g.Validate(); err != nil || g.Len() != 4 {
		t.Errorf("graph changed: Len() = %d, Validate() = %v", g.Len(), err)
	}
}

func TestFailedEndPointLeavesGraphUnchanged(t *testing.T) {
	g := city.NewGraph()
	c0 := g.Add(vec(0, 0))
	c1 := g.Add(vec(600, 0))
	c2 := g.Add(vec(0, 600))
	c3 := g.Add(vec(600, 600))
	// Only the top edge is walkable.
	if err := g.Link(c0, city.East, c1); err != nil {
		t.Fatal(err)
	}
	cell, err := city.NewCell(g, c0, c1, c2, c3)
	if err != nil {
		t.Fatal(err)
	}
	cell.Params = defaultParams
	before := g.Points()

	b, err := New(Vertical, g, cell, WithPathPolicy(PathStrict))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (Director{}).Execute(b); !errors.Is(err, city.ErrPathNotFound) {
		t.Fatalf("Execute() error = %v, want ErrPathNotFound", err)
	}
	if g.Len() != len(before) {
		t.Errorf("Len() = %d, want %d", g.Len(), len(before))
	}
	if g.Neighbor(c0, city.East) != c1 || g.Neighbor(c1, city.West) != c0 {
		t.Error("top edge not restored")
	}
	if o := b.(*vertical).origin; o != city.NoPoint {
		t.Errorf("origin = %d after rollback, want NoPoint", o)
	}
}

func TestNewUnknownAxis(t *testing.T) {
	g, cell := rect(t, 600, 600, defaultParams)
	if _, err := New(Axis(7), g, cell); err == nil {
		t.Error("New() with unknown axis should fail")
	}
}
