// Package split divides a single cell into two along a new street.
//
// # Strategies
//
// A [Builder] performs one split in four steps, driven in order by
// [Director.Execute]:
//
//  1. SetOrigin places the start of the new street on the cell's first edge.
//  2. SetEndPoint places its end on the opposite edge.
//  3. ComputeChildren links origin and end and assigns the child corners.
//     It fails if either end is missing.
//  4. BuildCells constructs the two child cells.
//
// Two variants exist. The [Horizontal] builder cuts a tall cell with an
// east-west street; the [Vertical] builder cuts a wide cell with a
// north-south street. [Choose] picks between them from the cell's edge
// lengths alone.
//
// # Placing Points
//
// New street ends are placed on the full chain of points along a cell edge,
// which may include junctions left by earlier splits of neighboring cells.
// A candidate within the cell's stagger distance of an existing interior
// junction reuses that junction; otherwise a new point is inserted between
// its enclosing neighbors.
//
// When the edge chain cannot be walked, the [PathPolicy] decides: the
// lenient default adds the candidate as an unlinked point and logs a
// warning, the strict policy fails the split with [city.ErrPathNotFound].
// A failed split leaves the graph unchanged.
package split

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streetblock/pkg/city"
)

// Builder performs one cell split against a shared graph.
type Builder interface {
	SetOrigin() error
	SetEndPoint() error
	ComputeChildren() error
	BuildCells() ([]city.Cell, error)
}

// Axis selects a builder variant.
type Axis int

const (
	// Horizontal splits with an east-west street into top and bottom cells.
	Horizontal Axis = iota
	// Vertical splits with a north-south street into left and right cells.
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Choose returns Horizontal when the cell's left and right edges together
// are longer than its top and bottom edges, and Vertical otherwise.
func Choose(c city.Cell) Axis {
	horizontalSides := c.EdgeLengths[0] + c.EdgeLengths[3]
	verticalSides := c.EdgeLengths[1] + c.EdgeLengths[2]
	if verticalSides > horizontalSides {
		return Horizontal
	}
	return Vertical
}

// PathPolicy controls what happens when an edge chain cannot be walked.
type PathPolicy int

const (
	// PathLenient adds the candidate as an unlinked point and continues.
	PathLenient PathPolicy = iota
	// PathStrict fails the split.
	PathStrict
)

func (p PathPolicy) String() string {
	if p == PathStrict {
		return "strict"
	}
	return "lenient"
}

type options struct {
	logger *log.Logger
	policy PathPolicy
}

// Option configures a builder.
type Option func(*options)

// WithLogger sets the logger used for path warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPathPolicy sets the behavior for unwalkable edges.
func WithPathPolicy(p PathPolicy) Option {
	return func(o *options) { o.policy = p }
}

// New returns the builder for axis operating on cell within g.
func New(axis Axis, g *city.Graph, cell city.Cell, opts ...Option) (Builder, error) {
	o := options{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&o)
	}
	switch axis {
	case Horizontal:
		return newHorizontal(g, cell, o), nil
	case Vertical:
		return newVertical(g, cell, o), nil
	}
	return nil, fmt.Errorf("unknown split axis %d", int(axis))
}

// Director runs a builder's steps in order.
type Director struct{}

// Execute runs SetOrigin, SetEndPoint, ComputeChildren and BuildCells,
// stopping at the first error.
func (Director) Execute(b Builder) ([]city.Cell, error) {
	if err := b.SetOrigin(); err != nil {
		return nil, fmt.Errorf("set origin: %w", err)
	}
	if err := b.SetEndPoint(); err != nil {
		return nil, fmt.Errorf("set end point: %w", err)
	}
	if err := b.ComputeChildren(); err != nil {
		return nil, fmt.Errorf("compute children: %w", err)
	}
	return b.BuildCells()
}
