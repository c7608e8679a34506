// Package generate drives the recursive subdivision of a rectangular extent
// into city blocks.
//
// A [Generator] owns a planar graph and a working list of cells. Each call to
// [Generator.Generate] performs one generation: every cell whose area exceeds
// the block size threshold and whose shortest edge is at least the minimum
// edge length is split in two. A cell exactly at the threshold is kept. Callers loop until [Generator.Eligible]
// reports false, or use [Generator.RunToFixedPoint].
//
// The minimum edge check looks at the parent's four edges only; a split may
// still produce children with a shorter edge when the other dimension is
// long enough.
//
// Generators are not safe for concurrent use.
package generate

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/streetblock/pkg/city"
	"github.com/matzehuels/streetblock/pkg/city/split"
)

// Generator runs the subdivision.
type Generator struct {
	params Params
	logger *log.Logger
	policy split.PathPolicy

	graph      *city.Graph
	cells      []city.Cell
	generation int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Split failures are logged at warn level and
// individual splits at debug level.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPathPolicy sets how splits treat unwalkable edges.
func WithPathPolicy(p split.PathPolicy) Option {
	return func(g *Generator) { g.policy = p }
}

// Stats summarizes one generation.
type Stats struct {
	Generation int // 1-based index of the generation
	Below      int // cells at or under the area threshold
	Terminal   int // cells with an edge shorter than the minimum
	Split      int // cells replaced by their children
	Failed     int // splits aborted; the parent is kept
	Cells      int // cells after the generation
}

// New validates params and seeds the root cell.
func New(params Params, opts ...Option) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		params: params,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.seed(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) seed() error {
	w, d := g.params.Width, g.params.Depth
	graph := city.NewGraph()
	c0 := graph.Add(r3.Vec{X: 0, Y: 0})
	c1 := graph.Add(r3.Vec{X: w, Y: 0})
	c2 := graph.Add(r3.Vec{X: 0, Y: d})
	c3 := graph.Add(r3.Vec{X: w, Y: d})

	root, err := city.NewCell(graph, c0, c1, c2, c3)
	if err != nil {
		return fmt.Errorf("seed root cell: %w", err)
	}
	if err := city.MakeSimple(graph, root); err != nil {
		return fmt.Errorf("seed root cell: %w", err)
	}
	g.graph = graph
	g.cells = []city.Cell{root}
	g.generation = 0
	return nil
}

// Reset discards all generations and starts again from the root cell.
func (g *Generator) Reset() {
	// seed only fails on unknown corners, which it creates itself.
	_ = g.seed()
}

// Generate performs one generation and reports what happened to each cell.
// Children replace their parent at the parent's position in the cell list.
func (g *Generator) Generate() Stats {
	st := Stats{Generation: g.generation + 1}
	next := make([]city.Cell, 0, len(g.cells)*2)

	for i, c := range g.cells {
		if c.Area(g.graph) <= g.params.BlockSize {
			st.Below++
			next = append(next, c)
			continue
		}
		if c.MinEdge() < g.params.MinEdgeLength {
			st.Terminal++
			next = append(next, c)
			continue
		}

		candidate := c
		candidate.Params = g.params.Cell()
		children, err := g.split(candidate)
		if err != nil {
			st.Failed++
			g.logger.Warn("split aborted, keeping cell", "generation", st.Generation, "cell", i, "err", err)
			next = append(next, c)
			continue
		}
		st.Split++
		next = append(next, children...)
	}

	g.cells = next
	g.generation++
	st.Cells = len(next)
	g.logger.Debug("generation complete",
		"generation", st.Generation, "split", st.Split, "failed", st.Failed, "cells", st.Cells)
	return st
}

func (g *Generator) split(c city.Cell) ([]city.Cell, error) {
	axis := split.Choose(c)
	b, err := split.New(axis, g.graph, c, split.WithLogger(g.logger), split.WithPathPolicy(g.policy))
	if err != nil {
		return nil, err
	}
	children, err := split.Director{}.Execute(b)
	if err != nil {
		return nil, fmt.Errorf("%s split: %w", axis, err)
	}
	g.logger.Debug("split cell", "axis", axis, "corners", c.Corners)
	return children, nil
}

// Eligible reports whether any cell would be split by the next generation.
func (g *Generator) Eligible() bool {
	for _, c := range g.cells {
		if c.Area(g.graph) > g.params.BlockSize && c.MinEdge() >= g.params.MinEdgeLength {
			return true
		}
	}
	return false
}

// RunToFixedPoint runs generations until no cell is eligible, a generation
// splits nothing, or limit generations have run. It returns the number of
// generations run and whether no eligible cell remains.
func (g *Generator) RunToFixedPoint(limit int) (int, bool) {
	for n := 0; n < limit; n++ {
		if !g.Eligible() {
			return n, true
		}
		if st := g.Generate(); st.Split == 0 {
			return n + 1, !g.Eligible()
		}
	}
	return limit, !g.Eligible()
}

// Cells returns a copy of the working cell list.
func (g *Generator) Cells() []city.Cell { return slices.Clone(g.cells) }

// Graph returns a copy of the planar graph.
func (g *Generator) Graph() *city.Graph { return g.graph.Clone() }

// Center returns the population center of the extent.
func (g *Generator) Center() r3.Vec {
	return r3.Vec{X: g.params.Width / 2, Y: g.params.Depth / 2}
}

// Params returns the generator's parameters.
func (g *Generator) Params() Params { return g.params }

// Generation returns the number of generations run since the last reset.
func (g *Generator) Generation() int { return g.generation }
