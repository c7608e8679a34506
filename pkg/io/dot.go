package io

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/streetblock/pkg/city"
)

// ToDOT converts the street network to an undirected Graphviz graph. Every
// point becomes a pinned node at its position, with Y flipped so that north
// is up, and every link becomes one edge. Unlinked points are kept so that
// node names match point IDs.
func ToDOT(g *city.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("graph streets {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.05];\n")
	buf.WriteString("  edge [penwidth=2];\n")
	buf.WriteString("\n")

	for i, p := range g.Points() {
		fmt.Fprintf(&buf, "  p%d [pos=\"%.3f,%.3f!\"];\n", i, p.Pos.X, flipY(p.Pos.Y))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  p%d -- p%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// flipY negates y without producing negative zero.
func flipY(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}

// LayoutDOT parses dot with Graphviz, lays it out with neato so that pinned
// positions are honored, and returns the resulting DOT with layout
// attributes. A parse failure means the DOT is malformed.
func LayoutDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return buf.Bytes(), nil
}
