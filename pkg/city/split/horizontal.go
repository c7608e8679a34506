package split

import "github.com/matzehuels/streetblock/pkg/city"

type horizontal struct {
	base
}

func newHorizontal(g *city.Graph, cell city.Cell, o options) *horizontal {
	return &horizontal{base: newBase(g, cell, o,
		edge{city.TopLeft, city.BottomLeft, city.South},
		edge{city.TopRight, city.BottomRight, city.South},
	)}
}

// ComputeChildren links origin east to the end point and stacks the
// children top to bottom.
func (h *horizontal) ComputeChildren() error {
	c := h.cell.Corners
	return h.link(city.East, [][4]city.PointID{
		{c[city.TopLeft], c[city.TopRight], h.origin, h.end},
		{h.origin, h.end, c[city.BottomLeft], c[city.BottomRight]},
	})
}
