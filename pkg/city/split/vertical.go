package split

import "github.com/matzehuels/streetblock/pkg/city"

type vertical struct {
	base
}

func newVertical(g *city.Graph, cell city.Cell, o options) *vertical {
	return &vertical{base: newBase(g, cell, o,
		edge{city.TopLeft, city.TopRight, city.East},
		edge{city.BottomLeft, city.BottomRight, city.East},
	)}
}

// ComputeChildren links origin south to the end point and places the
// children side by side.
func (v *vertical) ComputeChildren() error {
	c := v.cell.Corners
	return v.link(city.South, [][4]city.PointID{
		{c[city.TopLeft], v.origin, c[city.BottomLeft], v.end},
		{v.origin, c[city.TopRight], v.end, c[city.BottomRight]},
	})
}
