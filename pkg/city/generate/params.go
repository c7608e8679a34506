package generate

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/streetblock/pkg/city"
)

// ErrInvalidParams is returned by [Params.Validate].
var ErrInvalidParams = errors.New("invalid parameters")

// Params are the global subdivision parameters.
type Params struct {
	// Width and Depth are the extent of the root cell.
	Width float64 `json:"width" toml:"width" bson:"width"`
	Depth float64 `json:"depth" toml:"depth" bson:"depth"`
	// BlockSize is the area threshold: only cells larger than it are split.
	BlockSize float64 `json:"block_size" toml:"block_size" bson:"block_size"`
	// MinEdgeLength stops splitting of cells with a shorter edge and keeps
	// new street origins at least this far from a corner.
	MinEdgeLength float64 `json:"min_edge_length" toml:"min_edge_length" bson:"min_edge_length"`
	// Stagger is the distance within which a new street end snaps onto an
	// existing junction.
	Stagger float64 `json:"stagger" toml:"stagger" bson:"stagger"`
	// Var1 and Var2 place the street origin and end along their edges.
	Var1 float64 `json:"var1" toml:"var1" bson:"var1"`
	Var2 float64 `json:"var2" toml:"var2" bson:"var2"`
	// SeedAngle is carried on every cell but does not affect the split.
	SeedAngle float64 `json:"seed_angle" toml:"seed_angle" bson:"seed_angle"`
}

// Range is a closed interval a parameter is drawn from.
type Range struct {
	Min, Max float64
}

// Draw returns a value in [Min, Max).
func (r Range) Draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Ranges the random parameters are drawn from.
var (
	VarRange           = Range{0.4, 0.6}
	BlockSizeRange     = Range{5000, 20000}
	ExtentRange        = Range{500, 600}
	SeedAngleRange     = Range{0.1, 0.4}
	MinEdgeLengthRange = Range{40, 50}
	StaggerRange       = Range{0, 50}
)

// RandomParams draws a full parameter set from rng.
func RandomParams(rng *rand.Rand) Params {
	var p Params
	p.Var1 = VarRange.Draw(rng)
	p.Var2 = VarRange.Draw(rng)
	p.BlockSize = BlockSizeRange.Draw(rng)
	p.Width = ExtentRange.Draw(rng)
	p.Depth = ExtentRange.Draw(rng)
	p.SeedAngle = SeedAngleRange.Draw(rng)
	p.MinEdgeLength = MinEdgeLengthRange.Draw(rng)
	p.Stagger = StaggerRange.Draw(rng)
	return p
}

// NewParams draws a reproducible parameter set from seed.
func NewParams(seed uint64) Params {
	return RandomParams(rand.New(rand.NewPCG(seed, seed^0xdeadbeef)))
}

// Validate rejects parameter sets the engine cannot run with. It does not
// enforce the random ranges; explicit parameters may lie outside them.
func (p Params) Validate() error {
	switch {
	case !(p.Width > 0) || !(p.Depth > 0):
		return fmt.Errorf("%w: extent %vx%v must be positive", ErrInvalidParams, p.Width, p.Depth)
	case !(p.BlockSize > 0):
		return fmt.Errorf("%w: block size %v must be positive", ErrInvalidParams, p.BlockSize)
	case p.MinEdgeLength < 0:
		return fmt.Errorf("%w: min edge length %v is negative", ErrInvalidParams, p.MinEdgeLength)
	case p.Stagger < 0:
		return fmt.Errorf("%w: stagger %v is negative", ErrInvalidParams, p.Stagger)
	case !(p.Var1 > 0 && p.Var1 < 1):
		return fmt.Errorf("%w: var1 %v outside (0, 1)", ErrInvalidParams, p.Var1)
	case !(p.Var2 > 0 && p.Var2 < 1):
		return fmt.Errorf("%w: var2 %v outside (0, 1)", ErrInvalidParams, p.Var2)
	}
	return nil
}

// Cell returns the per-cell copy of the split parameters.
func (p Params) Cell() city.CellParams {
	return city.CellParams{
		MinEdgeLength: p.MinEdgeLength,
		Stagger:       p.Stagger,
		Var1:          p.Var1,
		Var2:          p.Var2,
		SeedAngle:     p.SeedAngle,
	}
}
