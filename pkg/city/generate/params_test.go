package generate

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestNewParamsReproducible(t *testing.T) {
	if NewParams(42) != NewParams(42) {
		t.Error("NewParams() differs for the same seed")
	}
	if NewParams(1) == NewParams(2) {
		t.Error("NewParams() identical for different seeds")
	}
}

func TestRandomParamsRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for range 200 {
		p := RandomParams(rng)
		checks := []struct {
			name string
			v    float64
			r    Range
		}{
			{"var1", p.Var1, VarRange},
			{"var2", p.Var2, VarRange},
			{"block size", p.BlockSize, BlockSizeRange},
			{"width", p.Width, ExtentRange},
			{"depth", p.Depth, ExtentRange},
			{"seed angle", p.SeedAngle, SeedAngleRange},
			{"min edge length", p.MinEdgeLength, MinEdgeLengthRange},
			{"stagger", p.Stagger, StaggerRange},
		}
		for _, c := range checks {
			if !c.r.Contains(c.v) {
				t.Fatalf("%s = %v outside [%v, %v]", c.name, c.v, c.r.Min, c.r.Max)
			}
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("random params invalid: %v", err)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		valid  bool
	}{
		{"defaults", func(*Params) {}, true},
		{"zero stagger", func(p *Params) { p.Stagger = 0 }, true},
		{"outside random range", func(p *Params) { p.Width = 5000 }, true},
		{"zero width", func(p *Params) { p.Width = 0 }, false},
		{"negative depth", func(p *Params) { p.Depth = -1 }, false},
		{"NaN width", func(p *Params) { p.Width = math.NaN() }, false},
		{"zero block size", func(p *Params) { p.BlockSize = 0 }, false},
		{"negative min edge", func(p *Params) { p.MinEdgeLength = -1 }, false},
		{"negative stagger", func(p *Params) { p.Stagger = -0.1 }, false},
		{"var1 zero", func(p *Params) { p.Var1 = 0 }, false},
		{"var2 one", func(p *Params) { p.Var2 = 1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := squareParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestParamsCell(t *testing.T) {
	p := squareParams()
	c := p.Cell()
	if c.MinEdgeLength != p.MinEdgeLength || c.Stagger != p.Stagger ||
		c.Var1 != p.Var1 || c.Var2 != p.Var2 || c.SeedAngle != p.SeedAngle {
		t.Errorf("Cell() = %+v, does not match %+v", c, p)
	}
}
