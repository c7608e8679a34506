// Package config loads streetblock run settings from a TOML file.
//
// Every field is optional. Parameter overrides are applied on top of the
// parameters drawn from the seed, so a file can pin a few values and let the
// rest vary:
//
//	seed = 42
//	generations = 200
//	formats = ["json", "dot"]
//
//	[params]
//	block_size = 8000
//	stagger = 0
//
//	[cache]
//	redis = "localhost:6379"
//
//	[store]
//	mongo = "mongodb://localhost:27017/streetblock"
//
// Command-line flags take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/streetblock/pkg/city/generate"
)

// ErrUnknownKey is returned when the file sets a key this package does not
// know, which is most often a typo.
var ErrUnknownKey = errors.New("unknown config key")

// Config is the decoded content of a config file. Zero values mean unset.
type Config struct {
	Seed        *uint64   `toml:"seed"`
	Generations int       `toml:"generations"`
	Strict      bool      `toml:"strict"`
	Inset       float64   `toml:"inset"`
	Formats     []string  `toml:"formats"`
	Params      Overrides `toml:"params"`
	Cache       Cache     `toml:"cache"`
	Store       Store     `toml:"store"`
}

// Overrides replace individual generation parameters.
type Overrides struct {
	Width         *float64 `toml:"width"`
	Depth         *float64 `toml:"depth"`
	BlockSize     *float64 `toml:"block_size"`
	MinEdgeLength *float64 `toml:"min_edge_length"`
	Stagger       *float64 `toml:"stagger"`
	Var1          *float64 `toml:"var1"`
	Var2          *float64 `toml:"var2"`
	SeedAngle     *float64 `toml:"seed_angle"`
}

// Cache selects the cache backend.
type Cache struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	Redis    string `toml:"redis"`
}

// Store selects where snapshots are kept.
type Store struct {
	Dir   string `toml:"dir"`
	Mongo string `toml:"mongo"`
}

// Load reads and decodes the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text. Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// Apply returns p with every set override replacing its field.
func (o Overrides) Apply(p generate.Params) generate.Params {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Width, o.Width)
	set(&p.Depth, o.Depth)
	set(&p.BlockSize, o.BlockSize)
	set(&p.MinEdgeLength, o.MinEdgeLength)
	set(&p.Stagger, o.Stagger)
	set(&p.Var1, o.Var1)
	set(&p.Var2, o.Var2)
	set(&p.SeedAngle, o.SeedAngle)
	return p
}

// Resolved is a fully determined parameter set, written by the params
// command in the same layout Load reads.
type Resolved struct {
	Seed   uint64          `toml:"seed"`
	Params generate.Params `toml:"params"`
}

// Write encodes r as TOML to w.
func (r Resolved) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(r)
}
