// Package pipeline runs a complete streetblock generation: resolve
// parameters, subdivide, export, and optionally persist the snapshot.
//
// The CLI and tests share this code so that caching and error mapping behave
// the same everywhere.
//
// # Stages
//
//  1. Generate: run the subdivision from a seed or explicit parameters until
//     a fixed point or the generation limit. Cached by parameters and options.
//  2. Render: encode the snapshot as JSON and the street network as DOT,
//     optionally laid out with Graphviz. DOT output is cached by snapshot hash.
//  3. Save: store the snapshot under its run ID when a store is configured.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seed:    42,
//	    Formats: []string{"json", "dot"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("city.json", result.Artifacts["json"], 0o644)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streetblock/pkg/cache"
	"github.com/matzehuels/streetblock/pkg/city/generate"
	"github.com/matzehuels/streetblock/pkg/city/split"
	"github.com/matzehuels/streetblock/pkg/errors"
	cityio "github.com/matzehuels/streetblock/pkg/io"
)

const (
	// DefaultSeed is used when Options.Seed is zero and Params is nil.
	DefaultSeed = uint64(42)

	// DefaultGenerations bounds a run. Seeded parameters reach a fixed point
	// well before it.
	DefaultGenerations = 100
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Options configure one pipeline run.
type Options struct {
	// Seed draws the parameters when Params is nil, and is recorded in the
	// snapshot either way.
	Seed uint64 `json:"seed,omitempty"`

	// Params replaces the seeded parameters when set.
	Params *generate.Params `json:"params,omitempty"`

	Generations int  `json:"generations,omitempty"`
	Strict      bool `json:"strict,omitempty"`

	// Inset adds lot footprints shrunk by this length to the snapshot.
	Inset float64 `json:"inset,omitempty"`

	Formats []string `json:"formats,omitempty"`

	// Layout runs the DOT output through Graphviz neato.
	Layout bool `json:"layout,omitempty"`

	// Refresh ignores cached snapshots and artifacts (but still writes them).
	Refresh bool `json:"refresh,omitempty"`

	// Save persists the snapshot in the runner's store.
	Save bool `json:"save,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a run.
type Result struct {
	City      *cityio.City
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats summarize a run. Split and Failed are zero when the snapshot came
// from the cache.
type Stats struct {
	Generations  int
	Split        int
	Failed       int
	Points       int
	Cells        int
	StreetLength float64
	Converged    bool
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	CityHit   bool
	RenderHit bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Seed == 0 && o.Params == nil {
		o.Seed = DefaultSeed
	}
	if o.Generations == 0 {
		o.Generations = DefaultGenerations
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := errors.ValidateGenerations(o.Generations); err != nil {
		return err
	}
	if err := errors.ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Inset < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "inset cannot be negative, got %v", o.Inset)
	}
	if err := o.ResolveParams().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParams, err, "resolve parameters")
	}
	o.validated = true
	return nil
}

// ResolveParams returns the explicit parameters, or those drawn from Seed.
func (o *Options) ResolveParams() generate.Params {
	if o.Params != nil {
		return *o.Params
	}
	seed := o.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	return generate.NewParams(seed)
}

// PathPolicy maps Strict to the split policy.
func (o *Options) PathPolicy() split.PathPolicy {
	if o.Strict {
		return split.PathStrict
	}
	return split.PathLenient
}

// CityKeyOpts returns the cache key options for the snapshot.
func (o *Options) CityKeyOpts() cache.CityKeyOpts {
	return cache.CityKeyOpts{
		Seed:        o.Seed,
		Generations: o.Generations,
		Strict:      o.Strict,
		Inset:       o.Inset,
	}
}

// ArtifactKeyOpts returns the cache key options for one export format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Layout: o.Layout && format == FormatDOT}
}

func (s *Stats) fill(c *cityio.City) {
	s.Generations = c.Generation
	s.Points = len(c.Points)
	s.Cells = len(c.Cells)
	s.StreetLength = c.StreetLength()
	s.Converged = c.Converged
}
