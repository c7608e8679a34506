package cache

import "github.com/matzehuels/streetblock/pkg/city/generate"

// Keyer derives cache keys from the inputs of a generation run.
type Keyer interface {
	// CityKey identifies the snapshot produced from params under opts.
	CityKey(params generate.Params, opts CityKeyOpts) string

	// ArtifactKey identifies an export rendered from the snapshot whose
	// content hash is cityHash.
	ArtifactKey(cityHash string, opts ArtifactKeyOpts) string
}

// CityKeyOpts are the run options that change the generated snapshot.
type CityKeyOpts struct {
	Seed        uint64  `json:"seed"`
	Generations int     `json:"generations"`
	Strict      bool    `json:"strict"`
	Inset       float64 `json:"inset"`
}

// ArtifactKeyOpts are the options that change a rendered export.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Layout bool   `json:"layout"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

func (DefaultKeyer) CityKey(params generate.Params, opts CityKeyOpts) string {
	return hashKey("city", params, opts)
}

func (DefaultKeyer) ArtifactKey(cityHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", cityHash, opts)
}

var _ Keyer = DefaultKeyer{}
