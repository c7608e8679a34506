package cache

import "github.com/matzehuels/streetblock/pkg/city/generate"

// ScopedKeyer prefixes every key of an inner keyer. Use it when several
// tools share one Redis instance:
//
//	keyer := cache.NewScopedKeyer(nil, "streetblock:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) CityKey(params generate.Params, opts CityKeyOpts) string {
	return k.prefix + k.inner.CityKey(params, opts)
}

func (k *ScopedKeyer) ArtifactKey(cityHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(cityHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
