package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/streetblock/pkg/cache"
	cityio "github.com/matzehuels/streetblock/pkg/io"
	"github.com/matzehuels/streetblock/pkg/observability"
)

// RenderWithCacheInfo encodes c in every requested format. DOT output is
// cached by the snapshot's content hash; the boolean reports whether every
// cached format was a hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *cityio.City, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var js bytes.Buffer
	if err := cityio.WriteJSON(*c, &js); err != nil {
		return nil, false, fmt.Errorf("render json: %w", err)
	}
	cityHash := cache.Hash(js.Bytes())

	artifacts := make(map[string][]byte, len(opts.Formats))
	cached, hits := 0, 0
	for _, format := range opts.Formats {
		if format == FormatJSON {
			artifacts[format] = js.Bytes()
			continue
		}

		cached++
		key := r.Keyer.ArtifactKey(cityHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				hits++
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}

		data, err := Render(ctx, c, format, opts.Layout)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, cached > 0 && hits == cached, nil
}

// Render encodes c in one format without caching. With layout, DOT output is
// laid out by Graphviz.
func Render(ctx context.Context, c *cityio.City, format string, layout bool) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := cityio.WriteJSON(*c, &buf); err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatDOT:
		g, _, err := c.Restore()
		if err != nil {
			return nil, classify(err)
		}
		dot := cityio.ToDOT(g)
		if !layout {
			return []byte(dot), nil
		}
		data, err := cityio.LayoutDOT(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render dot: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
