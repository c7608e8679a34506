package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/streetblock/pkg/cache"
	"github.com/matzehuels/streetblock/pkg/city"
	"github.com/matzehuels/streetblock/pkg/city/generate"
	"github.com/matzehuels/streetblock/pkg/errors"
	cityio "github.com/matzehuels/streetblock/pkg/io"
	"github.com/matzehuels/streetblock/pkg/observability"
	"github.com/matzehuels/streetblock/pkg/store"
)

// Runner executes the pipeline with caching and optional persistence.
//
// One Runner may serve several goroutines. Each Execute owns its own
// generator, and concurrent cache misses for the same parameters share one
// run.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	flight singleflight.Group
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer], and a nil store disables saving.
func NewRunner(c cache.Cache, keyer cache.Keyer, s store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: s, Logger: logger}
}

// Execute runs generate, render and save.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	c, st, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.City = c
	result.Stats = st
	result.Stats.GenerateTime = time.Since(start)
	result.CacheInfo.CityHit = hit

	r.Logger.Info("generated city",
		"generations", st.Generations,
		"cells", st.Cells,
		"converged", st.Converged,
		"cached", hit,
		"duration", result.Stats.GenerateTime)

	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	if opts.Save {
		if err := r.save(ctx, c); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// GenerateWithCacheInfo returns the snapshot for opts, from the cache when
// possible, and reports whether it was a cache hit.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*cityio.City, Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Stats{}, false, err
	}
	params := opts.ResolveParams()
	key := r.Keyer.CityKey(params, opts.CityKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if c, err := cityio.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "city")
				var st Stats
				st.fill(c)
				return c, st, true, nil
			}
			r.Logger.Warn("discarding unreadable cache entry", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "city")
	}

	type run struct {
		city  *cityio.City
		stats Stats
	}
	v, err, shared := r.flight.Do(key, func() (any, error) {
		c, st, err := Generate(ctx, params, opts)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := cityio.WriteJSON(*c, &buf); err == nil {
			if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLCity); err != nil {
				r.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "city", buf.Len())
			}
		}
		return run{c, st}, nil
	})
	if err != nil {
		return nil, Stats{}, false, err
	}
	res := v.(run)
	if shared {
		r.Logger.Debug("joined concurrent run", "id", res.city.ID)
	}
	return res.city, res.stats, false, nil
}

// Generate runs the subdivision without caching. It stops at a fixed point,
// after a generation that splits nothing, or at opts.Generations, and checks
// ctx between generations.
func Generate(ctx context.Context, params generate.Params, opts Options) (*cityio.City, Stats, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Stats{}, err
	}
	runID := uuid.NewString()
	hooks := observability.Run()
	hooks.OnRunStart(ctx, runID, params)
	start := time.Now()

	g, err := generate.New(params,
		generate.WithLogger(opts.Logger),
		generate.WithPathPolicy(opts.PathPolicy()))
	if err != nil {
		err = classify(err)
		hooks.OnRunComplete(ctx, runID, 0, time.Since(start), err)
		return nil, Stats{}, err
	}

	var st Stats
	for g.Generation() < opts.Generations && g.Eligible() {
		if err := ctx.Err(); err != nil {
			hooks.OnRunComplete(ctx, runID, g.Generation(), time.Since(start), err)
			return nil, Stats{}, err
		}
		gs := g.Generate()
		hooks.OnGeneration(ctx, runID, gs)
		st.Split += gs.Split
		st.Failed += gs.Failed
		if gs.Split == 0 {
			break
		}
	}

	c := cityio.FromGenerator(g, opts.Inset)
	c.ID = runID
	c.Seed = opts.Seed
	st.fill(&c)

	if st.Failed > 0 {
		opts.Logger.Warn("some splits were aborted", "failed", st.Failed)
	}
	hooks.OnRunComplete(ctx, runID, st.Generations, time.Since(start), nil)
	return &c, st, nil
}

// Load fetches a stored snapshot by run ID.
func (r *Runner) Load(ctx context.Context, id string) (*cityio.City, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no snapshot store configured")
	}
	var c *cityio.City
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		c, err = r.Store.Load(ctx, id)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (r *Runner) save(ctx context.Context, c *cityio.City) error {
	if r.Store == nil {
		return errors.New(errors.ErrCodeUnsupported, "no snapshot store configured")
	}
	err := cache.RetryWithBackoff(ctx, func() error { return r.Store.Save(ctx, c) })
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save snapshot %s", c.ID)
	}
	r.Logger.Info("saved snapshot", "id", c.ID)
	return nil
}

// Close releases the cache and store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return stderrors.Join(errs...)
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// classify assigns an application error code to a library error. Errors
// that already carry a code and context errors are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, generate.ErrInvalidParams):
		return errors.Wrap(errors.ErrCodeInvalidParams, err, "invalid parameters")
	case stderrors.Is(err, city.ErrOffPath):
		return errors.Wrap(errors.ErrCodeGeometry, err, "split geometry")
	case stderrors.Is(err, city.ErrPathNotFound):
		return errors.Wrap(errors.ErrCodePathNotFound, err, "edge path")
	case stderrors.Is(err, city.ErrAsymmetric), stderrors.Is(err, city.ErrUnknownPoint):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed city")
	case stderrors.Is(err, store.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "snapshot")
	case stderrors.Is(err, store.ErrInvalidID):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot id")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "unexpected failure")
	}
}
