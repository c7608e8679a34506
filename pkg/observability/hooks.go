// Package observability provides hooks for metrics, tracing and logging of
// generation runs.
//
// Libraries emit events through the registered hooks; main decides what
// receives them. The defaults do nothing, and [LogHooks] writes every event
// to a charmbracelet logger.
//
// # Usage
//
// Register hooks at startup:
//
//	observability.SetRunHooks(observability.NewLogHooks(logger))
//
// Emit events:
//
//	observability.Run().OnGeneration(ctx, runID, stats)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streetblock/pkg/city/generate"
)

// RunHooks receives events from a generation run.
type RunHooks interface {
	OnRunStart(ctx context.Context, runID string, params generate.Params)
	OnGeneration(ctx context.Context, runID string, stats generate.Stats)
	OnRunComplete(ctx context.Context, runID string, generations int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is "city" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopRunHooks ignores all run events.
type NoopRunHooks struct{}

func (NoopRunHooks) OnRunStart(context.Context, string, generate.Params)              {}
func (NoopRunHooks) OnGeneration(context.Context, string, generate.Stats)             {}
func (NoopRunHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// LogHooks writes run and cache events at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnRunStart(_ context.Context, runID string, p generate.Params) {
	h.logger.Debug("run started", "run", runID,
		"width", p.Width, "depth", p.Depth, "block_size", p.BlockSize)
}

func (h *LogHooks) OnGeneration(_ context.Context, runID string, st generate.Stats) {
	h.logger.Debug("generation", "run", runID, "n", st.Generation,
		"split", st.Split, "below", st.Below, "terminal", st.Terminal,
		"failed", st.Failed, "cells", st.Cells)
}

func (h *LogHooks) OnRunComplete(_ context.Context, runID string, n int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "run", runID, "generations", n, "duration", d, "err", err)
		return
	}
	h.logger.Debug("run complete", "run", runID, "generations", n, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	runHooks   RunHooks   = NoopRunHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetRunHooks registers run hooks. A nil value is ignored.
func SetRunHooks(h RunHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Run returns the registered run hooks.
func Run() RunHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	runHooks = NoopRunHooks{}
	cacheHooks = NoopCacheHooks{}
}

var (
	_ RunHooks   = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
)
