// Package observability provides hooks for logging and metrics around map
// rendering and export.
//
// The package keeps instrumentation optional: consumers register hook
// implementations at startup and libraries call whatever is registered.
// Defaults are no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetMapHooks(&myMapHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRenderStart(ctx, formats)
//	// ... render ...
//	observability.Pipeline().OnRenderComplete(ctx, formats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the export pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadComplete(ctx context.Context, source string, records, skipped int, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Map Hooks
// =============================================================================

// MapHooks receives events from an interactive map. Calls happen on the
// map's event loop and must not block.
type MapHooks interface {
	// OnRender records a completed render pass.
	OnRender(marks, skipped int, duration time.Duration)

	// OnRenderDeferred records a pass skipped because the surface had no size.
	OnRenderDeferred(width, height float64)

	// OnGesture records a pan/zoom gesture and whether it was captured.
	OnGesture(kind string, captured bool)

	// OnHover records a node becoming active (id != "") or inactive.
	OnHover(id string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, error)          {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopMapHooks is a no-op implementation of MapHooks.
type NoopMapHooks struct{}

func (NoopMapHooks) OnRender(int, int, time.Duration)  {}
func (NoopMapHooks) OnRenderDeferred(float64, float64) {}
func (NoopMapHooks) OnGesture(string, bool)            {}
func (NoopMapHooks) OnHover(string)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	mapHooks      MapHooks      = NoopMapHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetMapHooks registers custom map hooks.
// Maps created afterwards pick them up unless given their own.
func SetMapHooks(h MapHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mapHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Map returns the registered map hooks.
func Map() MapHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mapHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	mapHooks = NoopMapHooks{}
}
