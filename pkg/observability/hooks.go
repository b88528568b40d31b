// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, cache lookups and photo drawing.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, which avoids import
// cycles and keeps the library free of metrics frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLoadStart(ctx, len(patterns))
//	// ... load photos ...
//	observability.Pipeline().OnLoadComplete(ctx, len(photos), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the collage pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, patterns int)
	OnLoadComplete(ctx context.Context, photos int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, photos int)
	OnLayoutComplete(ctx context.Context, cols, rows int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, output string)
	OnRenderComplete(ctx context.Context, output string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Photo Hooks
// =============================================================================

// PhotoHooks receives events for individual photos.
type PhotoHooks interface {
	// OnDecode records decoding a photo's header or full image.
	OnDecode(ctx context.Context, source string, full bool, duration time.Duration, err error)

	// OnDraw records compositing one cell onto the canvas.
	OnDraw(ctx context.Context, source string, w, h int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopPhotoHooks is a no-op implementation of PhotoHooks.
type NoopPhotoHooks struct{}

func (NoopPhotoHooks) OnDecode(context.Context, string, bool, time.Duration, error) {}
func (NoopPhotoHooks) OnDraw(context.Context, string, int, int, time.Duration)      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	photoHooks    PhotoHooks    = NoopPhotoHooks{}
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

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetPhotoHooks registers custom photo hooks.
// This should be called once at application startup before any photo is loaded.
func SetPhotoHooks(h PhotoHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		photoHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Photo returns the registered photo hooks.
func Photo() PhotoHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return photoHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	photoHooks = NoopPhotoHooks{}
}
