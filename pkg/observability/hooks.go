// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about engine operations, drag sessions, project stores
// and HTTP requests served by the board server.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so engine packages stay
// free of any metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	preview, err := ctrl.Update(p)
//	observability.Engine().OnDragUpdate(ctx, preview.Tile, preview.CacheHit, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the placement engine.
type EngineHooks interface {
	// Placement events
	OnPlace(ctx context.Context, placed, unplaced int, duration time.Duration)
	OnRepair(ctx context.Context, moved, cleared int, duration time.Duration)

	// Drag events
	OnDragStart(ctx context.Context, tileID string)
	OnDragUpdate(ctx context.Context, tileID string, cacheHit bool, duration time.Duration)
	OnDragEnd(ctx context.Context, tileID, status string, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from project stores.
type StoreHooks interface {
	// OnLoad records a project read.
	OnLoad(ctx context.Context, backend, name string, found bool)

	// OnSave records a project write with its tile count.
	OnSave(ctx context.Context, backend, name string, tiles int)

	// OnError records a failed store operation.
	OnError(ctx context.Context, backend, op string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the board server.
type HTTPHooks interface {
	// OnRequest records a served HTTP request.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnSocket records a websocket connection opening or closing.
	OnSocket(ctx context.Context, board string, open bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnPlace(context.Context, int, int, time.Duration)          {}
func (NoopEngineHooks) OnRepair(context.Context, int, int, time.Duration)         {}
func (NoopEngineHooks) OnDragStart(context.Context, string)                       {}
func (NoopEngineHooks) OnDragUpdate(context.Context, string, bool, time.Duration) {}
func (NoopEngineHooks) OnDragEnd(context.Context, string, string, time.Duration)  {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool)   {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int)    {}
func (NoopStoreHooks) OnError(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnSocket(context.Context, string, bool)                        {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
