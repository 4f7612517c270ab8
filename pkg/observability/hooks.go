// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about build passes and run history storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the scheduler core free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnSystemStart(ctx, name)
//	err := routine.Run()
//	observability.Build().OnSystemComplete(ctx, name, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from a scheduler build pass.
type BuildHooks interface {
	// OnBuildStart is called once the execution order is known.
	OnBuildStart(ctx context.Context, systemCount int)
	// OnBuildComplete is called when the pass ends, successfully or not.
	OnBuildComplete(ctx context.Context, executed int, duration time.Duration, err error)

	// System events
	OnSystemStart(ctx context.Context, name string)
	OnSystemComplete(ctx context.Context, name string, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from run history storage.
type StoreHooks interface {
	// OnRecordSaved records a history write.
	OnRecordSaved(ctx context.Context, backend string, size int)

	// OnRecordLoaded records a successful history read.
	OnRecordLoaded(ctx context.Context, backend string)

	// OnRecordMissing records a read for an unknown run.
	OnRecordMissing(ctx context.Context, backend string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, int)                                {}
func (NoopBuildHooks) OnBuildComplete(context.Context, int, time.Duration, error)       {}
func (NoopBuildHooks) OnSystemStart(context.Context, string)                            {}
func (NoopBuildHooks) OnSystemComplete(context.Context, string, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRecordSaved(context.Context, string, int) {}
func (NoopStoreHooks) OnRecordLoaded(context.Context, string)     {}
func (NoopStoreHooks) OnRecordMissing(context.Context, string)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any build pass.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any history access.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	storeHooks = NoopStoreHooks{}
}
