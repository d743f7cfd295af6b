package sandbox

import (
	"context"
	"fmt"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
)

// ThreadID identifies an invocation thread. NoThread means no binding.
type ThreadID uint64

// NoThread is the zero ThreadID.
const NoThread ThreadID = 0

// Key identifies an environment within a cache.
type Key struct {
	Fingerprint string
	Level       int
	Legacy      bool
}

// NewKey returns the cache key for the given inputs.
func NewKey(clc ClassLoaderConfig, v platform.Version, legacy bool) Key {
	return Key{Fingerprint: clc.Fingerprint(), Level: v.Level, Legacy: legacy}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Fingerprint, k.Level, modeName(k.Legacy))
}

func modeName(legacy bool) string {
	if legacy {
		return "legacy"
	}
	return "binary"
}

// Application describes what SetUpApplication prepares.
type Application struct {
	// Test is the qualified test method, "Class.method".
	Test     string
	Config   config.Merged
	Manifest *manifest.Descriptor
}

// Hooks sets up and tears down application state inside an environment.
type Hooks interface {
	SetUpApplication(ctx context.Context, app Application) error
	TearDownApplication(ctx context.Context) error
}

// Lifecycle is the per-test lifecycle hook run around the test body.
type Lifecycle interface {
	BeforeTest(ctx context.Context, test string) error
	AfterTest(ctx context.Context, test string) error
}

// StateProvider holds process state that must be cleared between variants.
type StateProvider interface {
	Reset()
}

// StateProviderFunc adapts a function to StateProvider.
type StateProviderFunc func()

// Reset calls f.
func (f StateProviderFunc) Reset() { f() }

// Environment is an isolated runtime context for one platform level and
// resource mode. Environments are reused by many variants.
//
// Only the lifecycle orchestrator changes the active thread, and only while
// holding the environment lock.
type Environment interface {
	ID() string
	Key() Key
	Version() platform.Version
	Legacy() bool

	ActiveThread() ThreadID
	SetActiveThread(ThreadID)
	Lock()
	Unlock()

	// Bootstrap loads a class through the environment's class loader.
	Bootstrap(name string) (Class, error)
	NewHooks() Hooks
	NewLifecycle() Lifecycle
	StateProviders() []StateProvider

	Close() error
}

// Factory creates environments on a cache miss.
type Factory interface {
	Create(ctx context.Context, clc ClassLoaderConfig, v platform.Version, legacy bool) (Environment, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, clc ClassLoaderConfig, v platform.Version, legacy bool) (Environment, error)

// Create calls f.
func (f FactoryFunc) Create(ctx context.Context, clc ClassLoaderConfig, v platform.Version, legacy bool) (Environment, error) {
	return f(ctx, clc, v, legacy)
}
