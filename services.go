package simenv

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/giantswarm/simenv/internal/core"
	"github.com/giantswarm/simenv/internal/envcache"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// Services are the caches runners share: resolved manifests and created
// environments. Runners configured with the same Services reuse each
// other's environments. Services outlive runners; close them once every
// runner using them has shut down.
type Services struct {
	core *core.Services
}

// ServicesStats is a snapshot of the shared cache counters.
type ServicesStats struct {
	Manifests    manifest.Stats
	Environments envcache.Stats
}

// Singleton state for ProcessServices.
//
// servicesMu protects both processServices and servicesOnce so that
// resetForTesting is concurrency-safe with ProcessServices.
var (
	servicesMu      sync.Mutex
	processServices *Services
	servicesOnce    sync.Once
)

// NewServices returns Services that create environments with factory.
// Panics if factory is nil.
func NewServices(factory EnvironmentFactory) *Services {
	if factory == nil {
		panic("simenv: environment factory must not be nil")
	}
	return &Services{core: core.NewServices(factory, nil)}
}

// NewDiskServices returns Services that materialize environments under
// baseDir. Panics if baseDir is empty.
func NewDiskServices(baseDir string) *Services {
	requireNonEmpty("base data directory", baseDir)
	return NewServices(&sandbox.DiskFactory{BaseDir: baseDir, Logger: core.Logger()})
}

// ProcessServices returns the process-level Services, materializing
// environments under filepath.Join(os.TempDir(), DefaultBaseDataDirName).
// The first call creates them; later calls return the same value.
func ProcessServices() *Services {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	servicesOnce.Do(func() {
		processServices = NewDiskServices(filepath.Join(os.TempDir(), DefaultBaseDataDirName))
	})
	return processServices
}

// resetForTesting drops the process-level Services so that the next call to
// ProcessServices creates fresh ones. It must only be called from tests.
func resetForTesting() {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	processServices = nil
	servicesOnce = sync.Once{}
}

// Stats returns the current cache counters.
func (s *Services) Stats() ServicesStats {
	return ServicesStats{
		Manifests:    s.core.Manifests.Stats(),
		Environments: s.core.Environments.Stats(),
	}
}

// Close closes every cached environment. Returns every close error joined.
func (s *Services) Close() error {
	return s.core.Close()
}
