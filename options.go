package simenv

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive(name string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("simenv: %s must be greater than 0, got %d", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("simenv: %s must not be empty", name))
	}
}

// requireNonNil panics if v is nil with a descriptive message.
func requireNonNil(name string, v any) {
	if v == nil {
		panic(fmt.Sprintf("simenv: %s must not be nil", name))
	}
}

// RunnerOption configures a Runner during construction via NewRunner.
//
// Several With* functions panic on invalid input (unknown modes, empty
// paths, nil collaborators). Option values are typically constants, so an
// invalid value is a programmer error and fails fast, the way
// [regexp.MustCompile] does.
type RunnerOption func(*runnerConfig)

// WithResourceMode sets the resource pipelines methods are expanded for.
//
// Default: ResourceBest.
//
// Panics if mode is not one of the four ResourceMode constants.
func WithResourceMode(mode ResourceMode) RunnerOption {
	if !mode.Valid() {
		panic(fmt.Sprintf("simenv: invalid resource mode %q", mode))
	}
	return func(c *runnerConfig) {
		c.ResourceMode = mode
	}
}

// WithAlwaysIncludeVariantMarkers keeps the [level] marker on every variant
// name. By default the last variant of a method carries the bare method name
// so that test filters written against it keep matching.
func WithAlwaysIncludeVariantMarkers(always bool) RunnerOption {
	return func(c *runnerConfig) {
		c.AlwaysIncludeVariantMarkers = always
	}
}

// WithBaseDataDir sets the directory platform templates and environments are
// materialized under. Ignored for environments when WithServices or
// WithEnvironmentFactory is given.
//
// Default: filepath.Join(os.TempDir(), DefaultBaseDataDirName).
//
// Panics if dir is empty.
func WithBaseDataDir(dir string) RunnerOption {
	requireNonEmpty("base data directory", dir)
	return func(c *runnerConfig) {
		c.BaseDataDir = dir
	}
}

// WithConfigRoot sets the directory package simenv.yaml files are read from.
// The file for package a.b is read from <dir>/a/b/simenv.yaml.
//
// Panics if dir is empty.
func WithConfigRoot(dir string) RunnerOption {
	requireNonEmpty("config root", dir)
	return func(c *runnerConfig) {
		c.ConfigRoot = dir
	}
}

// WithManifestBaseDir sets the directory relative manifest, resource and
// library paths are resolved against.
//
// Panics if dir is empty.
func WithManifestBaseDir(dir string) RunnerOption {
	requireNonEmpty("manifest base directory", dir)
	return func(c *runnerConfig) {
		c.ManifestBaseDir = dir
	}
}

// WithParallelism sets how many methods of one class run at once.
//
// Default: 1.
//
// Panics if n <= 0.
func WithParallelism(n int) RunnerOption {
	requirePositive("parallelism", n)
	return func(c *runnerConfig) {
		c.Parallelism = n
	}
}

// WithGlobalConfig sets the outermost configuration layer.
//
// Panics if cfg sets both MinSDK and MaxSDK with MinSDK greater.
func WithGlobalConfig(cfg Config) RunnerOption {
	if cfg.MinSDK != nil && cfg.MaxSDK != nil && *cfg.MinSDK > *cfg.MaxSDK {
		panic(fmt.Sprintf("simenv: global minSdk (%d) is greater than maxSdk (%d)", *cfg.MinSDK, *cfg.MaxSDK))
	}
	return func(c *runnerConfig) {
		c.Global = cfg
	}
}

// WithPlatformPolicy replaces the default platform selection policy.
// Panics if p is nil.
func WithPlatformPolicy(p PlatformPolicy) RunnerOption {
	requireNonNil("platform policy", p)
	return func(c *runnerConfig) {
		c.deps.Policy = p
	}
}

// WithManifestFactory replaces the default manifest identification.
// Panics if f is nil.
func WithManifestFactory(f ManifestFactory) RunnerOption {
	requireNonNil("manifest factory", f)
	return func(c *runnerConfig) {
		c.deps.ManifestFactory = f
	}
}

// WithEnvironmentFactory makes the Runner create environments with f in
// caches it owns. Ignored when WithServices is given.
// Panics if f is nil.
func WithEnvironmentFactory(f EnvironmentFactory) RunnerOption {
	requireNonNil("environment factory", f)
	return func(c *runnerConfig) {
		c.deps.EnvironmentFactory = f
	}
}

// WithServices makes the Runner use shared caches. Shutdown leaves shared
// Services open.
// Panics if s is nil.
func WithServices(s *Services) RunnerOption {
	if s == nil {
		panic("simenv: services must not be nil")
	}
	return func(c *runnerConfig) {
		c.deps.Services = s.core
	}
}

// WithStateProvider registers p to be reset after every variant, after the
// test body and before the environment's own providers. Providers reset in
// registration order; registering a name again replaces the provider.
//
// Panics if name is empty or p is nil.
func WithStateProvider(name string, p StateProvider) RunnerOption {
	requireNonEmpty("state provider name", name)
	requireNonNil("state provider", p)
	return func(c *runnerConfig) {
		c.deps.Providers.Register(name, p)
	}
}

// WithMetricsRegistry registers runner metrics on reg during Initialize.
// Initialize fails when reg already carries them.
// Panics if reg is nil.
func WithMetricsRegistry(reg prometheus.Registerer) RunnerOption {
	requireNonNil("metrics registry", reg)
	return func(c *runnerConfig) {
		c.deps.Registerer = reg
	}
}
