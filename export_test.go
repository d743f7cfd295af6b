package simenv

// ResetForTesting drops the process-level Services so that the next call to
// ProcessServices creates fresh ones. This is exported only for use in test
// packages (package simenv_test).
func ResetForTesting() { resetForTesting() }

// ConfigSnapshot holds a copy of runnerConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	BaseDataDir                 string
	ConfigRoot                  string
	ManifestBaseDir             string
	ResourceMode                ResourceMode
	AlwaysIncludeVariantMarkers bool
	Parallelism                 int
	Global                      Config
	HasPolicy                   bool
	HasManifestFactory          bool
	HasEnvironmentFactory       bool
	HasServices                 bool
	HasRegisterer               bool
	StateProviders              []string
}

// ApplyOptionsForTesting creates a default runnerConfig, applies the given
// options, and returns a ConfigSnapshot of the result.
func ApplyOptionsForTesting(opts ...RunnerOption) ConfigSnapshot {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		BaseDataDir:                 cfg.BaseDataDir,
		ConfigRoot:                  cfg.ConfigRoot,
		ManifestBaseDir:             cfg.ManifestBaseDir,
		ResourceMode:                cfg.ResourceMode,
		AlwaysIncludeVariantMarkers: cfg.AlwaysIncludeVariantMarkers,
		Parallelism:                 cfg.Parallelism,
		Global:                      cfg.Global,
		HasPolicy:                   cfg.deps.Policy != nil,
		HasManifestFactory:          cfg.deps.ManifestFactory != nil,
		HasEnvironmentFactory:       cfg.deps.EnvironmentFactory != nil,
		HasServices:                 cfg.deps.Services != nil,
		HasRegisterer:               cfg.deps.Registerer != nil,
		StateProviders:              cfg.deps.Providers.Names(),
	}
}
