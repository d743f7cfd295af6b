package simenv

import (
	"os"
	"path/filepath"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/core"
	"github.com/giantswarm/simenv/internal/lifecycle"
)

// Config is one layer of test configuration. Zero fields inherit from the
// enclosing layer: global options, then package simenv.yaml files, then the
// class, then the method.
type Config = config.Layer

// Level returns a pointer to level, for Config.MinSDK and Config.MaxSDK.
func Level(level int) *int { return config.Int(level) }

// runnerConfig holds the configuration and collaborators of a Runner. It
// wraps the core types so they stay out of the public API.
type runnerConfig struct {
	core.RunnerConfig
	deps core.Deps
}

// defaultRunnerConfig returns a runnerConfig populated with all default
// values. Both NewRunner and test helpers use it.
func defaultRunnerConfig() runnerConfig {
	return runnerConfig{
		RunnerConfig: core.RunnerConfig{
			BaseDataDir:  filepath.Join(os.TempDir(), DefaultBaseDataDirName),
			ResourceMode: DefaultResourceMode,
			Parallelism:  DefaultParallelism,
		},
		deps: core.Deps{Providers: lifecycle.NewRegistry()},
	}
}
