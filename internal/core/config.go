package core

import (
	"errors"
	"fmt"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/variant"
)

// RunnerConfig holds configuration for Runner instances.
// All fields are immutable after construction via NewRunner.
type RunnerConfig struct {
	// BaseDataDir holds platform templates and environment directories.
	BaseDataDir string

	// ConfigRoot is the directory package-level simenv.yaml files are read
	// from. Empty disables package layers.
	ConfigRoot string

	// ManifestBaseDir resolves relative manifest, resource and library paths.
	// Empty means the working directory.
	ManifestBaseDir string

	// ResourceMode selects the resource pipelines variants are expanded for.
	// Default: variant.Best.
	ResourceMode variant.ResourceMode

	// AlwaysIncludeVariantMarkers keeps the platform suffix on every variant
	// name, including the last.
	AlwaysIncludeVariantMarkers bool

	// Parallelism bounds how many methods of one class run concurrently.
	// Variants of one method always run in order. Default: 1.
	Parallelism int

	// Global is the outermost configuration layer, below package, class
	// and method layers.
	Global config.Layer
}

// Validate checks all RunnerConfig invariants and returns an error describing
// every violation found.
//
// Validate is called by NewRunner (which panics on error, since invalid config
// is a programmer error) and by Initialize (which returns the error).
func (c RunnerConfig) Validate() error {
	var errs []error

	if c.BaseDataDir == "" {
		errs = append(errs, errors.New("base data directory must not be empty"))
	}
	if !c.ResourceMode.Valid() {
		errs = append(errs, fmt.Errorf("invalid resource mode: %q", c.ResourceMode))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	if c.Global.MinSDK != nil && c.Global.MaxSDK != nil && *c.Global.MinSDK > *c.Global.MaxSDK {
		errs = append(errs, fmt.Errorf("global minSdk (%d) is greater than maxSdk (%d)", *c.Global.MinSDK, *c.Global.MaxSDK))
	}

	return errors.Join(errs...)
}
