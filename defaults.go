package simenv

import (
	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/manifest"
)

// Default configuration values for NewRunner.
// These constants are exported so callers can build configurations relative
// to them.
const (
	// DefaultResourceMode expands each method for the best resource pipeline
	// its manifest supports.
	DefaultResourceMode = ResourceBest

	// DefaultParallelism is the number of methods of one class that run at
	// once. Variants of one method always run in order.
	DefaultParallelism = 1

	// DefaultBaseDataDirName is the directory name under the system temp
	// directory where platform templates and environments are stored. The
	// full path is computed as filepath.Join(os.TempDir(), DefaultBaseDataDirName).
	DefaultBaseDataDirName = "simenv"

	// DefaultManifestFile is the manifest file read when a configuration
	// names none. A missing default manifest means "no manifest".
	DefaultManifestFile = manifest.DefaultManifestFile

	// ConfigFileName is the per-package configuration file read under the
	// config root (see WithConfigRoot).
	ConfigFileName = config.FileName

	// ManifestNone disables manifest loading for a configuration layer.
	ManifestNone = config.ManifestNone
)
