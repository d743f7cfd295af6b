package manifest

import (
	"path/filepath"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/fileutil"
)

// DefaultManifestFile is the manifest file name looked up when the
// configuration does not name one.
const DefaultManifestFile = "manifest.yaml"

// Factory maps a merged configuration to a manifest identifier.
type Factory interface {
	Identify(cfg config.Merged) (Identifier, error)
}

// ConfigFactory derives identifiers from configuration paths relative to
// BaseDir. When no manifest is configured, BaseDir/manifest.yaml is used if it
// exists; otherwise the variant runs without a manifest.
type ConfigFactory struct {
	BaseDir string
}

var _ Factory = ConfigFactory{}

// Identify implements Factory.
func (f ConfigFactory) Identify(cfg config.Merged) (Identifier, error) {
	var id Identifier

	switch m := cfg.Manifest(); m {
	case config.ManifestNone:
	case "":
		path := f.abs(DefaultManifestFile)
		ok, err := fileutil.Exists(path)
		if err != nil {
			return Identifier{}, err
		}
		if ok {
			id.ManifestFile = path
		}
	default:
		id.ManifestFile = f.abs(m)
	}

	id.PackageName = cfg.PackageName()
	id.APKFile = f.abs(cfg.APKFile())
	id.ResourceDir = f.abs(cfg.ResourceDir())
	id.AssetDir = f.abs(cfg.AssetDir())
	if id.ManifestFile != "" {
		var err error
		if id.ResourceDir == "" {
			if id.ResourceDir, err = existingDir(filepath.Join(filepath.Dir(id.ManifestFile), "res")); err != nil {
				return Identifier{}, err
			}
		}
		if id.AssetDir == "" {
			if id.AssetDir, err = existingDir(filepath.Join(filepath.Dir(id.ManifestFile), "assets")); err != nil {
				return Identifier{}, err
			}
		}
	}

	for _, lib := range cfg.Libraries() {
		libID, err := f.library(f.abs(lib))
		if err != nil {
			return Identifier{}, err
		}
		id.Libraries = append(id.Libraries, libID)
	}
	return id, nil
}

func (f ConfigFactory) library(dir string) (Identifier, error) {
	res, err := existingDir(filepath.Join(dir, "res"))
	if err != nil {
		return Identifier{}, err
	}
	assets, err := existingDir(filepath.Join(dir, "assets"))
	if err != nil {
		return Identifier{}, err
	}
	return Identifier{
		ManifestFile: filepath.Join(dir, DefaultManifestFile),
		ResourceDir:  res,
		AssetDir:     assets,
	}, nil
}

func (f ConfigFactory) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.BaseDir, p)
}

func existingDir(path string) (string, error) {
	ok, err := fileutil.Exists(path)
	if err != nil || !ok {
		return "", err
	}
	return path, nil
}
