package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/giantswarm/simenv/internal/fileutil"
)

// FileName is the name of the per-package configuration file.
const FileName = "simenv.yaml"

// LoadFile parses a single configuration layer from a YAML file.
// Unknown fields are rejected so that typos surface instead of silently
// falling back to defaults.
func LoadFile(path string) (Layer, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: config paths come from the test tree
	if err != nil {
		return Layer{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var l Layer
	if err := yaml.UnmarshalStrict(data, &l); err != nil {
		return Layer{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return l, nil
}

// Merger computes Merged configs for test methods. It implements the
// configuration merge service consumed by variant expansion.
//
// Package layers are read from Root/<package path>/simenv.yaml for every
// segment of the test class's package, outermost first, and cached for the
// life of the Merger. A zero Root disables package files.
//
// It is safe for concurrent use.
type Merger struct {
	Root string

	mu       sync.Mutex
	packages map[string]Layer
}

// Merge returns the effective configuration for a method of a class in pkg:
// global, then package files, then class, then method.
func (mg *Merger) Merge(global Merged, pkg string, class, method Layer) (Merged, error) {
	out := global
	layers, err := mg.packageLayers(pkg)
	if err != nil {
		return Merged{}, err
	}
	for _, l := range layers {
		out = out.Overlay(l)
	}
	return out.Overlay(class).Overlay(method), nil
}

// packageLayers returns the configured layers for pkg and its parents,
// outermost first. Missing files contribute nothing.
func (mg *Merger) packageLayers(pkg string) ([]Layer, error) {
	if mg.Root == "" || pkg == "" {
		return nil, nil
	}

	segments := strings.Split(pkg, ".")
	layers := make([]Layer, 0, len(segments))
	for i := range segments {
		prefix := strings.Join(segments[:i+1], ".")
		l, err := mg.packageLayer(prefix)
		if err != nil {
			return nil, err
		}
		if !l.IsZero() {
			layers = append(layers, l)
		}
	}
	return layers, nil
}

func (mg *Merger) packageLayer(pkg string) (Layer, error) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	if l, ok := mg.packages[pkg]; ok {
		return l, nil
	}

	path := filepath.Join(mg.Root, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")), FileName)
	exists, err := fileutil.Exists(path)
	if err != nil {
		return Layer{}, err
	}
	var l Layer
	if exists {
		if l, err = LoadFile(path); err != nil {
			return Layer{}, err
		}
	}

	if mg.packages == nil {
		mg.packages = make(map[string]Layer)
	}
	mg.packages[pkg] = l
	return l, nil
}
