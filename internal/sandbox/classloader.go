package sandbox

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/giantswarm/simenv/internal/config"
)

// ClassLoaderConfig describes the instrumentation an environment is built
// with. Variants whose configurations differ here never share an environment.
type ClassLoaderConfig struct {
	shadows      []string
	instrumented []string
}

// NewClassLoaderConfig derives the class-loader configuration from merged
// test configuration. Order and duplicates in the input do not matter.
func NewClassLoaderConfig(cfg config.Merged) ClassLoaderConfig {
	return ClassLoaderConfig{
		shadows:      sets.List(sets.New(cfg.Shadows()...)),
		instrumented: sets.List(sets.New(cfg.InstrumentedPackages()...)),
	}
}

// Shadows returns the sorted shadow class names.
func (c ClassLoaderConfig) Shadows() []string { return append([]string(nil), c.shadows...) }

// InstrumentedPackages returns the sorted instrumented package names.
func (c ClassLoaderConfig) InstrumentedPackages() []string {
	return append([]string(nil), c.instrumented...)
}

// Fingerprint returns a short stable digest of the configuration. Every
// name is hashed as its own part, prefixed by the count of its list.
func (c ClassLoaderConfig) Fingerprint() string {
	parts := make([]string, 0, len(c.shadows)+len(c.instrumented)+4)
	parts = append(parts, "shadows", strconv.Itoa(len(c.shadows)))
	parts = append(parts, c.shadows...)
	parts = append(parts, "instrumented", strconv.Itoa(len(c.instrumented)))
	parts = append(parts, c.instrumented...)
	return hashStrings(parts...)
}

// Instruments reports whether class name is loaded with instrumentation: it
// is a configured shadow or lives in a configured instrumented package.
func (c ClassLoaderConfig) Instruments(name string) bool {
	if _, ok := slices.BinarySearch(c.shadows, name); ok {
		return true
	}
	for _, pkg := range c.instrumented {
		if strings.HasPrefix(name, pkg+".") {
			return true
		}
	}
	return false
}

// Class is a class bootstrapped into an environment.
type Class struct {
	Name         string
	Instrumented bool
}

// BootstrapClass resolves name against c.
func BootstrapClass(c ClassLoaderConfig, name string) (Class, error) {
	if name == "" {
		return Class{}, errors.New("bootstrap: empty class name")
	}
	return Class{Name: name, Instrumented: c.Instruments(name)}, nil
}
