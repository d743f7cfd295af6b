package variant

import (
	"context"
	"fmt"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// ExpansionError attributes a configuration error to a test method.
type ExpansionError struct {
	Class  string
	Method string
	Err    error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("failed to configure %s.%s: %v", e.Class, e.Method, e.Err)
}

func (e *ExpansionError) Unwrap() error { return e.Err }

// Expander turns a method and its merged configuration into variants.
type Expander struct {
	Manifests *manifest.Resolver
	Factory   manifest.Factory
	Policy    platform.Policy
	// Platforms receives the policy's versions and resolves them for
	// variants by level. Nil gives each expansion a private table.
	Platforms *platform.Table
	// Mode is the configured resource mode; empty means DefaultResourceMode.
	Mode ResourceMode
	// AlwaysIncludeMarkers keeps the platform suffix on every name.
	AlwaysIncludeMarkers bool
}

func (e *Expander) mode() ResourceMode {
	if e.Mode == "" {
		return DefaultResourceMode
	}
	return e.Mode
}

// Expand returns the ordered variants for class.method. Versions keep the
// policy's order; within a version legacy precedes binary. The last variant
// suppresses its name markers. An empty result is not an error.
//
// Manifest failures are returned as *manifest.ResolutionError, wrapped with
// the method name. Identification and policy failures are returned as
// *ExpansionError.
func (e *Expander) Expand(ctx context.Context, class, method string, cfg config.Merged) ([]*Variant, error) {
	id, err := e.Factory.Identify(cfg)
	if err != nil {
		return nil, &ExpansionError{Class: class, Method: method, Err: err}
	}
	m, err := e.Manifests.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", class, method, err)
	}

	versions, err := e.Policy.SelectVersions(cfg, m)
	if err != nil {
		return nil, &ExpansionError{Class: class, Method: method, Err: err}
	}

	table := e.Platforms
	if table == nil {
		table = platform.NewTable()
	}
	for _, v := range versions {
		if v.IsKnown() {
			table.Register(v)
		}
	}

	mode := e.mode()
	clc := sandbox.NewClassLoaderConfig(cfg)
	newVariant := func(level int, concrete ResourceMode) *Variant {
		return &Variant{
			class:         class,
			method:        method,
			level:         level,
			platforms:     table,
			mode:          concrete,
			configured:    mode,
			cfg:           cfg,
			manifestKey:   m.Key(),
			clc:           clc,
			alwaysMarkers: e.AlwaysIncludeMarkers,
		}
	}

	includeLegacy := mode.IncludeLegacy(m)
	includeBinary := mode.IncludeBinary(m)
	var out []*Variant
	for _, v := range versions {
		if includeLegacy {
			out = append(out, newVariant(v.Level, Legacy))
		}
		if includeBinary {
			out = append(out, newVariant(v.Level, Binary))
		}
	}
	if len(out) > 0 {
		out[len(out)-1].suppressMarkers = true
	}
	return out, nil
}
