package core

import (
	"github.com/giantswarm/simenv/internal/envcache"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// Services are the process-scoped caches runners share: resolved manifests,
// environments and the platform table. One set of Services may back many
// Runners.
type Services struct {
	Manifests    *manifest.Resolver
	Environments *envcache.Cache
	Platforms    *platform.Table
}

// NewServices returns Services that load manifests from disk and create
// environments with factory. A nil table uses platform.DefaultTable.
// Panics if factory is nil.
func NewServices(factory sandbox.Factory, table *platform.Table) *Services {
	if table == nil {
		table = platform.DefaultTable()
	}
	return &Services{
		Manifests:    manifest.NewResolver(manifest.FileLoader{}),
		Environments: envcache.New(factory),
		Platforms:    table,
	}
}

// Close closes every cached environment.
func (s *Services) Close() error {
	return s.Environments.Close()
}
