package variant

import (
	"strconv"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// Variant is one (method, platform level, resource mode) combination.
type Variant struct {
	class       string
	method      string
	level       int
	platforms   *platform.Table
	mode        ResourceMode
	configured  ResourceMode
	cfg         config.Merged
	manifestKey string
	clc         sandbox.ClassLoaderConfig

	suppressMarkers bool
	alwaysMarkers   bool
}

// Class returns the test class name.
func (v *Variant) Class() string { return v.class }

// Method returns the test method name.
func (v *Variant) Method() string { return v.method }

// Test returns "Class.Method".
func (v *Variant) Test() string { return v.class + "." + v.method }

// Level returns the platform level the variant runs on.
func (v *Variant) Level() int { return v.level }

// Version resolves the variant's level against the platform table it was
// expanded with, so later registrations are observed.
func (v *Variant) Version() platform.Version { return v.platforms.Lookup(v.level) }

// Mode returns the concrete resource mode.
func (v *Variant) Mode() ResourceMode { return v.mode }

// Legacy reports whether the variant uses legacy resources.
func (v *Variant) Legacy() bool { return v.mode == Legacy }

// Config returns the merged configuration the variant was expanded from.
func (v *Variant) Config() config.Merged { return v.cfg }

// ManifestKey returns the identifier key of the variant's manifest.
func (v *Variant) ManifestKey() string { return v.manifestKey }

// ClassLoader returns the class-loader configuration selecting the
// variant's environment.
func (v *Variant) ClassLoader() sandbox.ClassLoaderConfig { return v.clc }

// SuppressesMarkers reports whether the variant's name may omit the
// platform and mode suffixes.
func (v *Variant) SuppressesMarkers() bool { return v.suppressMarkers }

// Identity returns the serializable identity of the variant.
func (v *Variant) Identity() Identity {
	return Identity{Class: v.class, Method: v.method, Level: v.level, Mode: v.mode}
}

// Name returns the display name: the method name, then "[level]" unless
// markers are suppressed, then "[mode]" when expanding both modes.
func (v *Variant) Name() string {
	name := v.method
	if !v.suppressMarkers || v.alwaysMarkers {
		name += "[" + strconv.Itoa(v.level) + "]"
		if v.configured == Both {
			name += "[" + string(v.mode) + "]"
		}
	}
	return name
}

func (v *Variant) String() string { return v.Identity().String() }
