package config

import (
	"slices"
	"strings"
)

// ManifestNone is the manifest value that disables manifest loading entirely:
// the variant runs against framework resources only.
const ManifestNone = "none"

// Unset marks an integer setting (MinSDK, MaxSDK) that no layer configured.
const Unset = -1

// Layer is one level of configuration as written by a test author. Zero values
// mean "not set at this level" so that a Layer only overrides what it names.
// Field tags follow sigs.k8s.io/yaml conventions (JSON tags).
type Layer struct {
	SDK                  []int    `json:"sdk,omitempty"`
	MinSDK               *int     `json:"minSdk,omitempty"`
	MaxSDK               *int     `json:"maxSdk,omitempty"`
	Manifest             string   `json:"manifest,omitempty"`
	PackageName          string   `json:"packageName,omitempty"`
	ResourceDir          string   `json:"resourceDir,omitempty"`
	AssetDir             string   `json:"assetDir,omitempty"`
	APKFile              string   `json:"apkFile,omitempty"`
	Qualifiers           string   `json:"qualifiers,omitempty"`
	Application          string   `json:"application,omitempty"`
	Libraries            []string `json:"libraries,omitempty"`
	Shadows              []string `json:"shadows,omitempty"`
	InstrumentedPackages []string `json:"instrumentedPackages,omitempty"`
}

// IsZero reports whether the layer sets nothing.
func (l Layer) IsZero() bool {
	return len(l.SDK) == 0 && l.MinSDK == nil && l.MaxSDK == nil &&
		l.Manifest == "" && l.PackageName == "" && l.ResourceDir == "" &&
		l.AssetDir == "" && l.APKFile == "" && l.Qualifiers == "" &&
		l.Application == "" && len(l.Libraries) == 0 && len(l.Shadows) == 0 &&
		len(l.InstrumentedPackages) == 0
}

// Merged is the effective, immutable configuration of one test method.
// Methods return copies of slice fields so callers cannot mutate shared state.
type Merged struct {
	sdk                  []int
	minSDK               int
	maxSDK               int
	manifest             string
	packageName          string
	resourceDir          string
	assetDir             string
	apkFile              string
	qualifiers           string
	application          string
	libraries            []string
	shadows              []string
	instrumentedPackages []string
}

// Default returns the configuration every merge starts from.
func Default() Merged {
	return Merged{minSDK: Unset, maxSDK: Unset}
}

// Overlay returns a copy of m with l applied on top.
//
// Scalars in l replace those of m when set. SDK replaces the whole list.
// Qualifiers starting with "+" are appended to the inherited qualifiers.
// Libraries, shadows and instrumented packages accumulate without duplicates.
func (m Merged) Overlay(l Layer) Merged {
	out := m
	out.sdk = slices.Clone(m.sdk)
	out.libraries = slices.Clone(m.libraries)
	out.shadows = slices.Clone(m.shadows)
	out.instrumentedPackages = slices.Clone(m.instrumentedPackages)

	if len(l.SDK) > 0 {
		out.sdk = slices.Clone(l.SDK)
	}
	if l.MinSDK != nil {
		out.minSDK = *l.MinSDK
	}
	if l.MaxSDK != nil {
		out.maxSDK = *l.MaxSDK
	}
	setIf(&out.manifest, l.Manifest)
	setIf(&out.packageName, l.PackageName)
	setIf(&out.resourceDir, l.ResourceDir)
	setIf(&out.assetDir, l.AssetDir)
	setIf(&out.apkFile, l.APKFile)
	setIf(&out.application, l.Application)
	out.qualifiers = overlayQualifiers(m.qualifiers, l.Qualifiers)
	out.libraries = appendUnique(out.libraries, l.Libraries)
	out.shadows = appendUnique(out.shadows, l.Shadows)
	out.instrumentedPackages = appendUnique(out.instrumentedPackages, l.InstrumentedPackages)
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayQualifiers(base, overlay string) string {
	switch {
	case overlay == "":
		return base
	case strings.HasPrefix(overlay, "+"):
		if base == "" {
			return overlay[1:]
		}
		return base + " " + overlay[1:]
	default:
		return overlay
	}
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

// SDK returns the explicitly configured platform levels, in author order.
func (m Merged) SDK() []int { return slices.Clone(m.sdk) }

// MinSDK returns the lower bound of the level range, or Unset.
func (m Merged) MinSDK() int { return m.minSDK }

// MaxSDK returns the upper bound of the level range, or Unset.
func (m Merged) MaxSDK() int { return m.maxSDK }

// Manifest returns the manifest file path, ManifestNone, or "" for the default.
func (m Merged) Manifest() string { return m.manifest }

// PackageName returns the configured application package name.
func (m Merged) PackageName() string { return m.packageName }

// ResourceDir returns the raw resource directory.
func (m Merged) ResourceDir() string { return m.resourceDir }

// AssetDir returns the asset directory.
func (m Merged) AssetDir() string { return m.assetDir }

// APKFile returns the path of the compiled resource package, if any.
func (m Merged) APKFile() string { return m.apkFile }

// Qualifiers returns the device qualifiers string.
func (m Merged) Qualifiers() string { return m.qualifiers }

// Application returns the application class name.
func (m Merged) Application() string { return m.application }

// Libraries returns library directories in declaration order.
func (m Merged) Libraries() []string { return slices.Clone(m.libraries) }

// Shadows returns the extra shadow class names.
func (m Merged) Shadows() []string { return slices.Clone(m.shadows) }

// InstrumentedPackages returns the extra instrumented package prefixes.
func (m Merged) InstrumentedPackages() []string { return slices.Clone(m.instrumentedPackages) }

// Int returns a pointer to v, for populating Layer.MinSDK and Layer.MaxSDK.
func Int(v int) *int { return &v }
