package simenv

import "github.com/giantswarm/simenv/internal/variant"

// ResourceMode selects the resource pipelines a method is expanded for.
//
// ResourceMode is a type alias so that the underlying methods are part of
// the public API:
//
//   - Valid reports whether the value is a recognized mode.
//   - String returns the mode name (implements [fmt.Stringer]).
//   - MarshalText and UnmarshalText read and write the mode name.
type ResourceMode = variant.ResourceMode

const (
	// ResourceLegacy runs only the raw-resource pipeline. Platforms newer
	// than the legacy cut-off reject it; variants for them are skipped.
	// The legacy pipeline is deprecated; prefer ResourceBinary.
	ResourceLegacy = variant.Legacy

	// ResourceBinary runs only the compiled-resource pipeline.
	ResourceBinary = variant.Binary

	// ResourceBest runs the binary pipeline when the manifest supports it and
	// the legacy pipeline otherwise. This is the default.
	ResourceBest = variant.Best

	// ResourceBoth runs every pipeline the manifest supports, legacy first.
	// Variant names carry a [legacy] or [binary] marker.
	ResourceBoth = variant.Both
)

// ParseResourceMode parses a mode name: legacy, binary, best or both.
func ParseResourceMode(s string) (ResourceMode, error) {
	return variant.ParseResourceMode(s)
}
