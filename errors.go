package simenv

import (
	"github.com/giantswarm/simenv/internal/core"
	"github.com/giantswarm/simenv/internal/envcache"
	"github.com/giantswarm/simenv/internal/lifecycle"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/variant"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrShuttingDown is returned by Runner methods once Shutdown has been called.
	ErrShuttingDown = core.ErrShuttingDown

	// ErrNotInitialized is returned by Runner methods before Initialize.
	ErrNotInitialized = core.ErrNotInitialized

	// ErrUnknownVariant is returned by RunVariant when the identity names no
	// variant of the class.
	ErrUnknownVariant = core.ErrUnknownVariant

	// ErrNoVariants is reported on the skipped result of a method whose
	// configuration selects no platform versions.
	ErrNoVariants = core.ErrNoVariants

	// ErrAssumptionViolated marks skipped variants. Skip wraps it.
	ErrAssumptionViolated = lifecycle.ErrAssumptionViolated

	// ErrUnsupported matches both UnsupportedPlatformError and
	// UnsupportedModeError.
	ErrUnsupported = envcache.ErrUnsupported

	// ErrManifestResolution matches every ManifestResolutionError.
	ErrManifestResolution = manifest.ErrResolution

	// ErrInvalidResourceMode is returned by ParseResourceMode.
	ErrInvalidResourceMode = variant.ErrInvalidMode
)

// Typed errors for inspection with errors.As.
type (
	// ManifestResolutionError reports a manifest that could not be loaded.
	// Expansion of the affected method fails with it.
	ManifestResolutionError = manifest.ResolutionError

	// UnsupportedPlatformError reports a variant whose platform version is
	// unknown or unsupported. The variant is skipped.
	UnsupportedPlatformError = envcache.UnsupportedPlatformError

	// UnsupportedModeError reports a legacy variant on a platform newer than
	// the legacy cut-off. The variant is skipped.
	UnsupportedModeError = envcache.UnsupportedModeError

	// VariantExpansionError reports a method whose configuration could not be
	// expanded. The method is reported failed.
	VariantExpansionError = variant.ExpansionError

	// SetupFailure reports an error while setting up the application.
	SetupFailure = lifecycle.SetupFailure

	// InvocationFailure reports an error returned or raised by a test body.
	InvocationFailure = lifecycle.InvocationFailure

	// TeardownFailure reports an error while tearing down the application.
	TeardownFailure = lifecycle.TeardownFailure

	// PanicError is a panic recovered from a test body or hook.
	PanicError = lifecycle.PanicError
)
