package envcache

import (
	"fmt"

	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrUnsupported is matched by both UnsupportedPlatformError and
// UnsupportedModeError. Variants failing with it cannot run here; they did
// not break.
const ErrUnsupported = sentinel.Error("environment not supported")

// ErrClosed is returned by GetOrCreate after Close.
const ErrClosed = sentinel.Error("environment cache closed")

// UnsupportedPlatformError reports a platform level that is unknown or
// explicitly unsupported.
type UnsupportedPlatformError struct {
	Version platform.Version
}

func (e *UnsupportedPlatformError) Error() string {
	return "failed to create a sandbox: " + e.Version.UnsupportedMessage()
}

// Is matches ErrUnsupported.
func (e *UnsupportedPlatformError) Is(target error) bool { return target == ErrUnsupported }

// UnsupportedModeError reports legacy resources requested above
// platform.LegacyResourcesMaxLevel.
type UnsupportedModeError struct {
	Version platform.Version
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("legacy resources mode is not supported after level %d: requested %s",
		platform.LegacyResourcesMaxLevel, e.Version)
}

// Is matches ErrUnsupported.
func (e *UnsupportedModeError) Is(target error) bool { return target == ErrUnsupported }

// ValidatePlatform returns *UnsupportedPlatformError unless v is known and
// supported.
func ValidatePlatform(v platform.Version) error {
	if !v.IsKnown() || !v.IsSupported() {
		return &UnsupportedPlatformError{Version: v}
	}
	return nil
}

// ValidateMode returns *UnsupportedModeError when legacy resources are
// requested above platform.LegacyResourcesMaxLevel.
func ValidateMode(v platform.Version, legacy bool) error {
	if legacy && !v.SupportsLegacyResources() {
		return &UnsupportedModeError{Version: v}
	}
	return nil
}
