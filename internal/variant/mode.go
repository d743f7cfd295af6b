package variant

import (
	"fmt"
	"strings"

	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrInvalidMode is returned when parsing an unknown resource mode name.
const ErrInvalidMode = sentinel.Error("invalid resource mode")

// ResourceMode selects which resource pipelines variants are expanded for.
// Legacy and Binary are concrete runtime modes; Best and Both only steer
// expansion.
type ResourceMode string

// Resource modes.
const (
	Legacy ResourceMode = "legacy"
	Binary ResourceMode = "binary"
	Best   ResourceMode = "best"
	Both   ResourceMode = "both"
)

// DefaultResourceMode is used when none is configured.
const DefaultResourceMode = Best

// Capabilities is what a manifest reports about its resources.
type Capabilities interface {
	SupportsLegacyResources() bool
	SupportsBinaryResources() bool
}

// ParseResourceMode parses a mode name, case-insensitively.
func ParseResourceMode(s string) (ResourceMode, error) {
	m := ResourceMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the four modes.
func (m ResourceMode) Valid() bool {
	switch m {
	case Legacy, Binary, Best, Both:
		return true
	}
	return false
}

// Concrete reports whether m is a runtime mode.
func (m ResourceMode) Concrete() bool {
	return m == Legacy || m == Binary
}

// IncludeLegacy reports whether a legacy variant is expanded for c.
// Best falls back to legacy only when binary resources are unavailable.
func (m ResourceMode) IncludeLegacy(c Capabilities) bool {
	if !c.SupportsLegacyResources() {
		return false
	}
	switch m {
	case Legacy, Both:
		return true
	case Best:
		return !c.SupportsBinaryResources()
	}
	return false
}

// IncludeBinary reports whether a binary variant is expanded for c.
func (m ResourceMode) IncludeBinary(c Capabilities) bool {
	if !c.SupportsBinaryResources() {
		return false
	}
	return m == Binary || m == Best || m == Both
}

func (m ResourceMode) String() string { return string(m) }

// MarshalText implements encoding.TextMarshaler.
func (m ResourceMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ResourceMode) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
