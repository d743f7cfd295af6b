package platform

import (
	"fmt"
	"slices"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// LegacyResourcesMaxLevel is the newest level the legacy resource pipeline
// supports. Legacy mode above it is rejected.
const LegacyResourcesMaxLevel = 28

// Version describes one simulated platform level.
type Version struct {
	Level    int
	Codename string

	known             bool
	supported         bool
	unsupportedReason string
}

// NewVersion returns a known, supported version.
func NewVersion(level int, codename string) Version {
	return Version{Level: level, Codename: codename, known: true, supported: true}
}

// NewUnsupportedVersion returns a known version that cannot be run, with a
// human-readable reason surfaced to the operator.
func NewUnsupportedVersion(level int, codename, reason string) Version {
	return Version{Level: level, Codename: codename, known: true, unsupportedReason: reason}
}

// UnknownVersion returns the placeholder for a level missing from the table.
func UnknownVersion(level int) Version {
	return Version{Level: level}
}

// IsKnown reports whether the level is present in the version table.
func (v Version) IsKnown() bool { return v.known }

// IsSupported reports whether the version can host environments.
func (v Version) IsSupported() bool { return v.known && v.supported }

// SupportsLegacyResources reports whether the legacy resource pipeline runs
// on v.
func (v Version) SupportsLegacyResources() bool { return v.Level <= LegacyResourcesMaxLevel }

// UnsupportedMessage explains why the version cannot be used.
func (v Version) UnsupportedMessage() string {
	switch {
	case !v.known:
		return fmt.Sprintf("unknown platform level %d", v.Level)
	case !v.supported:
		if v.unsupportedReason != "" {
			return v.unsupportedReason
		}
		return fmt.Sprintf("platform level %d is not supported", v.Level)
	default:
		return ""
	}
}

// String returns "<level>" or "<level> (<codename>)".
func (v Version) String() string {
	if v.Codename == "" {
		return fmt.Sprint(v.Level)
	}
	return fmt.Sprintf("%d (%s)", v.Level, v.Codename)
}

// Table is a concurrency-safe lookup of versions by level.
type Table struct {
	mu      sync.RWMutex
	byLevel map[int]Version
}

// NewTable returns a table containing versions. Later entries for the same
// level replace earlier ones.
func NewTable(versions ...Version) *Table {
	t := &Table{byLevel: make(map[int]Version, len(versions))}
	for _, v := range versions {
		t.byLevel[v.Level] = v
	}
	return t
}

// DefaultTable returns the built-in set of simulated platform versions.
func DefaultTable() *Table {
	return NewTable(
		NewVersion(16, "J"),
		NewVersion(17, "JMR1"),
		NewVersion(18, "JMR2"),
		NewVersion(19, "K"),
		NewUnsupportedVersion(20, "KW", "platform level 20 (KW) has no simulated runtime image"),
		NewVersion(21, "L"),
		NewVersion(22, "LMR1"),
		NewVersion(23, "M"),
		NewVersion(24, "N"),
		NewVersion(25, "NMR1"),
		NewVersion(26, "O"),
		NewVersion(27, "OMR1"),
		NewVersion(28, "P"),
		NewVersion(29, "Q"),
	)
}

// Register adds or replaces a version.
func (t *Table) Register(v Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byLevel == nil {
		t.byLevel = make(map[int]Version)
	}
	t.byLevel[v.Level] = v
}

// Lookup returns the version for level, or UnknownVersion(level).
func (t *Table) Lookup(level int) Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.byLevel[level]; ok {
		return v
	}
	return UnknownVersion(level)
}

// All returns every version in ascending level order.
func (t *Table) All() []Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	levels := sets.List(sets.KeySet(t.byLevel))
	out := make([]Version, 0, len(levels))
	for _, l := range levels {
		out = append(out, t.byLevel[l])
	}
	return out
}

// Supported returns the supported versions in ascending level order.
func (t *Table) Supported() []Version {
	all := t.All()
	return slices.DeleteFunc(all, func(v Version) bool { return !v.IsSupported() })
}
