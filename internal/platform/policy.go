package platform

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrInvalidConfig is the category of configuration errors a Policy reports
// for contradictory settings. Variant expansion attributes these to the
// offending test method.
const ErrInvalidConfig = sentinel.Error("invalid platform configuration")

// Symbolic values accepted in the sdk list.
const (
	AllLevels   = -2
	TargetLevel = -3
	OldestLevel = -4
	NewestLevel = -5
)

// ManifestInfo is the part of a manifest descriptor a Policy looks at.
// Zero means the manifest does not declare the value.
type ManifestInfo interface {
	MinSDK() int
	TargetSDK() int
	MaxSDK() int
}

// Policy selects the platform versions to exercise for a configuration.
// The returned order is significant and is preserved by callers.
type Policy interface {
	SelectVersions(cfg config.Merged, m ManifestInfo) ([]Version, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(cfg config.Merged, m ManifestInfo) ([]Version, error)

// SelectVersions calls f.
func (f PolicyFunc) SelectVersions(cfg config.Merged, m ManifestInfo) ([]Version, error) {
	return f(cfg, m)
}

// DefaultPolicy resolves explicit and symbolic sdk values, minSdk/maxSdk
// ranges, and falls back to every supported version the manifest allows.
//
// When Enabled is non-empty, only those levels survive selection.
type DefaultPolicy struct {
	Table   *Table
	Enabled sets.Set[int]
}

var _ Policy = (*DefaultPolicy)(nil)

// SelectVersions implements Policy.
func (p *DefaultPolicy) SelectVersions(cfg config.Merged, m ManifestInfo) ([]Version, error) {
	supported := p.Table.Supported()
	if len(supported) == 0 {
		return nil, nil
	}
	bounds := p.manifestBounds(supported, m)

	var out []Version
	switch {
	case len(cfg.SDK()) > 0:
		if cfg.MinSDK() != config.Unset || cfg.MaxSDK() != config.Unset {
			return nil, fmt.Errorf("%w: sdk and minSdk/maxSdk may not be specified together", ErrInvalidConfig)
		}
		for _, level := range cfg.SDK() {
			vs, err := p.resolveLevel(level, bounds, supported)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}

	case cfg.MinSDK() != config.Unset || cfg.MaxSDK() != config.Unset:
		lo, hi := bounds.min, bounds.max
		if cfg.MinSDK() != config.Unset {
			lo = cfg.MinSDK()
		}
		if cfg.MaxSDK() != config.Unset {
			hi = cfg.MaxSDK()
		}
		if lo > hi {
			return nil, fmt.Errorf("%w: minSdk (%d) is greater than maxSdk (%d)", ErrInvalidConfig, lo, hi)
		}
		out = inRange(supported, lo, hi)

	default:
		out = inRange(supported, bounds.min, bounds.max)
	}

	if p.Enabled.Len() > 0 {
		var filtered []Version
		for _, v := range out {
			if p.Enabled.Has(v.Level) {
				filtered = append(filtered, v)
			}
		}
		out = filtered
	}
	return out, nil
}

type levelBounds struct {
	min, target, max int
}

// manifestBounds clamps the manifest's declared levels to the supported range.
func (p *DefaultPolicy) manifestBounds(supported []Version, m ManifestInfo) levelBounds {
	b := levelBounds{min: supported[0].Level, max: supported[len(supported)-1].Level}
	if m != nil {
		if v := m.MinSDK(); v > b.min {
			b.min = v
		}
		if v := m.MaxSDK(); v > 0 && v < b.max {
			b.max = v
		}
	}
	b.target = b.max
	if m != nil {
		if v := m.TargetSDK(); v > 0 {
			b.target = max(v, b.min)
		}
	}
	return b
}

func (p *DefaultPolicy) resolveLevel(level int, b levelBounds, supported []Version) ([]Version, error) {
	switch level {
	case AllLevels:
		return inRange(supported, b.min, b.max), nil
	case TargetLevel:
		return []Version{p.Table.Lookup(b.target)}, nil
	case OldestLevel:
		return firstOf(inRange(supported, b.min, b.max)), nil
	case NewestLevel:
		vs := inRange(supported, b.min, b.max)
		if len(vs) == 0 {
			return nil, nil
		}
		return vs[len(vs)-1:], nil
	default:
		if level < 0 {
			return nil, fmt.Errorf("%w: unrecognized symbolic sdk value %d", ErrInvalidConfig, level)
		}
		return []Version{p.Table.Lookup(level)}, nil
	}
}

func inRange(vs []Version, lo, hi int) []Version {
	var out []Version
	for _, v := range vs {
		if v.Level >= lo && v.Level <= hi {
			out = append(out, v)
		}
	}
	return out
}

func firstOf(vs []Version) []Version {
	if len(vs) == 0 {
		return nil
	}
	return vs[:1]
}
