package platform

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/giantswarm/simenv/internal/config"
)

type fakeManifest struct {
	min, target, max int
}

func (f fakeManifest) MinSDK() int    { return f.min }
func (f fakeManifest) TargetSDK() int { return f.target }
func (f fakeManifest) MaxSDK() int    { return f.max }

func levels(vs []Version) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.Level
	}
	return out
}

func testTable() *Table {
	return NewTable(
		NewVersion(19, "K"),
		NewUnsupportedVersion(20, "KW", "no image"),
		NewVersion(21, "L"),
		NewVersion(23, "M"),
		NewVersion(28, "P"),
		NewVersion(29, "Q"),
	)
}

func TestVersion_SupportFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		v             Version
		wantKnown     bool
		wantSupported bool
		wantMsg       string
	}{
		"supported":   {v: NewVersion(28, "P"), wantKnown: true, wantSupported: true, wantMsg: ""},
		"unsupported": {v: NewUnsupportedVersion(20, "KW", "no image"), wantKnown: true, wantMsg: "no image"},
		"unsupported without reason": {
			v:         NewUnsupportedVersion(20, "KW", ""),
			wantKnown: true,
			wantMsg:   "platform level 20 is not supported",
		},
		"unknown": {v: UnknownVersion(99), wantMsg: "unknown platform level 99"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := tc.v.IsKnown(); got != tc.wantKnown {
				t.Errorf("IsKnown() = %v, want %v", got, tc.wantKnown)
			}
			if got := tc.v.IsSupported(); got != tc.wantSupported {
				t.Errorf("IsSupported() = %v, want %v", got, tc.wantSupported)
			}
			if got := tc.v.UnsupportedMessage(); got != tc.wantMsg {
				t.Errorf("UnsupportedMessage() = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestTable_LookupAndOrdering(t *testing.T) {
	t.Parallel()

	tbl := testTable()
	if v := tbl.Lookup(28); !v.IsSupported() || v.Codename != "P" {
		t.Errorf("Lookup(28) = %+v, want supported P", v)
	}
	if v := tbl.Lookup(42); v.IsKnown() {
		t.Errorf("Lookup(42) = %+v, want unknown", v)
	}
	if got, want := levels(tbl.All()), []int{19, 20, 21, 23, 28, 29}; !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	if got, want := levels(tbl.Supported()), []int{19, 21, 23, 28, 29}; !slices.Equal(got, want) {
		t.Errorf("Supported() = %v, want %v", got, want)
	}

	tbl.Register(NewVersion(42, "X"))
	if !tbl.Lookup(42).IsSupported() {
		t.Error("Register() did not add level 42")
	}
}

func TestDefaultTable_LegacyThresholdIsKnown(t *testing.T) {
	t.Parallel()

	if !DefaultTable().Lookup(LegacyResourcesMaxLevel).IsSupported() {
		t.Errorf("default table does not support the legacy threshold level %d", LegacyResourcesMaxLevel)
	}
	tbl := DefaultTable()
	if !tbl.Lookup(LegacyResourcesMaxLevel).SupportsLegacyResources() {
		t.Errorf("level %d does not run legacy resources", LegacyResourcesMaxLevel)
	}
	if tbl.Lookup(LegacyResourcesMaxLevel + 1).SupportsLegacyResources() {
		t.Errorf("level %d runs legacy resources", LegacyResourcesMaxLevel+1)
	}
}

func TestDefaultPolicy_SelectVersions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		layer    config.Layer
		manifest ManifestInfo
		enabled  sets.Set[int]
		want     []int
	}{
		"default is all supported": {
			want: []int{19, 21, 23, 28, 29},
		},
		"default honors manifest min and max": {
			manifest: fakeManifest{min: 21, max: 28},
			want:     []int{21, 23, 28},
		},
		"explicit order preserved without dedup": {
			layer: config.Layer{SDK: []int{28, 21, 28}},
			want:  []int{28, 21, 28},
		},
		"explicit unknown level is passed through": {
			layer: config.Layer{SDK: []int{99}},
			want:  []int{99},
		},
		"explicit unsupported level is passed through": {
			layer: config.Layer{SDK: []int{20}},
			want:  []int{20},
		},
		"symbolic all": {
			layer:    config.Layer{SDK: []int{AllLevels}},
			manifest: fakeManifest{min: 23},
			want:     []int{23, 28, 29},
		},
		"symbolic target": {
			layer:    config.Layer{SDK: []int{TargetLevel}},
			manifest: fakeManifest{target: 23},
			want:     []int{23},
		},
		"symbolic target defaults to newest": {
			layer: config.Layer{SDK: []int{TargetLevel}},
			want:  []int{29},
		},
		"symbolic oldest and newest": {
			layer:    config.Layer{SDK: []int{OldestLevel, NewestLevel}},
			manifest: fakeManifest{min: 21, max: 28},
			want:     []int{21, 28},
		},
		"min and max range": {
			layer: config.Layer{MinSDK: config.Int(21), MaxSDK: config.Int(28)},
			want:  []int{21, 23, 28},
		},
		"min only": {
			layer: config.Layer{MinSDK: config.Int(28)},
			want:  []int{28, 29},
		},
		"enabled filter": {
			enabled: sets.New(21, 29),
			want:    []int{21, 29},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := &DefaultPolicy{Table: testTable(), Enabled: tc.enabled}
			got, err := p.SelectVersions(config.Default().Overlay(tc.layer), tc.manifest)
			if err != nil {
				t.Fatalf("SelectVersions() error = %v", err)
			}
			if !slices.Equal(levels(got), tc.want) {
				t.Errorf("SelectVersions() = %v, want %v", levels(got), tc.want)
			}
		})
	}
}

func TestDefaultPolicy_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		layer   config.Layer
		wantMsg string
	}{
		"sdk with min": {
			layer:   config.Layer{SDK: []int{21}, MinSDK: config.Int(19)},
			wantMsg: "sdk and minSdk/maxSdk may not be specified together",
		},
		"min above max": {
			layer:   config.Layer{MinSDK: config.Int(28), MaxSDK: config.Int(21)},
			wantMsg: "minSdk (28) is greater than maxSdk (21)",
		},
		"unknown symbolic": {
			layer:   config.Layer{SDK: []int{-9}},
			wantMsg: "unrecognized symbolic sdk value -9",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := &DefaultPolicy{Table: testTable()}
			_, err := p.SelectVersions(config.Default().Overlay(tc.layer), nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("SelectVersions() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tc.wantMsg)
			}
		})
	}
}
