package simenv_test

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giantswarm/simenv"
	"github.com/giantswarm/simenv/internal/sandbox/sandboxtest"
)

// panicTestCase defines a test case for option validation panic tests.
type panicTestCase struct {
	name     string
	panics   bool
	panicMsg string
	fn       func()
}

// requirePanics calls fn and verifies it panics (or not) with the expected message.
func requirePanics(t *testing.T, shouldPanic bool, wantMsg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if shouldPanic && r == nil {
			t.Fatal("expected panic but didn't get one")
		}
		if !shouldPanic && r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
		if shouldPanic && r != nil {
			msg := fmt.Sprint(r)
			if msg != wantMsg {
				t.Fatalf("expected panic message %q, got %q", wantMsg, msg)
			}
		}
	}()
	fn()
}

// runPanicTests runs a slice of panic test cases using requirePanics.
func runPanicTests(t *testing.T, tests []panicTestCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requirePanics(t, tt.panics, tt.panicMsg, tt.fn)
		})
	}
}

func TestWithResourceModePanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "empty",
			panics:   true,
			panicMsg: `simenv: invalid resource mode ""`,
			fn:       func() { simenv.WithResourceMode("") },
		},
		{
			name:     "unknown",
			panics:   true,
			panicMsg: `simenv: invalid resource mode "fast"`,
			fn:       func() { simenv.WithResourceMode("fast") },
		},
		{name: "legacy", fn: func() { simenv.WithResourceMode(simenv.ResourceLegacy) }},
		{name: "binary", fn: func() { simenv.WithResourceMode(simenv.ResourceBinary) }},
		{name: "best", fn: func() { simenv.WithResourceMode(simenv.ResourceBest) }},
		{name: "both", fn: func() { simenv.WithResourceMode(simenv.ResourceBoth) }},
	})
}

func TestWithParallelismPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "zero",
			panics:   true,
			panicMsg: "simenv: parallelism must be greater than 0, got 0",
			fn:       func() { simenv.WithParallelism(0) },
		},
		{
			name:     "negative",
			panics:   true,
			panicMsg: "simenv: parallelism must be greater than 0, got -2",
			fn:       func() { simenv.WithParallelism(-2) },
		},
		{name: "valid", fn: func() { simenv.WithParallelism(8) }},
	})
}

func TestWithEmptyStringOptionsPanic(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "base data dir",
			panics:   true,
			panicMsg: "simenv: base data directory must not be empty",
			fn:       func() { simenv.WithBaseDataDir("") },
		},
		{
			name:     "config root",
			panics:   true,
			panicMsg: "simenv: config root must not be empty",
			fn:       func() { simenv.WithConfigRoot("") },
		},
		{
			name:     "manifest base dir",
			panics:   true,
			panicMsg: "simenv: manifest base directory must not be empty",
			fn:       func() { simenv.WithManifestBaseDir("") },
		},
		{
			name:     "state provider name",
			panics:   true,
			panicMsg: "simenv: state provider name must not be empty",
			fn:       func() { simenv.WithStateProvider("", simenv.StateProviderFunc(func() {})) },
		},
		{
			name:     "disk services",
			panics:   true,
			panicMsg: "simenv: base data directory must not be empty",
			fn:       func() { simenv.NewDiskServices("") },
		},
	})
}

func TestWithNilCollaboratorsPanic(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "policy",
			panics:   true,
			panicMsg: "simenv: platform policy must not be nil",
			fn:       func() { simenv.WithPlatformPolicy(nil) },
		},
		{
			name:     "manifest factory",
			panics:   true,
			panicMsg: "simenv: manifest factory must not be nil",
			fn:       func() { simenv.WithManifestFactory(nil) },
		},
		{
			name:     "environment factory",
			panics:   true,
			panicMsg: "simenv: environment factory must not be nil",
			fn:       func() { simenv.WithEnvironmentFactory(nil) },
		},
		{
			name:     "services",
			panics:   true,
			panicMsg: "simenv: services must not be nil",
			fn:       func() { simenv.WithServices(nil) },
		},
		{
			name:     "state provider",
			panics:   true,
			panicMsg: "simenv: state provider must not be nil",
			fn:       func() { simenv.WithStateProvider("prefs", nil) },
		},
		{
			name:     "metrics registry",
			panics:   true,
			panicMsg: "simenv: metrics registry must not be nil",
			fn:       func() { simenv.WithMetricsRegistry(nil) },
		},
		{
			name:     "new services",
			panics:   true,
			panicMsg: "simenv: environment factory must not be nil",
			fn:       func() { simenv.NewServices(nil) },
		},
	})
}

func TestWithGlobalConfigPanicsOnInvertedRange(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "inverted",
			panics:   true,
			panicMsg: "simenv: global minSdk (29) is greater than maxSdk (28)",
			fn: func() {
				simenv.WithGlobalConfig(simenv.Config{MinSDK: simenv.Level(29), MaxSDK: simenv.Level(28)})
			},
		},
		{
			name: "equal",
			fn: func() {
				simenv.WithGlobalConfig(simenv.Config{MinSDK: simenv.Level(28), MaxSDK: simenv.Level(28)})
			},
		},
		{name: "unbounded", fn: func() { simenv.WithGlobalConfig(simenv.Config{MinSDK: simenv.Level(21)}) }},
	})
}

func TestOptionApplicationDefaults(t *testing.T) {
	t.Parallel()

	snap := simenv.ApplyOptionsForTesting()

	if want := filepath.Join(os.TempDir(), simenv.DefaultBaseDataDirName); snap.BaseDataDir != want {
		t.Errorf("BaseDataDir = %q, want %q", snap.BaseDataDir, want)
	}
	if snap.ResourceMode != simenv.DefaultResourceMode {
		t.Errorf("ResourceMode = %q, want %q", snap.ResourceMode, simenv.DefaultResourceMode)
	}
	if snap.Parallelism != simenv.DefaultParallelism {
		t.Errorf("Parallelism = %d, want %d", snap.Parallelism, simenv.DefaultParallelism)
	}
	if snap.AlwaysIncludeVariantMarkers {
		t.Error("AlwaysIncludeVariantMarkers = true, want false")
	}
	if snap.ConfigRoot != "" || snap.ManifestBaseDir != "" {
		t.Errorf("ConfigRoot, ManifestBaseDir = %q, %q, want empty", snap.ConfigRoot, snap.ManifestBaseDir)
	}
	if snap.HasPolicy || snap.HasManifestFactory || snap.HasEnvironmentFactory || snap.HasServices || snap.HasRegisterer {
		t.Errorf("collaborators set by default: %+v", snap)
	}
	if len(snap.StateProviders) != 0 {
		t.Errorf("StateProviders = %v, want none", snap.StateProviders)
	}
}

func TestOptionApplicationOverrides(t *testing.T) {
	t.Parallel()

	noop := simenv.StateProviderFunc(func() {})
	global := simenv.Config{SDK: []int{28}, Qualifiers: "en-rUS"}

	snap := simenv.ApplyOptionsForTesting(
		simenv.WithBaseDataDir("/data"),
		simenv.WithConfigRoot("/tests"),
		simenv.WithManifestBaseDir("/app"),
		simenv.WithResourceMode(simenv.ResourceBoth),
		simenv.WithAlwaysIncludeVariantMarkers(true),
		simenv.WithParallelism(4),
		simenv.WithGlobalConfig(global),
		simenv.WithPlatformPolicy(simenv.DefaultPlatformPolicy()),
		simenv.WithEnvironmentFactory(&sandboxtest.Factory{}),
		simenv.WithServices(simenv.NewServices(&sandboxtest.Factory{})),
		simenv.WithMetricsRegistry(prometheus.NewRegistry()),
		simenv.WithStateProvider("prefs", noop),
		simenv.WithStateProvider("clock", noop),
		simenv.WithStateProvider("prefs", noop),
	)

	if snap.BaseDataDir != "/data" {
		t.Errorf("BaseDataDir = %q, want /data", snap.BaseDataDir)
	}
	if snap.ConfigRoot != "/tests" {
		t.Errorf("ConfigRoot = %q, want /tests", snap.ConfigRoot)
	}
	if snap.ManifestBaseDir != "/app" {
		t.Errorf("ManifestBaseDir = %q, want /app", snap.ManifestBaseDir)
	}
	if snap.ResourceMode != simenv.ResourceBoth {
		t.Errorf("ResourceMode = %q, want both", snap.ResourceMode)
	}
	if !snap.AlwaysIncludeVariantMarkers {
		t.Error("AlwaysIncludeVariantMarkers = false, want true")
	}
	if snap.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", snap.Parallelism)
	}
	if !slices.Equal(snap.Global.SDK, global.SDK) || snap.Global.Qualifiers != global.Qualifiers {
		t.Errorf("Global = %+v, want %+v", snap.Global, global)
	}
	if !snap.HasPolicy || !snap.HasEnvironmentFactory || !snap.HasServices || !snap.HasRegisterer {
		t.Errorf("collaborators not applied: %+v", snap)
	}
	if want := []string{"prefs", "clock"}; !slices.Equal(snap.StateProviders, want) {
		t.Errorf("StateProviders = %v, want %v", snap.StateProviders, want)
	}
}

// TestOptionsDoNotShareProviders verifies that each NewRunner call starts
// from a fresh provider registry.
func TestOptionsDoNotShareProviders(t *testing.T) {
	t.Parallel()

	opt := simenv.WithStateProvider("prefs", simenv.StateProviderFunc(func() {}))
	first := simenv.ApplyOptionsForTesting(opt)
	second := simenv.ApplyOptionsForTesting()

	if len(first.StateProviders) != 1 {
		t.Errorf("first StateProviders = %v, want [prefs]", first.StateProviders)
	}
	if len(second.StateProviders) != 0 {
		t.Errorf("second StateProviders = %v, want none", second.StateProviders)
	}
}
