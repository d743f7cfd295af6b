package simenv_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/giantswarm/simenv"
	"github.com/giantswarm/simenv/internal/sandbox/sandboxtest"
)

// newRunner returns an initialized runner over in-memory environments that
// is shut down when the test ends.
func newRunner(t *testing.T, opts ...simenv.RunnerOption) simenv.Runner {
	t.Helper()
	opts = append([]simenv.RunnerOption{
		simenv.WithBaseDataDir(t.TempDir()),
		simenv.WithEnvironmentFactory(&sandboxtest.Factory{}),
		simenv.WithGlobalConfig(simenv.Config{Manifest: simenv.ManifestNone}),
	}, opts...)
	r := simenv.NewRunner(opts...)
	if err := r.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		if err := r.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return r
}

// outcomes renders results as name:status pairs.
func outcomes(results []*simenv.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Name+":"+r.Status.String())
	}
	return strings.Join(parts, ",")
}

func TestRunnerLifecycleErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := simenv.NewRunner(
		simenv.WithBaseDataDir(t.TempDir()),
		simenv.WithEnvironmentFactory(&sandboxtest.Factory{}),
	)
	class := simenv.TestClass{Name: "FooTest"}

	if _, err := r.Run(ctx, class); !errors.Is(err, simenv.ErrNotInitialized) {
		t.Errorf("Run() before Initialize error = %v, want ErrNotInitialized", err)
	}
	if err := r.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := r.Initialize(ctx); err != nil {
		t.Errorf("second Initialize() error = %v, want nil", err)
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := r.Plan(ctx, class); !errors.Is(err, simenv.ErrShuttingDown) {
		t.Errorf("Plan() after Shutdown error = %v, want ErrShuttingDown", err)
	}
	if err := r.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v, want nil", err)
	}
}

func TestRunReportsEveryVariant(t *testing.T) {
	t.Parallel()

	r := newRunner(t)
	boom := errors.New("boom")
	class := simenv.TestClass{
		Name:   "FooTest",
		Config: simenv.Config{SDK: []int{28, 29}},
		Methods: []simenv.TestMethod{
			{
				Name: "testNewOnly",
				Body: func(_ context.Context, tc *simenv.TestContext) error {
					if tc.Platform().Level < 29 {
						return simenv.Skip("needs level 29")
					}
					return nil
				},
			},
			{
				Name: "testFails",
				Body: func(context.Context, *simenv.TestContext) error { return boom },
			},
			{Name: "testIgnored", Ignore: true},
			{
				Name:   "testPinned",
				Config: simenv.Config{SDK: []int{21}},
				Body: func(_ context.Context, tc *simenv.TestContext) error {
					if tc.Legacy() {
						return errors.New("expanded for legacy resources")
					}
					return nil
				},
			},
		},
	}

	report, err := r.Run(context.Background(), class)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "testNewOnly[28]:skipped,testNewOnly:passed," +
		"testFails[28]:failed,testFails:failed," +
		"testIgnored:ignored,testPinned:passed"
	if got := outcomes(report.Results); got != want {
		t.Errorf("results = %s\nwant      %s", got, want)
	}
	if report.RunID == "" {
		t.Error("report has no run id")
	}

	var inv *simenv.InvocationFailure
	if !errors.As(report.Results[2].Err, &inv) || !errors.Is(inv, boom) {
		t.Errorf("testFails[28] error = %v, want InvocationFailure wrapping boom", report.Results[2].Err)
	}
	if !errors.Is(report.Results[0].Err, simenv.ErrAssumptionViolated) {
		t.Errorf("testNewOnly[28] error = %v, want ErrAssumptionViolated", report.Results[0].Err)
	}
}

func TestRunAlwaysIncludeVariantMarkers(t *testing.T) {
	t.Parallel()

	r := newRunner(t, simenv.WithAlwaysIncludeVariantMarkers(true))
	report, err := r.Run(context.Background(), simenv.TestClass{
		Name:    "FooTest",
		Config:  simenv.Config{SDK: []int{28, 29}},
		Methods: []simenv.TestMethod{{Name: "testFoo"}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := outcomes(report.Results), "testFoo[28]:passed,testFoo[29]:passed"; got != want {
		t.Errorf("results = %s, want %s", got, want)
	}
}

func TestPlanAttributesExpansionErrors(t *testing.T) {
	t.Parallel()

	r := newRunner(t)
	plan, err := r.Plan(context.Background(), simenv.TestClass{
		Name: "FooTest",
		Methods: []simenv.TestMethod{
			{Name: "testGood", Config: simenv.Config{SDK: []int{28}}},
			{Name: "testBad", Config: simenv.Config{SDK: []int{28}, MinSDK: simenv.Level(21)}},
		},
	})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Methods) != 2 {
		t.Fatalf("plan has %d methods, want 2", len(plan.Methods))
	}
	if good := plan.Methods[0]; good.Err != nil || len(good.Variants) != 1 {
		t.Errorf("testGood plan = %d variants, err %v, want 1 variant", len(good.Variants), good.Err)
	}
	var expErr *simenv.VariantExpansionError
	if !errors.As(plan.Methods[1].Err, &expErr) || expErr.Method != "testBad" {
		t.Errorf("testBad error = %v, want VariantExpansionError for testBad", plan.Methods[1].Err)
	}
}

func TestRunVariantByIdentity(t *testing.T) {
	t.Parallel()

	r := newRunner(t)
	var ran atomic.Int32
	class := simenv.TestClass{
		Name:   "FooTest",
		Config: simenv.Config{SDK: []int{28, 29}},
		Methods: []simenv.TestMethod{{
			Name: "testFoo",
			Body: func(_ context.Context, tc *simenv.TestContext) error {
				ran.Add(1)
				if tc.Platform().Level != 29 {
					return errors.New("wrong platform")
				}
				if tc.Class().Name != "FooTest" {
					return errors.New("wrong class")
				}
				return nil
			},
		}},
	}

	id, err := simenv.ParseIdentity("FooTest#testFoo@29/binary")
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	res, err := r.RunVariant(context.Background(), class, id)
	if err != nil {
		t.Fatalf("RunVariant() error = %v", err)
	}
	if res.Status != simenv.StatusPassed || res.Name != "testFoo" {
		t.Errorf("result = %s:%s, want testFoo:passed", res.Name, res.Status)
	}
	if ran.Load() != 1 {
		t.Errorf("body ran %d times, want 1", ran.Load())
	}

	id.Level = 21
	if _, err := r.RunVariant(context.Background(), class, id); !errors.Is(err, simenv.ErrUnknownVariant) {
		t.Errorf("RunVariant(level 21) error = %v, want ErrUnknownVariant", err)
	}
}

func TestStateProvidersResetAfterEveryVariant(t *testing.T) {
	t.Parallel()

	var resets atomic.Int32
	r := newRunner(t, simenv.WithStateProvider("counter", simenv.StateProviderFunc(func() {
		resets.Add(1)
	})))

	_, err := r.Run(context.Background(), simenv.TestClass{
		Name:   "FooTest",
		Config: simenv.Config{SDK: []int{27, 28, 29}},
		Methods: []simenv.TestMethod{{
			Name: "testFoo",
			Body: func(context.Context, *simenv.TestContext) error { panic("boom") },
		}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := resets.Load(); got != 3 {
		t.Errorf("provider reset %d times, want 3", got)
	}
}

func TestInterruptIsReported(t *testing.T) {
	t.Parallel()

	r := newRunner(t)
	report, err := r.Run(context.Background(), simenv.TestClass{
		Name:   "FooTest",
		Config: simenv.Config{SDK: []int{28}},
		Methods: []simenv.TestMethod{{
			Name: "testFoo",
			Body: func(_ context.Context, tc *simenv.TestContext) error {
				tc.Interrupt()
				return nil
			},
		}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := report.Results[0]
	if res.Status != simenv.StatusPassed {
		t.Errorf("status = %s, want passed", res.Status)
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want one interrupt diagnostic", res.Diagnostics)
	}
}

// TestDiskEnvironmentsAreResetBetweenTests runs two methods in one on-disk
// environment and verifies the second does not see state the first wrote.
func TestDiskEnvironmentsAreResetBetweenTests(t *testing.T) {
	t.Parallel()

	services := simenv.NewDiskServices(t.TempDir())
	t.Cleanup(func() {
		if err := services.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	r := newRunner(t, simenv.WithServices(services))

	var leaked, level string
	class := simenv.TestClass{
		Name:   "PrefsTest",
		Config: simenv.Config{SDK: []int{28}},
		Methods: []simenv.TestMethod{
			{
				Name: "testWrite",
				Body: func(ctx context.Context, tc *simenv.TestContext) error {
					return tc.Store().Put(ctx, "prefs", "theme", "dark")
				},
			},
			{
				Name: "testRead",
				Body: func(ctx context.Context, tc *simenv.TestContext) error {
					store := tc.Store()
					v, ok, err := store.Get(ctx, "prefs", "theme")
					if err != nil {
						return err
					}
					if ok {
						leaked = v
					}
					level, _, err = store.Get(ctx, simenv.ScopeSystem, "level")
					return err
				},
			},
		},
	}

	report, err := r.Run(context.Background(), class)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := outcomes(report.Results), "testWrite:passed,testRead:passed"; got != want {
		t.Fatalf("results = %s, want %s", got, want)
	}
	if leaked != "" {
		t.Errorf("testRead saw prefs/theme = %q written by testWrite", leaked)
	}
	if level != "28" {
		t.Errorf("system level = %q, want 28", level)
	}
	if report.Results[0].EnvironmentID != report.Results[1].EnvironmentID {
		t.Errorf("methods ran in environments %q and %q, want one shared environment",
			report.Results[0].EnvironmentID, report.Results[1].EnvironmentID)
	}

	stats := services.Stats()
	if stats.Environments.Size != 1 || stats.Environments.Misses != 1 || stats.Environments.Hits != 1 {
		t.Errorf("environment stats = %+v, want size 1, 1 miss, 1 hit", stats.Environments)
	}
}

func TestMetricsRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := newRunner(t, simenv.WithMetricsRegistry(reg))
	_, err := r.Run(context.Background(), simenv.TestClass{
		Name:    "FooTest",
		Config:  simenv.Config{SDK: []int{28, 29}},
		Methods: []simenv.TestMethod{{Name: "testFoo"}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	n, err := testutil.GatherAndCount(reg, "simenv_variant_total", "simenv_environment_cache_size")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("gathered %d series, want 2 (passed total and cache size)", n)
	}
}

// TestProcessServicesSingleton must not run in parallel: it resets
// package-level state.
func TestProcessServicesSingleton(t *testing.T) {
	simenv.ResetForTesting()
	t.Cleanup(simenv.ResetForTesting)

	first := simenv.ProcessServices()
	if second := simenv.ProcessServices(); second != first {
		t.Error("ProcessServices() returned a different value on the second call")
	}

	simenv.ResetForTesting()
	if third := simenv.ProcessServices(); third == first {
		t.Error("ProcessServices() returned the old value after reset")
	}
}

func TestPlatforms(t *testing.T) {
	t.Parallel()

	vs := simenv.Platforms()
	if len(vs) == 0 {
		t.Fatal("Platforms() returned nothing")
	}
	for i := 1; i < len(vs); i++ {
		if vs[i-1].Level >= vs[i].Level {
			t.Errorf("Platforms() not in level order at %d: %d then %d", i, vs[i-1].Level, vs[i].Level)
		}
	}
}
