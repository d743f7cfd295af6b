package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/simenv/internal/config"
	"github.com/giantswarm/simenv/internal/fileutil"
	"github.com/giantswarm/simenv/internal/lifecycle"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
	"github.com/giantswarm/simenv/internal/variant"
)

// runnerState represents the lifecycle state of a Runner.
type runnerState uint32

const (
	runnerCreated      runnerState = iota // Zero value; NewRunner returns in this state
	runnerInitializing                    // Initialize in progress
	runnerReady                           // Plan and Run allowed
	runnerShuttingDown                    // Shutdown called
)

// TestMethod is one test method of a class.
type TestMethod struct {
	Name   string
	Config config.Layer
	// Ignore reports the method as ignored without expanding it.
	Ignore bool
	Body   lifecycle.Body
}

// TestClass is a test class with its methods in declaration order.
type TestClass struct {
	Name string
	// Package selects package-level configuration files, e.g. "com.example".
	Package string
	Config  config.Layer
	Methods []TestMethod
}

// MethodPlan is the expansion of one method.
type MethodPlan struct {
	Method   string
	Ignored  bool
	Variants []*variant.Variant
	// Err is the expansion failure attributed to this method.
	Err error
}

// Plan is the expansion of a class.
type Plan struct {
	Class   string
	Methods []MethodPlan
}

// Report is the outcome of running a class.
type Report struct {
	RunID    string
	Class    string
	Results  []*lifecycle.Result
	Duration time.Duration
}

// Count returns the number of results with status s.
func (r *Report) Count(s lifecycle.Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Deps are the Runner's collaborators. Zero fields get defaults in
// Initialize.
type Deps struct {
	// Services are shared caches. When nil the Runner creates and owns
	// its own, closing them in Shutdown.
	Services *Services
	// EnvironmentFactory is used when the Runner creates its own Services.
	// Default: sandbox.DiskFactory under BaseDataDir.
	EnvironmentFactory sandbox.Factory
	// Policy selects platform versions. Default: platform.DefaultPolicy over
	// the Services' platform table.
	Policy platform.Policy
	// ManifestFactory maps configuration to manifest identifiers.
	// Default: manifest.ConfigFactory rooted at ManifestBaseDir.
	ManifestFactory manifest.Factory
	// Providers are reset after every variant, before environment providers.
	Providers *lifecycle.Registry
	// Registerer receives runner metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Runner plans and runs test classes. It is safe for concurrent use by
// multiple goroutines.
//
// Synchronization strategy:
//   - state is an atomic runnerState (created → initializing → ready → shuttingDown).
//   - initMu serializes Initialize and Shutdown.
//   - active is read-locked for the duration of every Plan and Run; Shutdown
//     takes the write lock after switching state, draining in-flight runs
//     before closing owned services.
type Runner struct {
	cfg  RunnerConfig
	deps Deps

	state  atomic.Uint32
	initMu sync.Mutex
	active sync.RWMutex

	services     *Services
	ownsServices bool
	merger       *config.Merger
	expander     *variant.Expander
	orch         *lifecycle.Orchestrator
	metrics      *Metrics
}

// NewRunner creates a Runner. This performs no I/O. Call Initialize before
// Plan or Run.
//
// Panics if cfg.Validate() reports any errors.
func NewRunner(cfg RunnerConfig, deps Deps) *Runner {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("simenv: invalid runner config: %v", err))
	}
	return &Runner{cfg: cfg, deps: deps}
}

func (r *Runner) loadState() runnerState { return runnerState(r.state.Load()) }

func (r *Runner) storeState(s runnerState) { r.state.Store(uint32(s)) }

// Config returns the runner configuration.
func (r *Runner) Config() RunnerConfig { return r.cfg }

// Services returns the services the Runner runs against, or nil before
// Initialize.
func (r *Runner) Services() *Services {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	return r.services
}

// Initialize prepares the data directory and wires collaborators. Safe to
// call multiple times: after a successful initialization later calls return
// nil. A failed initialization may be retried.
func (r *Runner) Initialize(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	switch r.loadState() {
	case runnerReady:
		return nil
	case runnerShuttingDown:
		return ErrShuttingDown
	case runnerCreated, runnerInitializing:
	}
	r.storeState(runnerInitializing)

	if err := r.cfg.Validate(); err != nil {
		r.storeState(runnerCreated)
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := r.doInitialize(ctx); err != nil {
		r.storeState(runnerCreated)
		return fmt.Errorf("initialize: %w", err)
	}

	r.storeState(runnerReady)
	Logger().Debug("runner initialized", "base_data_dir", r.cfg.BaseDataDir, "resource_mode", r.cfg.ResourceMode)
	return nil
}

func (r *Runner) doInitialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.EnsureDir(r.cfg.BaseDataDir); err != nil {
		return fmt.Errorf("init base dir: %w", err)
	}

	services, owns := r.deps.Services, false
	if services == nil {
		factory := r.deps.EnvironmentFactory
		if factory == nil {
			factory = &sandbox.DiskFactory{BaseDir: r.cfg.BaseDataDir, Logger: Logger()}
		}
		services, owns = NewServices(factory, nil), true
	}

	policy := r.deps.Policy
	if policy == nil {
		policy = &platform.DefaultPolicy{Table: services.Platforms}
	}
	mf := r.deps.ManifestFactory
	if mf == nil {
		mf = manifest.ConfigFactory{BaseDir: r.cfg.ManifestBaseDir}
	}

	var metrics *Metrics
	if r.deps.Registerer != nil {
		var err error
		if metrics, err = registerMetrics(r.deps.Registerer, services); err != nil {
			return err
		}
	}

	r.services, r.ownsServices = services, owns
	r.merger = &config.Merger{Root: r.cfg.ConfigRoot}
	r.expander = &variant.Expander{
		Manifests:            services.Manifests,
		Factory:              mf,
		Policy:               policy,
		Platforms:            services.Platforms,
		Mode:                 r.cfg.ResourceMode,
		AlwaysIncludeMarkers: r.cfg.AlwaysIncludeVariantMarkers,
	}
	r.orch = &lifecycle.Orchestrator{
		Environments: services.Environments,
		Providers:    r.deps.Providers,
		Logger:       Logger(),
	}
	r.metrics = metrics
	return nil
}

// registerMetrics converts MustRegister's panic into an error so that a
// second Runner on one registry fails Initialize instead of crashing.
func registerMetrics(reg prometheus.Registerer, services *Services) (m *Metrics, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("register metrics: %v", p)
		}
	}()
	return NewMetrics(reg, services), nil
}

// enter read-locks the runner for one operation. The returned release must
// be called when the operation ends.
func (r *Runner) enter() (release func(), err error) {
	switch r.loadState() {
	case runnerShuttingDown:
		return nil, ErrShuttingDown
	case runnerCreated, runnerInitializing:
		return nil, ErrNotInitialized
	case runnerReady:
	}
	r.active.RLock()
	// Recheck: Shutdown may have started between the load and RLock.
	if r.loadState() != runnerReady {
		r.active.RUnlock()
		return nil, ErrShuttingDown
	}
	return r.active.RUnlock, nil
}

// Plan expands every method of class. Expansion failures are attributed to
// their method in the plan; they do not fail the call.
func (r *Runner) Plan(ctx context.Context, class TestClass) (*Plan, error) {
	release, err := r.enter()
	if err != nil {
		return nil, err
	}
	defer release()
	return r.plan(ctx, class), nil
}

func (r *Runner) plan(ctx context.Context, class TestClass) *Plan {
	p := &Plan{Class: class.Name, Methods: make([]MethodPlan, 0, len(class.Methods))}
	for _, m := range class.Methods {
		p.Methods = append(p.Methods, r.planMethod(ctx, class, m))
	}
	return p
}

func (r *Runner) planMethod(ctx context.Context, class TestClass, m TestMethod) MethodPlan {
	mp := MethodPlan{Method: m.Name, Ignored: m.Ignore}
	if m.Ignore {
		return mp
	}
	global := config.Default().Overlay(r.cfg.Global)
	merged, err := r.merger.Merge(global, class.Package, class.Config, m.Config)
	if err != nil {
		mp.Err = &variant.ExpansionError{Class: class.Name, Method: m.Name, Err: err}
		r.metrics.expansionFailed()
		return mp
	}
	mp.Variants, mp.Err = r.expander.Expand(ctx, class.Name, m.Name, merged)
	if mp.Err != nil {
		r.metrics.expansionFailed()
		Logger().Warn("variant expansion failed", "class", class.Name, "method", m.Name, "error", mp.Err)
	}
	return mp
}

// Run plans class and runs every variant. Variants of one method run in
// plan order; up to Parallelism methods run at once. Results are reported in
// plan order regardless of completion order.
func (r *Runner) Run(ctx context.Context, class TestClass) (*Report, error) {
	release, err := r.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	report := &Report{RunID: uuid.NewString(), Class: class.Name}
	log := Logger().With("run", report.RunID, "class", class.Name)

	plan := r.plan(ctx, class)
	perMethod := make([][]*lifecycle.Result, len(plan.Methods))

	var g errgroup.Group
	g.SetLimit(r.cfg.Parallelism)
	for i, mp := range plan.Methods {
		i, mp := i, mp
		body := class.Methods[i].Body
		g.Go(func() error {
			perMethod[i] = r.runMethod(ctx, class.Name, mp, body)
			return nil
		})
	}
	_ = g.Wait() // runMethod reports through perMethod

	for _, rs := range perMethod {
		report.Results = append(report.Results, rs...)
	}
	report.Duration = time.Since(start)
	log.Info("run complete",
		"passed", report.Count(lifecycle.StatusPassed),
		"failed", report.Count(lifecycle.StatusFailed),
		"skipped", report.Count(lifecycle.StatusSkipped),
		"ignored", report.Count(lifecycle.StatusIgnored),
		"duration", report.Duration)
	return report, nil
}

func (r *Runner) runMethod(ctx context.Context, class string, mp MethodPlan, body lifecycle.Body) []*lifecycle.Result {
	switch {
	case mp.Ignored:
		res := &lifecycle.Result{
			Identity: variant.Identity{Class: class, Method: mp.Method},
			Name:     mp.Method,
			Status:   lifecycle.StatusIgnored,
		}
		r.metrics.observe(res)
		return []*lifecycle.Result{res}
	case mp.Err != nil:
		res := &lifecycle.Result{
			Identity: variant.Identity{Class: class, Method: mp.Method},
			Name:     mp.Method,
			Status:   lifecycle.StatusFailed,
			Err:      mp.Err,
			States:   []lifecycle.State{lifecycle.Failed},
		}
		r.metrics.observe(res)
		return []*lifecycle.Result{res}
	case len(mp.Variants) == 0:
		res := &lifecycle.Result{
			Identity: variant.Identity{Class: class, Method: mp.Method},
			Name:     mp.Method,
			Status:   lifecycle.StatusSkipped,
			Err:      fmt.Errorf("%w: %w", lifecycle.ErrAssumptionViolated, ErrNoVariants),
			States:   []lifecycle.State{lifecycle.Skipped},
		}
		r.metrics.observe(res)
		return []*lifecycle.Result{res}
	}

	results := make([]*lifecycle.Result, 0, len(mp.Variants))
	for _, v := range mp.Variants {
		results = append(results, r.runVariant(ctx, v, body))
	}
	return results
}

func (r *Runner) runVariant(ctx context.Context, v *variant.Variant, body lifecycle.Body) *lifecycle.Result {
	if body == nil {
		body = func(context.Context, *lifecycle.PerTestState) error { return nil }
	}
	// Variants refer to their manifest by key; the descriptor stays in the
	// shared resolver.
	m, ok := r.services.Manifests.Lookup(v.ManifestKey())
	if !ok {
		res := &lifecycle.Result{
			Identity: v.Identity(),
			Name:     v.Name(),
			Status:   lifecycle.StatusFailed,
			Err:      fmt.Errorf("%s: manifest evicted before the variant ran", v),
			States:   []lifecycle.State{lifecycle.Failed},
		}
		r.metrics.observe(res)
		return res
	}

	r.metrics.variantStarted()
	res := r.orch.Run(ctx, lifecycle.Invocation{Variant: v, Manifest: m, Body: body})
	r.metrics.variantFinished()
	r.metrics.observe(res)
	return res
}

// RunVariant expands the method named by id and runs the one variant whose
// identity equals id. It returns ErrUnknownVariant when no method or variant
// matches, and the method's expansion error when expansion fails.
func (r *Runner) RunVariant(ctx context.Context, class TestClass, id variant.Identity) (*lifecycle.Result, error) {
	release, err := r.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if id.Class != class.Name {
		return nil, fmt.Errorf("%w: %s is not in class %s", ErrUnknownVariant, id, class.Name)
	}
	for _, m := range class.Methods {
		if m.Name != id.Method {
			continue
		}
		mp := r.planMethod(ctx, class, m)
		if mp.Err != nil {
			return nil, mp.Err
		}
		for _, v := range mp.Variants {
			if v.Identity() == id {
				return r.runVariant(ctx, v, m.Body), nil
			}
		}
		break
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, id)
}

// Shutdown stops accepting work, waits for in-flight Plan and Run calls,
// then closes owned services. Shared services stay open.
func (r *Runner) Shutdown() error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	prev := r.loadState()
	if prev == runnerShuttingDown {
		return nil
	}
	r.storeState(runnerShuttingDown)
	if prev != runnerReady {
		return nil
	}

	r.active.Lock()
	defer r.active.Unlock()

	if r.ownsServices {
		if err := r.services.Close(); err != nil {
			return fmt.Errorf("close environments: %w", err)
		}
	}
	Logger().Debug("runner shut down")
	return nil
}

// IsShuttingDown reports whether Shutdown has been called.
func (r *Runner) IsShuttingDown() bool {
	return r.loadState() == runnerShuttingDown
}
