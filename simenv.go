package simenv

import (
	"context"
	"fmt"

	"github.com/giantswarm/simenv/internal/core"
	"github.com/giantswarm/simenv/internal/lifecycle"
)

// Compile-time interface satisfaction check.
var _ Runner = (*runnerWrapper)(nil)

// TestFunc is a test body. Returning an error fails the variant; returning
// Skip(reason) skips it. Panics are recovered and fail the variant.
type TestFunc func(ctx context.Context, tc *TestContext) error

// TestMethod is one logical test method.
type TestMethod struct {
	Name string
	// Config is the method-level configuration layer.
	Config Config
	// Ignore reports the method as ignored without expanding it.
	Ignore bool
	Body   TestFunc
}

// TestClass groups test methods under shared configuration.
type TestClass struct {
	Name string
	// Package is the dotted package of the class. Its simenv.yaml files are
	// applied below the class configuration.
	Package string
	Config  Config
	Methods []TestMethod
}

func (c TestClass) toCore() core.TestClass {
	out := core.TestClass{
		Name:    c.Name,
		Package: c.Package,
		Config:  c.Config,
		Methods: make([]core.TestMethod, 0, len(c.Methods)),
	}
	for _, m := range c.Methods {
		out.Methods = append(out.Methods, core.TestMethod{
			Name:   m.Name,
			Config: m.Config,
			Ignore: m.Ignore,
			Body:   wrapBody(m.Body),
		})
	}
	return out
}

func wrapBody(fn TestFunc) lifecycle.Body {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, st *lifecycle.PerTestState) error {
		return fn(ctx, &TestContext{st: st})
	}
}

// TestContext is what a test body sees of its variant. It is valid only
// until the body returns.
type TestContext struct {
	st *lifecycle.PerTestState
}

// Variant returns the running variant.
func (tc *TestContext) Variant() *Variant { return tc.st.Variant }

// Name returns the display name of the running variant.
func (tc *TestContext) Name() string { return tc.st.Variant.Name() }

// Platform returns the platform version the variant runs against.
func (tc *TestContext) Platform() PlatformVersion { return tc.st.Variant.Version() }

// Legacy reports whether the variant runs the legacy resource pipeline.
func (tc *TestContext) Legacy() bool { return tc.st.Variant.Legacy() }

// Manifest returns the resolved manifest of the variant.
func (tc *TestContext) Manifest() *Manifest { return tc.st.Manifest }

// Class returns the test class as loaded in the environment.
func (tc *TestContext) Class() Class { return tc.st.Class }

// Environment returns the environment the variant runs in.
//
//nolint:ireturn // Environments are supplied by pluggable factories.
func (tc *TestContext) Environment() Environment { return tc.st.Env }

// Interrupt raises the interrupt flag of the invoking thread. The flag is
// cleared after the body returns and reported as a diagnostic on the result.
func (tc *TestContext) Interrupt() { tc.st.Thread.Interrupt() }

// Store returns the platform state store of the environment, or nil when the
// environment is not backed by one.
func (tc *TestContext) Store() *StateStore {
	if s, ok := tc.st.Env.(interface{ Store() *StateStore }); ok {
		return s.Store()
	}
	return nil
}

// Skip returns an error that skips the running variant.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrAssumptionViolated, reason)
}

// runnerWrapper wraps core.Runner to implement the Runner interface.
//
// The core.Runner is stored as a named (unexported) field rather than
// embedded so that callers cannot reach internal methods through type
// assertions.
type runnerWrapper struct {
	r *core.Runner
}

// NewRunner returns a Runner configured by opts. This performs no I/O; call
// Initialize before Plan or Run.
//
// Without WithServices the Runner owns its caches and closes them in
// Shutdown.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Runner interface by design for testability (mockable).
func NewRunner(opts ...RunnerOption) Runner {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &runnerWrapper{r: core.NewRunner(cfg.RunnerConfig, cfg.deps)}
}

// Initialize wraps core.Runner.Initialize.
func (w *runnerWrapper) Initialize(ctx context.Context) error {
	return w.r.Initialize(ctx)
}

// Plan wraps core.Runner.Plan.
func (w *runnerWrapper) Plan(ctx context.Context, class TestClass) (*Plan, error) {
	return w.r.Plan(ctx, class.toCore())
}

// Run wraps core.Runner.Run.
func (w *runnerWrapper) Run(ctx context.Context, class TestClass) (*Report, error) {
	return w.r.Run(ctx, class.toCore())
}

// RunVariant wraps core.Runner.RunVariant.
func (w *runnerWrapper) RunVariant(ctx context.Context, class TestClass, id Identity) (*Result, error) {
	return w.r.RunVariant(ctx, class.toCore(), id)
}

// Shutdown wraps core.Runner.Shutdown.
func (w *runnerWrapper) Shutdown() error {
	return w.r.Shutdown()
}
