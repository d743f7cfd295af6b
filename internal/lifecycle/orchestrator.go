package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/simenv/internal/envcache"
	"github.com/giantswarm/simenv/internal/manifest"
	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
	"github.com/giantswarm/simenv/internal/variant"
)

// InterruptedDiagnostic is recorded when the invoking thread was left
// interrupted.
const InterruptedDiagnostic = "test thread was interrupted"

// Environments supplies environments for variants.
type Environments interface {
	GetOrCreate(ctx context.Context, clc sandbox.ClassLoaderConfig, v platform.Version, legacy bool) (sandbox.Environment, error)
}

// PerTestState is what one variant holds while it runs. The orchestrator
// clears it in Resetting.
type PerTestState struct {
	Variant   *variant.Variant
	Manifest  *manifest.Descriptor
	Env       sandbox.Environment
	Class     sandbox.Class
	Hooks     sandbox.Hooks
	Lifecycle sandbox.Lifecycle
	Thread    *Thread
}

func (s *PerTestState) clear() {
	s.Env = nil
	s.Class = sandbox.Class{}
	s.Hooks = nil
	s.Lifecycle = nil
}

// Body is the test body invoked in Invoking.
type Body func(ctx context.Context, state *PerTestState) error

// Invocation is one variant to run.
type Invocation struct {
	Variant  *variant.Variant
	Manifest *manifest.Descriptor
	Body     Body
}

// Orchestrator runs variants. It is safe for concurrent use.
type Orchestrator struct {
	Environments Environments
	Providers    *Registry    // Runner-wide providers reset after every variant (may be nil)
	Logger       *slog.Logger // Logger for operational messages (nil uses slog.Default)
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Run drives inv through the lifecycle and returns its result. It never
// panics on behalf of the test: panics in hooks, the body or providers are
// recovered and reported. The thread carried by ctx is used as the invoking
// thread; a new one is created when ctx has none.
func (o *Orchestrator) Run(ctx context.Context, inv Invocation) *Result {
	start := time.Now()
	v := inv.Variant
	res := &Result{Identity: v.Identity(), Name: v.Name()}
	defer func() { res.Duration = time.Since(start) }()

	thread := ThreadFrom(ctx)
	if thread == nil {
		thread = NewThread()
		ctx = WithThread(ctx, thread)
	}
	log := o.logger().With("variant", v.String())

	res.enter(Selecting)
	env, err := o.Environments.GetOrCreate(ctx, v.ClassLoader(), v.Version(), v.Legacy())
	if err != nil {
		o.finishEarly(res, thread, log, err)
		return res
	}
	res.EnvironmentID = env.ID()

	res.enter(Validating)
	if err := errors.Join(envcache.ValidatePlatform(v.Version()), envcache.ValidateMode(v.Version(), v.Legacy())); err != nil {
		o.finishEarly(res, thread, log, err)
		return res
	}

	env.Lock()
	defer env.Unlock()
	prev := env.ActiveThread()

	state := &PerTestState{Variant: v, Manifest: inv.Manifest, Env: env, Thread: thread}
	var runErr error
	withActiveThread(env, thread.ID(), func() {
		res.enter(SettingUp)
		if err := o.setUp(ctx, state, log); err != nil {
			runErr = &SetupFailure{Test: v.Test(), Err: err}
			return
		}

		res.enter(Invoking)
		var invokeErr error
		withActiveThread(env, thread.ID(), func() {
			invokeErr = safely(func() error { return inv.Body(ctx, state) })
		})

		res.enter(TearingDown)
		teardownErr := o.tearDown(ctx, state)

		if invokeErr != nil && !errors.Is(invokeErr, ErrAssumptionViolated) {
			invokeErr = &InvocationFailure{Test: v.Test(), Err: invokeErr}
		}
		if teardownErr != nil {
			teardownErr = &TeardownFailure{Test: v.Test(), Err: teardownErr}
		}
		runErr = errors.Join(invokeErr, teardownErr)
	})

	res.enter(Resetting)
	o.reset(res, state.Env, thread, log)
	state.clear()
	env.SetActiveThread(prev)

	o.conclude(res, runErr, log)
	return res
}

func (o *Orchestrator) setUp(ctx context.Context, s *PerTestState, log *slog.Logger) error {
	v := s.Variant
	if v.Legacy() {
		log.Info("legacy resources mode is deprecated; consider binary resources", "level", v.Version().Level)
	}
	log.Debug(fmt.Sprintf("%s: sdk=%d; resources=%s", v.Test(), v.Version().Level, v.Mode()))

	return safely(func() error {
		class, err := s.Env.Bootstrap(v.Class())
		if err != nil {
			return fmt.Errorf("bootstrap %s: %w", v.Class(), err)
		}
		s.Class = class
		s.Hooks = s.Env.NewHooks()
		app := sandbox.Application{Test: v.Test(), Config: v.Config(), Manifest: s.Manifest}
		if err := s.Hooks.SetUpApplication(ctx, app); err != nil {
			return fmt.Errorf("set up application: %w", err)
		}
		s.Lifecycle = s.Env.NewLifecycle()
		if err := s.Lifecycle.BeforeTest(ctx, v.Test()); err != nil {
			return fmt.Errorf("before test: %w", err)
		}
		return nil
	})
}

// tearDown tears the application down, then runs the lifecycle hook's
// post-test callback whether or not that succeeded.
func (o *Orchestrator) tearDown(ctx context.Context, s *PerTestState) error {
	appErr := safely(func() error { return s.Hooks.TearDownApplication(ctx) })
	afterErr := safely(func() error { return s.Lifecycle.AfterTest(ctx, s.Variant.Test()) })
	if afterErr != nil {
		afterErr = fmt.Errorf("after test: %w", afterErr)
	}
	return errors.Join(appErr, afterErr)
}

// reset resets every runner and environment provider once, then clears and
// reports an interrupted thread. env may be nil when no environment was
// obtained.
func (o *Orchestrator) reset(res *Result, env sandbox.Environment, thread *Thread, log *slog.Logger) {
	providers := o.Providers.snapshot()
	if env != nil {
		for i, p := range env.StateProviders() {
			providers = append(providers, namedProvider{name: fmt.Sprintf("environment[%d]", i), StateProvider: p})
		}
	}
	for _, p := range providers {
		if err := safely(func() error { p.Reset(); return nil }); err != nil {
			log.Warn("state provider reset failed", "provider", p.name, "error", err)
		}
	}

	if thread.Interrupted() {
		log.Warn(InterruptedDiagnostic)
		res.Diagnostics = append(res.Diagnostics, InterruptedDiagnostic)
	}
}

// finishEarly handles a variant stopped in Selecting or Validating.
func (o *Orchestrator) finishEarly(res *Result, thread *Thread, log *slog.Logger, err error) {
	if errors.Is(err, envcache.ErrUnsupported) {
		err = fmt.Errorf("%w: %w", ErrAssumptionViolated, err)
	}
	res.enter(Resetting)
	o.reset(res, nil, thread, log)
	o.conclude(res, err, log)
}

func (o *Orchestrator) conclude(res *Result, err error, log *slog.Logger) {
	res.Err = err
	switch {
	case err == nil:
		res.Status = StatusPassed
		res.enter(Done)
	case isSkip(err):
		res.Status = StatusSkipped
		res.enter(Skipped)
		log.Info("variant skipped", "reason", err)
	default:
		res.Status = StatusFailed
		res.enter(Failed)
		log.Debug("variant failed", "error", err)
	}
}

// isSkip reports whether err skips the variant: it is an assumption
// violation and nothing else failed alongside it.
func isSkip(err error) bool {
	if !errors.Is(err, ErrAssumptionViolated) {
		return false
	}
	var td *TeardownFailure
	return !errors.As(err, &td)
}
