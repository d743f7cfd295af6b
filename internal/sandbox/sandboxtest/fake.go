// Package sandboxtest provides in-memory sandbox environments for tests.
package sandboxtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// Env is an in-memory sandbox.Environment that records every call.
type Env struct {
	id      string
	key     sandbox.Key
	version platform.Version
	legacy  bool

	mu     sync.Mutex
	active atomic.Uint64
	closed atomic.Int32

	// Hooks and Lifecycle are returned by NewHooks and NewLifecycle.
	Hooks     *Hooks
	Lifecycle *Lifecycle
	// Providers are returned by StateProviders.
	Providers []sandbox.StateProvider
	// BootstrapErr is returned by Bootstrap when set.
	BootstrapErr error

	bootMu       sync.Mutex
	bootstrapped []string
}

var _ sandbox.Environment = (*Env)(nil)

// NewEnv returns an Env with recording hooks and one counting provider.
func NewEnv(id string, key sandbox.Key, v platform.Version, legacy bool) *Env {
	return &Env{
		id:        id,
		key:       key,
		version:   v,
		legacy:    legacy,
		Hooks:     &Hooks{},
		Lifecycle: &Lifecycle{},
		Providers: []sandbox.StateProvider{&Provider{}},
	}
}

func (e *Env) ID() string                         { return e.id }
func (e *Env) Key() sandbox.Key                   { return e.key }
func (e *Env) Version() platform.Version          { return e.version }
func (e *Env) Legacy() bool                       { return e.legacy }
func (e *Env) ActiveThread() sandbox.ThreadID     { return sandbox.ThreadID(e.active.Load()) }
func (e *Env) SetActiveThread(t sandbox.ThreadID) { e.active.Store(uint64(t)) }
func (e *Env) Lock()                              { e.mu.Lock() }
func (e *Env) Unlock()                            { e.mu.Unlock() }
func (e *Env) NewHooks() sandbox.Hooks            { return e.Hooks }
func (e *Env) NewLifecycle() sandbox.Lifecycle    { return e.Lifecycle }
func (e *Env) StateProviders() []sandbox.StateProvider {
	return e.Providers
}

// Bootstrap records name and returns an uninstrumented class.
func (e *Env) Bootstrap(name string) (sandbox.Class, error) {
	if e.BootstrapErr != nil {
		return sandbox.Class{}, e.BootstrapErr
	}
	e.bootMu.Lock()
	defer e.bootMu.Unlock()
	e.bootstrapped = append(e.bootstrapped, name)
	return sandbox.Class{Name: name}, nil
}

// Bootstrapped returns the names passed to Bootstrap, in call order.
func (e *Env) Bootstrapped() []string {
	e.bootMu.Lock()
	defer e.bootMu.Unlock()
	return append([]string(nil), e.bootstrapped...)
}

// Close counts calls.
func (e *Env) Close() error {
	e.closed.Add(1)
	return nil
}

// Closed returns how many times Close was called.
func (e *Env) Closed() int { return int(e.closed.Load()) }

// Hooks records set-up and tear-down calls and returns the configured errors.
type Hooks struct {
	SetUpErr    error
	TearDownErr error
	SetUpPanic  any

	mu       sync.Mutex
	setUps   []sandbox.Application
	tearDown int
}

func (h *Hooks) SetUpApplication(_ context.Context, app sandbox.Application) error {
	if h.SetUpPanic != nil {
		panic(h.SetUpPanic)
	}
	h.mu.Lock()
	h.setUps = append(h.setUps, app)
	h.mu.Unlock()
	return h.SetUpErr
}

func (h *Hooks) TearDownApplication(context.Context) error {
	h.mu.Lock()
	h.tearDown++
	h.mu.Unlock()
	return h.TearDownErr
}

// SetUps returns the applications passed to SetUpApplication.
func (h *Hooks) SetUps() []sandbox.Application {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]sandbox.Application(nil), h.setUps...)
}

// TearDowns returns how many times TearDownApplication ran.
func (h *Hooks) TearDowns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tearDown
}

// Lifecycle records lifecycle hook calls.
type Lifecycle struct {
	BeforeErr error
	AfterErr  error

	mu     sync.Mutex
	before []string
	after  []string
}

func (l *Lifecycle) BeforeTest(_ context.Context, test string) error {
	l.mu.Lock()
	l.before = append(l.before, test)
	l.mu.Unlock()
	return l.BeforeErr
}

func (l *Lifecycle) AfterTest(_ context.Context, test string) error {
	l.mu.Lock()
	l.after = append(l.after, test)
	l.mu.Unlock()
	return l.AfterErr
}

// Before returns the tests passed to BeforeTest.
func (l *Lifecycle) Before() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.before...)
}

// After returns the tests passed to AfterTest.
func (l *Lifecycle) After() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.after...)
}

// Provider counts resets.
type Provider struct {
	resets atomic.Int32
	// Panic, when non-nil, is raised from Reset after counting.
	Panic any
}

func (p *Provider) Reset() {
	p.resets.Add(1)
	if p.Panic != nil {
		panic(p.Panic)
	}
}

// Resets returns how many times Reset ran.
func (p *Provider) Resets() int { return int(p.resets.Load()) }

// Factory creates Envs and counts creations per key. Gate, when non-nil,
// blocks every Create until it is closed or the context is done; Entered,
// when non-nil, receives once per Create that reaches the gate.
type Factory struct {
	Err     error
	Gate    chan struct{}
	Entered chan struct{}

	mu      sync.Mutex
	created map[sandbox.Key]int
	envs    []*Env
	seq     int
}

var _ sandbox.Factory = (*Factory)(nil)

func (f *Factory) Create(ctx context.Context, clc sandbox.ClassLoaderConfig, v platform.Version, legacy bool) (sandbox.Environment, error) {
	if f.Gate != nil {
		if f.Entered != nil {
			f.Entered <- struct{}{}
		}
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	key := sandbox.NewKey(clc, v, legacy)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created == nil {
		f.created = make(map[sandbox.Key]int)
	}
	f.created[key]++
	f.seq++
	env := NewEnv(fmt.Sprintf("env-%d", f.seq), key, v, legacy)
	f.envs = append(f.envs, env)
	return env, nil
}

// Created returns how many environments were created for key.
func (f *Factory) Created(key sandbox.Key) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[key]
}

// Envs returns every environment created so far.
func (f *Factory) Envs() []*Env {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Env(nil), f.envs...)
}
