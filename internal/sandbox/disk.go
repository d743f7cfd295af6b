package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/giantswarm/simenv/internal/fileutil"
	"github.com/giantswarm/simenv/internal/platform"
)

// stateFileName is the state database inside each environment directory.
const stateFileName = "state.db"

// LifecycleFactory builds the per-test lifecycle hook for an environment.
type LifecycleFactory func(env Environment) Lifecycle

// DiskFactory creates Sandbox environments under BaseDir.
type DiskFactory struct {
	BaseDir   string           // Root for platform templates and environment directories
	Lifecycle LifecycleFactory // Lifecycle hook factory (nil uses a hook that records the running test)
	Logger    *slog.Logger     // Logger for operational messages (nil uses slog.Default)
}

var _ Factory = (*DiskFactory)(nil)

func (f *DiskFactory) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Create implements Factory.
func (f *DiskFactory) Create(ctx context.Context, clc ClassLoaderConfig, v platform.Version, legacy bool) (Environment, error) {
	if f.BaseDir == "" {
		return nil, errors.New("base data dir must not be empty")
	}
	log := f.logger()
	key := NewKey(clc, v, legacy)

	tmpl, err := ensureTemplate(ctx, filepath.Join(f.BaseDir, "platforms"), v, log)
	if err != nil {
		return nil, fmt.Errorf("platform template for level %d: %w", v.Level, err)
	}

	id := uuid.NewString()
	dir := filepath.Join(f.BaseDir, fmt.Sprintf("env-%s-%s", hashStrings(key.String()), id[:8]))
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, stateFileName)
	if err := fileutil.CopyAtomic(tmpl, dbPath, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("copy platform template: %w", err)
	}
	store, err := openStore(dbPath, log)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := store.db.PingContext(ctx); err != nil {
		_ = store.Close()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("ping state store: %w", err)
	}

	lifecycle := f.Lifecycle
	if lifecycle == nil {
		lifecycle = func(Environment) Lifecycle { return recordingLifecycle{store: store} }
	}
	s := &Sandbox{
		id:        id,
		key:       key,
		version:   v,
		legacy:    legacy,
		clc:       clc,
		dir:       dir,
		store:     store,
		lifecycle: lifecycle,
		log:       log.With("environment", id),
	}
	s.log.Debug("environment created", "key", key.String(), "dir", dir)
	return s, nil
}

// Sandbox is the Environment created by DiskFactory.
type Sandbox struct {
	id      string
	key     Key
	version platform.Version
	legacy  bool
	clc     ClassLoaderConfig
	dir     string

	store     *Store
	lifecycle LifecycleFactory
	log       *slog.Logger

	mu     sync.Mutex
	active atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

var _ Environment = (*Sandbox)(nil)

func (s *Sandbox) ID() string                     { return s.id }
func (s *Sandbox) Key() Key                       { return s.key }
func (s *Sandbox) Version() platform.Version      { return s.version }
func (s *Sandbox) Legacy() bool                   { return s.legacy }
func (s *Sandbox) ClassLoader() ClassLoaderConfig { return s.clc }

// Dir returns the environment's data directory.
func (s *Sandbox) Dir() string { return s.dir }

// Store returns the environment's state database.
func (s *Sandbox) Store() *Store { return s.store }

func (s *Sandbox) ActiveThread() ThreadID      { return ThreadID(s.active.Load()) }
func (s *Sandbox) SetActiveThread(id ThreadID) { s.active.Store(uint64(id)) }
func (s *Sandbox) Lock()                       { s.mu.Lock() }
func (s *Sandbox) Unlock()                     { s.mu.Unlock() }
func (s *Sandbox) NewHooks() Hooks             { return appHooks{s: s} }

// Bootstrap resolves name against the environment's class-loader configuration.
func (s *Sandbox) Bootstrap(name string) (Class, error) { return BootstrapClass(s.clc, name) }

func (s *Sandbox) NewLifecycle() Lifecycle { return s.lifecycle(s) }
func (s *Sandbox) StateProviders() []StateProvider {
	return []StateProvider{purgeProvider{store: s.store}}
}

// Close closes the state store and removes the environment directory.
// Platform templates are left in place for later environments.
func (s *Sandbox) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.store.Close(), os.RemoveAll(s.dir))
		s.log.Debug("environment closed")
	})
	return s.closeErr
}

// appHooks records application state in the environment's store.
type appHooks struct {
	s *Sandbox
}

func (h appHooks) SetUpApplication(ctx context.Context, app Application) error {
	application := app.Config.Application()
	pkg := app.Config.PackageName()
	if app.Manifest != nil {
		if application == "" {
			application = app.Manifest.Application()
		}
		if pkg == "" {
			pkg = app.Manifest.PackageName()
		}
	}
	rows := [][2]string{
		{"test", app.Test},
		{"application", application},
		{"package", pkg},
		{"qualifiers", app.Config.Qualifiers()},
		{"level", strconv.Itoa(h.s.version.Level)},
		{"resources", modeName(h.s.legacy)},
	}
	for _, r := range rows {
		if err := h.s.store.Put(ctx, ScopeApplication, r[0], r[1]); err != nil {
			return fmt.Errorf("set up application: %w", err)
		}
	}
	return nil
}

func (h appHooks) TearDownApplication(ctx context.Context) error {
	if err := h.s.store.DeleteScope(ctx, ScopeApplication); err != nil {
		return fmt.Errorf("tear down application: %w", err)
	}
	return nil
}

// recordingLifecycle records the running test in the store.
type recordingLifecycle struct {
	store *Store
}

func (l recordingLifecycle) BeforeTest(ctx context.Context, test string) error {
	return l.store.Put(ctx, ScopeTest, "running", test)
}

func (l recordingLifecycle) AfterTest(ctx context.Context, _ string) error {
	return l.store.DeleteScope(ctx, ScopeTest)
}
