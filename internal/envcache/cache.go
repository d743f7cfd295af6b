package envcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/simenv/internal/platform"
	"github.com/giantswarm/simenv/internal/sandbox"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Cache memoizes environments. It is safe for concurrent use: concurrent
// misses for one key create a single environment, misses for different keys
// proceed independently.
type Cache struct {
	factory sandbox.Factory

	mu     sync.Mutex
	envs   map[sandbox.Key]sandbox.Environment
	closed bool
	group  singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Cache that creates environments with factory.
// Panics if factory is nil.
func New(factory sandbox.Factory) *Cache {
	if factory == nil {
		panic("simenv: environment factory must not be nil")
	}
	return &Cache{factory: factory, envs: make(map[sandbox.Key]sandbox.Environment)}
}

// GetOrCreate returns the environment for (clc, v, legacy), creating it on a
// miss. It fails with *UnsupportedPlatformError or *UnsupportedModeError
// before consulting the cache. Factory errors are returned unchanged and are
// not cached.
func (c *Cache) GetOrCreate(ctx context.Context, clc sandbox.ClassLoaderConfig, v platform.Version, legacy bool) (sandbox.Environment, error) {
	if err := ValidatePlatform(v); err != nil {
		return nil, err
	}
	if err := ValidateMode(v, legacy); err != nil {
		return nil, err
	}

	key := sandbox.NewKey(clc, v, legacy)
	if env, ok, err := c.lookup(key); err != nil || ok {
		if ok {
			c.hits.Add(1)
		}
		return env, err
	}

	// Creation is detached from ctx so a caller that gives up does not fail
	// the others waiting on the same key.
	ch := c.group.DoChan(key.String(), func() (any, error) {
		if env, ok, err := c.lookup(key); err != nil || ok {
			if ok {
				c.hits.Add(1)
			}
			return env, err
		}
		c.misses.Add(1)

		env, err := c.factory.Create(context.WithoutCancel(ctx), clc, v, legacy)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, errors.Join(ErrClosed, env.Close())
		}
		c.envs[key] = env
		c.mu.Unlock()
		return env, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(sandbox.Environment), nil //nolint:forcetypeassert // the flight only ever returns an Environment
	}
}

func (c *Cache) lookup(key sandbox.Key) (sandbox.Environment, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrClosed
	}
	env, ok := c.envs[key]
	return env, ok, nil
}

// Lookup returns a cached environment without creating one.
func (c *Cache) Lookup(key sandbox.Key) (sandbox.Environment, bool) {
	env, ok, _ := c.lookup(key)
	return env, ok
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	size := len(c.envs)
	c.mu.Unlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: size}
}

// Close closes every cached environment in parallel and returns their errors
// joined. Later calls to GetOrCreate fail with ErrClosed. Close is idempotent.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.closed = true
	envs := make([]sandbox.Environment, 0, len(c.envs))
	for _, env := range c.envs {
		envs = append(envs, env)
	}
	clear(c.envs)
	c.mu.Unlock()

	errs := make([]error, len(envs))
	var g errgroup.Group
	for i, env := range envs {
		i, env := i, env
		g.Go(func() error {
			errs[i] = env.Close()
			return nil
		})
	}
	_ = g.Wait() // goroutines report through errs
	return errors.Join(errs...)
}
