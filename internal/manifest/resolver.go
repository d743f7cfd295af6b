package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrResolution is the category sentinel matched by every
// ResolutionError via errors.Is.
const ErrResolution = sentinel.Error("manifest resolution failed")

// ResolutionError reports a manifest, or one of its transitive libraries,
// that could not be located or parsed.
type ResolutionError struct {
	Manifest string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve manifest %s: %v", e.Manifest, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is matches ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// Stats is a snapshot of resolver cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Resolver resolves and memoizes manifest descriptors by identifier key.
// Concurrent misses for one key share a single build; misses for different
// keys proceed independently. It is safe for concurrent use.
type Resolver struct {
	loader Loader

	mu    sync.Mutex
	byKey map[string]*Descriptor
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResolver returns a Resolver that loads documents with loader.
// Panics if loader is nil.
func NewResolver(loader Loader) *Resolver {
	if loader == nil {
		panic("simenv: manifest loader must not be nil")
	}
	return &Resolver{loader: loader, byKey: make(map[string]*Descriptor)}
}

// Resolve returns the descriptor for id, building it and its libraries on a
// miss. Failures are reported as *ResolutionError and are not cached.
func (r *Resolver) Resolve(ctx context.Context, id Identifier) (*Descriptor, error) {
	key := id.Key()
	if d, ok := r.Lookup(key); ok {
		r.hits.Add(1)
		return d, nil
	}

	// The build is detached from ctx so a caller that gives up does not fail
	// the others waiting on the same key.
	ch := r.group.DoChan(key, func() (any, error) {
		// Double-check: a previous flight may have finished between the
		// lookup above and this call.
		if d, ok := r.Lookup(key); ok {
			r.hits.Add(1)
			return d, nil
		}
		r.misses.Add(1)
		d, err := r.build(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.byKey[key] = d
		r.mu.Unlock()
		return d, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Descriptor), nil //nolint:forcetypeassert // the flight only ever returns *Descriptor
	}
}

// build resolves libraries depth-first, then loads id itself.
func (r *Resolver) build(ctx context.Context, id Identifier) (*Descriptor, error) {
	libs := make([]*Descriptor, 0, len(id.Libraries))
	for _, libID := range id.Libraries {
		lib, err := r.Resolve(ctx, libID)
		if err != nil {
			var re *ResolutionError
			if errors.As(err, &re) {
				return nil, &ResolutionError{Manifest: id.String(), Err: fmt.Errorf("library: %w", err)}
			}
			return nil, err
		}
		libs = append(libs, lib)
	}

	doc, err := r.loader.Load(ctx, id)
	if err != nil {
		return nil, &ResolutionError{Manifest: id.String(), Err: err}
	}
	return newDescriptor(id, doc, libs), nil
}

// Lookup returns an already-resolved descriptor by key without loading.
func (r *Resolver) Lookup(key string) (*Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byKey[key]
	return d, ok
}

// Invalidate drops the cached descriptor for key. The next Resolve rebuilds it.
func (r *Resolver) Invalidate(key string) {
	r.mu.Lock()
	delete(r.byKey, key)
	r.mu.Unlock()
	r.group.Forget(key)
}

// Stats returns the current cache counters.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	size := len(r.byKey)
	r.mu.Unlock()
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load(), Size: size}
}
