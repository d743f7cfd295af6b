package lifecycle

import (
	"fmt"
	"sync"

	"github.com/giantswarm/simenv/internal/sandbox"
)

// Registry holds named state providers reset after every variant, in
// registration order. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	providers map[string]sandbox.StateProvider
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]sandbox.StateProvider)}
}

// Register adds p under name. Registering a name again replaces the provider
// and keeps its original position. Panics if name is empty or p is nil.
func (r *Registry) Register(name string, p sandbox.StateProvider) {
	if name == "" {
		panic("simenv: state provider name must not be empty")
	}
	if p == nil {
		panic(fmt.Sprintf("simenv: state provider %q must not be nil", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		r.names = append(r.names, name)
	}
	r.providers[name] = p
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

type namedProvider struct {
	name string
	sandbox.StateProvider
}

func (r *Registry) snapshot() []namedProvider {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]namedProvider, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, namedProvider{name: n, StateProvider: r.providers[n]})
	}
	return out
}
