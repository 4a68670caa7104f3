package tiercache

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named caches for process-lifetime sharing. It replaces
// ambient global singletons: construct one explicitly, pass it where the
// shared instances are needed, and let it die with the process (no
// teardown required).
type Registry[K comparable] struct {
	mu     sync.RWMutex
	caches map[string]Cache[K]
	log    Logger
}

func NewRegistry[K comparable](log Logger) *Registry[K] {
	return &Registry[K]{
		caches: make(map[string]Cache[K]),
		log:    coalesce[Logger](log, NopLogger{}),
	}
}

// Register binds name to c. Registering an already-taken name is an error;
// replace by removing first.
func (r *Registry[K]) Register(name string, c Cache[K]) error {
	if name == "" {
		return fmt.Errorf("tiercache: registry name is required")
	}
	if c == nil {
		return fmt.Errorf("tiercache: registry cache is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.caches[name]; taken {
		return fmt.Errorf("tiercache: cache %q already registered", name)
	}
	r.caches[name] = c
	r.log.Debug("cache registered", Fields{"name": name})
	return nil
}

func (r *Registry[K]) Lookup(name string) (Cache[K], bool) {
	r.mu.RLock()
	c, ok := r.caches[name]
	r.mu.RUnlock()
	return c, ok
}

// Remove unbinds name. Removing an unknown name is a no-op.
func (r *Registry[K]) Remove(name string) {
	r.mu.Lock()
	delete(r.caches, name)
	r.mu.Unlock()
}

// Names returns the registered names, sorted.
func (r *Registry[K]) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.caches))
	for name := range r.caches {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
