package tiercache

import "sync"

// Store is the base thread-safe mapping with no eviction or expiry policy.
// One mutex guards the map; it is held only for the single lookup or
// mutation, never across hook invocations.
type Store[K comparable] struct {
	mu      sync.Mutex
	entries map[K]any

	log   Logger
	hooks Hooks[K]
}

var _ Cache[string] = (*Store[string])(nil)

// New constructs a Store, optionally pre-seeded from opts.InitialValues.
func New[K comparable](opts Options[K]) *Store[K] {
	s := &Store[K]{
		entries: make(map[K]any, len(opts.InitialValues)),
		log:     coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:   coalesce[Hooks[K]](opts.Hooks, NopHooks[K]{}),
	}
	for k, v := range opts.InitialValues {
		s.entries[k] = v
	}
	return s
}

// Lookup does exactly one lock acquisition and one map read. Missing vs.
// present is decided from that single snapshot; the typed wrappers decide
// mismatch outside the lock.
func (s *Store[K]) Lookup(key K) (any, error) {
	s.mu.Lock()
	v, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return nil, &MissingKeyError[K]{Key: key}
	}
	return v, nil
}

func (s *Store[K]) Set(key K, value any) {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	s.hooks.EntrySet(key)
}

func (s *Store[K]) Remove(key K) {
	s.mu.Lock()
	_, present := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	if present {
		s.hooks.EntryRemoved(key)
	}
}

func (s *Store[K]) Contains(key K) bool {
	s.mu.Lock()
	_, ok := s.entries[key]
	s.mu.Unlock()
	return ok
}

// Require reports every absent key in one error. The whole check runs
// under a single lock acquisition so the answer reflects one consistent
// snapshot of the store.
func (s *Store[K]) Require(keys ...K) error {
	missing := s.missing(keys)
	if len(missing) > 0 {
		return &MissingKeysError[K]{Keys: missing}
	}
	return nil
}

func (s *Store[K]) missing(keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	var missing []K
	s.mu.Lock()
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := s.entries[k]; !ok {
			missing = append(missing, k)
		}
	}
	s.mu.Unlock()
	return missing
}

func (s *Store[K]) Snapshot() map[K]any {
	s.mu.Lock()
	out := make(map[K]any, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	s.mu.Unlock()
	return out
}

func (s *Store[K]) Len() int {
	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	return n
}
