// Package ristretto adapts dgraph-io/ristretto to the tiercache.Cache
// contract so it can serve as a Tiered pipeline stage.
//
// Ristretto admits writes by estimated value, so this stage is best
// effort: a Set may be rejected under memory pressure and a later read
// misses. Ristretto also cannot enumerate its entries, so the stage keeps
// a shadow key index that Snapshot prunes lazily against the live cache.
package ristretto

import (
	"sync"

	rc "github.com/dgraph-io/ristretto"
	"github.com/unkn0wn-root/tiercache"
)

type Stage struct {
	c *rc.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

var _ tiercache.Cache[string] = (*Stage)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Stage, error) {
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Stage{c: c, keys: make(map[string]struct{})}, nil
}

func (s *Stage) Lookup(key string) (any, error) {
	v, ok := s.c.Get(key)
	if !ok {
		s.forget(key)
		return nil, &tiercache.MissingKeyError[string]{Key: key}
	}
	return v, nil
}

func (s *Stage) Set(key string, value any) {
	// Wait flushes the set buffer so an immediate Lookup observes the
	// write (unless admission rejected it, which is this stage's nature).
	s.c.Set(key, value, 1)
	s.c.Wait()
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

func (s *Stage) Remove(key string) {
	s.c.Del(key)
	s.forget(key)
}

func (s *Stage) Contains(key string) bool {
	_, ok := s.c.Get(key)
	if !ok {
		s.forget(key)
	}
	return ok
}

func (s *Stage) Require(keys ...string) error {
	seen := make(map[string]struct{}, len(keys))
	var missing []string
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if !s.Contains(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &tiercache.MissingKeysError[string]{Keys: missing}
	}
	return nil
}

// Snapshot walks the shadow index and re-reads every key from ristretto,
// dropping index entries the cache has evicted behind our back.
func (s *Stage) Snapshot() map[string]any {
	s.mu.Lock()
	candidates := make([]string, 0, len(s.keys))
	for k := range s.keys {
		candidates = append(candidates, k)
	}
	s.mu.Unlock()

	out := make(map[string]any, len(candidates))
	for _, k := range candidates {
		if v, ok := s.c.Get(k); ok {
			out[k] = v
		} else {
			s.forget(k)
		}
	}
	return out
}

func (s *Stage) Len() int {
	return len(s.Snapshot())
}

// Close releases ristretto's internal goroutines. The stage must not be
// used afterwards.
func (s *Stage) Close() {
	s.c.Wait()
	s.c.Close()
}

// Metrics exposes ristretto's counters (not part of the Cache contract).
func (s *Stage) Metrics() *rc.Metrics { return s.c.Metrics }

func (s *Stage) forget(key string) {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
}
