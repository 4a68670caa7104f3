package tiercache

import (
	"fmt"
	"sync"
	"time"
)

// expiringEntry pairs a stored value with the absolute instant it stops
// being valid, computed once at write time.
type expiringEntry struct {
	value     any
	expiresAt time.Time
}

// Expiring layers a fixed time-to-live on a Store. Every Set stamps the
// entry with now+ttl; a read that finds the stamp at or before "now"
// evicts the entry and reports it as expired. Eviction is lazy: a timed
// out entry occupies the store until the next Lookup or Contains touches
// it. Snapshot and Len filter expired entries without evicting (pure
// reads).
type Expiring[K comparable] struct {
	mu    sync.Mutex
	inner *Store[K]
	ttl   time.Duration
	now   func() time.Time

	log   Logger
	hooks Hooks[K]
}

var _ Cache[string] = (*Expiring[string])(nil)

// NewExpiring constructs an expiring cache applying ttl to every write.
// A ttl of 0 means every entry is already expired the instant after it is
// written; a negative ttl is a construction error. Seed entries from
// opts.InitialValues get a fresh ttl as if written at construction time.
func NewExpiring[K comparable](ttl time.Duration, opts Options[K]) (*Expiring[K], error) {
	if ttl < 0 {
		return nil, fmt.Errorf("tiercache: negative ttl %s", ttl)
	}
	e := &Expiring[K]{
		inner: New[K](Options[K]{}),
		ttl:   ttl,
		now:   opts.Clock,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks[K]](opts.Hooks, NopHooks[K]{}),
	}
	if e.now == nil {
		e.now = time.Now
	}
	for k, v := range opts.InitialValues {
		e.inner.Set(k, expiringEntry{value: v, expiresAt: e.now().Add(ttl)})
	}
	return e, nil
}

func (e *Expiring[K]) Lookup(key K) (any, error) {
	e.mu.Lock()
	raw, err := e.inner.Lookup(key)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	ent := raw.(expiringEntry)
	if e.expired(ent) {
		e.inner.Remove(key)
		e.mu.Unlock()
		e.log.Debug("expired key evicted on read", Fields{"key": key})
		e.hooks.EntryEvicted(key, EvictExpired)
		return nil, &ExpiredKeyError[K]{Key: key, ExpiredAt: ent.expiresAt}
	}
	e.mu.Unlock()
	return ent.value, nil
}

func (e *Expiring[K]) Set(key K, value any) {
	ent := expiringEntry{value: value, expiresAt: e.now().Add(e.ttl)}
	e.mu.Lock()
	e.inner.Set(key, ent)
	e.mu.Unlock()
	e.hooks.EntrySet(key)
}

func (e *Expiring[K]) Remove(key K) {
	e.mu.Lock()
	present := e.inner.Contains(key)
	if present {
		e.inner.Remove(key)
	}
	e.mu.Unlock()
	if present {
		e.hooks.EntryRemoved(key)
	}
}

// Contains performs the same expiry check as Lookup, so it has a side
// effect: a timed-out entry is evicted and reported absent.
func (e *Expiring[K]) Contains(key K) bool {
	_, err := e.Lookup(key)
	return err == nil
}

// Require treats expired entries as missing. Like Snapshot it is a pure
// read: it does not evict what it finds expired.
func (e *Expiring[K]) Require(keys ...K) error {
	now := e.now()
	seen := make(map[K]struct{}, len(keys))
	var missing []K

	e.mu.Lock()
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		raw, err := e.inner.Lookup(k)
		if err != nil || !raw.(expiringEntry).expiresAt.After(now) {
			missing = append(missing, k)
		}
	}
	e.mu.Unlock()

	if len(missing) > 0 {
		return &MissingKeysError[K]{Keys: missing}
	}
	return nil
}

func (e *Expiring[K]) Snapshot() map[K]any {
	now := e.now()
	e.mu.Lock()
	raw := e.inner.Snapshot()
	e.mu.Unlock()

	out := make(map[K]any, len(raw))
	for k, v := range raw {
		ent := v.(expiringEntry)
		if ent.expiresAt.After(now) {
			out[k] = ent.value
		}
	}
	return out
}

func (e *Expiring[K]) Len() int {
	return len(e.Snapshot())
}

func (e *Expiring[K]) expired(ent expiringEntry) bool {
	return !ent.expiresAt.After(e.now())
}
