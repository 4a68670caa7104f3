package tiercache

import (
	"container/list"
	"fmt"
	"sync"
)

// LRU layers capacity-bounded eviction on a Store. A recency list tracks
// every key, least recently used at the front; Lookup, Contains and Set all
// promote the touched key to the back. When an insert pushes the list past
// capacity the front key is evicted from both the list and the store.
//
// The LRU mutex covers the whole read-modify-write of each operation so the
// recency list and the store never disagree. Lock order is strictly LRU
// first, inner store second.
type LRU[K comparable] struct {
	inner    *Store[K]
	capacity int

	mu    sync.Mutex
	order *list.List // front = least recently used
	elems map[K]*list.Element

	log   Logger
	hooks Hooks[K]
}

var _ Cache[string] = (*LRU[string])(nil)

// NewLRU constructs an LRU cache holding at most capacity entries.
// A capacity of 0 is legal: every write is admitted and immediately
// evicted again. A negative capacity is a construction error.
func NewLRU[K comparable](capacity int, opts Options[K]) (*LRU[K], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("tiercache: negative LRU capacity %d", capacity)
	}
	l := &LRU[K]{
		inner:    New[K](Options[K]{}),
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[K]*list.Element, capacity),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks[K]](opts.Hooks, NopHooks[K]{}),
	}
	for k, v := range opts.InitialValues {
		l.mu.Lock()
		l.setLocked(k, v)
		l.mu.Unlock()
	}
	return l, nil
}

func (l *LRU[K]) Lookup(key K) (any, error) {
	l.mu.Lock()
	v, err := l.inner.Lookup(key)
	if err == nil {
		l.order.MoveToBack(l.elems[key])
	}
	l.mu.Unlock()
	return v, err
}

func (l *LRU[K]) Set(key K, value any) {
	l.mu.Lock()
	evicted := l.setLocked(key, value)
	l.mu.Unlock()

	l.hooks.EntrySet(key)
	for _, k := range evicted {
		l.log.Debug("lru evicted key", Fields{"key": k})
		l.hooks.EntryEvicted(k, EvictCapacity)
	}
}

// setLocked upserts and returns the keys evicted to restore capacity.
func (l *LRU[K]) setLocked(key K, value any) []K {
	l.inner.Set(key, value)
	if e, ok := l.elems[key]; ok {
		l.order.MoveToBack(e)
	} else {
		l.elems[key] = l.order.PushBack(key)
	}

	var evicted []K
	for l.order.Len() > l.capacity {
		front := l.order.Front()
		k := front.Value.(K)
		l.order.Remove(front)
		delete(l.elems, k)
		l.inner.Remove(k)
		evicted = append(evicted, k)
	}
	return evicted
}

func (l *LRU[K]) Remove(key K) {
	l.mu.Lock()
	e, present := l.elems[key]
	if present {
		l.order.Remove(e)
		delete(l.elems, key)
		l.inner.Remove(key)
	}
	l.mu.Unlock()
	if present {
		l.hooks.EntryRemoved(key)
	}
}

// Contains is an access, so a hit promotes the key's recency.
func (l *LRU[K]) Contains(key K) bool {
	l.mu.Lock()
	e, ok := l.elems[key]
	if ok {
		l.order.MoveToBack(e)
	}
	l.mu.Unlock()
	return ok
}

// Require is a validation gate, not an access: present keys are not
// promoted.
func (l *LRU[K]) Require(keys ...K) error {
	l.mu.Lock()
	missing := l.inner.missing(keys)
	l.mu.Unlock()
	if len(missing) > 0 {
		return &MissingKeysError[K]{Keys: missing}
	}
	return nil
}

func (l *LRU[K]) Snapshot() map[K]any {
	l.mu.Lock()
	out := l.inner.Snapshot()
	l.mu.Unlock()
	return out
}

func (l *LRU[K]) Len() int {
	l.mu.Lock()
	n := l.order.Len()
	l.mu.Unlock()
	return n
}
