// Package asynchook decouples hook delivery from the cache's hot path.
// Events are handed to a bounded queue served by worker goroutines; when
// the queue is full the event is dropped rather than blocking the caller.
//
//	raw := sloghooks.New[string](slog.Default(), sloghooks.Options{})
//	hooks := asynchook.New[string](raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache := tiercache.New[string](tiercache.Options[string]{Hooks: hooks})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tiercache"
)

type Hooks[K comparable] struct {
	inner tiercache.Hooks[K]
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tiercache.Hooks[string] = (*Hooks[string])(nil)

func New[K comparable](inner tiercache.Hooks[K], workers, qlen int) *Hooks[K] {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks[K]{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
func (h *Hooks[K]) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks[K]) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks[K]) EntrySet(key K)     { h.try(func() { h.inner.EntrySet(key) }) }
func (h *Hooks[K]) EntryRemoved(key K) { h.try(func() { h.inner.EntryRemoved(key) }) }
func (h *Hooks[K]) EntryEvicted(key K, reason tiercache.EvictReason) {
	h.try(func() { h.inner.EntryEvicted(key, reason) })
}
