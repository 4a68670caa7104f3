package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/tiercache"
)

type countingHooks struct {
	mu      sync.Mutex
	set     int
	removed int
	evicted int
}

func (h *countingHooks) EntrySet(string) {
	h.mu.Lock()
	h.set++
	h.mu.Unlock()
}
func (h *countingHooks) EntryRemoved(string) {
	h.mu.Lock()
	h.removed++
	h.mu.Unlock()
}
func (h *countingHooks) EntryEvicted(string, tiercache.EvictReason) {
	h.mu.Lock()
	h.evicted++
	h.mu.Unlock()
}

// Close drains the queue, so every event accepted before Close is
// delivered.
func TestDeliveryAndClose(t *testing.T) {
	inner := &countingHooks{}
	h := New[string](inner, 2, 128)

	for i := 0; i < 10; i++ {
		h.EntrySet("k")
		h.EntryRemoved("k")
		h.EntryEvicted("k", tiercache.EvictCapacity)
	}
	h.Close()
	h.Close() // idempotent

	if inner.set != 10 || inner.removed != 10 || inner.evicted != 10 {
		t.Fatalf("delivered set=%d removed=%d evicted=%d, want 10 each",
			inner.set, inner.removed, inner.evicted)
	}
}

// The cache never blocks on a full queue; overflow events are dropped.
func TestFullQueueDrops(t *testing.T) {
	block := make(chan struct{})
	inner := &blockingHooks{release: block}
	h := New[string](inner, 1, 1)

	for i := 0; i < 100; i++ {
		h.EntrySet("k") // must not block even with a stuck worker
	}
	close(block)
	h.Close()
}

type blockingHooks struct {
	release chan struct{}
	once    sync.Once
}

func (h *blockingHooks) EntrySet(string) {
	h.once.Do(func() { <-h.release })
}
func (h *blockingHooks) EntryRemoved(string)                       {}
func (h *blockingHooks) EntryEvicted(string, tiercache.EvictReason) {}
