package tiercache

// EvictReason says why the cache removed an entry on its own.
type EvictReason string

const (
	// EvictCapacity: an LRU cache dropped its least recently used entry.
	EvictCapacity EvictReason = "capacity"
	// EvictExpired: an expiring cache lazily dropped a timed-out entry.
	EvictExpired EvictReason = "expired"
)

// Hooks are lightweight callbacks for cache mutations. The cache invokes
// them only after its lock has been released, so an implementation may call
// back into the same instance synchronously. Implementations MUST still be
// cheap and non-blocking; the cache calls them on hot paths. Wrap with
// hooks/async if delivery may stall.
type Hooks[K comparable] interface {
	// EntrySet fires after a successful upsert of key.
	EntrySet(key K)

	// EntryRemoved fires after an explicit Remove deleted a present key.
	// Removing an absent key does not fire.
	EntryRemoved(key K)

	// EntryEvicted fires when the cache removed key by policy rather than
	// by caller request.
	EntryEvicted(key K, reason EvictReason)
}

// NopHooks is the default no-op.
type NopHooks[K comparable] struct{}

func (NopHooks[K]) EntrySet(K)                  {}
func (NopHooks[K]) EntryRemoved(K)              {}
func (NopHooks[K]) EntryEvicted(K, EvictReason) {}
