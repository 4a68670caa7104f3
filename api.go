package tiercache

import "time"

// Cache is the capability contract shared by every cache variant.
// All methods are safe for concurrent use. Operations on the same key from
// different goroutines are serialized by the instance's lock; operations on
// different keys have no guaranteed relative order.
type Cache[K comparable] interface {
	// Lookup returns the raw stored value for key. It is the single-lock
	// read primitive every typed read is built on: one lock acquisition,
	// one map lookup, one decision. A miss returns *MissingKeyError, a
	// timed-out entry returns *ExpiredKeyError (and is lazily evicted).
	Lookup(key K) (any, error)

	// Set unconditionally upserts key. A subsequent Lookup or Contains for
	// key reflects the new value.
	Set(key K, value any)

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key K)

	// Contains reports whether key is logically present. Expiring variants
	// lazily evict a timed-out entry here, so Contains may mutate.
	Contains(key K) bool

	// Require reports every absent key at once via *MissingKeysError,
	// not just the first. A nil return means all keys are present.
	Require(keys ...K) error

	// Snapshot returns a point-in-time copy of the live entries. Expiring
	// variants filter timed-out entries without evicting them (pure read).
	Snapshot() map[K]any

	// Len returns the number of logically present entries.
	Len() int
}

// Options tune a variant at construction. The zero value is valid:
// no seed entries, no logging, no hooks.
type Options[K comparable] struct {
	// InitialValues pre-seeds the cache. Used by persistence layers to
	// rehydrate a snapshot uniformly across variants.
	InitialValues map[K]any

	Logger Logger   // if nil, NopLogger is used
	Hooks  Hooks[K] // if nil, NopHooks is used

	// Clock overrides the time source for expiry checks. Nil => time.Now.
	// Only Expiring caches consult it.
	Clock func() time.Time
}
