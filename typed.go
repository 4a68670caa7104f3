package tiercache

import "reflect"

// matchLookup is implemented by variants that can retry a read against
// alternative storage when the first candidate value fails the match
// (Tiered tries the next stage). Single-storage variants fall back to a
// plain Lookup; the typed wrappers apply the downcast themselves.
type matchLookup[K comparable] interface {
	lookupMatch(key K, match func(any) bool) (any, error)
}

// matchSnapshot is implemented by variants whose Snapshot depends on the
// requested type (Tiered returns the first stage whose filtered snapshot
// is non-empty).
type matchSnapshot[K comparable] interface {
	snapshotMatch(match func(any) bool) map[K]any
}

func lookupFor[K comparable](c Cache[K], key K, match func(any) bool) (any, error) {
	if m, ok := c.(matchLookup[K]); ok {
		return m.lookupMatch(key, match)
	}
	return c.Lookup(key)
}

// Get returns the value stored under key downcast to T. It returns false
// when the key is absent, expired, or holds a value of another type.
func Get[T any, K comparable](c Cache[K], key K) (T, bool) {
	v, err := lookupFor(c, key, matches[T])
	if err != nil {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Resolve is Get with a reason: absence becomes *MissingKeyError, a timed
// out entry becomes *ExpiredKeyError, and a failed downcast becomes
// *TypeMismatchError carrying both type names. The downcast happens after
// the single locked lookup has returned, never under the lock.
func Resolve[T any, K comparable](c Cache[K], key K) (T, error) {
	var zero T
	v, err := lookupFor(c, key, matches[T])
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError[K]{
			Key:      key,
			Expected: typeName[T](),
			Actual:   actualName(v),
		}
	}
	return t, nil
}

// ValuesOf returns a snapshot filtered to entries whose stored value
// downcasts to T. The result is a copy; mutating it does not touch the
// cache.
func ValuesOf[T any, K comparable](c Cache[K]) map[K]T {
	match := matches[T]
	var snap map[K]any
	if m, ok := c.(matchSnapshot[K]); ok {
		snap = m.snapshotMatch(match)
	} else {
		snap = c.Snapshot()
	}
	out := make(map[K]T, len(snap))
	for k, v := range snap {
		if t, ok := v.(T); ok {
			out[k] = t
		}
	}
	return out
}

func matches[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

// typeName names T even when T is an interface type.
func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

func actualName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
