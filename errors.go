package tiercache

import (
	"fmt"
	"time"
)

// MissingKeyError reports a read for a key that is not present.
type MissingKeyError[K comparable] struct {
	Key K
}

func (e *MissingKeyError[K]) Error() string {
	return fmt.Sprintf("tiercache: key %v not found", e.Key)
}

// MissingKeysError reports every absent key of a Require call, not just
// the first. Keys preserves the caller's order with duplicates removed.
type MissingKeysError[K comparable] struct {
	Keys []K
}

func (e *MissingKeysError[K]) Error() string {
	return fmt.Sprintf("tiercache: required keys missing: %v", e.Keys)
}

// TypeMismatchError reports a value that is present but not downcast-
// compatible with the requested type. Expected and Actual carry the type
// names for diagnostics.
type TypeMismatchError[K comparable] struct {
	Key      K
	Expected string
	Actual   string
}

func (e *TypeMismatchError[K]) Error() string {
	return fmt.Sprintf("tiercache: key %v holds %s, not %s", e.Key, e.Actual, e.Expected)
}

// ExpiredKeyError reports an entry that existed but timed out, as opposed
// to one that never existed (MissingKeyError). The entry has been evicted
// by the time the error is returned.
type ExpiredKeyError[K comparable] struct {
	Key       K
	ExpiredAt time.Time
}

func (e *ExpiredKeyError[K]) Error() string {
	return fmt.Sprintf("tiercache: key %v expired at %s", e.Key, e.ExpiredAt.Format(time.RFC3339Nano))
}
