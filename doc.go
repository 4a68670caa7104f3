// Package tiercache implements thread-safe, in-process key-value caching
// behind one shared capability contract. Several interchangeable variants
// implement the contract:
//
//   - Store: the base locked mapping with no eviction policy.
//   - LRU: capacity-bounded eviction driven by a recency list.
//   - Expiring: per-entry time-to-live with lazy eviction on read.
//   - Tiered: an ordered pipeline of heterogeneous stages with fan-out
//     writes and first-hit reads.
//
// Values are stored untyped; callers recover concrete types at read time
// with the generic Get, Resolve and ValuesOf functions. A present value of
// the wrong dynamic type is a distinct outcome (TypeMismatchError) from an
// absent key (MissingKeyError) and from a timed-out entry (ExpiredKeyError).
//
// Every variant holds exactly one lock around its own state. Observer
// callbacks (Hooks) fire only after that lock has been released, so a
// subscriber reacting synchronously may call straight back into the cache
// without deadlocking.
//
// Subpackages:
//   - codec: pluggable value serialization (JSON, msgpack, CBOR, protobuf).
//   - persist: best-effort snapshot files for rehydrating a cache on start.
//   - provider/ristretto, provider/bigcache: third-party in-process stores
//     adapted to the Cache contract, usable as Tiered stages.
//   - log/zap, log/logrus, log/slog: logger adapters.
package tiercache
