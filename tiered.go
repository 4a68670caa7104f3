package tiercache

import (
	"errors"
	"fmt"
)

// Tiered composes an ordered pipeline of cache stages behind the shared
// contract. Stage order is fixed at construction and determines read
// precedence: reads query stage 0 first and the first stage holding the
// key (and, for typed reads, satisfying the downcast) wins. Writes fan out
// to every stage so all stages agree on raw presence immediately after a
// write; stages may still diverge later through their own TTL or capacity
// policies.
//
// Tiered has no lock of its own: the stage list is immutable and every
// stage guards its own state.
type Tiered[K comparable] struct {
	stages []Cache[K]
}

var _ Cache[string] = (*Tiered[string])(nil)

// NewTiered builds a pipeline over the given stages, highest priority
// first. At least one stage is required.
func NewTiered[K comparable](stages ...Cache[K]) (*Tiered[K], error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("tiercache: tiered cache needs at least one stage")
	}
	for i, st := range stages {
		if st == nil {
			return nil, fmt.Errorf("tiercache: tiered stage %d is nil", i)
		}
	}
	cp := make([]Cache[K], len(stages))
	copy(cp, stages)
	return &Tiered[K]{stages: cp}, nil
}

// Stages returns the number of stages in the pipeline.
func (t *Tiered[K]) Stages() int { return len(t.stages) }

func (t *Tiered[K]) Lookup(key K) (any, error) {
	return t.lookupMatch(key, func(any) bool { return true })
}

// lookupMatch walks the stages in order. A value failing match does not
// short-circuit: it is kept as a fallback and the next stage is tried, so
// a wrong-typed entry in a hot tier cannot shadow the right-typed entry in
// a colder one. If no stage matches, the fallback (if any) is returned for
// the caller to classify; otherwise an expiry beats plain absence.
func (t *Tiered[K]) lookupMatch(key K, match func(any) bool) (any, error) {
	var (
		fallback     any
		haveFallback bool
		expErr       error
	)
	for _, st := range t.stages {
		v, err := lookupFor(st, key, match)
		if err != nil {
			var exp *ExpiredKeyError[K]
			if expErr == nil && errors.As(err, &exp) {
				expErr = err
			}
			continue
		}
		if match(v) {
			return v, nil
		}
		if !haveFallback {
			fallback, haveFallback = v, true
		}
	}
	if haveFallback {
		return fallback, nil
	}
	if expErr != nil {
		return nil, expErr
	}
	return nil, &MissingKeyError[K]{Key: key}
}

// Set writes to every stage (fan-out write).
func (t *Tiered[K]) Set(key K, value any) {
	for _, st := range t.stages {
		st.Set(key, value)
	}
}

func (t *Tiered[K]) Remove(key K) {
	for _, st := range t.stages {
		st.Remove(key)
	}
}

func (t *Tiered[K]) Contains(key K) bool {
	for _, st := range t.stages {
		if st.Contains(key) {
			return true
		}
	}
	return false
}

// Require delegates to every stage and surfaces the union of their
// missing-key reports, deduplicated, in first-seen order.
func (t *Tiered[K]) Require(keys ...K) error {
	seen := make(map[K]struct{})
	var missing []K
	for _, st := range t.stages {
		err := st.Require(keys...)
		if err == nil {
			continue
		}
		var mk *MissingKeysError[K]
		if !errors.As(err, &mk) {
			return err
		}
		for _, k := range mk.Keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError[K]{Keys: missing}
	}
	return nil
}

// Snapshot returns the first stage's non-empty snapshot. This is the
// deliberate first-match-wins policy, not a union across stages.
func (t *Tiered[K]) Snapshot() map[K]any {
	return t.snapshotMatch(func(any) bool { return true })
}

func (t *Tiered[K]) snapshotMatch(match func(any) bool) map[K]any {
	for _, st := range t.stages {
		var snap map[K]any
		if m, ok := st.(matchSnapshot[K]); ok {
			snap = m.snapshotMatch(match)
		} else {
			snap = st.Snapshot()
		}
		out := make(map[K]any, len(snap))
		for k, v := range snap {
			if match(v) {
				out[k] = v
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return map[K]any{}
}

func (t *Tiered[K]) Len() int {
	return len(t.Snapshot())
}
