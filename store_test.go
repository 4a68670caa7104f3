package tiercache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// timeout bounds tests that would otherwise hang on a deadlock.
func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(5 * time.Second)
}

type user struct {
	ID   string
	Name string
}

func TestStoreRoundTrip(t *testing.T) {
	s := New[string](Options[string]{})

	v := user{ID: "1", Name: "Ada"}
	s.Set("u:1", v)

	got, ok := Get[user](s, "u:1")
	if !ok || got != v {
		t.Fatalf("Get after Set: ok=%v got=%v", ok, got)
	}
	if !s.Contains("u:1") {
		t.Fatalf("Contains should be true after Set")
	}

	// Overwrite is unconditional.
	v2 := user{ID: "1", Name: "Grace"}
	s.Set("u:1", v2)
	if got, _ := Get[user](s, "u:1"); got != v2 {
		t.Fatalf("Get after overwrite: got=%v want=%v", got, v2)
	}
}

func TestStoreInitialValues(t *testing.T) {
	s := New[string](Options[string]{
		InitialValues: map[string]any{"a": 1, "b": "two"},
	})
	if s.Len() != 2 {
		t.Fatalf("seeded Len=%d want 2", s.Len())
	}
	if got, ok := Get[int](s, "a"); !ok || got != 1 {
		t.Fatalf("seeded int: ok=%v got=%v", ok, got)
	}
	if got, ok := Get[string](s, "b"); !ok || got != "two" {
		t.Fatalf("seeded string: ok=%v got=%v", ok, got)
	}
}

func TestStoreGetMissAndWrongType(t *testing.T) {
	s := New[string](Options[string]{})
	s.Set("n", 42)

	if _, ok := Get[int](s, "absent"); ok {
		t.Fatalf("Get absent key should miss")
	}
	// Present but wrong type is also a miss for Get (not for Resolve).
	if _, ok := Get[string](s, "n"); ok {
		t.Fatalf("Get with wrong type should miss")
	}
}

func TestStoreResolveTaxonomy(t *testing.T) {
	s := New[string](Options[string]{})
	s.Set("n", 42)

	t.Run("hit", func(t *testing.T) {
		got, err := Resolve[int](s, "n")
		if err != nil || got != 42 {
			t.Fatalf("Resolve hit: got=%v err=%v", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Resolve[int](s, "absent")
		var miss *MissingKeyError[string]
		if !errors.As(err, &miss) || miss.Key != "absent" {
			t.Fatalf("expected MissingKeyError for absent, got %T: %v", err, err)
		}
	})

	t.Run("type_mismatch", func(t *testing.T) {
		_, err := Resolve[string](s, "n")
		var mism *TypeMismatchError[string]
		if !errors.As(err, &mism) {
			t.Fatalf("expected TypeMismatchError, got %T: %v", err, err)
		}
		if mism.Expected != "string" || mism.Actual != "int" {
			t.Fatalf("type info: expected=%q actual=%q", mism.Expected, mism.Actual)
		}
	})

	t.Run("nil_value", func(t *testing.T) {
		s.Set("null", nil)
		_, err := Resolve[int](s, "null")
		var mism *TypeMismatchError[string]
		if !errors.As(err, &mism) {
			t.Fatalf("nil value should be a mismatch for int, got %T: %v", err, err)
		}
	})
}

func TestStoreRemoveIdempotent(t *testing.T) {
	s := New[string](Options[string]{})
	s.Set("k", 1)

	s.Remove("k")
	if s.Contains("k") || s.Len() != 0 {
		t.Fatalf("key should be gone after Remove")
	}
	// Second removal and removal of a never-present key are no-ops.
	s.Remove("k")
	s.Remove("never")
	if s.Len() != 0 {
		t.Fatalf("store should stay empty, Len=%d", s.Len())
	}
}

func TestStoreRequire(t *testing.T) {
	s := New[string](Options[string]{})
	s.Set("a", 1)

	if err := s.Require("a"); err != nil {
		t.Fatalf("Require present key: %v", err)
	}

	err := s.Require("a", "b", "c", "b")
	var mk *MissingKeysError[string]
	if !errors.As(err, &mk) {
		t.Fatalf("expected MissingKeysError, got %T: %v", err, err)
	}
	if len(mk.Keys) != 2 || mk.Keys[0] != "b" || mk.Keys[1] != "c" {
		t.Fatalf("missing set should be exactly [b c], got %v", mk.Keys)
	}
}

func TestStoreSnapshotAndValuesOf(t *testing.T) {
	s := New[string](Options[string]{})
	s.Set("i1", 1)
	s.Set("i2", 2)
	s.Set("s1", "one")

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Snapshot size=%d want 3", len(snap))
	}
	// Snapshot is a copy; mutating it must not touch the store.
	delete(snap, "i1")
	if !s.Contains("i1") {
		t.Fatalf("mutating snapshot leaked into store")
	}

	ints := ValuesOf[int](s)
	if len(ints) != 2 || ints["i1"] != 1 || ints["i2"] != 2 {
		t.Fatalf("ValuesOf[int]: %v", ints)
	}
	strs := ValuesOf[string](s)
	if len(strs) != 1 || strs["s1"] != "one" {
		t.Fatalf("ValuesOf[string]: %v", strs)
	}
}

// recordingHooks captures fired events; safe for concurrent use.
type recordingHooks struct {
	mu      sync.Mutex
	set     []string
	removed []string
	evicted map[string]EvictReason
}

func newRecordingHooks() *recordingHooks {
	return &recordingHooks{evicted: make(map[string]EvictReason)}
}

func (h *recordingHooks) EntrySet(key string) {
	h.mu.Lock()
	h.set = append(h.set, key)
	h.mu.Unlock()
}

func (h *recordingHooks) EntryRemoved(key string) {
	h.mu.Lock()
	h.removed = append(h.removed, key)
	h.mu.Unlock()
}

func (h *recordingHooks) EntryEvicted(key string, reason EvictReason) {
	h.mu.Lock()
	h.evicted[key] = reason
	h.mu.Unlock()
}

func TestStoreHooksFire(t *testing.T) {
	h := newRecordingHooks()
	s := New[string](Options[string]{Hooks: h})

	s.Set("a", 1)
	s.Remove("a")
	s.Remove("a") // absent: no event

	if len(h.set) != 1 || h.set[0] != "a" {
		t.Fatalf("set events: %v", h.set)
	}
	if len(h.removed) != 1 || h.removed[0] != "a" {
		t.Fatalf("removed events: %v", h.removed)
	}
}

// reentrantHooks calls straight back into the cache from the callback.
// This must not deadlock: hooks fire only after the lock is released.
type reentrantHooks struct {
	c Cache[string]
}

func (h *reentrantHooks) EntrySet(key string)              { h.c.Contains(key) }
func (h *reentrantHooks) EntryRemoved(key string)          { _, _ = h.c.Lookup(key) }
func (h *reentrantHooks) EntryEvicted(key string, _ EvictReason) { h.c.Contains(key) }

func TestStoreHookReentrancy(t *testing.T) {
	h := &reentrantHooks{}
	s := New[string](Options[string]{Hooks: h})
	h.c = s

	done := make(chan struct{})
	go func() {
		s.Set("a", 1)
		s.Remove("a")
		close(done)
	}()
	select {
	case <-done:
	case <-timeout(t):
		t.Fatalf("reentrant hook deadlocked")
	}
}

func TestStoreConcurrentStress(t *testing.T) {
	s := New[int](Options[int]{})

	const (
		workers = 8
		rounds  = 2000
		keys    = 32
	)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				k := (w + i) % keys
				switch i % 5 {
				case 0:
					s.Set(k, fmt.Sprintf("w%d-%d", w, i))
				case 1:
					Get[string](s, k)
				case 2:
					// Intentional wrong type: must fail cleanly, never corrupt.
					Resolve[int](s, k)
				case 3:
					s.Contains(k)
				case 4:
					s.Remove(k)
				}
			}
		}(w)
	}
	wg.Wait()

	// Internal state must still be consistent: every surviving entry is a
	// string some worker wrote, and Len matches Snapshot.
	snap := s.Snapshot()
	if len(snap) != s.Len() {
		t.Fatalf("Len=%d disagrees with snapshot size=%d", s.Len(), len(snap))
	}
	for k, v := range snap {
		if _, ok := v.(string); !ok {
			t.Fatalf("corrupt entry %v holds %T", k, v)
		}
	}
}
