package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unkn0wn-root/tiercache"
	"github.com/unkn0wn-root/tiercache/codec"
)

type profile struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func newFile(t *testing.T) *File[profile] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.snap")
	f, err := NewFile[profile](path, codec.JSON[profile]{}, Options{})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestNewFileValidation(t *testing.T) {
	if _, err := NewFile[profile]("", codec.JSON[profile]{}, Options{}); err == nil {
		t.Fatalf("empty path should be rejected")
	}
	if _, err := NewFile[profile]("x.snap", nil, Options{}); err == nil {
		t.Fatalf("nil codec should be rejected")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFile(t)

	src := tiercache.New[string](tiercache.Options[string]{})
	src.Set("a", profile{Name: "Ada", Score: 10})
	src.Set("b", profile{Name: "Bob", Score: 3})
	src.Set("other", 42) // not a profile; skipped by Save

	if err := f.Save(src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	seed, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(seed) != 2 {
		t.Fatalf("snapshot should hold the 2 profile entries, got %v", seed)
	}

	// Rehydrate a fresh cache uniformly through InitialValues.
	dst := tiercache.New[string](tiercache.Options[string]{InitialValues: seed})
	got, err := tiercache.Resolve[profile](dst, "a")
	if err != nil || got.Name != "Ada" || got.Score != 10 {
		t.Fatalf("rehydrated entry: got=%+v err=%v", got, err)
	}
}

// Identical cache contents produce identical snapshot bytes (keys are
// written sorted).
func TestSaveDeterministic(t *testing.T) {
	f := newFile(t)

	c := tiercache.New[string](tiercache.Options[string]{})
	c.Set("z", profile{Name: "Z"})
	c.Set("a", profile{Name: "A"})

	if err := f.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	if err := f.Save(c); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("snapshots of identical contents differ")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	f := newFile(t)
	seed, err := f.Load()
	if err != nil {
		t.Fatalf("Load of missing snapshot: %v", err)
	}
	if len(seed) != 0 {
		t.Fatalf("missing snapshot should load empty, got %v", seed)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	f := newFile(t)
	if err := os.WriteFile(f.Path(), []byte("definitely-not-a-snapshot"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := f.Load(); err == nil {
		t.Fatalf("corrupt snapshot should fail to load")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	f := newFile(t)

	c := tiercache.New[string](tiercache.Options[string]{})
	c.Set("a", profile{Name: "A"})
	if err := f.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := f.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(f.Path()); !os.IsNotExist(err) {
		t.Fatalf("snapshot file should be gone")
	}
	// Removing a missing snapshot is a no-op.
	if err := f.Remove(); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}
