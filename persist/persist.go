// Package persist writes best-effort cache snapshots to disk and reads
// them back as seed maps for Options.InitialValues. There is no durability
// guarantee beyond the file write itself: Save replaces the previous
// snapshot atomically (write temp file, rename), and a snapshot that fails
// to decode is rejected as a whole.
package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/unkn0wn-root/tiercache"
	"github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/internal/snapfile"
)

// File snapshots string-keyed caches whose values are V, encoded with a
// pluggable codec. Entries of other dynamic types are skipped on Save.
type File[V any] struct {
	path  string
	codec codec.Codec[V]
	log   tiercache.Logger
}

// Options tune a File. Only the Logger is optional for now.
type Options struct {
	Logger tiercache.Logger // if nil, logging is disabled
}

func NewFile[V any](path string, c codec.Codec[V], opts Options) (*File[V], error) {
	if path == "" {
		return nil, fmt.Errorf("persist: path is required")
	}
	if c == nil {
		return nil, fmt.Errorf("persist: codec is required")
	}
	log := opts.Logger
	if log == nil {
		log = tiercache.NopLogger{}
	}
	return &File[V]{path: path, codec: c, log: log}, nil
}

// Path returns the snapshot location.
func (f *File[V]) Path() string { return f.path }

// Save snapshots every V-typed entry of c to the file. Keys are written in
// sorted order so identical cache contents produce identical files. Encode
// and I/O errors propagate unchanged; nothing is retried.
func (f *File[V]) Save(c tiercache.Cache[string]) error {
	vals := tiercache.ValuesOf[V](c)

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]snapfile.Entry, 0, len(keys))
	for _, k := range keys {
		payload, err := f.codec.Encode(vals[k])
		if err != nil {
			return fmt.Errorf("persist: encode %q: %w", k, err)
		}
		entries = append(entries, snapfile.Entry{Key: k, Payload: payload})
	}

	b, err := snapfile.Encode(entries)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	f.log.Debug("snapshot saved", tiercache.Fields{"path": f.path, "entries": len(entries)})
	return nil
}

// Load reads the snapshot back as a seed map for Options.InitialValues.
// A missing file is an empty snapshot, not an error; anything else
// (unreadable file, corrupt framing, undecodable payload) propagates.
func (f *File[V]) Load() (map[string]any, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries, err := snapfile.Decode(b)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(entries))
	for _, e := range entries {
		v, err := f.codec.Decode(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("persist: decode %q: %w", e.Key, err)
		}
		out[e.Key] = v
	}

	f.log.Debug("snapshot loaded", tiercache.Fields{"path": f.path, "entries": len(out)})
	return out, nil
}

// Remove deletes the snapshot file. Removing a snapshot that does not
// exist is a no-op.
func (f *File[V]) Remove() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
