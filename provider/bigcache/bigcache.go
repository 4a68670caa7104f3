// Package bigcache adapts allegro/bigcache to the tiercache.Cache
// contract so it can serve as a Tiered pipeline stage. BigCache stores raw
// bytes, so values pass through a codec.Codec[V]; entries age out with the
// cache-wide LifeWindow rather than a per-entry TTL.
package bigcache

import (
	"errors"
	"fmt"
	"time"

	bc "github.com/allegro/bigcache/v3"
	"github.com/unkn0wn-root/tiercache"
	"github.com/unkn0wn-root/tiercache/codec"
)

type Stage[V any] struct {
	c     *bc.BigCache
	codec codec.Codec[V]
	log   tiercache.Logger
}

var _ tiercache.Cache[string] = (*Stage[string])(nil)

type Config struct {
	LifeWindow         time.Duration // how long entries stay alive; bigcache's global TTL
	CleanWindow        time.Duration // interval between expired-entry sweeps; 0 = default
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited

	Logger tiercache.Logger // if nil, logging is disabled
}

func New[V any](cfg Config, cd codec.Codec[V]) (*Stage[V], error) {
	if cd == nil {
		return nil, fmt.Errorf("bigcache: codec is required")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = tiercache.NopLogger{}
	}
	return &Stage[V]{c: c, codec: cd, log: log}, nil
}

func (s *Stage[V]) Lookup(key string) (any, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, &tiercache.MissingKeyError[string]{Key: key}
	}
	if err != nil {
		return nil, err
	}
	v, err := s.codec.Decode(b)
	if err != nil {
		// self-heal: a payload we cannot decode is useless to every
		// future read too.
		_ = s.c.Delete(key)
		return nil, &tiercache.MissingKeyError[string]{Key: key}
	}
	return v, nil
}

// Set drops values that are not V or fail to encode; the Cache contract
// has no error channel on writes, so rejects are logged instead.
func (s *Stage[V]) Set(key string, value any) {
	v, ok := value.(V)
	if !ok {
		s.log.Warn("bigcache stage dropped non-codec value", tiercache.Fields{"key": key})
		return
	}
	b, err := s.codec.Encode(v)
	if err != nil {
		s.log.Warn("bigcache stage encode failed", tiercache.Fields{"key": key, "err": err})
		return
	}
	if err := s.c.Set(key, b); err != nil {
		s.log.Warn("bigcache stage set rejected", tiercache.Fields{"key": key, "err": err})
	}
}

func (s *Stage[V]) Remove(key string) {
	err := s.c.Delete(key)
	if err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		s.log.Warn("bigcache stage delete failed", tiercache.Fields{"key": key, "err": err})
	}
}

func (s *Stage[V]) Contains(key string) bool {
	_, err := s.c.Get(key)
	return err == nil
}

func (s *Stage[V]) Require(keys ...string) error {
	seen := make(map[string]struct{}, len(keys))
	var missing []string
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if !s.Contains(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &tiercache.MissingKeysError[string]{Keys: missing}
	}
	return nil
}

// Snapshot decodes every live entry via bigcache's iterator. Entries whose
// payload no longer decodes are skipped.
func (s *Stage[V]) Snapshot() map[string]any {
	out := make(map[string]any, s.c.Len())
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue
		}
		v, err := s.codec.Decode(e.Value())
		if err != nil {
			continue
		}
		out[e.Key()] = v
	}
	return out
}

func (s *Stage[V]) Len() int {
	return s.c.Len()
}

// Close releases bigcache's shards and background sweeper.
func (s *Stage[V]) Close() error {
	return s.c.Close()
}
