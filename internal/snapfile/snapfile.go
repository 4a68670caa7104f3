// Package snapfile frames cache snapshots for the persist layer.
//
// Layout:
//
//	magic(4) | ver(1) | n(u32 be)
//	keyLen(u16 be) | key(keyLen) | vlen(u32 be) | payload(vlen) * n
//
// Framing is strict: short buffers, bad magic, unknown versions and
// trailing bytes are all rejected as corrupt. A snapshot that fails to
// decode is worthless as a whole - there is no partial recovery.
package snapfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("snapfile: corrupt snapshot")
	magic4     = [...]byte{'T', 'C', 'S', 'N'}
)

// Entry is one key with its codec-encoded value.
type Entry struct {
	Key     string
	Payload []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames entries. Keys must be 1..65535 bytes.
func Encode(entries []Entry) ([]byte, error) {
	total := 4 + 1 + 4
	for _, e := range entries {
		if l := len(e.Key); l == 0 || l > 0xFFFF {
			return nil, fmt.Errorf("snapfile: invalid key length %d", l)
		}
		total += 2 + len(e.Key) + 4 + len(e.Payload)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(entries)))
	buf.Write(u4[:])

	for _, e := range entries {
		binary.BigEndian.PutUint16(u2[:], uint16(len(e.Key)))
		buf.Write(u2[:])
		buf.WriteString(e.Key)

		binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
		buf.Write(u4[:])
		buf.Write(e.Payload)
	}

	return buf.Bytes(), nil
}

// Decode parses a framed snapshot. Payload slices alias b; copy them if b
// is reused.
func Decode(b []byte) ([]Entry, error) {
	const hdr = 4 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}

	off := 5

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return nil, ErrCorrupt
	}

	// Do not trust n for preallocation; a bogus header must not allocate.
	var entries []Entry
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		klen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if klen <= 0 || klen > len(b)-off {
			return nil, ErrCorrupt
		}

		keyBytes := b[off : off+klen]
		off += klen

		if off+4 > len(b) {
			return nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return nil, ErrCorrupt
		}

		payload := b[off : off+vlen]
		off += vlen

		entries = append(entries, Entry{
			Key:     string(keyBytes),
			Payload: payload,
		})
	}

	if off != len(b) {
		return nil, ErrCorrupt
	}
	return entries, nil
}
