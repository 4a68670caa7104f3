// Package codec defines how cache values are (de)serialized to bytes.
// Codecs are consumed by the persist snapshot layer and by byte-oriented
// pipeline stages such as provider/bigcache.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
