package trie

import (
	"encoding/binary"
	"fmt"
)

// Codec is a total, deterministic binary encoder/decoder for a single type.
// The trie is generic over any (K, V) pair that each carries a Codec,
// realized with compile-time type parameters rather than inheritance.
// Encode must be total: it must never fail for a value of T. Decode exists
// for recovery, not for the insert/lookup descent path, which only ever
// compares and hashes already-encoded bytes.
type Codec[T any] interface {
	Encode(v T) []byte
	Decode(b []byte) (T, error)
}

type bytesCodec struct{}

func (bytesCodec) Encode(v []byte) []byte { return v }
func (bytesCodec) Decode(b []byte) ([]byte, error) { return b, nil }

// BytesCodec is the identity codec: keys or values that are already raw
// bytes of a fixed width pass through unchanged.
func BytesCodec() Codec[[]byte] { return bytesCodec{} }

type stringCodec struct{}

func (stringCodec) Encode(v string) []byte         { return []byte(v) }
func (stringCodec) Decode(b []byte) (string, error) { return string(b), nil }

// StringCodec encodes a string as its UTF-8 bytes. Only suitable for values
// (strings are not fixed-width, and all keys in a trie must share one
// encoded length).
func StringCodec() Codec[string] { return stringCodec{} }

type fixedUint32Codec struct{}

func (fixedUint32Codec) Encode(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func (fixedUint32Codec) Decode(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("trie: fixed uint32 codec expects 4 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

// FixedUint32Codec encodes a uint32 key or value as 4 big-endian bytes.
func FixedUint32Codec() Codec[uint32] { return fixedUint32Codec{} }

type fixedUint64Codec struct{}

func (fixedUint64Codec) Encode(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (fixedUint64Codec) Decode(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("trie: fixed uint64 codec expects 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// FixedUint64Codec encodes a uint64 key or value as 8 big-endian bytes.
func FixedUint64Codec() Codec[uint64] { return fixedUint64Codec{} }

type hashCodec struct{}

func (hashCodec) Encode(v Hash) []byte { return v[:] }

func (hashCodec) Decode(b []byte) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return h, fmt.Errorf("trie: hash codec expects %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashCodec encodes a 32-byte Hash verbatim. Useful for RSpace-style tries
// keyed by a channel or continuation's own content address.
func HashCodec() Codec[Hash] { return hashCodec{} }
