package trie

import (
	"encoding/binary"
	"fmt"
)

const (
	leafTag     byte = 0x00
	internalTag byte = 0x01
)

// Node is the two-variant algebra of the trie: every node is either an
// InternalNode holding a PointerBlock, or a LeafNode holding an encoded
// key/value pair. There is no shared base implementation and no virtual
// dispatch beyond a Go type switch.
type Node interface {
	tag() byte
}

// InternalNode fans a path out across up to 256 children, one per byte
// value, addressed by PointerBlock.
type InternalNode struct {
	Children PointerBlock
}

func (*InternalNode) tag() byte { return internalTag }

// LeafNode is a terminal trie entry. KeyBytes and ValBytes are the already
// encoded forms produced by the caller's key/value codecs; the trie never
// inspects their structure, only compares and hashes them.
type LeafNode struct {
	KeyBytes []byte
	ValBytes []byte
}

func (*LeafNode) tag() byte { return leafTag }

// sameEntry reports whether two leaves encode the same key and value.
func sameEntry(a, b *LeafNode) bool {
	return bytesEqual(a.KeyBytes, b.KeyBytes) && bytesEqual(a.ValBytes, b.ValBytes)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EncodeNode produces the canonical bytes of a node. A leaf encodes as
// (tag=leaf, length-prefixed key, length-prefixed value); an internal node
// encodes as (tag=node, 256 fixed-width optional 32-byte hashes). Field
// order and slot width are fixed, so structurally equal nodes always
// produce identical bytes.
func EncodeNode(n Node) []byte {
	switch v := n.(type) {
	case *LeafNode:
		buf := make([]byte, 0, 1+4+len(v.KeyBytes)+4+len(v.ValBytes))
		buf = append(buf, leafTag)
		buf = appendLengthPrefixed(buf, v.KeyBytes)
		buf = appendLengthPrefixed(buf, v.ValBytes)
		return buf
	case *InternalNode:
		buf := make([]byte, 1, 1+PointerBlockSize*(1+32))
		buf[0] = internalTag
		for i := 0; i < PointerBlockSize; i++ {
			h, ok := v.Children.Get(byte(i))
			if ok {
				buf = append(buf, 1)
				buf = append(buf, h[:]...)
			} else {
				buf = append(buf, 0)
				buf = append(buf, ZeroHash[:]...)
			}
		}
		return buf
	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

// HashNode returns hash(encode(node)); the node's content address.
func HashNode(n Node) Hash {
	return hashBytes(EncodeNode(n))
}

// DecodeNode is the inverse of EncodeNode. It is not on the insert/lookup
// hot path — those operate on nodes already materialized by the store —
// but is required to recover a trie from its raw store bytes.
func DecodeNode(b []byte) (Node, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("trie: cannot decode empty node encoding")
	}

	switch b[0] {
	case leafTag:
		rest := b[1:]
		key, rest, err := readLengthPrefixed(rest)
		if err != nil {
			return nil, fmt.Errorf("trie: decoding leaf key: %w", err)
		}
		val, rest, err := readLengthPrefixed(rest)
		if err != nil {
			return nil, fmt.Errorf("trie: decoding leaf value: %w", err)
		}
		if len(rest) != 0 {
			return nil, fmt.Errorf("trie: %d trailing bytes after leaf encoding", len(rest))
		}
		return &LeafNode{KeyBytes: key, ValBytes: val}, nil

	case internalTag:
		rest := b[1:]
		const slotWidth = 1 + 32
		want := PointerBlockSize * slotWidth
		if len(rest) != want {
			return nil, fmt.Errorf("trie: internal node encoding has %d bytes, want %d", len(rest), want)
		}

		pb := EmptyPointerBlock()
		for i := 0; i < PointerBlockSize; i++ {
			off := i * slotWidth
			present := rest[off]
			if present == 0 {
				continue
			}
			var h Hash
			copy(h[:], rest[off+1:off+slotWidth])
			pb = pb.Updated(PointerUpdate{Index: byte(i), Hash: h})
		}
		return &InternalNode{Children: pb}, nil

	default:
		return nil, fmt.Errorf("trie: unknown node tag %#x", b[0])
	}
}

func appendLengthPrefixed(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}

func readLengthPrefixed(b []byte) (data, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("truncated length prefix")
	}
	n := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	if uint64(len(b)) < uint64(n) {
		return nil, nil, fmt.Errorf("truncated payload: want %d bytes, have %d", n, len(b))
	}
	return b[:n], b[n:], nil
}
