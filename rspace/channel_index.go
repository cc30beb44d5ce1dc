// Package rspace gives the generic trie package a concrete, RSpace-shaped
// face: an index from channel hash to serialized datum bytes. It does not
// implement consume/produce/COMM — that tuple-space protocol sits above
// this package and is out of scope here — it only exercises the trie the
// way that protocol eventually would.
package rspace

import "github.com/guardbotmk3/rchain/trie"

// ChannelIndex is a trie keyed by a channel's own content address, holding
// the serialized bytes of whatever is currently produced on that channel.
// Callers own serialization of the datum/continuation payload; the index
// itself is opaque to it, exactly like the underlying trie is opaque to V.
type ChannelIndex struct {
	t *trie.Trie[trie.Hash, []byte]
}

// NewChannelIndex wraps store as a channel index. Call Initialize before
// the first Put or Get.
func NewChannelIndex(store trie.Store) *ChannelIndex {
	return &ChannelIndex{t: trie.New[trie.Hash, []byte](store, trie.HashCodec(), trie.BytesCodec())}
}

// Initialize establishes an empty index and returns its root hash.
func (c *ChannelIndex) Initialize() (trie.Hash, error) {
	return c.t.Initialize()
}

// Put stores datum under channel, the channel's own content address.
func (c *ChannelIndex) Put(channel trie.Hash, datum []byte) error {
	return c.t.Insert(channel, datum)
}

// Get returns the datum bytes last put under channel, if any.
func (c *ChannelIndex) Get(channel trie.Hash) ([]byte, bool, error) {
	return c.t.Lookup(channel)
}

// Root returns the index's current working root hash, e.g. to record a
// checkpoint for later recovery.
func (c *ChannelIndex) Root() trie.Hash {
	return c.t.Store().Root().Peek()
}
