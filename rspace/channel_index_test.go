package rspace

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/guardbotmk3/rchain/trie"
)

func sampleChannelHash(name string) trie.Hash {
	return blake2b.Sum256([]byte(name))
}

func TestChannelIndexPutThenGetRoundTrips(t *testing.T) {
	idx := NewChannelIndex(trie.NewMemStore())
	_, err := idx.Initialize()
	require.NoError(t, err)

	ch := sampleChannelHash("@stdout")
	require.NoError(t, idx.Put(ch, []byte("hello")))

	got, found, err := idx.Get(ch)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("hello"), got)
}

func TestChannelIndexGetOnAbsentChannelMisses(t *testing.T) {
	idx := NewChannelIndex(trie.NewMemStore())
	_, err := idx.Initialize()
	require.NoError(t, err)

	_, found, err := idx.Get(sampleChannelHash("@nobody"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestChannelIndexRootAdvancesOnPut(t *testing.T) {
	idx := NewChannelIndex(trie.NewMemStore())
	_, err := idx.Initialize()
	require.NoError(t, err)

	before := idx.Root()
	require.NoError(t, idx.Put(sampleChannelHash("@a"), []byte("x")))
	require.NotEqual(t, before, idx.Root())
}
