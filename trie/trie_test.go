package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTrie(t *testing.T) *Trie[uint32, string] {
	t.Helper()
	store := NewMemStore()
	tr := New[uint32, string](store, FixedUint32Codec(), StringCodec())
	_, err := tr.Initialize()
	require.NoError(t, err)
	return tr
}

func TestLookupOnEmptyTrieMisses(t *testing.T) {
	tr := newTestTrie(t)
	_, found, err := tr.Lookup(42)
	require.NoError(t, err)
	require.False(t, found)
}

func TestInsertThenLookupRoundTrips(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(7, "seven"))

	v, found, err := tr.Lookup(7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "seven", v)
}

func TestLookupForAbsentKeySharingAPrefixMisses(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(0x00000001, "a"))

	_, found, err := tr.Lookup(0x00000002)
	require.NoError(t, err)
	require.False(t, found)
}

func TestReinsertingSameEntryIsIdempotent(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(9, "nine"))
	before := tr.Store().Root().Peek()

	require.NoError(t, tr.Insert(9, "nine"))
	after := tr.Store().Root().Peek()

	require.Equal(t, before, after, "reinserting an identical entry must not change the root")
}

func TestReinsertingSameKeyWithDifferentValueIsUnhandled(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(9, "nine"))
	before := tr.Store().Root().Peek()

	err := tr.Insert(9, "nueve")
	require.Error(t, err)

	var insertErr *InsertError
	require.ErrorAs(t, err, &insertErr)
	require.Equal(t, ErrUnhandledReinsert, insertErr.Reason)

	after := tr.Store().Root().Peek()
	require.Equal(t, before, after, "a failed insert must restore the working root")
}

func TestFailedInsertLeavesCellUnlockedForNextWriter(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(1, "one"))

	err := tr.Insert(1, "uno")
	require.Error(t, err)

	// If Insert failed to restore/release the cell, this would deadlock.
	require.NoError(t, tr.Insert(2, "two"))

	v, found, err := tr.Lookup(2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "two", v)
}

func TestInsertionOrderDoesNotAffectFinalRoot(t *testing.T) {
	trA := newTestTrie(t)
	require.NoError(t, trA.Insert(1, "one"))
	require.NoError(t, trA.Insert(2, "two"))
	require.NoError(t, trA.Insert(3, "three"))

	trB := newTestTrie(t)
	require.NoError(t, trB.Insert(3, "three"))
	require.NoError(t, trB.Insert(1, "one"))
	require.NoError(t, trB.Insert(2, "two"))

	require.Equal(t, trA.Store().Root().Peek(), trB.Store().Root().Peek())
}

func TestManyKeysAllRemainReachable(t *testing.T) {
	tr := newTestTrie(t)
	keys := []uint32{0, 1, 2, 0x0A0B0C0D, 0xFFFFFFFF, 0x7F7F7F7F, 256, 65536, 1000000}

	for i, k := range keys {
		require.NoError(t, tr.Insert(k, string(rune('a'+i))))
	}

	for i, k := range keys {
		v, found, err := tr.Lookup(k)
		require.NoError(t, err)
		require.True(t, found, "key %d", k)
		require.Equal(t, string(rune('a'+i)), v)
	}
}

func TestSplitAtSharedPrefixCreatesDivergingPaths(t *testing.T) {
	tr := newTestTrie(t)
	// These two keys share their first three big-endian bytes and diverge
	// only in the last byte, exercising the split-with-synthesized-empty-
	// nodes path at depth 3.
	require.NoError(t, tr.Insert(0x01020304, "first"))
	require.NoError(t, tr.Insert(0x010203FF, "second"))

	v1, found, err := tr.Lookup(0x01020304)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "first", v1)

	v2, found, err := tr.Lookup(0x010203FF)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", v2)
}

func TestDivergingFirstByteFillsDistinctRootSlots(t *testing.T) {
	tr := newTestTrie(t)
	require.NoError(t, tr.Insert(0x01000000, "a"))
	require.NoError(t, tr.Insert(0xFF000000, "b"))

	v, found, err := tr.Lookup(0x01000000)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", v)

	v, found, err = tr.Lookup(0xFF000000)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", v)
}

func TestSplitAtFinalByteOfKey(t *testing.T) {
	tr := newTestTrie(t)
	// Differ only in the last of four bytes: shared prefix length is
	// len(key)-1, exercising the depth-(L-1) split boundary.
	require.NoError(t, tr.Insert(0x00000001, "a"))
	require.NoError(t, tr.Insert(0x00000002, "b"))

	v, found, err := tr.Lookup(0x00000001)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", v)

	v, found, err = tr.Lookup(0x00000002)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", v)
}

func TestContentAddressingIsStableAcrossEquivalentTries(t *testing.T) {
	build := func() Hash {
		tr := newTestTrie(t)
		require.NoError(t, tr.Insert(10, "ten"))
		require.NoError(t, tr.Insert(20, "twenty"))
		return tr.Store().Root().Peek()
	}
	require.Equal(t, build(), build())
}

func TestInsertPublishesNewRootOnSuccess(t *testing.T) {
	tr := newTestTrie(t)
	before := tr.Store().Root().Peek()
	require.NoError(t, tr.Insert(5, "five"))
	after := tr.Store().Root().Peek()
	require.NotEqual(t, before, after)
}

func TestHashKeyedTrieUsesHashCodec(t *testing.T) {
	store := NewMemStore()
	tr := New[Hash, string](store, HashCodec(), StringCodec())
	_, err := tr.Initialize()
	require.NoError(t, err)

	channel := hashBytes([]byte("@rspace-channel"))
	require.NoError(t, tr.Insert(channel, "datum"))

	v, found, err := tr.Lookup(channel)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "datum", v)
}
