package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestLevelDBStore(t *testing.T) *LevelDBStore {
	t.Helper()
	s, err := OpenInMemoryLevelDBStore()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestLevelDBStorePutThenGetRoundTrips(t *testing.T) {
	s := openTestLevelDBStore(t)
	leaf := &LeafNode{KeyBytes: []byte{1, 2, 3}, ValBytes: []byte("v")}
	h := HashNode(leaf)

	txn := s.CreateTxnWrite()
	_, err := WithTxn(txn, func(tx Txn) (struct{}, error) {
		return struct{}{}, s.Put(tx, h, leaf)
	})
	require.NoError(t, err)

	rtxn := s.CreateTxnRead()
	got, ok, err := s.Get(rtxn, h)
	require.NoError(t, err)
	require.True(t, ok)
	_ = rtxn.release(nil)

	gotLeaf, ok := got.(*LeafNode)
	require.True(t, ok)
	require.Equal(t, leaf.KeyBytes, gotLeaf.KeyBytes)
}

func TestLevelDBStoreDiscardedWriteNeverApplies(t *testing.T) {
	s := openTestLevelDBStore(t)
	leaf := &LeafNode{KeyBytes: []byte{4}, ValBytes: []byte("v")}
	h := HashNode(leaf)

	txn := s.CreateTxnWrite()
	require.NoError(t, s.Put(txn, h, leaf))
	require.NoError(t, txn.release(&LookupError{Hash: h}))

	rtxn := s.CreateTxnRead()
	_, ok, err := s.Get(rtxn, h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLevelDBStoreGetMissingHashReturnsNotFound(t *testing.T) {
	s := openTestLevelDBStore(t)
	txn := s.CreateTxnRead()
	_, ok, err := s.Get(txn, hashBytes([]byte("missing")))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLevelDBStoreRootCellStartsAtZeroHash(t *testing.T) {
	s := openTestLevelDBStore(t)
	require.Equal(t, ZeroHash, s.Root().Peek())
}

func TestLevelDBStoreRootSurvivesReopenOfSameFile(t *testing.T) {
	dir := t.TempDir()

	s1, err := OpenLevelDBStore(dir)
	require.NoError(t, err)

	tr := New[uint32, string](s1, FixedUint32Codec(), StringCodec())
	_, err = tr.Initialize()
	require.NoError(t, err)
	require.NoError(t, tr.Insert(1, "one"))

	wantRoot := s1.Root().Peek()
	require.NoError(t, s1.Close())

	s2, err := OpenLevelDBStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s2.Close()) })

	require.Equal(t, wantRoot, s2.Root().Peek())

	tr2 := New[uint32, string](s2, FixedUint32Codec(), StringCodec())
	v, found, err := tr2.Lookup(1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "one", v)
}
