package trie

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// levelDBRootMetaKey is a reserved leveldb key holding the last durably
// persisted working root hash, mirroring BadgerStore's rootMetaKey.
var levelDBRootMetaKey = []byte("trie:root")

// LevelDBStore is a second production Store, backed by goleveldb instead
// of badger. Grounded on the teacher's own src/mpt/db.go, which wraps a
// *leveldb.DB behind a Put/Get/Delete Database type, and on
// Fantom-foundation-Carmen's backend/index/ldb/transactleveldb.go, which
// shows goleveldb does carry a real read/write transaction handle —
// db.OpenTransaction() — with the same Get/Put-then-Commit-or-Discard
// shape badger's *badger.Txn gives BadgerStore. Only one write transaction
// may be open at a time (goleveldb's own limitation), which is no
// constraint beyond what the working-root cell already enforces.
type LevelDBStore struct {
	db   *leveldb.DB
	root *RootCell
}

// OpenLevelDBStore opens (or creates) a leveldb database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, &StoreIOError{Err: fmt.Errorf("opening leveldb database: %w", err)}
	}
	return newLevelDBStore(db)
}

// OpenInMemoryLevelDBStore opens an ephemeral, non-persistent leveldb
// database backed by an in-memory storage.Storage.
func OpenInMemoryLevelDBStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, &StoreIOError{Err: fmt.Errorf("opening in-memory leveldb database: %w", err)}
	}
	return newLevelDBStore(db)
}

func newLevelDBStore(db *leveldb.DB) (*LevelDBStore, error) {
	root, err := readLevelDBPersistedRoot(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &LevelDBStore{db: db, root: NewRootCell(root)}, nil
}

func readLevelDBPersistedRoot(db *leveldb.DB) (Hash, error) {
	var h Hash
	val, err := db.Get(levelDBRootMetaKey, nil)
	if err == errors.ErrNotFound {
		return h, nil
	}
	if err != nil {
		return h, &StoreIOError{Err: fmt.Errorf("reading persisted root: %w", err)}
	}
	copy(h[:], val)
	return h, nil
}

// Close releases the underlying leveldb database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func (s *LevelDBStore) Root() *RootCell { return s.root }

// levelDBTxn wraps either a real read/write *leveldb.Transaction (for
// writers) or a point-in-time *leveldb.Snapshot (for readers), plus
// whichever open error occurred acquiring either, surfaced on first use
// since CreateTxnRead/CreateTxnWrite cannot themselves return an error.
type levelDBTxn struct {
	tr       *leveldb.Transaction
	snapshot *leveldb.Snapshot
	err      error
}

func (s *LevelDBStore) CreateTxnRead() Txn {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return &levelDBTxn{err: &StoreIOError{Err: fmt.Errorf("snapshotting leveldb: %w", err)}}
	}
	return &levelDBTxn{snapshot: snap}
}

func (s *LevelDBStore) CreateTxnWrite() Txn {
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return &levelDBTxn{err: &StoreIOError{Err: fmt.Errorf("opening leveldb transaction: %w", err)}}
	}
	return &levelDBTxn{tr: tr}
}

func (t *levelDBTxn) release(bodyErr error) error {
	if t.snapshot != nil {
		t.snapshot.Release()
		return nil
	}
	if t.tr == nil {
		return nil // acquisition itself failed; nothing to release
	}
	if bodyErr != nil {
		t.tr.Discard()
		return nil
	}
	if err := t.tr.Commit(); err != nil {
		return &StoreIOError{Err: fmt.Errorf("committing leveldb transaction: %w", err)}
	}
	return nil
}

func (s *LevelDBStore) Get(txn Txn, h Hash) (Node, bool, error) {
	lt, ok := txn.(*levelDBTxn)
	if !ok {
		return nil, false, fmt.Errorf("trie: leveldb store given foreign txn of type %T", txn)
	}
	if lt.err != nil {
		return nil, false, lt.err
	}

	val, err := lt.get(h[:])
	if err == errors.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StoreIOError{Err: fmt.Errorf("getting node %s: %w", h, err)}
	}

	node, err := DecodeNode(val)
	if err != nil {
		return nil, false, fmt.Errorf("trie: decoding node %s: %w", h, err)
	}
	return node, true, nil
}

func (t *levelDBTxn) get(key []byte) ([]byte, error) {
	if t.tr != nil {
		return t.tr.Get(key, nil)
	}
	return t.snapshot.Get(key, nil)
}

func (s *LevelDBStore) Put(txn Txn, h Hash, node Node) error {
	lt, ok := txn.(*levelDBTxn)
	if !ok {
		return fmt.Errorf("trie: leveldb store given foreign txn of type %T", txn)
	}
	if lt.err != nil {
		return lt.err
	}
	if lt.tr == nil {
		return &StoreIOError{Err: errReadOnlyTxn}
	}

	if err := lt.tr.Put(h[:], EncodeNode(node), nil); err != nil {
		return &StoreIOError{Err: fmt.Errorf("putting node %s: %w", h, err)}
	}
	return nil
}

// PersistRoot durably records h as the working root, within the same
// leveldb transaction as the node writes that produced it.
func (s *LevelDBStore) PersistRoot(txn Txn, h Hash) error {
	lt, ok := txn.(*levelDBTxn)
	if !ok {
		return fmt.Errorf("trie: leveldb store given foreign txn of type %T", txn)
	}
	if lt.err != nil {
		return lt.err
	}
	if lt.tr == nil {
		return &StoreIOError{Err: errReadOnlyTxn}
	}

	if err := lt.tr.Put(levelDBRootMetaKey, h[:], nil); err != nil {
		return &StoreIOError{Err: fmt.Errorf("persisting root: %w", err)}
	}
	return nil
}
