package trie

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/ChainSafe/log15"
)

var logger = log.New("pkg", "trie")

// rootMetaKey is a reserved badger key holding the last durably persisted
// working root hash. It lives in the same keyspace as node entries (keyed
// by their 32-byte hash) but cannot collide with one: it is 9 bytes long,
// shorter than any Hash, and badger matches keys on their full bytes.
var rootMetaKey = []byte("trie:root")

// BadgerStore is the production Store implementation. It backs onto a
// badger database, which gives the single-writer, snapshot-isolated
// transaction shape the core assumes: a write transaction sees a
// consistent view of the store and either commits all of its Puts or none
// of them. The working root hash is persisted under rootMetaKey in the
// same write transaction that writes the nodes it names, so a reopened
// store recovers the root that was actually committed, never a stale or
// torn one.
type BadgerStore struct {
	db   *badger.DB
	root *RootCell
}

// OpenBadgerStore opens (or creates) a badger database at path and wraps it
// as a Store. If the database already holds a persisted root, the working
// root cell starts there; otherwise it starts at the zero hash and callers
// must run Initialize before any Lookup or Insert.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &StoreIOError{Err: fmt.Errorf("opening badger database: %w", err)}
	}
	return newBadgerStore(db)
}

// OpenInMemoryBadgerStore opens an ephemeral, non-persistent badger
// database. Handy for tests that want the real transaction semantics
// without touching disk.
func OpenInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &StoreIOError{Err: fmt.Errorf("opening in-memory badger database: %w", err)}
	}
	return newBadgerStore(db)
}

func newBadgerStore(db *badger.DB) (*BadgerStore, error) {
	root, err := readPersistedRoot(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BadgerStore{db: db, root: NewRootCell(root)}, nil
}

func readPersistedRoot(db *badger.DB) (Hash, error) {
	var h Hash
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rootMetaKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			copy(h[:], val)
			return nil
		})
	})
	if err != nil {
		return Hash{}, &StoreIOError{Err: fmt.Errorf("reading persisted root: %w", err)}
	}
	return h, nil
}

// Close releases the underlying badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Root() *RootCell { return s.root }

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) release(err error) error {
	if err != nil {
		t.txn.Discard()
		return nil
	}
	if commitErr := t.txn.Commit(); commitErr != nil {
		return &StoreIOError{Err: fmt.Errorf("committing transaction: %w", commitErr)}
	}
	return nil
}

func (s *BadgerStore) CreateTxnRead() Txn {
	return &badgerTxn{txn: s.db.NewTransaction(false)}
}

func (s *BadgerStore) CreateTxnWrite() Txn {
	return &badgerTxn{txn: s.db.NewTransaction(true)}
}

func (s *BadgerStore) Get(txn Txn, h Hash) (Node, bool, error) {
	bt, ok := txn.(*badgerTxn)
	if !ok {
		return nil, false, fmt.Errorf("trie: badger store given foreign txn of type %T", txn)
	}

	item, err := bt.txn.Get(h[:])
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StoreIOError{Err: fmt.Errorf("getting node %s: %w", h, err)}
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, &StoreIOError{Err: fmt.Errorf("copying node %s: %w", h, err)}
	}

	node, err := DecodeNode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("trie: decoding node %s: %w", h, err)
	}
	return node, true, nil
}

func (s *BadgerStore) Put(txn Txn, h Hash, node Node) error {
	bt, ok := txn.(*badgerTxn)
	if !ok {
		return fmt.Errorf("trie: badger store given foreign txn of type %T", txn)
	}

	if err := bt.txn.Set(h[:], EncodeNode(node)); err != nil {
		return &StoreIOError{Err: fmt.Errorf("putting node %s: %w", h, err)}
	}
	return nil
}

// PersistRoot durably records h as the working root, within the same
// write transaction as the node writes that produced it, so the recorded
// root and the nodes reachable from it commit or abort together.
func (s *BadgerStore) PersistRoot(txn Txn, h Hash) error {
	bt, ok := txn.(*badgerTxn)
	if !ok {
		return fmt.Errorf("trie: badger store given foreign txn of type %T", txn)
	}

	if err := bt.txn.Set(rootMetaKey, h[:]); err != nil {
		return &StoreIOError{Err: fmt.Errorf("persisting root: %w", err)}
	}
	return nil
}
