package trie

import "fmt"

// Trie is a persistent, content-addressed radix trie over keys of type K
// and values of type V, both carrying their own Codec. Every mutation
// produces a new immutable root hash; the trie itself holds no state
// beyond the store and the two codecs, so a Trie value is cheap to pass
// around and safe to share between goroutines that only call Lookup.
type Trie[K, V any] struct {
	store    Store
	keyCodec Codec[K]
	valCodec Codec[V]
}

// New wraps store with the given key and value codecs. It does not touch
// the store; call Initialize once before the first Lookup or Insert.
func New[K, V any](store Store, keyCodec Codec[K], valCodec Codec[V]) *Trie[K, V] {
	return &Trie[K, V]{store: store, keyCodec: keyCodec, valCodec: valCodec}
}

// Store returns the underlying Store, e.g. to Close a BadgerStore once the
// Trie is no longer needed.
func (t *Trie[K, V]) Store() Store { return t.store }

// Initialize creates an empty root node, writes it, and publishes its hash
// as the working root. It is idempotent only if the store was previously
// empty; called again later it silently overwrites the working root with
// a fresh empty trie, discarding whatever was reachable from the old one.
func (t *Trie[K, V]) Initialize() (Hash, error) {
	root := &InternalNode{Children: EmptyPointerBlock()}
	h := HashNode(root)

	txn := t.store.CreateTxnWrite()
	_, err := WithTxn(txn, func(tx Txn) (struct{}, error) {
		if err := t.store.Put(tx, h, root); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, t.store.PersistRoot(tx, h)
	})
	if err != nil {
		return Hash{}, err
	}

	t.store.Root().Put(h)
	logger.Debug("initialized empty trie", "root", h)
	return h, nil
}

type lookupResult[V any] struct {
	value V
	found bool
}

// Lookup returns the value stored under key, if any. Readers never take
// the working-root cell; they snapshot its current value through a read
// transaction and see a consistent view of everything reachable from it.
func (t *Trie[K, V]) Lookup(key K) (value V, found bool, err error) {
	path := t.keyCodec.Encode(key)

	txn := t.store.CreateTxnRead()
	res, err := WithTxn(txn, func(tx Txn) (lookupResult[V], error) {
		var zero lookupResult[V]

		rootHash := t.store.Root().Peek()
		node, ok, err := t.store.Get(tx, rootHash)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, nil
		}

		for depth := 0; depth < len(path); depth++ {
			switch n := node.(type) {
			case *LeafNode:
				if bytesEqual(n.KeyBytes, path) {
					v, err := t.valCodec.Decode(n.ValBytes)
					return lookupResult[V]{value: v, found: true}, err
				}
				return zero, nil

			case *InternalNode:
				h, present := n.Children.Get(path[depth])
				if !present {
					return zero, nil
				}
				child, ok, err := t.store.Get(tx, h)
				if err != nil {
					return zero, err
				}
				if !ok {
					return zero, &LookupError{Hash: h}
				}
				node = child

			default:
				return zero, fmt.Errorf("trie: unknown node type %T", node)
			}
		}

		if leaf, ok := node.(*LeafNode); ok && bytesEqual(leaf.KeyBytes, path) {
			v, err := t.valCodec.Decode(leaf.ValBytes)
			return lookupResult[V]{value: v, found: true}, err
		}
		return zero, nil
	})
	return res.value, res.found, err
}
