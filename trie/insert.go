package trie

import "fmt"

// parentEntry is one internal node traversed on the way down to the
// insertion point, paired with the slot index that was followed out of it.
// getParents accumulates these child-first (deepest first), which is
// exactly the order rehash needs to fold back up to a new root.
type parentEntry struct {
	index byte
	node  *InternalNode
}

// hashedNode is one step of a rehash chain: a node together with its own
// content address.
type hashedNode struct {
	hash Hash
	node Node
}

// Insert writes key->value into the trie, publishing a new working root on
// success. It serializes against every other Insert through the store's
// working-root cell (Initialize does not take the cell): at most one Insert
// holds the cell at a time, and whichever exit path is taken, the cell is
// always left holding a valid hash.
func (t *Trie[K, V]) Insert(key K, value V) error {
	h0 := t.store.Root().Take()

	newRoot, err := t.insertUnderRoot(h0, t.keyCodec.Encode(key), t.valCodec.Encode(value))
	if err != nil {
		// Any failure past this point, whatever its source, must restore
		// the cell to the hash it held before this Insert started, or the
		// store is permanently locked out of further writers.
		t.store.Root().Put(h0)
		return err
	}

	t.store.Root().Put(newRoot)
	logger.Debug("inserted key", "previous_root", h0, "new_root", newRoot)
	return nil
}

func (t *Trie[K, V]) insertUnderRoot(h0 Hash, pathNew, valBytes []byte) (Hash, error) {
	txn := t.store.CreateTxnWrite()
	return WithTxn(txn, func(tx Txn) (Hash, error) {
		root, ok, err := t.store.Get(tx, h0)
		if err != nil {
			return Hash{}, err
		}
		if !ok {
			return Hash{}, &LookupError{Hash: h0}
		}

		leafNew := &LeafNode{KeyBytes: pathNew, ValBytes: valBytes}
		hLeaf := HashNode(leafNew)
		if err := t.store.Put(tx, hLeaf, leafNew); err != nil {
			return Hash{}, err
		}

		tip, parents, err := getParents(t.store, tx, pathNew, 0, root)
		if err != nil {
			return Hash{}, err
		}

		var newRoot Hash
		switch n := tip.(type) {
		case *LeafNode:
			newRoot, err = t.insertAtLeaf(tx, n, leafNew, hLeaf, pathNew, parents, h0)
		case *InternalNode:
			newRoot, err = t.insertAtEmptySlot(tx, n, hLeaf, pathNew, parents)
		default:
			return Hash{}, fmt.Errorf("trie: unknown node type %T", tip)
		}
		if err != nil {
			return Hash{}, err
		}

		// The idempotent path in insertAtLeaf returns h0 unchanged, which
		// was already persisted by whichever earlier call produced it;
		// only a genuinely new root needs writing here.
		if newRoot != h0 {
			if err := t.store.PersistRoot(tx, newRoot); err != nil {
				return Hash{}, err
			}
		}
		return newRoot, nil
	})
}

// insertAtLeaf handles descent terminating on an existing leaf: either the
// (key, value) pair is already present, or the new and existing leaves
// must be split apart at their first differing byte.
func (t *Trie[K, V]) insertAtLeaf(
	tx Txn, existing, leafNew *LeafNode, hLeaf Hash, pathNew []byte, parents []parentEntry, h0 Hash,
) (Hash, error) {
	if sameEntry(existing, leafNew) {
		// Idempotent: the exact entry is already there. The root is
		// unchanged; the caller publishes h0 right back as the working
		// root.
		return h0, nil
	}

	pathEx := existing.KeyBytes
	shared := commonPrefix(pathNew, pathEx)
	s := len(shared)
	l := len(pathNew)

	switch {
	case s == l:
		// Reinserting the same key under a different value. The core has
		// no update operation; a layer above must delete-then-insert.
		return Hash{}, &InsertError{Reason: ErrUnhandledReinsert}

	case s > l:
		// Two keys with the same encoded length cannot share a prefix
		// longer than that length; getParents only descends along
		// pathNew, so parents never overruns it either. Guarded
		// defensively rather than silently miscomputing a slice.
		return Hash{}, &InsertError{Reason: errImpossibleOverrun}

	default: // s < l
		if s < len(parents) {
			return Hash{}, fmt.Errorf("trie: shared prefix %d shorter than traversed depth %d", s, len(parents))
		}

		iNew, iEx := pathNew[s], pathEx[s]
		hExisting := HashNode(existing)
		head := &InternalNode{Children: EmptyPointerBlock().Updated(
			PointerUpdate{Index: iNew, Hash: hLeaf},
			PointerUpdate{Index: iEx, Hash: hExisting},
		)}

		// The portion of the shared prefix not already represented by a
		// traversed parent needs a freshly synthesized chain of empty
		// internal nodes, child-first (closest to head first), so that
		// concatenating them ahead of parents keeps the whole sequence in
		// the order rehash expects.
		sharedTail := shared[len(parents):]
		synthesized := make([]parentEntry, len(sharedTail))
		for i, b := range sharedTail {
			synthesized[len(sharedTail)-1-i] = parentEntry{index: b, node: &InternalNode{Children: EmptyPointerBlock()}}
		}

		nodes := append(synthesized, parents...)
		chain := rehash(head, nodes)
		if err := insertTries(t.store, tx, chain); err != nil {
			return Hash{}, err
		}
		return chain[len(chain)-1].hash, nil
	}
}

// insertAtEmptySlot handles descent terminating on an internal node with
// an empty slot on the target path: the new leaf simply fills that slot.
func (t *Trie[K, V]) insertAtEmptySlot(
	tx Txn, tip *InternalNode, hLeaf Hash, pathNew []byte, parents []parentEntry,
) (Hash, error) {
	if len(parents) >= len(pathNew) {
		return Hash{}, fmt.Errorf("trie: insertion point at depth %d exceeds key length %d", len(parents), len(pathNew))
	}
	i := pathNew[len(parents)]
	head := &InternalNode{Children: tip.Children.Updated(PointerUpdate{Index: i, Hash: hLeaf})}
	chain := rehash(head, parents)
	if err := insertTries(t.store, tx, chain); err != nil {
		return Hash{}, err
	}
	return chain[len(chain)-1].hash, nil
}

// getParents descends from node along path starting at depth, stopping at
// the first leaf or the first empty pointer slot. It returns that terminal
// node (the "tip") and every internal node traversed, paired with the slot
// index taken out of it, in child-first order: the recursive call returns
// the deeper entries first, and each frame appends itself after them.
func getParents(store Store, tx Txn, path []byte, depth int, node Node) (Node, []parentEntry, error) {
	in, ok := node.(*InternalNode)
	if !ok {
		return node, nil, nil
	}
	if depth >= len(path) {
		return nil, nil, fmt.Errorf("trie: descent depth %d reached end of %d-byte path without a leaf", depth, len(path))
	}

	idx := path[depth]
	h, present := in.Children.Get(idx)
	if !present {
		return node, nil, nil
	}

	child, ok, err := store.Get(tx, h)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, &LookupError{Hash: h}
	}

	tip, parents, err := getParents(store, tx, path, depth+1, child)
	if err != nil {
		return nil, nil, err
	}
	return tip, append(parents, parentEntry{index: idx, node: in}), nil
}

// commonPrefix returns the longest prefix shared by a and b.
func commonPrefix(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// rehash folds nodes (child-first) on top of head, rewriting each parent's
// slot to point at the hash produced by the step below it. The returned
// sequence begins with head itself and ends with the new root; every
// element in between is a rewritten ancestor.
func rehash(head Node, nodes []parentEntry) []hashedNode {
	chain := make([]hashedNode, 0, len(nodes)+1)
	last := hashedNode{hash: HashNode(head), node: head}
	chain = append(chain, last)

	for _, p := range nodes {
		rewritten := &InternalNode{Children: p.node.Children.Updated(PointerUpdate{Index: p.index, Hash: last.hash})}
		last = hashedNode{hash: HashNode(rewritten), node: rewritten}
		chain = append(chain, last)
	}
	return chain
}

// insertTries writes every node in a rehash chain to the store under its
// own hash.
func insertTries(store Store, tx Txn, chain []hashedNode) error {
	for _, step := range chain {
		if err := store.Put(tx, step.hash, step.node); err != nil {
			return err
		}
	}
	return nil
}
