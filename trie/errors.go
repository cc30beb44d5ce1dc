package trie

import "fmt"

// LookupError means a hash referenced from a reachable PointerBlock slot
// was not found in the store. Every such hash is supposed to name a node
// already written under a prior transaction; its absence means the store
// is corrupt or was tampered with outside the trie's discipline. It is
// fatal and is never retried inside the core.
type LookupError struct {
	Hash Hash
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("trie: node %s referenced but not found in store", e.Hash)
}

// InsertError covers the two named failure reasons insert can raise on its
// own, as opposed to a StoreIOError bubbling up from the backing store.
type InsertError struct {
	Reason string
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("trie: insert failed: %s", e.Reason)
}

// ErrUnhandledReinsert is the reason used when the shared prefix length
// equals the full key length, i.e. the caller is reinserting an existing
// key under a different value. The core has no update operation; a layer
// above must delete-then-insert or otherwise support updates out of band.
const ErrUnhandledReinsert = "unhandled"

// errImpossibleOverrun is the reason used when the shared prefix somehow
// exceeds the key length, which the algorithm treats as a provable
// impossibility and guards defensively rather than silently miscomputing.
const errImpossibleOverrun = "Something terrible happened"

// StoreIOError wraps any error surfaced by the backing key/value store.
// The trie does not attempt to interpret it beyond guaranteeing that the
// working root cell is restored before it propagates.
type StoreIOError struct {
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("trie: store i/o error: %v", e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }
