package trie

import "sync"

// RootCell is the working root hash: a single-slot, mutable container that
// also serializes writers. Take blocks until the cell is free, then marks
// it taken and returns the current hash; Put publishes a new hash and
// frees the cell for the next writer. It is the only concurrency primitive
// in the design — readers never call Take, they read Peek under their own
// read transaction and see a consistent snapshot by construction, since
// nodes are immutable once stored.
//
// A bounded channel of capacity 1 would also satisfy Take/Put, but it
// cannot be peeked without either draining it (racing a concurrent Take)
// or adding a second channel just to mirror the value. A mutex guarding
// both a "taken" flag and the current hash, with the mutex held only
// briefly by each call, lets readers see the latest published root
// without taking the writer lock.
type RootCell struct {
	mu    sync.Mutex
	cond  *sync.Cond
	taken bool
	value Hash
}

// NewRootCell returns a cell pre-loaded with initial and free for the next
// writer. Used by store constructors before Initialize has run; Initialize
// overwrites the value with the empty root's hash.
func NewRootCell(initial Hash) *RootCell {
	c := &RootCell{value: initial}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Take acquires the cell, blocking while another writer holds it, and
// returns the hash that was current at acquisition time.
func (c *RootCell) Take() Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.taken {
		c.cond.Wait()
	}
	c.taken = true
	return c.value
}

// Put publishes h as the new working root and releases the cell. Every
// successful or failed Take must be paired with exactly one Put: on
// success, Put publishes the new root; on failure, Put restores the hash
// returned by Take. A Take never followed by a Put leaves the store
// permanently locked out of further writers.
func (c *RootCell) Put(h Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = h
	c.taken = false
	c.cond.Signal()
}

// Peek returns the current working root without taking the cell. Safe to
// call concurrently with Take/Put; may observe either the pre- or
// post-insert root for an insert racing with the peek, but never a torn
// value, since Hash is copied under the same mutex that guards Put.
func (c *RootCell) Peek() Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
