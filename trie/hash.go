package trie

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

// Hash is the 32-byte content address of an encoded node. It is an alias of
// go-ethereum's common.Hash so callers get hex formatting and JSON
// marshaling for free without pulling in Keccak or RLP semantics.
type Hash = common.Hash

// ZeroHash is the all-zero hash, used as the placeholder value in unoccupied
// PointerBlock slots when they are serialized.
var ZeroHash Hash

var hasherPool = &sync.Pool{
	New: func() interface{} {
		hasher, err := blake2b.New256(nil)
		if err != nil {
			panic("trie: cannot create blake2b-256 hasher: " + err.Error())
		}
		return hasher
	},
}

// hashBytes returns the Blake2b-256 digest of b.
func hashBytes(b []byte) Hash {
	hasher := hasherPool.Get().(hash.Hash)
	hasher.Reset()
	defer hasherPool.Put(hasher)

	// blake2b.Hash.Write never returns an error.
	_, _ = hasher.Write(b)

	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}
