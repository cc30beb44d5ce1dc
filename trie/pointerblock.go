package trie

// PointerBlockSize is the fan-out of an internal node: one slot per
// possible byte value of the path.
const PointerBlockSize = 256

// PointerBlock is a fixed-width, 256-slot vector of optional child hashes,
// indexed by an unsigned byte. It is a value type: every mutation is
// expressed through Updated, which returns a new block rather than
// mutating the receiver.
type PointerBlock struct {
	hashes  [PointerBlockSize]Hash
	present [PointerBlockSize]bool
}

// EmptyPointerBlock returns a PointerBlock with all 256 slots absent.
func EmptyPointerBlock() PointerBlock {
	return PointerBlock{}
}

// Get returns the hash stored at slot i, and whether that slot is occupied.
func (pb PointerBlock) Get(i byte) (Hash, bool) {
	return pb.hashes[i], pb.present[i]
}

// PointerUpdate describes a single slot replacement to apply with Updated.
type PointerUpdate struct {
	Index byte
	Hash  Hash
}

// Updated returns a new PointerBlock with the given slots replaced. All
// updates are applied to the same original block, so the result does not
// depend on the order of the updates slice as long as indices are distinct.
func (pb PointerBlock) Updated(updates ...PointerUpdate) PointerBlock {
	next := pb
	for _, u := range updates {
		next.hashes[u.Index] = u.Hash
		next.present[u.Index] = true
	}
	return next
}

// Equal reports whether pb and other have the same hash in every slot.
func (pb PointerBlock) Equal(other PointerBlock) bool {
	return pb == other
}
