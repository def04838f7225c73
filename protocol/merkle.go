package protocol

import (
	"bytes"
	"math/bits"

	"styx.dev/ledger/crypto"
)

// SiblingOrder fixes the node-hash convention for a deployment. Building
// and verifying must use the same order; mixing silently breaks every
// proof.
type SiblingOrder uint8

const (
	// OrderFixed hashes siblings in tree order: Hash(tag || left || right).
	OrderFixed SiblingOrder = iota
	// OrderSorted hashes Hash(tag || min || max), so proofs need no
	// direction bits.
	OrderSorted
)

// EmptyLeaf pads a leaf level up to its power-of-two capacity.
var EmptyLeaf [32]byte

// Proof is an inclusion proof: the sibling hashes on the walk from leaf to
// root, with a same-length direction sequence. Directions[i] true means the
// computed node is the left input at level i; OrderSorted verification
// ignores them.
type Proof struct {
	Path       [][32]byte
	Directions []bool
}

// NodeHash combines two sibling nodes under the given order.
func NodeHash(s crypto.Suite, order SiblingOrder, left, right [32]byte) [32]byte {
	if order == OrderSorted && bytes.Compare(left[:], right[:]) > 0 {
		left, right = right, left
	}
	return s.Hash256([]byte{tagMerkleNode}, left[:], right[:])
}

// Tree is an immutable accumulator over an ordered leaf sequence. Leaves
// are padded with EmptyLeaf to the next power of two, so every level pairs
// cleanly.
type Tree struct {
	suite  crypto.Suite
	order  SiblingOrder
	leaves int
	levels [][][32]byte
}

// BuildTree constructs the full tree. A tree of no leaves has the zero
// root; a tree of one leaf has that leaf as its root.
func BuildTree(s crypto.Suite, order SiblingOrder, leaves [][32]byte) *Tree {
	n := len(leaves)
	height := 0
	if n > 1 {
		height = bits.Len(uint(n - 1))
	}
	capacity := 1 << height

	level := make([][32]byte, capacity)
	copy(level, leaves)
	for i := n; i < capacity; i++ {
		level[i] = EmptyLeaf
	}

	levels := make([][][32]byte, 0, height+1)
	levels = append(levels, level)
	for len(level) > 1 {
		next := make([][32]byte, len(level)/2)
		for i := range next {
			next[i] = NodeHash(s, order, level[2*i], level[2*i+1])
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{suite: s, order: order, leaves: n, levels: levels}
}

// Root returns the single top-level node, or the zero value for an empty
// tree.
func (t *Tree) Root() [32]byte {
	if t.leaves == 0 {
		return EmptyLeaf
	}
	top := t.levels[len(t.levels)-1]
	return top[0]
}

func (t *Tree) Height() int    { return len(t.levels) - 1 }
func (t *Tree) Capacity() int  { return len(t.levels[0]) }
func (t *Tree) LeafCount() int { return t.leaves }

// Leaf returns the (possibly padded) leaf at index i.
func (t *Tree) Leaf(i int) ([32]byte, error) {
	if i < 0 || i >= t.Capacity() {
		return EmptyLeaf, wireErr(ERR_FIELD_INVALID, "leaf index out of range")
	}
	return t.levels[0][i], nil
}

// ProofFor produces the inclusion proof for original leaf index i.
func (t *Tree) ProofFor(i int) (Proof, error) {
	if t.leaves == 0 {
		return Proof{}, wireErr(ERR_FIELD_INVALID, "empty tree has no proofs")
	}
	if i < 0 || i >= t.leaves {
		return Proof{}, wireErr(ERR_FIELD_INVALID, "leaf index out of range")
	}
	height := t.Height()
	p := Proof{
		Path:       make([][32]byte, 0, height),
		Directions: make([]bool, 0, height),
	}
	idx := i
	for level := 0; level < height; level++ {
		sib := idx ^ 1
		p.Path = append(p.Path, t.levels[level][sib])
		p.Directions = append(p.Directions, idx&1 == 0)
		idx >>= 1
	}
	return p, nil
}

// VerifyProof reduces leaf along the proof and compares against root. It
// is a pure predicate: wrong leaves, paths, directions or roots all just
// return false.
func VerifyProof(s crypto.Suite, order SiblingOrder, leaf [32]byte, p Proof, root [32]byte) bool {
	if len(p.Path) != len(p.Directions) {
		return false
	}
	computed := leaf
	for i, sib := range p.Path {
		if order == OrderSorted || p.Directions[i] {
			computed = NodeHash(s, order, computed, sib)
		} else {
			computed = NodeHash(s, order, sib, computed)
		}
	}
	return computed == root
}

// FoldRoot computes a root without padding: pairs are combined level by
// level and an odd trailing node is promoted unchanged. Used for partial
// accumulator snapshots where leaf count is not a power of two.
func FoldRoot(s crypto.Suite, order SiblingOrder, leaves [][32]byte) [32]byte {
	if len(leaves) == 0 {
		return EmptyLeaf
	}
	level := append([][32]byte(nil), leaves...)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				// Odd promotion rule: carry forward unchanged.
				next = append(next, level[i])
				i++
				continue
			}
			next = append(next, NodeHash(s, order, level[i], level[i+1]))
			i += 2
		}
		level = next
	}
	return level[0]
}
