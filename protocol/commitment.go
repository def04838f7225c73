package protocol

import (
	"encoding/binary"

	"styx.dev/ledger/crypto"
)

// Domain separation tags. Each hash the protocol computes is prefixed
// with one of these so values from different contexts can never collide.
var (
	tagNote      = []byte("styx:note:v1")
	tagSpend     = []byte("styx:spend:v1")
	tagClaimLeaf = []byte("wd:claim:v1")
)

// Merkle node prefix, single-byte style. Leaves enter the tree as-is: a
// commitment is already a domain-separated hash.
const tagMerkleNode = 0x01

// Commit binds a hidden (owner, asset, amount) tuple under a fresh nonce.
// Only the returned hash is ever persisted; the preimage fields stay with
// the note holder.
func Commit(s crypto.Suite, owner, assetID [32]byte, amount uint64, nonce [32]byte) [32]byte {
	amt := binary.LittleEndian.AppendUint64(nil, amount)
	return s.Hash256(tagNote, owner[:], assetID[:], amt, nonce[:])
}

// NewNonce draws a 32-byte note nonce from the suite's randomness source.
// Nonces carry the hiding property of the commitment; they must never be
// derived from predictable state.
func NewNonce(s crypto.Suite) ([32]byte, error) {
	var n [32]byte
	if err := s.ReadNonce(n[:]); err != nil {
		return n, err
	}
	return n, nil
}

// Nullify derives the one-time spend token for a commitment. Publishing it
// is the unique, irreversible spend event; the record store enforces that
// a nullifier value is accepted at most once.
func Nullify(s crypto.Suite, commitment, secret [32]byte) [32]byte {
	return s.Hash256(tagSpend, commitment[:], secret[:])
}

// ClaimLeaf computes the escrow claim leaf over a campaign allocation.
func ClaimLeaf(s crypto.Suite, campaignID, recipient [32]byte, allocation uint64, nonce16 [16]byte) [32]byte {
	amt := binary.LittleEndian.AppendUint64(nil, allocation)
	return s.Hash256(tagClaimLeaf, campaignID[:], recipient[:], amt, nonce16[:])
}
