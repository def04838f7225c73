package store

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"styx.dev/ledger/crypto"
	"styx.dev/ledger/protocol"
)

// Claim settles one escrow claim: campaign lookup, deadline check, proof
// verification, then the one-time spent-marker write, all inside a single
// write transaction. A failure at any step leaves no side effects.
//
// Claim proofs carry no direction bits, so they always verify under the
// sorted sibling convention.
//
// Error codes a caller can act on: ERR_CAMPAIGN_UNKNOWN,
// ERR_CAMPAIGN_EXPIRED, ERR_PROOF_INVALID, ERR_DOUBLE_SPEND.
func (d *DB) Claim(s crypto.Suite, op *protocol.ClaimOp, now time.Time) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketCampaigns).Get(op.CampaignID[:])
		if raw == nil {
			return &protocol.WireError{Code: protocol.ERR_CAMPAIGN_UNKNOWN, Msg: "no such campaign"}
		}
		c, err := decodeCampaign(raw)
		if err != nil {
			return err
		}
		if uint64(now.Unix()) > c.ExpiryUnix {
			return &protocol.WireError{Code: protocol.ERR_CAMPAIGN_EXPIRED, Msg: "claim after deadline"}
		}

		leaf := protocol.ClaimLeaf(s, c.ID, op.Recipient, op.Allocation, op.Nonce16)
		if !protocol.VerifyProof(s, protocol.OrderSorted, leaf, protocol.SortedProof(op.Proof), c.MerkleRoot) {
			return &protocol.WireError{Code: protocol.ERR_PROOF_INVALID, Msg: "merkle proof does not reach root"}
		}

		// One claim per recipient per campaign: the recipient handle is
		// the nullifier id for escrow claims.
		key := protocol.SeedBytes(protocol.NullifierSeed(c.ID, op.Recipient))
		bkt := tx.Bucket(bucketNullifiers)
		if bkt.Get(key) != nil {
			return &protocol.WireError{Code: protocol.ERR_DOUBLE_SPEND, Msg: "already claimed"}
		}
		return bkt.Put(key, []byte{1})
	})
}
