package store

import (
	bolt "go.etcd.io/bbolt"

	"styx.dev/ledger/protocol"
)

// RecordNullifier is the idempotent spend primitive: it creates the
// spent-marker for a nullifier value and fails with ERR_DOUBLE_SPEND if
// the marker already exists. The check and the write share one bbolt
// write transaction, so concurrent publishers race to a single winner.
func (d *DB) RecordNullifier(campaign, nullifier [32]byte) error {
	key := protocol.SeedBytes(protocol.NullifierSeed(campaign, nullifier))
	return d.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketNullifiers)
		if bkt.Get(key) != nil {
			return &protocol.WireError{Code: protocol.ERR_DOUBLE_SPEND, Msg: "nullifier already recorded"}
		}
		return bkt.Put(key, []byte{1})
	})
}

// NullifierSpent reports whether the spent-marker exists.
func (d *DB) NullifierSpent(campaign, nullifier [32]byte) (bool, error) {
	key := protocol.SeedBytes(protocol.NullifierSeed(campaign, nullifier))
	var spent bool
	err := d.db.View(func(tx *bolt.Tx) error {
		spent = tx.Bucket(bucketNullifiers).Get(key) != nil
		return nil
	})
	return spent, err
}
