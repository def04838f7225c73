package store

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Campaign is one escrowed distribution: a published Merkle root over
// claim leaves plus the asset and deadline the claims draw against.
type Campaign struct {
	ID           [32]byte
	ManifestHash [32]byte
	MerkleRoot   [32]byte
	AssetID      [32]byte
	ExpiryUnix   uint64
	Authority    [32]byte
}

// Layout: id 32 | manifest 32 | root 32 | asset 32 | expiry u64le | authority 32
const campaignRecordLen = 32 + 32 + 32 + 32 + 8 + 32

func encodeCampaign(c Campaign) []byte {
	out := make([]byte, 0, campaignRecordLen)
	out = append(out, c.ID[:]...)
	out = append(out, c.ManifestHash[:]...)
	out = append(out, c.MerkleRoot[:]...)
	out = append(out, c.AssetID[:]...)
	var exp [8]byte
	binary.LittleEndian.PutUint64(exp[:], c.ExpiryUnix)
	out = append(out, exp[:]...)
	return append(out, c.Authority[:]...)
}

func decodeCampaign(b []byte) (Campaign, error) {
	var c Campaign
	if len(b) != campaignRecordLen {
		return c, fmt.Errorf("campaign: record is %d bytes, want %d", len(b), campaignRecordLen)
	}
	copy(c.ID[:], b[0:32])
	copy(c.ManifestHash[:], b[32:64])
	copy(c.MerkleRoot[:], b[64:96])
	copy(c.AssetID[:], b[96:128])
	c.ExpiryUnix = binary.LittleEndian.Uint64(b[128:136])
	copy(c.Authority[:], b[136:168])
	return c, nil
}

// PutCampaign stores a campaign record. Re-initializing an existing
// campaign is a no-op if the record is identical and an error otherwise;
// a published root must never silently change.
func (d *DB) PutCampaign(c Campaign) error {
	val := encodeCampaign(c)
	return d.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketCampaigns)
		if prev := bkt.Get(c.ID[:]); prev != nil {
			if string(prev) == string(val) {
				return nil
			}
			return fmt.Errorf("campaign %x already exists with different record", c.ID[:4])
		}
		return bkt.Put(c.ID[:], val)
	})
}

func (d *DB) GetCampaign(id [32]byte) (Campaign, bool, error) {
	var out Campaign
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCampaigns).Get(id[:])
		if v == nil {
			return nil
		}
		c, err := decodeCampaign(v)
		if err != nil {
			return err
		}
		out = c
		ok = true
		return nil
	})
	return out, ok, err
}

// PutNoteRoot records the note accumulator root published at an epoch.
func (d *DB) PutNoteRoot(epoch uint64, root [32]byte) error {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], epoch)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoots).Put(key[:], root[:])
	})
}

func (d *DB) GetNoteRoot(epoch uint64) ([32]byte, bool, error) {
	var out [32]byte
	var ok bool
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], epoch)
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRoots).Get(key[:])
		if v == nil {
			return nil
		}
		if len(v) != 32 {
			return fmt.Errorf("note root: record is %d bytes, want 32", len(v))
		}
		copy(out[:], v)
		ok = true
		return nil
	})
	return out, ok, err
}
