// Package store persists protocol-side records: campaigns, published
// note-tree roots, and nullifier spent-markers. Nullifier creation is
// idempotent inside a single transaction; that primitive is the spend
// event the whole scheme hangs off.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketCampaigns  = []byte("campaigns_by_id")
	bucketNullifiers = []byte("nullifiers_by_seed")
	bucketRoots      = []byte("note_roots_by_epoch")
)

type DB struct {
	dir string
	db  *bolt.DB
}

func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if err := ensureDir(datadir); err != nil {
		return nil, err
	}

	path := filepath.Join(datadir, "ledger.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{dir: datadir, db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketCampaigns, bucketNullifiers, bucketRoots} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	slog.Debug("store open", "path", path)
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Dir() string { return d.dir }

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
