package snapshot

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vango-dev/vtree/internal/errors"
)

// BucketTrees is the bucket holding snapshots, keyed by application ID.
const BucketTrees = "trees"

// BoltStore keeps snapshots in a bbolt database file.
type BoltStore struct {
	db   *bolt.DB
	opts options
}

// OpenBolt opens or creates the database at path. It waits at most one
// second for another process to release the file lock.
func OpenBolt(path string, opts ...Option) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("E222", "open %s", path).Wrap(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketTrees))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Errorf("E222", "initialize %s", path).Wrap(err)
	}
	return &BoltStore{db: db, opts: buildOptions(opts)}, nil
}

// Save stores snap, replacing any previous snapshot of the same application.
func (s *BoltStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTrees))
		return b.Put([]byte(snap.AppID), data)
	})
}

// Load returns the snapshot of appID.
func (s *BoltStore) Load(ctx context.Context, appID string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTrees))
		v := b.Get([]byte(appID))
		if v == nil {
			return notFound(appID)
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, s.opts.resolve)
}

// Delete removes the snapshot of appID.
func (s *BoltStore) Delete(ctx context.Context, appID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTrees))
		return b.Delete([]byte(appID))
	})
}

// IDs returns the stored application IDs in key order.
func (s *BoltStore) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTrees))
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	return ids, err
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
