package store

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

const defaultBoltBucket = "prefs"

// BoltStore keeps the document under one key of a bolt bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	key    []byte
	owned  bool
}

// NewBoltStore wraps an open database. The caller keeps ownership of db.
func NewBoltStore(db *bolt.DB, bucket, key string) (*BoltStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: bolt db is nil")
	}
	if bucket == "" {
		bucket = defaultBoltBucket
	}
	if key == "" {
		return nil, fmt.Errorf("store: bolt key is required")
	}
	return &BoltStore{db: db, bucket: []byte(bucket), key: []byte(key)}, nil
}

// OpenBoltStore opens (or creates) the database at path. Close releases it.
func OpenBoltStore(path, bucket, key string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt %s: %w", path, err)
	}
	s, err := NewBoltStore(db, bucket, key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

func (s *BoltStore) Load(_ context.Context) ([]byte, bool, error) {
	var (
		out   []byte
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(s.key); v != nil {
			// bolt values are only valid inside the transaction.
			out = append(make([]byte, 0, len(v)), v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("store: bolt load: %w", err)
	}
	return out, found, nil
}

func (s *BoltStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put(s.key, append([]byte{}, data...))
	})
	if err != nil {
		return fmt.Errorf("store: bolt save: %w", err)
	}
	return nil
}

func (s *BoltStore) Describe() string {
	return fmt.Sprintf("bolt:%s#%s/%s", s.db.Path(), s.bucket, s.key)
}

func (s *BoltStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
