package position

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketPositions = []byte("positions")

// BoltStore keeps open positions in a local bbolt file keyed by mint.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPositions)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Save writes pos, replacing any previous entry for the mint.
func (s *BoltStore) Save(pos Position) error {
	raw, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).Put([]byte(pos.Mint), raw)
	})
}

// Delete removes the entry for mint. Missing keys are not an error.
func (s *BoltStore) Delete(mint string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).Delete([]byte(mint))
	})
}

// Load returns every stored position.
func (s *BoltStore) Load() ([]Position, error) {
	var out []Position
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).ForEach(func(k, v []byte) error {
			var pos Position
			if err := json.Unmarshal(v, &pos); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, pos)
			return nil
		})
	})
	return out, err
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
