// Package store keeps raw template sources in a bbolt file so they can be
// edited and rendered without redeploying.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lojasmm/cartaz/internal/source"
	bolt "go.etcd.io/bbolt"
)

var sourcesBucket = []byte("sources")

// ErrNotFound is returned by Get and Delete for an unknown name.
var ErrNotFound = errors.New("store: source not found")

// Source is one stored template document.
type Source struct {
	Name      string        `json:"name"`
	Format    source.Format `json:"format"`
	Body      string        `json:"body"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Store interface {
	Save(s Source) error
	Get(name string) (*Source, error)
	List() ([]Source, error)
	Delete(name string) error
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sourcesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sources bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save inserts or replaces a source. An empty format is detected from the
// name and body.
func (s *BoltStore) Save(src Source) error {
	if src.Name == "" {
		return fmt.Errorf("store: source needs a name")
	}
	if src.Format == "" {
		src.Format = source.Detect(src.Name, []byte(src.Body))
	}
	if src.UpdatedAt.IsZero() {
		src.UpdatedAt = time.Now().UTC()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(src)
		if err != nil {
			return err
		}
		return tx.Bucket(sourcesBucket).Put([]byte(src.Name), data)
	})
}

func (s *BoltStore) Get(name string) (*Source, error) {
	var src *Source
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sourcesBucket).Get([]byte(name))
		if v == nil {
			return nil
		}
		src = &Source{}
		return json.Unmarshal(v, src)
	})
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return src, nil
}

// List returns every source in name order.
func (s *BoltStore) List() ([]Source, error) {
	var out []Source
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sourcesBucket).ForEach(func(_, v []byte) error {
			var src Source
			if err := json.Unmarshal(v, &src); err != nil {
				return err
			}
			out = append(out, src)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sourcesBucket)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return b.Delete([]byte(name))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
