package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const usersBktName = "users"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage in the given directory.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(filepath.Join(dir, "stockfeed.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open boltdb in %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(usersBktName)); err != nil {
			return fmt.Errorf("create top-level bucket %s: %w", usersBktName, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put creates or replaces the user.
func (b *Bolt) Put(_ context.Context, u User) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := tx.Bucket([]byte(usersBktName)).Put([]byte(u.ChatID), bts); err != nil {
			return fmt.Errorf("put user: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// List returns users matching the request.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]User, error) {
	var result []User
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(usersBktName)).ForEach(func(k, v []byte) error {
			var u User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("unmarshal user %s: %w", k, err)
			}
			if req.WatchingSymbol != "" && !u.Watches(req.WatchingSymbol) {
				return nil
			}
			result = append(result, u)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return result, nil
}

// Get returns the user by chat id.
func (b *Bolt) Get(_ context.Context, chatID string) (u User, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bts := tx.Bucket([]byte(usersBktName)).Get([]byte(chatID))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &u); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}

		return nil
	})
	if err != nil {
		return User{}, fmt.Errorf("view storage: %w", err)
	}

	return u, nil
}

// Update applies fn to the stored user within a single transaction.
// The user is written back only if fn reports a change.
func (b *Bolt) Update(_ context.Context, chatID string, fn func(u *User) bool) (u User, err error) {
	err = b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(usersBktName))

		bts := bkt.Get([]byte(chatID))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &u); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}

		if !fn(&u) {
			return nil
		}

		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := bkt.Put([]byte(chatID), data); err != nil {
			return fmt.Errorf("put user: %w", err)
		}

		return nil
	})
	if err != nil {
		return User{}, fmt.Errorf("update storage: %w", err)
	}

	return u, nil
}

// Delete removes the user.
func (b *Bolt) Delete(_ context.Context, chatID string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(usersBktName))
		if bkt.Get([]byte(chatID)) == nil {
			return ErrNotFound
		}
		return bkt.Delete([]byte(chatID))
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
