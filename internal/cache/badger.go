package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerCache stores cache entries in an embedded Badger database.
// Entries carry native TTLs, so expiry needs no sweeper.
type BadgerCache struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadgerCache opens the cache at path, or fully in memory when path
// is empty.
func NewBadgerCache(path string, logger *zap.Logger) (*BadgerCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %q: %w", path, err)
	}

	return &BadgerCache{db: db, logger: logger}, nil
}

// Get returns the value stored under key, or ErrNotFound when the entry
// is absent or its TTL has elapsed.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("cache get %q: %w", key, err)
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key. A positive ttl bounds the entry lifetime;
// zero stores it without expiry.
func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("cache set %q: %w", key, err)
		}
		return nil
	})
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *BadgerCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.db.DropPrefix([]byte(prefix)); err != nil {
		return fmt.Errorf("cache drop prefix %q: %w", prefix, err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
