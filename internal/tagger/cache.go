package tagger

import (
	"crypto/sha256"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const cacheKeyPrefix = "inference:"

// cacheTTL bounds how long a cached inference result is served before
// the backend is asked again (models get retrained).
const cacheTTL = 30 * 24 * time.Hour

// Cache stores inference results keyed by the SHA256 of the image
// bytes, so re-uploads and reprocessing of identical images skip the
// model round trip.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenCache opens the badger-backed inference cache at path.
func OpenCache(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(image []byte) []byte {
	sum := sha256.Sum256(image)
	return fmt.Appendf(nil, "%s%x", cacheKeyPrefix, sum)
}

// Get returns the cached result for the image bytes, or (nil, nil) on a
// miss.
func (c *Cache) Get(image []byte) (*Result, error) {
	var result *Result

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(image))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r Result
			if err := json.Unmarshal(val, &r); err != nil {
				return fmt.Errorf("unmarshal cached result: %w", err)
			}
			result = &r
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Put stores the result for the image bytes with the cache TTL.
func (c *Cache) Put(image []byte, result *Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(image), data).WithTTL(cacheTTL)
		return txn.SetEntry(entry)
	})
}
