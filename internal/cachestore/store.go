package cachestore

import (
	"errors"
	"time"
)

// ErrNotFound reports that no entry exists for the requested key.
var ErrNotFound = errors.New("cache entry not found")

// Store is a persistent key-value store for serialized index blobs.
// Writers must never expose a partially written entry to readers.
type Store interface {
	// Get returns the blob and creation time for key, or ErrNotFound.
	Get(key string) ([]byte, time.Time, error)
	// Put stores the blob under key, replacing any previous entry atomically.
	Put(key string, blob []byte) error
	// Delete removes the entry for key. Missing entries are not an error.
	Delete(key string) error
	Close() error
}
