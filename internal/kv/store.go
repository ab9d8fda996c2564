// Package kv is the key-value substrate the exchange modules keep their state
// in. Modules see a Store (single reads and writes, no iteration); a block
// runs on a CacheStore over a Backend so that the whole block's writes land
// in one batch or not at all.
package kv

import "errors"

// ErrEmptyKey is returned for a nil or zero-length key.
var ErrEmptyKey = errors.New("kv: key cannot be empty")

// Store is a transactional key-value store. Get returns nil for a missing
// key.
type Store interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Batch is a group of writes applied atomically by Write or WriteSync.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Write() error
	WriteSync() error
	Close() error
}

// Backend is a Store that persists its contents.
type Backend interface {
	Store
	NewBatch() Batch
	Close() error
}
