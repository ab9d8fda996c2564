package kv

import (
	"sort"
)

var _ Store = (*CacheStore)(nil)

// Change is one buffered write. Value is nil for a delete.
type Change struct {
	Key    []byte
	Value  []byte
	Delete bool
}

type cacheEntry struct {
	value   []byte
	deleted bool
}

// CacheStore buffers writes over a parent Store. Reads see the buffered
// writes first. Nothing reaches the parent until Write or WriteBatch is
// called; dropping the CacheStore discards the writes.
//
// A CacheStore is not safe for concurrent use.
type CacheStore struct {
	parent Store
	cache  map[string]cacheEntry
}

// NewCacheStore returns an empty overlay over parent.
func NewCacheStore(parent Store) *CacheStore {
	return &CacheStore{
		parent: parent,
		cache:  make(map[string]cacheEntry),
	}
}

func (c *CacheStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if e, ok := c.cache[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

func (c *CacheStore) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	if e, ok := c.cache[string(key)]; ok {
		return !e.deleted, nil
	}
	return c.parent.Has(key)
}

func (c *CacheStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	v := make([]byte, len(value))
	copy(v, value)
	c.cache[string(key)] = cacheEntry{value: v}
	return nil
}

func (c *CacheStore) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	c.cache[string(key)] = cacheEntry{deleted: true}
	return nil
}

// Changes returns the buffered writes sorted by key.
func (c *CacheStore) Changes() []Change {
	keys := make([]string, 0, len(c.cache))
	for k := range c.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changes := make([]Change, 0, len(keys))
	for _, k := range keys {
		e := c.cache[k]
		changes = append(changes, Change{Key: []byte(k), Value: e.value, Delete: e.deleted})
	}
	return changes
}

// Write flushes the buffered writes to the parent in key order and resets
// the overlay.
func (c *CacheStore) Write() error {
	for _, ch := range c.Changes() {
		var err error
		if ch.Delete {
			err = c.parent.Delete(ch.Key)
		} else {
			err = c.parent.Set(ch.Key, ch.Value)
		}
		if err != nil {
			return err
		}
	}
	c.Discard()
	return nil
}

// WriteBatch stages the buffered writes into b in key order. The caller
// writes and closes b.
func (c *CacheStore) WriteBatch(b Batch) error {
	for _, ch := range c.Changes() {
		var err error
		if ch.Delete {
			err = b.Delete(ch.Key)
		} else {
			err = b.Set(ch.Key, ch.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write.
func (c *CacheStore) Discard() {
	c.cache = make(map[string]cacheEntry)
}

// Len returns the number of buffered writes.
func (c *CacheStore) Len() int {
	return len(c.cache)
}
