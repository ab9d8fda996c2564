package kv

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

var _ Backend = (*Pebble)(nil)

// Pebble is a Backend over a cockroachdb/pebble database.
type Pebble struct {
	db *pebble.DB
}

// NewPebble opens (or creates) a pebble database in dir.
func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// value is only valid until closer is closed
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *Pebble) Has(key []byte) (bool, error) {
	value, err := p.Get(key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

func (p *Pebble) Set(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *Pebble) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return p.db.Delete(key, pebble.Sync)
}

func (p *Pebble) NewBatch() Batch {
	return &pebbleBatch{batch: p.db.NewBatch()}
}

func (p *Pebble) Close() error {
	return p.db.Close()
}

type pebbleBatch struct {
	batch *pebble.Batch
}

func (b *pebbleBatch) Set(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return b.batch.Set(key, value, nil)
}

func (b *pebbleBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Write() error {
	return b.batch.Commit(pebble.NoSync)
}

func (b *pebbleBatch) WriteSync() error {
	return b.batch.Commit(pebble.Sync)
}

func (b *pebbleBatch) Close() error {
	return b.batch.Close()
}
