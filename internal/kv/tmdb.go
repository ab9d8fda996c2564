package kv

import (
	dbm "github.com/tendermint/tm-db"
)

var _ Backend = (*TMDB)(nil)

// TMDB is a Backend over any tm-db database (goleveldb, memdb, ...).
type TMDB struct {
	db dbm.DB
}

// NewTMDB wraps db.
func NewTMDB(db dbm.DB) *TMDB {
	return &TMDB{db: db}
}

// NewMemStore returns a TMDB over a fresh in-memory database.
func NewMemStore() *TMDB {
	return NewTMDB(dbm.NewMemDB())
}

// DB returns the underlying database.
func (s *TMDB) DB() dbm.DB { return s.db }

func (s *TMDB) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return s.db.Get(key)
}

func (s *TMDB) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	return s.db.Has(key)
}

func (s *TMDB) Set(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return s.db.Set(key, value)
}

func (s *TMDB) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return s.db.Delete(key)
}

func (s *TMDB) NewBatch() Batch {
	return s.db.NewBatch()
}

func (s *TMDB) Close() error {
	return s.db.Close()
}
