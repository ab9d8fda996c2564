package kv_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
)

func TestPebbleBackend(t *testing.T) {
	db, err := kv.NewPebble(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	v, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, db.Set([]byte("a"), []byte("1")))
	has, err := db.Has([]byte("a"))
	require.NoError(t, err)
	require.True(t, has)

	cache := kv.NewCacheStore(db)
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))
	require.NoError(t, cache.Delete([]byte("a")))

	batch := db.NewBatch()
	require.NoError(t, cache.WriteBatch(batch))
	require.NoError(t, batch.WriteSync())
	require.NoError(t, batch.Close())

	v, err = db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)

	has, err = db.Has([]byte("a"))
	require.NoError(t, err)
	require.False(t, has)
}
