package linkednode_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/internal/linkednode"
)

var buckets = []string{"btc/usdt:buy", "btc/usdt:sell", "eth/usdt:buy"}

func TestMultiCollectionProperties(t *testing.T) {
	rapid.Check(t, rapid.Run(&multiModel{}))
}

// multiModel mirrors every bucket of a MultiCollection as a plain slice.
type multiModel struct {
	store kv.Store
	c     linkednode.MultiCollection[string, uint64, item]

	nextID uint64
	model  map[string][]uint64
}

func (m *multiModel) Init(t *rapid.T) {
	m.store = kv.NewMemStore()
	m.c = newMultiCollection(m.store)
	m.nextID = 1
	m.model = make(map[string][]uint64)
}

func (m *multiModel) load(t *rapid.T, idx uint64) *node {
	n, ok, err := m.c.Node(idx)
	require.NoError(t, err)
	require.True(t, ok, "node %d missing", idx)
	return &n
}

func (m *multiModel) Insert(t *rapid.T) {
	key := rapid.SampledFrom(buckets).Draw(t, "bucket").(string)
	n := linkednode.NewNode[uint64](item{ID: m.nextID})
	m.nextID++

	list := m.model[key]
	if len(list) == 0 {
		require.NoError(t, m.c.InitStorageWithKey(key, &n))
		m.model[key] = []uint64{n.Index()}
		return
	}

	pos := rapid.IntRange(0, len(list)-1).Draw(t, "pos").(int)
	self := m.load(t, list[pos])
	if rapid.Bool().Draw(t, "before").(bool) {
		require.NoError(t, m.c.AddOptionBeforeWithKey(key, self, &n))
	} else {
		require.NoError(t, m.c.AddOptionAfterWithKey(key, self, &n))
		pos++
	}

	updated := make([]uint64, 0, len(list)+1)
	updated = append(updated, list[:pos]...)
	updated = append(updated, n.Index())
	updated = append(updated, list[pos:]...)
	m.model[key] = updated
}

func (m *multiModel) Remove(t *rapid.T) {
	key := rapid.SampledFrom(buckets).Draw(t, "bucket").(string)
	list := m.model[key]
	if len(list) == 0 {
		return
	}

	pos := rapid.IntRange(0, len(list)-1).Draw(t, "pos").(int)
	self := m.load(t, list[pos])
	require.NoError(t, m.c.RemoveOptionWithKey(key, self))
	require.True(t, self.IsNone())

	m.model[key] = append(list[:pos:pos], list[pos+1:]...)
}

func (m *multiModel) Check(t *rapid.T) {
	for _, key := range buckets {
		want := m.model[key]

		head, hasHead, err := m.c.Head(key)
		require.NoError(t, err)
		tail, hasTail, err := m.c.TailIndex(key)
		require.NoError(t, err)

		if len(want) == 0 {
			require.False(t, hasHead, "bucket %s has a header", key)
			require.False(t, hasTail, "bucket %s has a tail", key)
			continue
		}
		require.True(t, hasHead)
		require.True(t, hasTail)
		require.Equal(t, want[0], head)
		require.Equal(t, want[len(want)-1], tail)

		var got []uint64
		var prev *uint64
		idx, ok := head, true
		for ok {
			n := m.load(t, idx)
			require.Equal(t, prev, n.Prev, "bucket %s node %d", key, idx)
			got = append(got, idx)
			require.LessOrEqual(t, len(got), len(want), "bucket %s does not terminate", key)
			i := idx
			prev = &i
			idx, ok = n.NextIndex()
		}
		require.Equal(t, want, got)
	}

	live := 0
	for _, list := range m.model {
		live += len(list)
	}
	for id := uint64(1); id < m.nextID; id++ {
		_, ok, err := m.c.Node(id)
		require.NoError(t, err)
		if ok {
			live--
		}
	}
	require.Zero(t, live, "nodes map holds detached entries")
}
