package linkednode_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/internal/linkednode"
)

type item struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

func (i item) Index() uint64 { return i.ID }

type node = linkednode.Node[uint64, item]

func newCollection(store kv.Store) linkednode.Collection[uint64, item] {
	return linkednode.Collection[uint64, item]{
		Header: kv.NewValue[linkednode.NodeIndex[uint64]](store, "header"),
		Nodes:  kv.NewMap[uint64, node](store, "nodes", kv.Uint64Key),
		Tail:   kv.NewValue[linkednode.NodeIndex[uint64]](store, "tail"),
	}
}

func newMultiCollection(store kv.Store) linkednode.MultiCollection[string, uint64, item] {
	return linkednode.MultiCollection[string, uint64, item]{
		Header: kv.NewMap[string, linkednode.MultiNodeIndex[string, uint64]](store, "header", kv.StringKey),
		Nodes:  kv.NewMap[uint64, node](store, "nodes", kv.Uint64Key),
		Tail:   kv.NewMap[string, linkednode.MultiNodeIndex[string, uint64]](store, "tail", kv.StringKey),
	}
}

func mustNode(t *testing.T, c linkednode.Collection[uint64, item], idx uint64) *node {
	t.Helper()
	n, ok, err := c.Node(idx)
	require.NoError(t, err)
	require.True(t, ok, "node %d missing", idx)
	return &n
}

func walk(t *testing.T, c linkednode.Collection[uint64, item]) []uint64 {
	t.Helper()
	var out []uint64
	idx, ok, err := c.Head()
	require.NoError(t, err)
	for ok {
		n := mustNode(t, c, idx)
		out = append(out, idx)
		idx, ok = n.NextIndex()
	}
	return out
}

func TestCollectionBuildAndRemove(t *testing.T) {
	c := newCollection(kv.NewMemStore())

	first := linkednode.NewNode[uint64](item{ID: 2})
	require.NoError(t, c.InitStorage(&first))
	require.Equal(t, []uint64{2}, walk(t, c))

	n1 := linkednode.NewNode[uint64](item{ID: 1})
	require.NoError(t, c.AddBefore(mustNode(t, c, 2), &n1))
	n4 := linkednode.NewNode[uint64](item{ID: 4})
	require.NoError(t, c.AddAfter(mustNode(t, c, 2), &n4))
	n3 := linkednode.NewNode[uint64](item{ID: 3})
	require.NoError(t, c.AddBefore(mustNode(t, c, 4), &n3))
	require.Equal(t, []uint64{1, 2, 3, 4}, walk(t, c))

	tail, ok, err := c.TailIndex()
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 4, tail)

	// interior, head, tail, then the last one
	require.NoError(t, c.Remove(mustNode(t, c, 3)))
	require.Equal(t, []uint64{1, 2, 4}, walk(t, c))
	require.NoError(t, c.Remove(mustNode(t, c, 1)))
	require.Equal(t, []uint64{2, 4}, walk(t, c))
	require.NoError(t, c.Remove(mustNode(t, c, 4)))
	require.Equal(t, []uint64{2}, walk(t, c))

	last := mustNode(t, c, 2)
	require.NoError(t, c.Remove(last))
	assert.True(t, last.IsNone())

	exists, err := c.Header.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = c.Tail.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
	_, ok, err = c.Node(2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitStorageKeepsExistingBounds(t *testing.T) {
	c := newCollection(kv.NewMemStore())

	a := linkednode.NewNode[uint64](item{ID: 7})
	require.NoError(t, c.InitStorage(&a))
	b := linkednode.NewNode[uint64](item{ID: 8})
	require.NoError(t, c.InitStorage(&b))

	head, _, err := c.Head()
	require.NoError(t, err)
	assert.EqualValues(t, 7, head)
	tail, _, err := c.TailIndex()
	require.NoError(t, err)
	assert.EqualValues(t, 7, tail)

	// the second node is stored but not linked
	_, ok, err := c.Node(8)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddSelfIsNoop(t *testing.T) {
	store := kv.NewMemStore()
	c := newCollection(store)

	a := linkednode.NewNode[uint64](item{ID: 1})
	require.NoError(t, c.InitStorage(&a))

	same := linkednode.NewNode[uint64](item{ID: 1, Label: "other"})
	require.NoError(t, c.AddBefore(mustNode(t, c, 1), &same))
	require.NoError(t, c.AddOptionAfter(mustNode(t, c, 1), &same))

	n := mustNode(t, c, 1)
	assert.Empty(t, n.Data.Label)
	assert.Equal(t, []uint64{1}, walk(t, c))
}

func TestLinkingErrors(t *testing.T) {
	testCases := map[string]struct {
		build func(t *testing.T, c linkednode.Collection[uint64, item]) error
		err   error
	}{
		"insert already linked node": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				n2 := linkednode.NewNode[uint64](item{ID: 2})
				require.NoError(t, c.AddOptionAfter(mustNode(t, c, 1), &n2))
				return c.AddOptionBefore(mustNode(t, c, 1), mustNode(t, c, 2))
			},
			err: linkednode.ErrInvalidNode,
		},
		"head without header": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				require.NoError(t, c.Header.Set(linkednode.NodeIndex[uint64]{Index: 9}))
				n2 := linkednode.NewNode[uint64](item{ID: 2})
				return c.AddBefore(mustNode(t, c, 1), &n2)
			},
			err: linkednode.ErrHeaderTailMismatch,
		},
		"tail without tail pointer": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				require.NoError(t, c.Tail.Set(linkednode.NodeIndex[uint64]{Index: 9}))
				n2 := linkednode.NewNode[uint64](item{ID: 2})
				return c.AddOptionAfter(mustNode(t, c, 1), &n2)
			},
			err: linkednode.ErrHeaderTailMismatch,
		},
		"singleton removal with foreign header": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				require.NoError(t, c.Header.Set(linkednode.NodeIndex[uint64]{Index: 9}))
				return c.RemoveOption(mustNode(t, c, 1))
			},
			err: linkednode.ErrHeaderTailMismatch,
		},
		"singleton removal with foreign tail": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				require.NoError(t, c.Tail.Set(linkednode.NodeIndex[uint64]{Index: 9}))
				return c.Remove(mustNode(t, c, 1))
			},
			err: linkednode.ErrBrokenHead,
		},
		"dangling next": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				n2 := linkednode.NewNode[uint64](item{ID: 2})
				require.NoError(t, c.AddAfter(mustNode(t, c, 1), &n2))
				require.NoError(t, c.Nodes.Delete(2))
				return c.Remove(mustNode(t, c, 1))
			},
			err: linkednode.ErrDanglingLink,
		},
		"neighbor does not link back": {
			build: func(t *testing.T, c linkednode.Collection[uint64, item]) error {
				n2 := linkednode.NewNode[uint64](item{ID: 2})
				require.NoError(t, c.AddAfter(mustNode(t, c, 1), &n2))
				n3 := linkednode.NewNode[uint64](item{ID: 3})
				require.NoError(t, c.AddAfter(mustNode(t, c, 2), &n3))

				broken := mustNode(t, c, 3)
				broken.Prev = nil
				require.NoError(t, c.Nodes.Set(3, *broken))
				return c.Remove(mustNode(t, c, 2))
			},
			err: linkednode.ErrInconsistentSplice,
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			store := kv.NewMemStore()
			c := newCollection(store)
			first := linkednode.NewNode[uint64](item{ID: 1})
			require.NoError(t, c.InitStorage(&first))

			err := tc.build(t, c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.err), "got %v", err)
		})
	}
}

func TestFailedLinkWritesNothing(t *testing.T) {
	store := kv.NewMemStore()
	c := newCollection(store)
	first := linkednode.NewNode[uint64](item{ID: 1})
	require.NoError(t, c.InitStorage(&first))
	n2 := linkednode.NewNode[uint64](item{ID: 2})
	require.NoError(t, c.AddAfter(mustNode(t, c, 1), &n2))
	require.NoError(t, c.Nodes.Delete(1))

	// 2 points back at the missing 1, so nothing may change
	n3 := linkednode.NewNode[uint64](item{ID: 3})
	err := c.AddBefore(mustNode(t, c, 2), &n3)
	require.True(t, errors.Is(err, linkednode.ErrDanglingLink))

	_, ok, err := c.Node(3)
	require.NoError(t, err)
	assert.False(t, ok)
	n := mustNode(t, c, 2)
	prev, ok := n.PrevIndex()
	require.True(t, ok)
	assert.EqualValues(t, 1, prev)
}

func TestMultiCollectionBuckets(t *testing.T) {
	store := kv.NewMemStore()
	c := newMultiCollection(store)

	a1 := linkednode.NewNode[uint64](item{ID: 1})
	require.NoError(t, c.InitStorageWithKey("a", &a1))
	b1 := linkednode.NewNode[uint64](item{ID: 10})
	require.NoError(t, c.InitStorageWithKey("b", &b1))

	self, ok, err := c.Node(1)
	require.NoError(t, err)
	require.True(t, ok)
	a2 := linkednode.NewNode[uint64](item{ID: 2})
	require.NoError(t, c.AddOptionAfterWithKey("a", &self, &a2))

	head, ok, err := c.Head("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 10, head)
	tail, ok, err := c.TailIndex("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 10, tail)

	tail, ok, err = c.TailIndex("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, tail)

	mni, ok, err := c.Tail.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", mni.MultiKey)

	only, _, err := c.Node(10)
	require.NoError(t, err)
	require.NoError(t, c.RemoveOptionWithKey("b", &only))
	_, ok, err = c.Head("b")
	require.NoError(t, err)
	assert.False(t, ok)

	head, ok, err = c.Head("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, head)
}

func TestPlainRemoveKillsBounds(t *testing.T) {
	c := newMultiCollection(kv.NewMemStore())

	a := linkednode.NewNode[uint64](item{ID: 5})
	require.NoError(t, c.InitStorageWithKey("k", &a))
	self, _, err := c.Node(5)
	require.NoError(t, err)
	require.NoError(t, c.RemoveWithKey("k", &self))

	has, err := c.Header.Has("k")
	require.NoError(t, err)
	assert.False(t, has)

	// a tail pointing elsewhere while the header matches is a broken head
	b := linkednode.NewNode[uint64](item{ID: 6})
	require.NoError(t, c.InitStorageWithKey("k", &b))
	require.NoError(t, c.Tail.Set("k", linkednode.MultiNodeIndex[string, uint64]{MultiKey: "k", Index: 0}))
	self, _, err = c.Node(6)
	require.NoError(t, err)
	err = c.RemoveWithKey("k", &self)
	assert.True(t, errors.Is(err, linkednode.ErrBrokenHead), "got %v", err)
}
