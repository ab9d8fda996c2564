package linkednode

import (
	"github.com/chainx-org/ChainX-sub003/internal/kv"
)

// Collection binds the storage of a single list: its Header cell, NodeMap
// and Tail cell. Several collections may share one NodeMap.
type Collection[I comparable, D Data[I]] struct {
	Header kv.Value[NodeIndex[I]]
	Nodes  kv.Map[I, Node[I, D]]
	Tail   kv.Value[NodeIndex[I]]
}

func (c Collection[I, D]) list(plain bool) *list[I, D] {
	return &list[I, D]{nodes: c.Nodes, b: singleBounds[I]{header: c.Header, tail: c.Tail, plain: plain}}
}

// InitStorage makes n the sole member of the list. Header and Tail are only
// written if they do not exist yet; n is always written to the NodeMap.
func (c Collection[I, D]) InitStorage(n *Node[I, D]) error {
	return c.list(true).initStorage(n)
}

// AddBefore links node immediately before self, moving the Header to node
// when self is the head.
func (c Collection[I, D]) AddBefore(self, node *Node[I, D]) error {
	return c.list(true).addBefore(self, node)
}

// AddAfter links node immediately after self, moving the Tail to node when
// self is the tail.
func (c Collection[I, D]) AddAfter(self, node *Node[I, D]) error {
	return c.list(true).addAfter(self, node)
}

// Remove unlinks self and deletes it from the NodeMap.
func (c Collection[I, D]) Remove(self *Node[I, D]) error {
	return c.list(true).remove(self)
}

// AddOptionBefore is AddBefore for lists whose Header may be absent.
func (c Collection[I, D]) AddOptionBefore(self, node *Node[I, D]) error {
	return c.list(false).addBefore(self, node)
}

// AddOptionAfter is AddAfter for lists whose Tail may be absent.
func (c Collection[I, D]) AddOptionAfter(self, node *Node[I, D]) error {
	return c.list(false).addAfter(self, node)
}

// RemoveOption is Remove for lists whose Header and Tail are removed when
// the list empties.
func (c Collection[I, D]) RemoveOption(self *Node[I, D]) error {
	return c.list(false).remove(self)
}

// Head returns the index of the first node, if the list is not empty.
func (c Collection[I, D]) Head() (I, bool, error) {
	return singleBounds[I]{header: c.Header, tail: c.Tail}.headIndex()
}

// TailIndex returns the index of the last node, if the list is not empty.
func (c Collection[I, D]) TailIndex() (I, bool, error) {
	return singleBounds[I]{header: c.Header, tail: c.Tail}.tailIndex()
}

// Node loads the node at idx.
func (c Collection[I, D]) Node(idx I) (Node[I, D], bool, error) {
	return c.Nodes.Get(idx)
}

// MultiCollection binds the storage of many lists sharing one NodeMap. Each
// bucket key K has its own Header and Tail entry.
type MultiCollection[K comparable, I comparable, D Data[I]] struct {
	Header kv.Map[K, MultiNodeIndex[K, I]]
	Nodes  kv.Map[I, Node[I, D]]
	Tail   kv.Map[K, MultiNodeIndex[K, I]]
}

func (c MultiCollection[K, I, D]) list(key K, plain bool) *list[I, D] {
	return &list[I, D]{
		nodes: c.Nodes,
		b:     multiBounds[K, I]{header: c.Header, tail: c.Tail, key: key, plain: plain},
	}
}

// InitStorageWithKey makes n the sole member of the list in bucket key.
// Header and Tail are only written if they do not exist yet.
func (c MultiCollection[K, I, D]) InitStorageWithKey(key K, n *Node[I, D]) error {
	return c.list(key, true).initStorage(n)
}

// AddBeforeWithKey links node before self in bucket key.
func (c MultiCollection[K, I, D]) AddBeforeWithKey(key K, self, node *Node[I, D]) error {
	return c.list(key, true).addBefore(self, node)
}

// AddAfterWithKey links node after self in bucket key.
func (c MultiCollection[K, I, D]) AddAfterWithKey(key K, self, node *Node[I, D]) error {
	return c.list(key, true).addAfter(self, node)
}

// RemoveWithKey unlinks self from bucket key and deletes it.
func (c MultiCollection[K, I, D]) RemoveWithKey(key K, self *Node[I, D]) error {
	return c.list(key, true).remove(self)
}

// AddOptionBeforeWithKey links node before self in bucket key, treating an
// absent Header as an empty list.
func (c MultiCollection[K, I, D]) AddOptionBeforeWithKey(key K, self, node *Node[I, D]) error {
	return c.list(key, false).addBefore(self, node)
}

// AddOptionAfterWithKey links node after self in bucket key, treating an
// absent Tail as an empty list.
func (c MultiCollection[K, I, D]) AddOptionAfterWithKey(key K, self, node *Node[I, D]) error {
	return c.list(key, false).addAfter(self, node)
}

// RemoveOptionWithKey unlinks self from bucket key and deletes it; the
// bucket's Header and Tail are removed when it empties.
func (c MultiCollection[K, I, D]) RemoveOptionWithKey(key K, self *Node[I, D]) error {
	return c.list(key, false).remove(self)
}

// Head returns the index of the first node of bucket key.
func (c MultiCollection[K, I, D]) Head(key K) (I, bool, error) {
	return multiBounds[K, I]{header: c.Header, tail: c.Tail, key: key}.headIndex()
}

// TailIndex returns the index of the last node of bucket key.
func (c MultiCollection[K, I, D]) TailIndex(key K) (I, bool, error) {
	return multiBounds[K, I]{header: c.Header, tail: c.Tail, key: key}.tailIndex()
}

// Node loads the node at idx.
func (c MultiCollection[K, I, D]) Node(idx I) (Node[I, D], bool, error) {
	return c.Nodes.Get(idx)
}

type singleBounds[I comparable] struct {
	header, tail kv.Value[NodeIndex[I]]
	plain        bool
}

func (b singleBounds[I]) read(v kv.Value[NodeIndex[I]]) (I, bool, error) {
	if b.plain {
		ni, err := v.GetOrDefault()
		return ni.Index, err == nil, err
	}
	ni, ok, err := v.Get()
	return ni.Index, ok, err
}

func (b singleBounds[I]) headIndex() (I, bool, error) { return b.read(b.header) }
func (b singleBounds[I]) tailIndex() (I, bool, error) { return b.read(b.tail) }
func (b singleBounds[I]) hasHead() (bool, error) { return b.header.Exists() }
func (b singleBounds[I]) hasTail() (bool, error) { return b.tail.Exists() }
func (b singleBounds[I]) setHead(idx I) error { return b.header.Set(NodeIndex[I]{Index: idx}) }
func (b singleBounds[I]) setTail(idx I) error { return b.tail.Set(NodeIndex[I]{Index: idx}) }
func (b singleBounds[I]) killHead() error { return b.header.Kill() }
func (b singleBounds[I]) killTail() error { return b.tail.Kill() }

type multiBounds[K comparable, I comparable] struct {
	header, tail kv.Map[K, MultiNodeIndex[K, I]]
	key          K
	plain        bool
}

func (b multiBounds[K, I]) read(m kv.Map[K, MultiNodeIndex[K, I]]) (I, bool, error) {
	if b.plain {
		ni, err := m.GetOrDefault(b.key)
		return ni.Index, err == nil, err
	}
	ni, ok, err := m.Get(b.key)
	return ni.Index, ok, err
}

func (b multiBounds[K, I]) headIndex() (I, bool, error) { return b.read(b.header) }
func (b multiBounds[K, I]) tailIndex() (I, bool, error) { return b.read(b.tail) }
func (b multiBounds[K, I]) hasHead() (bool, error) { return b.header.Has(b.key) }
func (b multiBounds[K, I]) hasTail() (bool, error) { return b.tail.Has(b.key) }

func (b multiBounds[K, I]) setHead(idx I) error {
	return b.header.Set(b.key, MultiNodeIndex[K, I]{MultiKey: b.key, Index: idx})
}

func (b multiBounds[K, I]) setTail(idx I) error {
	return b.tail.Set(b.key, MultiNodeIndex[K, I]{MultiKey: b.key, Index: idx})
}

func (b multiBounds[K, I]) killHead() error { return b.header.Delete(b.key) }
func (b multiBounds[K, I]) killTail() error { return b.tail.Delete(b.key) }
