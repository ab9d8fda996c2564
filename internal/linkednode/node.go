package linkednode

import "errors"

var (
	// ErrInvalidNode is returned when a node is still detached after being
	// linked into a list.
	ErrInvalidNode = errors.New("do add for a invalid node")

	// ErrBrokenHead is returned when the head of a list has no successor
	// although the tail points elsewhere.
	ErrBrokenHead = errors.New("prev is none, next should't be none")

	// ErrHeaderTailMismatch is returned when a node without a predecessor
	// (successor) is not the node the Header (Tail) points at.
	ErrHeaderTailMismatch = errors.New("meet err for header and tail")

	// ErrDanglingLink is returned when a prev/next index does not resolve to a
	// node in the NodeMap.
	ErrDanglingLink = errors.New("link points at a missing node")

	// ErrInconsistentSplice is returned when a neighbor does not link back to
	// the node being unlinked.
	ErrInconsistentSplice = errors.New("neighbor does not link back to node")
)

// Data is a list payload. Index is the payload's natural key and doubles as
// the node's key in the NodeMap.
type Data[I comparable] interface {
	Index() I
}

// Node is a list entry. A node with neither Prev nor Next is detached.
type Node[I comparable, D Data[I]] struct {
	Prev *I `json:"prev"`
	Next *I `json:"next"`
	Data D  `json:"data"`
}

// NewNode returns a detached node holding data.
func NewNode[I comparable, D Data[I]](data D) Node[I, D] {
	return Node[I, D]{Data: data}
}

func (n *Node[I, D]) Index() I {
	return n.Data.Index()
}

// PrevIndex returns the predecessor's index, if any.
func (n *Node[I, D]) PrevIndex() (I, bool) {
	if n.Prev == nil {
		var zero I
		return zero, false
	}
	return *n.Prev, true
}

// NextIndex returns the successor's index, if any.
func (n *Node[I, D]) NextIndex() (I, bool) {
	if n.Next == nil {
		var zero I
		return zero, false
	}
	return *n.Next, true
}

// IsNone reports whether the node is detached.
func (n *Node[I, D]) IsNone() bool {
	return n.Prev == nil && n.Next == nil
}

func (n *Node[I, D]) setPrev(i I) { n.Prev = &i }
func (n *Node[I, D]) setNext(i I) { n.Next = &i }

func (n *Node[I, D]) clear() {
	n.Prev = nil
	n.Next = nil
}

// NodeIndex points at the head or tail of a single list.
type NodeIndex[I comparable] struct {
	Index I `json:"index"`
}

// MultiNodeIndex points at the head or tail of the list in bucket MultiKey.
type MultiNodeIndex[K comparable, I comparable] struct {
	MultiKey K `json:"multi_key"`
	Index    I `json:"index"`
}
