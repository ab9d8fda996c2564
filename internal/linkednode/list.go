package linkednode

import (
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
)

// bounds reads and writes the Header and Tail of one list.
type bounds[I comparable] interface {
	headIndex() (I, bool, error)
	tailIndex() (I, bool, error)
	hasHead() (bool, error)
	hasTail() (bool, error)
	setHead(I) error
	setTail(I) error
	killHead() error
	killTail() error
}

// list implements the linking algorithms over a NodeMap and a bounds.
type list[I comparable, D Data[I]] struct {
	nodes kv.Map[I, Node[I, D]]
	b     bounds[I]
}

func (l *list[I, D]) loadNode(idx I) (*Node[I, D], error) {
	n, ok, err := l.nodes.Get(idx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrDanglingLink, idx)
	}
	return &n, nil
}

func (l *list[I, D]) checkHead(idx I) error {
	h, ok, err := l.b.headIndex()
	if err != nil {
		return err
	}
	if ok && h != idx {
		return fmt.Errorf("%w: header at %v, node %v has no prev", ErrHeaderTailMismatch, h, idx)
	}
	return nil
}

func (l *list[I, D]) checkTail(idx I) error {
	t, ok, err := l.b.tailIndex()
	if err != nil {
		return err
	}
	if ok && t != idx {
		return fmt.Errorf("%w: tail at %v, node %v has no next", ErrHeaderTailMismatch, t, idx)
	}
	return nil
}

func (l *list[I, D]) initStorage(n *Node[I, D]) error {
	idx := n.Index()
	st := l.newStage()

	hasHead, err := l.b.hasHead()
	if err != nil {
		return err
	}
	if !hasHead {
		st.setHead(idx)
	}
	hasTail, err := l.b.hasTail()
	if err != nil {
		return err
	}
	if !hasTail {
		st.setTail(idx)
	}

	st.put(n)
	return st.commit()
}

func (l *list[I, D]) addBefore(self, node *Node[I, D]) error {
	selfIdx, nodeIdx := self.Index(), node.Index()
	if nodeIdx == selfIdx {
		return nil
	}
	if !node.IsNone() {
		return fmt.Errorf("%w: %v is already linked", ErrInvalidNode, nodeIdx)
	}

	st := l.newStage()
	if prevIdx, ok := self.PrevIndex(); ok {
		prev, err := l.loadNode(prevIdx)
		if err != nil {
			return err
		}
		if next, ok := prev.NextIndex(); !ok || next != selfIdx {
			return fmt.Errorf("%w: %v.next != %v", ErrInconsistentSplice, prevIdx, selfIdx)
		}
		prev.setNext(nodeIdx)
		node.setPrev(prevIdx)
		st.put(prev)
	} else {
		if err := l.checkHead(selfIdx); err != nil {
			return err
		}
		st.setHead(nodeIdx)
	}
	node.setNext(selfIdx)
	self.setPrev(nodeIdx)

	if node.IsNone() {
		return ErrInvalidNode
	}
	st.put(node)
	st.put(self)
	return st.commit()
}

func (l *list[I, D]) addAfter(self, node *Node[I, D]) error {
	selfIdx, nodeIdx := self.Index(), node.Index()
	if nodeIdx == selfIdx {
		return nil
	}
	if !node.IsNone() {
		return fmt.Errorf("%w: %v is already linked", ErrInvalidNode, nodeIdx)
	}

	st := l.newStage()
	if nextIdx, ok := self.NextIndex(); ok {
		next, err := l.loadNode(nextIdx)
		if err != nil {
			return err
		}
		if prev, ok := next.PrevIndex(); !ok || prev != selfIdx {
			return fmt.Errorf("%w: %v.prev != %v", ErrInconsistentSplice, nextIdx, selfIdx)
		}
		next.setPrev(nodeIdx)
		node.setNext(nextIdx)
		st.put(next)
	} else {
		if err := l.checkTail(selfIdx); err != nil {
			return err
		}
		st.setTail(nodeIdx)
	}
	node.setPrev(selfIdx)
	self.setNext(nodeIdx)

	if node.IsNone() {
		return ErrInvalidNode
	}
	st.put(node)
	st.put(self)
	return st.commit()
}

func (l *list[I, D]) remove(self *Node[I, D]) error {
	selfIdx := self.Index()
	prevIdx, hasPrev := self.PrevIndex()
	nextIdx, hasNext := self.NextIndex()

	st := l.newStage()
	switch {
	case !hasPrev && !hasNext:
		h, hok, err := l.b.headIndex()
		if err != nil {
			return err
		}
		t, tok, err := l.b.tailIndex()
		if err != nil {
			return err
		}
		if hok && h != selfIdx {
			return fmt.Errorf("%w: header at %v, removing %v", ErrHeaderTailMismatch, h, selfIdx)
		}
		if tok && t != selfIdx {
			if hok {
				return fmt.Errorf("%w: tail at %v, removing %v", ErrBrokenHead, t, selfIdx)
			}
			return fmt.Errorf("%w: tail at %v, removing %v", ErrHeaderTailMismatch, t, selfIdx)
		}
		if hok {
			st.killHead()
		}
		if tok {
			st.killTail()
		}

	case !hasPrev:
		if err := l.checkHead(selfIdx); err != nil {
			return err
		}
		next, err := l.loadNode(nextIdx)
		if err != nil {
			return err
		}
		if p, ok := next.PrevIndex(); !ok || p != selfIdx {
			return fmt.Errorf("%w: %v.prev != %v", ErrInconsistentSplice, nextIdx, selfIdx)
		}
		next.Prev = nil
		st.put(next)
		st.setHead(nextIdx)

	case !hasNext:
		if err := l.checkTail(selfIdx); err != nil {
			return err
		}
		prev, err := l.loadNode(prevIdx)
		if err != nil {
			return err
		}
		if n, ok := prev.NextIndex(); !ok || n != selfIdx {
			return fmt.Errorf("%w: %v.next != %v", ErrInconsistentSplice, prevIdx, selfIdx)
		}
		prev.Next = nil
		st.put(prev)
		st.setTail(prevIdx)

	default:
		prev, err := l.loadNode(prevIdx)
		if err != nil {
			return err
		}
		next, err := l.loadNode(nextIdx)
		if err != nil {
			return err
		}
		if n, ok := prev.NextIndex(); !ok || n != selfIdx {
			return fmt.Errorf("%w: %v.next != %v", ErrInconsistentSplice, prevIdx, selfIdx)
		}
		if p, ok := next.PrevIndex(); !ok || p != selfIdx {
			return fmt.Errorf("%w: %v.prev != %v", ErrInconsistentSplice, nextIdx, selfIdx)
		}
		prev.setNext(nextIdx)
		next.setPrev(prevIdx)
		st.put(prev)
		st.put(next)
	}

	st.del(selfIdx)
	if err := st.commit(); err != nil {
		return err
	}
	self.clear()
	return nil
}

// stage collects the writes of one linking operation.
type stage[I comparable, D Data[I]] struct {
	l       *list[I, D]
	order   []I
	nodes   map[I]*Node[I, D]
	deleted map[I]bool

	head, tail             *I
	headKilled, tailKilled bool
}

func (l *list[I, D]) newStage() *stage[I, D] {
	return &stage[I, D]{
		l:       l,
		nodes:   make(map[I]*Node[I, D]),
		deleted: make(map[I]bool),
	}
}

func (s *stage[I, D]) track(idx I) {
	if _, ok := s.nodes[idx]; ok {
		return
	}
	if s.deleted[idx] {
		return
	}
	s.order = append(s.order, idx)
}

func (s *stage[I, D]) put(n *Node[I, D]) {
	idx := n.Index()
	s.track(idx)
	delete(s.deleted, idx)
	s.nodes[idx] = n
}

func (s *stage[I, D]) del(idx I) {
	s.track(idx)
	delete(s.nodes, idx)
	s.deleted[idx] = true
}

func (s *stage[I, D]) setHead(idx I) { s.head, s.headKilled = &idx, false }
func (s *stage[I, D]) setTail(idx I) { s.tail, s.tailKilled = &idx, false }
func (s *stage[I, D]) killHead()     { s.head, s.headKilled = nil, true }
func (s *stage[I, D]) killTail()     { s.tail, s.tailKilled = nil, true }

func (s *stage[I, D]) commit() error {
	for _, idx := range s.order {
		var err error
		if s.deleted[idx] {
			err = s.l.nodes.Delete(idx)
		} else {
			err = s.l.nodes.Set(idx, *s.nodes[idx])
		}
		if err != nil {
			return err
		}
	}

	switch {
	case s.head != nil:
		if err := s.l.b.setHead(*s.head); err != nil {
			return err
		}
	case s.headKilled:
		if err := s.l.b.killHead(); err != nil {
			return err
		}
	}

	switch {
	case s.tail != nil:
		if err := s.l.b.setTail(*s.tail); err != nil {
			return err
		}
	case s.tailKilled:
		if err := s.l.b.killTail(); err != nil {
			return err
		}
	}
	return nil
}
