package matchorder

import (
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/linkednode"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
	"github.com/chainx-org/ChainX-sub003/types"
)

func (e *Engine) loadLevel(idx uint64) (*bookNode, error) {
	n, ok, err := e.book.Node(idx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: level %d", linkednode.ErrDanglingLink, idx)
	}
	return &n, nil
}

// findLevel walks the book side key from its head and returns the first
// level at price, or nil.
func (e *Engine) findLevel(key BookKey, price uint64) (*bookNode, error) {
	idx, ok, err := e.book.Head(key)
	if err != nil {
		return nil, err
	}
	for ok {
		n, err := e.loadLevel(idx)
		if err != nil {
			return nil, err
		}
		if n.Data.Price == price {
			return n, nil
		}
		idx, ok = n.NextIndex()
	}
	return nil, nil
}

func (e *Engine) newLevel(d BidDetail) (bookNode, error) {
	id, err := e.nextNodeID()
	if err != nil {
		return bookNode{}, err
	}
	return linkednode.NewNode[uint64](Bid{
		NodeID: id,
		Price:  d.Price,
		Sum:    d.Amount,
		List:   []uint64{d.ID},
	}), nil
}

// InsertBidList adds d to its side of the book. It joins the level at
// d.Price if there is one, or opens a new level in front of the first level
// d has priority over.
func (e *Engine) InsertBidList(d BidDetail) error {
	key := BookKey{Pair: d.Pair, Side: d.Side}
	idx, ok, err := e.book.Head(key)
	if err != nil {
		return err
	}
	if !ok {
		level, err := e.newLevel(d)
		if err != nil {
			return err
		}
		return e.book.InitStorageWithKey(key, &level)
	}

	for {
		n, err := e.loadLevel(idx)
		if err != nil {
			return err
		}

		if n.Data.Price == d.Price {
			sum, err := libmath.SafeAddUint64(n.Data.Sum, d.Amount)
			if err != nil {
				return fmt.Errorf("level %d of %s: %w", n.Data.NodeID, key, err)
			}
			n.Data.Sum = sum
			n.Data.List = append(n.Data.List, d.ID)
			return e.book.Nodes.Set(idx, *n)
		}

		if ahead(d.Side, d.Price, n.Data.Price) {
			level, err := e.newLevel(d)
			if err != nil {
				return err
			}
			return e.book.AddOptionBeforeWithKey(key, n, &level)
		}

		next, ok := n.NextIndex()
		if !ok {
			level, err := e.newLevel(d)
			if err != nil {
				return err
			}
			return e.book.AddOptionAfterWithKey(key, n, &level)
		}
		idx = next
	}
}

// RemoveFromBid takes the levels at prices off the book side key. Levels
// are found by price; a price with no level is ignored.
func (e *Engine) RemoveFromBid(key BookKey, prices []uint64) error {
	for _, price := range prices {
		n, err := e.findLevel(key, price)
		if err != nil {
			return err
		}
		if n == nil {
			continue
		}
		if err := e.book.RemoveOptionWithKey(key, n); err != nil {
			return fmt.Errorf("removing level %d of %s: %w", n.Data.NodeID, key, err)
		}
	}
	return nil
}

// removeFromBidList drops ids from the level's order list, deletes their
// bids and writes the level back.
func (e *Engine) removeFromBidList(n *bookNode, ids []uint64) error {
	if len(ids) > 0 {
		drop := make(map[uint64]bool, len(ids))
		for _, id := range ids {
			drop[id] = true
		}
		kept := n.Data.List[:0]
		for _, id := range n.Data.List {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		n.Data.List = kept

		for _, id := range ids {
			d, ok, err := e.bidOf.Get(id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := e.deleteBid(d); err != nil {
				return err
			}
		}
	}
	return e.book.Nodes.Set(n.Index(), *n)
}

// CancelBid takes d off the book. The level loses d's remaining amount and
// is removed once it is empty.
func (e *Engine) CancelBid(d BidDetail) error {
	key := BookKey{Pair: d.Pair, Side: d.Side}
	n, err := e.findLevel(key, d.Price)
	if err != nil {
		return err
	}
	if n == nil {
		e.logger.Error("cancelled bid has no level", "bid", d.ID, "book", key, "price", d.Price)
		return e.deleteBid(d)
	}

	sum, err := libmath.SafeSubUint64(n.Data.Sum, d.Amount)
	if err != nil {
		return fmt.Errorf("level %d of %s holds %d, cancelling %d: %w", n.Data.NodeID, key, n.Data.Sum, d.Amount, err)
	}
	n.Data.Sum = sum
	if err := e.removeFromBidList(n, []uint64{d.ID}); err != nil {
		return err
	}
	if sum == 0 {
		return e.RemoveFromBid(key, []uint64{d.Price})
	}
	return nil
}

// BookLevels returns the levels of one side of a pair's book from best to
// worst price.
func (e *Engine) BookLevels(p types.Pair, side types.Side) ([]Bid, error) {
	key := BookKey{Pair: p, Side: side}
	idx, ok, err := e.book.Head(key)
	if err != nil {
		return nil, err
	}
	var levels []Bid
	for ok {
		n, err := e.loadLevel(idx)
		if err != nil {
			return nil, err
		}
		levels = append(levels, n.Data)
		idx, ok = n.NextIndex()
	}
	return levels, nil
}
