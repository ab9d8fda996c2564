package matchorder

import (
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/types"
)

// Bid is a price level of one side of a book. NodeID is the level's key in
// the book list; it comes from a counter so a price can leave the book and
// come back without reusing a key.
type Bid struct {
	NodeID uint64   `json:"nodeid"`
	Price  uint64   `json:"price"`
	Sum    uint64   `json:"sum"`
	List   []uint64 `json:"list"`
}

// Index implements linkednode.Data.
func (b Bid) Index() uint64 { return b.NodeID }

// BidDetail is the matching state of one live order.
type BidDetail struct {
	ID         uint64                  `json:"id"`
	Pair       types.Pair              `json:"pair"`
	Side       types.Side              `json:"side"`
	Class      pendingorders.OrderType `json:"class"`
	User       types.AccountID         `json:"user"`
	OrderIndex uint64                  `json:"order_index"`
	Price      uint64                  `json:"price"`
	Amount     uint64                  `json:"amount"`
	// Time is the height of the block the bid entered the engine in.
	Time       int64                   `json:"time"`
}

// OrderKey returns the key of the order the bid was created from.
func (d BidDetail) OrderKey() pendingorders.OrderKey {
	return pendingorders.OrderKey{User: d.User, Pair: d.Pair, Index: d.OrderIndex}
}

// BookKey selects one side of the book of a pair.
type BookKey struct {
	Pair types.Pair `json:"pair"`
	Side types.Side `json:"side"`
}

func (k BookKey) String() string {
	return k.Pair.String() + ":" + k.Side.String()
}

func encodeBookKey(k BookKey) []interface{} {
	return []interface{}{k.Pair.Base, k.Pair.Quote, uint64(k.Side)}
}

func encodeOrderKey(k pendingorders.OrderKey) []interface{} {
	return []interface{}{string(k.User), k.Pair.Base, k.Pair.Quote, k.Index}
}

// crosses reports whether a taker on side at price can trade with a level
// at levelPrice on the opposite side.
func crosses(side types.Side, price, levelPrice uint64) bool {
	if side == types.Sell {
		return price <= levelPrice
	}
	return price >= levelPrice
}

// ahead reports whether a new order at price has priority over an existing
// level at levelPrice of the same side.
func ahead(side types.Side, price, levelPrice uint64) bool {
	if side == types.Sell {
		return price < levelPrice
	}
	return price > levelPrice
}
