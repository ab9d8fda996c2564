package pendingorders

import (
	"fmt"

	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
	"github.com/chainx-org/ChainX-sub003/types"
)

// OrderType is the execution class of an order.
type OrderType uint8

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(t))
	}
}

// ParseOrderType accepts "limit" or "market".
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "", "limit":
		return Limit, nil
	case "market":
		return Market, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", s)
	}
}

// OrderStatus tracks how much of an order has been filled.
type OrderStatus uint8

const (
	FillNone OrderStatus = iota
	FillPart
	FillAll
	FillPartAndCancel
	Cancel
)

func (s OrderStatus) String() string {
	switch s {
	case FillNone:
		return "FillNone"
	case FillPart:
		return "FillPart"
	case FillAll:
		return "FillAll"
	case FillPartAndCancel:
		return "FillPartAndCancel"
	case Cancel:
		return "Cancel"
	default:
		return fmt.Sprintf("OrderStatus(%d)", uint8(s))
	}
}

// Live reports whether an order in this status can still be filled or
// cancelled.
func (s OrderStatus) Live() bool {
	return s == FillNone || s == FillPart
}

// OrderKey addresses an order: the index counts the orders user placed on
// pair.
type OrderKey struct {
	User  types.AccountID `json:"user"`
	Pair  types.Pair      `json:"pair"`
	Index uint64          `json:"index"`
}

func (k OrderKey) String() string {
	return fmt.Sprintf("%s/%s#%d", k.User, k.Pair, k.Index)
}

func encodeOrderKey(k OrderKey) []interface{} {
	return []interface{}{string(k.User), k.Pair.Base, k.Pair.Quote, k.Index}
}

// Order is a user order placed on a pair.
type Order struct {
	Pair      types.Pair      `json:"pair"`
	User      types.AccountID `json:"user"`
	Index     uint64          `json:"index"`
	Side      types.Side      `json:"side"`
	Class     OrderType       `json:"class"`
	Price     uint64          `json:"price"`
	Amount    uint64          `json:"amount"`
	HasFill   uint64          `json:"has_fill"`
	Status    OrderStatus     `json:"status"`
	Fills     []uint64        `json:"fills,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// Key returns the storage key of the order.
func (o Order) Key() OrderKey {
	return OrderKey{User: o.User, Pair: o.Pair, Index: o.Index}
}

// Remaining returns the unfilled amount.
func (o Order) Remaining() uint64 {
	return o.Amount - o.HasFill
}

// reservation returns the token and amount locked for the unfilled part of
// the order. Sells lock the base token, buys lock amount*price of quote.
func (o Order) reservation() (types.Token, uint64, error) {
	if o.Side == types.Sell {
		return types.Token(o.Pair.Base), o.Remaining(), nil
	}
	cost, err := libmath.SafeMulUint64(o.Remaining(), o.Price)
	return types.Token(o.Pair.Quote), cost, err
}

// CommandType says what the matching engine should do with an order.
type CommandType uint8

const (
	Match CommandType = iota
	CancelCmd
)

func (t CommandType) String() string {
	if t == CancelCmd {
		return "Cancel"
	}
	return "Match"
}

// Command is a pending instruction for the matching engine. BidID is zero
// until the engine resolves the command.
type Command struct {
	User  types.AccountID `json:"user"`
	Pair  types.Pair      `json:"pair"`
	Index uint64          `json:"index"`
	Type  CommandType     `json:"type"`
	BidID uint64          `json:"bid_id"`
}

// OrderKey returns the key of the order the command refers to.
func (c Command) OrderKey() OrderKey {
	return OrderKey{User: c.User, Pair: c.Pair, Index: c.Index}
}

// FillRequest describes one settlement between a resting maker and an
// incoming taker at the maker's price.
type FillRequest struct {
	Pair       types.Pair
	Maker      types.AccountID
	Taker      types.AccountID
	MakerOrder uint64
	TakerOrder uint64
	Price      uint64
	Amount     uint64
	MakerFee   uint64
	TakerFee   uint64
}

// Fill is the record of a settled FillRequest.
type Fill struct {
	Pair       types.Pair      `json:"pair"`
	Index      uint64          `json:"index"`
	Maker      types.AccountID `json:"maker"`
	Taker      types.AccountID `json:"taker"`
	MakerOrder uint64          `json:"maker_order"`
	TakerOrder uint64          `json:"taker_order"`
	Price      uint64          `json:"price"`
	Amount     uint64          `json:"amount"`
	MakerFee   uint64          `json:"maker_fee"`
	TakerFee   uint64          `json:"taker_fee"`
	Height     int64           `json:"height"`
}

// PairInfo is a tradable pair. Precision is the number of decimals used to
// render prices.
type PairInfo struct {
	Pair      types.Pair `json:"pair"`
	Precision uint32     `json:"precision"`
	Online    bool       `json:"online"`
}
