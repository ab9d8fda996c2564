package matchorder

import (
	"github.com/chainx-org/ChainX-sub003/types"
)

type SetMatchFeeEvent struct {
	Fee uint64 `json:"fee"`
}

func (SetMatchFeeEvent) EventType() string { return "SetMatchFee" }

// AddBidEvent is emitted when an order enters the matching engine.
type AddBidEvent struct {
	Pair       types.Pair      `json:"pair"`
	User       types.AccountID `json:"user"`
	OrderIndex uint64          `json:"order_index"`
	Price      uint64          `json:"price"`
	Amount     uint64          `json:"amount"`
	Block      int64           `json:"block"`
}

func (AddBidEvent) EventType() string { return "AddBid" }

// CancelBidEvent is emitted when a cancel command is resolved to a bid.
type CancelBidEvent struct {
	Pair       types.Pair      `json:"pair"`
	User       types.AccountID `json:"user"`
	OrderIndex uint64          `json:"order_index"`
	Block      int64           `json:"block"`
}

func (CancelBidEvent) EventType() string { return "CancelBid" }

// MatchFailEvent is emitted when settling a fill fails. The book keeps the
// state of the attempted match.
type MatchFailEvent struct {
	BidID       uint64          `json:"bid_id"`
	Pair        types.Pair      `json:"pair"`
	Maker       types.AccountID `json:"maker"`
	Taker       types.AccountID `json:"taker"`
	MakerIndex  uint64          `json:"maker_idx"`
	TakerIndex  uint64          `json:"taker_idx"`
	Price       uint64          `json:"price"`
	MakerAmount uint64          `json:"maker_amt"`
	TakerAmount uint64          `json:"taker_amt"`
	FeeMaker    uint64          `json:"fee_maker"`
	FeeTaker    uint64          `json:"fee_taker"`
	Block       int64           `json:"block"`
	Reason      string          `json:"reason"`
}

func (MatchFailEvent) EventType() string { return "MatchFail" }
