package pendingorders

import (
	"github.com/chainx-org/ChainX-sub003/types"
)

// PutOrderEvent is emitted when an order is accepted.
type PutOrderEvent struct {
	User   types.AccountID `json:"user"`
	Pair   types.Pair      `json:"pair"`
	Index  uint64          `json:"index"`
	Side   types.Side      `json:"side"`
	Class  OrderType       `json:"class"`
	Price  uint64          `json:"price"`
	Amount uint64          `json:"amount"`
	Block  int64           `json:"block"`
}

func (PutOrderEvent) EventType() string { return "PutOrder" }

// CancelOrderEvent is emitted when a user cancels a live order.
type CancelOrderEvent struct {
	User     types.AccountID `json:"user"`
	Pair     types.Pair      `json:"pair"`
	Index    uint64          `json:"index"`
	Unlocked uint64          `json:"unlocked"`
	Block    int64           `json:"block"`
}

func (CancelOrderEvent) EventType() string { return "CancelOrder" }

// FillOrderEvent is emitted for every settled fill.
type FillOrderEvent struct {
	Fill
}

func (FillOrderEvent) EventType() string { return "FillOrder" }

// RegisterPairEvent is emitted when a pair becomes tradable.
type RegisterPairEvent struct {
	Pair      types.Pair `json:"pair"`
	Precision uint32     `json:"precision"`
}

func (RegisterPairEvent) EventType() string { return "RegisterPair" }
