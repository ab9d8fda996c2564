package chain

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/types"
)

const (
	TxPutOrder    = "put_order"
	TxCancelOrder = "cancel_order"
	TxSetMatchFee = "set_match_fee"
)

// Result codes of a tx. A non-zero code means the tx was rolled back.
const (
	CodeTypeOK            uint32 = 0
	CodeTypeEncodingError uint32 = 1
	CodeTypeRejected      uint32 = 2
)

// Tx is one state-changing request. Which fields are read depends on Type.
type Tx struct {
	Type      string          `toml:"type" json:"type"`
	Account   types.AccountID `toml:"account" json:"account,omitempty"`
	Pair      string          `toml:"pair" json:"pair,omitempty"`
	Side      string          `toml:"side" json:"side,omitempty"`
	OrderType string          `toml:"order-type" json:"order_type,omitempty"`
	Amount    uint64          `toml:"amount" json:"amount,omitempty"`
	Price     uint64          `toml:"price" json:"price,omitempty"`
	Index     uint64          `toml:"index" json:"index,omitempty"`
	Fee       uint64          `toml:"fee" json:"fee,omitempty"`
}

// Block is an ordered list of txs executed at Height.
type Block struct {
	Height int64
	Txs    []Tx
}

// TxResult reports the outcome of one tx.
type TxResult struct {
	Code uint32 `json:"code"`
	Log  string `json:"log,omitempty"`
	// Index of the order placed or cancelled.
	OrderIndex uint64 `json:"order_index,omitempty"`
}

func (r TxResult) IsOK() bool { return r.Code == CodeTypeOK }

// BlockResult is what the chain committed for a block.
type BlockResult struct {
	Height    int64             `json:"height"`
	AppHash   []byte            `json:"app_hash"`
	TxResults []TxResult        `json:"tx_results"`
	Events    []events.Envelope `json:"events"`
}

// Script is a sequence of blocks read from a TOML file, e.g.
//
//	[[blocks]]
//	[[blocks.txs]]
//	type = "put_order"
//	account = "alice"
//	pair = "BTC/USDT"
//	side = "buy"
//	amount = 10
//	price = 100
type Script struct {
	Blocks []ScriptBlock `toml:"blocks"`
}

type ScriptBlock struct {
	Txs []Tx `toml:"txs"`
}

// LoadScript reads a block script.
func LoadScript(path string) (*Script, error) {
	var s Script
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("reading block script %s: %w", path, err)
	}
	return &s, nil
}
