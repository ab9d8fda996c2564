// Package matchorder keeps the order book of every pair and matches the
// orders queued by the pending-orders ledger once per block.
//
// Each side of a pair's book is a list of price levels stored with the
// linkednode package, bucketed by BookKey. The list front is the best price:
// ascending for sells, descending for buys. Within a level, orders keep
// their arrival order.
package matchorder

import (
	"fmt"
	"time"

	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/internal/linkednode"
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
)

// PendingOrders is the ledger the engine takes commands from and reports
// fills to.
type PendingOrders interface {
	MaxCommandID() (uint64, error)
	CommandOf(id uint64) (pendingorders.Command, bool, error)
	OrderOf(key pendingorders.OrderKey) (pendingorders.Order, bool, error)
	UpdateCommandOf(id, bidID uint64) error
	ClearCommand() error
	FillOrder(height int64, req pendingorders.FillRequest) error
}

type bookNode = linkednode.Node[uint64, Bid]

// Engine is the matching engine over a store.
type Engine struct {
	orders  PendingOrders
	emitter events.Emitter
	logger  log.Logger
	metrics *Metrics

	book           linkednode.MultiCollection[BookKey, uint64, Bid]
	nodeID         kv.Value[uint64]
	bidOf          kv.Map[uint64, BidDetail]
	lastBidIndex   kv.Value[uint64]
	bidOfUserOrder kv.Map[pendingorders.OrderKey, uint64]
	matchFee       kv.Value[uint64]
}

// EngineOption sets an optional parameter on the Engine.
type EngineOption func(*Engine)

// WithMetrics sets the metrics.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithEmitter sets the emitter receiving the engine's events.
func WithEmitter(em events.Emitter) EngineOption {
	return func(e *Engine) { e.emitter = em }
}

// WithLogger sets the engine's logger.
func WithLogger(l log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l.With("module", "matchorder") }
}

// NewEngine binds an engine to store, taking commands from orders.
func NewEngine(store kv.Store, orders PendingOrders, options ...EngineOption) *Engine {
	e := &Engine{
		orders:  orders,
		emitter: events.NopEmitter(),
		logger:  log.NewNopLogger(),
		metrics: NopMetrics(),

		book: linkednode.MultiCollection[BookKey, uint64, Bid]{
			Header: kv.NewMap[BookKey, linkednode.MultiNodeIndex[BookKey, uint64]](store, "matchorder/bidlist/header", encodeBookKey),
			Nodes:  kv.NewMap[uint64, bookNode](store, "matchorder/bidlist/cache", kv.Uint64Key),
			Tail:   kv.NewMap[BookKey, linkednode.MultiNodeIndex[BookKey, uint64]](store, "matchorder/bidlist/tail", encodeBookKey),
		},
		nodeID:         kv.NewValue[uint64](store, "matchorder/nodeid"),
		bidOf:          kv.NewMap[uint64, BidDetail](store, "matchorder/bidof", kv.Uint64Key),
		lastBidIndex:   kv.NewValue[uint64](store, "matchorder/lastbidindex"),
		bidOfUserOrder: kv.NewMap[pendingorders.OrderKey, uint64](store, "matchorder/bidofuserorder", encodeOrderKey),
		matchFee:       kv.NewValue[uint64](store, "matchorder/matchfee"),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// SetMatchFee stores the match fee.
func (e *Engine) SetMatchFee(fee uint64) error {
	if err := e.matchFee.Set(fee); err != nil {
		return err
	}
	e.emitter.Emit(SetMatchFeeEvent{Fee: fee})
	return nil
}

// MatchFee returns the stored match fee.
func (e *Engine) MatchFee() (uint64, error) {
	return e.matchFee.GetOrDefault()
}

// BidDetail returns the live bid with the given id.
func (e *Engine) BidDetail(id uint64) (BidDetail, bool, error) {
	return e.bidOf.Get(id)
}

// BidOfUserOrder returns the id of the live bid created from an order.
func (e *Engine) BidOfUserOrder(key pendingorders.OrderKey) (uint64, bool, error) {
	return e.bidOfUserOrder.Get(key)
}

// LastBidIndex returns the last bid id handed out. Bid ids start at 1.
func (e *Engine) LastBidIndex() (uint64, error) {
	return e.lastBidIndex.GetOrDefault()
}

// OnFinalize runs at the end of the block at height. It turns the queued
// commands into bids, matches or cancels them in command order and clears
// the queue. An error leaves the store in an unspecified state; the caller
// must discard the block's writes.
func (e *Engine) OnFinalize(height int64) error {
	defer func(start time.Time) {
		e.metrics.FinalizeDurationSeconds.Observe(time.Since(start).Seconds())
	}(time.Now())

	if err := e.ingest(height); err != nil {
		return fmt.Errorf("ingesting commands: %w", err)
	}
	if err := e.handleMatch(height); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return e.orders.ClearCommand()
}

func (e *Engine) ingest(height int64) error {
	last, err := e.orders.MaxCommandID()
	if err != nil {
		return err
	}

	for id := uint64(1); id <= last; id++ {
		cmd, ok, err := e.orders.CommandOf(id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		key := cmd.OrderKey()

		if cmd.Type == pendingorders.CancelCmd {
			bidID, ok, err := e.bidOfUserOrder.Get(key)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := e.orders.UpdateCommandOf(id, bidID); err != nil {
				return err
			}
			e.emitter.Emit(CancelBidEvent{Pair: key.Pair, User: key.User, OrderIndex: key.Index, Block: height})
			continue
		}

		order, ok, err := e.orders.OrderOf(key)
		if err != nil {
			return err
		}
		if !ok || !order.Status.Live() {
			continue
		}
		bidID, err := e.nextBidID()
		if err != nil {
			return err
		}
		detail := BidDetail{
			ID:         bidID,
			Pair:       order.Pair,
			Side:       order.Side,
			Class:      order.Class,
			User:       order.User,
			OrderIndex: order.Index,
			Price:      order.Price,
			Amount:     order.Remaining(),
			Time:       height,
		}
		if err := e.bidOf.Set(bidID, detail); err != nil {
			return err
		}
		if err := e.bidOfUserOrder.Set(key, bidID); err != nil {
			return err
		}
		if err := e.orders.UpdateCommandOf(id, bidID); err != nil {
			return err
		}
		e.metrics.BidsAdded.With("pair", detail.Pair.String()).Add(1)
		e.emitter.Emit(AddBidEvent{
			Pair:       detail.Pair,
			User:       detail.User,
			OrderIndex: detail.OrderIndex,
			Price:      detail.Price,
			Amount:     detail.Amount,
			Block:      height,
		})
	}
	return nil
}

func (e *Engine) handleMatch(height int64) error {
	last, err := e.orders.MaxCommandID()
	if err != nil {
		return err
	}

	walked := 0
	for id := uint64(1); id <= last; id++ {
		cmd, ok, err := e.orders.CommandOf(id)
		if err != nil {
			return err
		}
		if !ok || cmd.BidID == 0 {
			continue
		}
		detail, ok, err := e.bidOf.Get(cmd.BidID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if cmd.Type == pendingorders.CancelCmd {
			if err := e.CancelBid(detail); err != nil {
				return fmt.Errorf("cancelling bid %d: %w", detail.ID, err)
			}
			e.metrics.BidsCancelled.With("pair", detail.Pair.String()).Add(1)
			continue
		}

		n, err := e.doMatch(height, &detail)
		if err != nil {
			return fmt.Errorf("matching bid %d: %w", detail.ID, err)
		}
		walked += n
		if detail.Amount == 0 {
			if err := e.deleteBid(detail); err != nil {
				return err
			}
			continue
		}
		if err := e.bidOf.Set(detail.ID, detail); err != nil {
			return err
		}
		if err := e.InsertBidList(detail); err != nil {
			return fmt.Errorf("inserting bid %d: %w", detail.ID, err)
		}
	}
	e.metrics.LevelsWalked.Observe(float64(walked))
	return nil
}

func (e *Engine) nextBidID() (uint64, error) {
	last, err := e.lastBidIndex.GetOrDefault()
	if err != nil {
		return 0, err
	}
	id, err := libmath.SafeAddUint64(last, 1)
	if err != nil {
		return 0, err
	}
	return id, e.lastBidIndex.Set(id)
}

func (e *Engine) nextNodeID() (uint64, error) {
	id, err := e.nodeID.GetOrDefault()
	if err != nil {
		return 0, err
	}
	next, err := libmath.SafeAddUint64(id, 1)
	if err != nil {
		return 0, err
	}
	return id, e.nodeID.Set(next)
}

// deleteBid drops a bid and its order lookup.
func (e *Engine) deleteBid(d BidDetail) error {
	if err := e.bidOf.Delete(d.ID); err != nil {
		return err
	}
	return e.bidOfUserOrder.Delete(d.OrderKey())
}
