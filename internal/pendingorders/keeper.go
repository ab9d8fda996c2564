// Package pendingorders keeps user orders and the queue of commands the
// matching engine consumes each block. It reserves funds in the assets
// ledger when orders are placed and settles fills reported by the engine.
package pendingorders

import (
	"errors"
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/assets"
	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
	"github.com/chainx-org/ChainX-sub003/types"
)

var (
	ErrUnknownPair       = errors.New("pair is not registered")
	ErrPairOffline       = errors.New("pair is offline")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotLive      = errors.New("order is no longer live")
	ErrOverfill          = errors.New("fill exceeds the remaining amount")
	ErrSameSide          = errors.New("maker and taker are on the same side")
	ErrUnsupportedMarket = errors.New("market orders are not supported")
)

func encodePair(p types.Pair) []interface{} {
	return []interface{}{p.Base, p.Quote}
}

type userPair struct {
	User types.AccountID
	Pair types.Pair
}

func encodeUserPair(k userPair) []interface{} {
	return []interface{}{string(k.User), k.Pair.Base, k.Pair.Quote}
}

type fillKey struct {
	Pair  types.Pair
	Index uint64
}

func encodeFillKey(k fillKey) []interface{} {
	return []interface{}{k.Pair.Base, k.Pair.Quote, k.Index}
}

// Keeper is the pending-orders ledger over a store.
type Keeper struct {
	store   kv.Store
	assets  *assets.Keeper
	emitter events.Emitter
	logger  log.Logger

	feeAccount types.AccountID

	pairs      kv.Map[types.Pair, PairInfo]
	pairList   kv.Value[[]types.Pair]
	lastOrder  kv.Map[userPair, uint64]
	orders     kv.Map[OrderKey, Order]
	commands   kv.Map[uint64, Command]
	maxCommand kv.Value[uint64]
	fills      kv.Map[fillKey, Fill]
	lastFill   kv.Map[types.Pair, uint64]
}

// KeeperOption sets an optional parameter on the Keeper.
type KeeperOption func(*Keeper)

// WithFeeAccount sets the account fees are paid to.
func WithFeeAccount(acc types.AccountID) KeeperOption {
	return func(k *Keeper) { k.feeAccount = acc }
}

// WithEmitter sets the emitter receiving the keeper's events.
func WithEmitter(e events.Emitter) KeeperOption {
	return func(k *Keeper) { k.emitter = e }
}

// WithLogger sets the keeper's logger.
func WithLogger(l log.Logger) KeeperOption {
	return func(k *Keeper) { k.logger = l.With("module", "pendingorders") }
}

// NewKeeper binds the ledger to store. Balances are kept in the assets
// ledger of the same store.
func NewKeeper(store kv.Store, options ...KeeperOption) *Keeper {
	k := &Keeper{
		emitter:    events.NopEmitter(),
		logger:     log.NewNopLogger(),
		feeAccount: "fee",
	}
	for _, opt := range options {
		opt(k)
	}
	k.bind(store)
	return k
}

func (k *Keeper) bind(store kv.Store) {
	k.store = store
	k.assets = assets.NewKeeper(store)
	k.pairs = kv.NewMap[types.Pair, PairInfo](store, "pendingorders/pair", encodePair)
	k.pairList = kv.NewValue[[]types.Pair](store, "pendingorders/pairs")
	k.lastOrder = kv.NewMap[userPair, uint64](store, "pendingorders/lastorder", encodeUserPair)
	k.orders = kv.NewMap[OrderKey, Order](store, "pendingorders/order", encodeOrderKey)
	k.commands = kv.NewMap[uint64, Command](store, "pendingorders/command", kv.Uint64Key)
	k.maxCommand = kv.NewValue[uint64](store, "pendingorders/maxcommand")
	k.fills = kv.NewMap[fillKey, Fill](store, "pendingorders/fill", encodeFillKey)
	k.lastFill = kv.NewMap[types.Pair, uint64](store, "pendingorders/lastfill", encodePair)
}

// withStore returns a copy of the keeper writing to store.
func (k *Keeper) withStore(store kv.Store) *Keeper {
	child := *k
	child.bind(store)
	return &child
}

// RegisterPair makes a pair tradable. Registering a known pair updates its
// precision and online flag.
func (k *Keeper) RegisterPair(info PairInfo) error {
	if err := info.Pair.ValidateBasic(); err != nil {
		return err
	}
	known, err := k.pairs.Has(info.Pair)
	if err != nil {
		return err
	}
	if !known {
		list, err := k.pairList.GetOrDefault()
		if err != nil {
			return err
		}
		if err := k.pairList.Set(append(list, info.Pair)); err != nil {
			return err
		}
	}
	if err := k.pairs.Set(info.Pair, info); err != nil {
		return err
	}
	k.emitter.Emit(RegisterPairEvent{Pair: info.Pair, Precision: info.Precision})
	return nil
}

// PairInfo returns a registered pair.
func (k *Keeper) PairInfo(p types.Pair) (PairInfo, bool, error) {
	return k.pairs.Get(p)
}

// Pairs lists registered pairs in registration order.
func (k *Keeper) Pairs() ([]types.Pair, error) {
	return k.pairList.GetOrDefault()
}

// Order returns the order at key.
func (k *Keeper) Order(key OrderKey) (Order, bool, error) {
	return k.orders.Get(key)
}

// Fill returns the index-th fill of pair.
func (k *Keeper) Fill(p types.Pair, index uint64) (Fill, bool, error) {
	return k.fills.Get(fillKey{Pair: p, Index: index})
}

// OrderCount returns how many orders user placed on pair.
func (k *Keeper) OrderCount(user types.AccountID, p types.Pair) (uint64, error) {
	return k.lastOrder.GetOrDefault(userPair{User: user, Pair: p})
}

// PutOrder validates an order, locks the funds it needs and queues a Match
// command for it. It returns the index of the new order.
func (k *Keeper) PutOrder(
	height int64,
	user types.AccountID,
	p types.Pair,
	side types.Side,
	class OrderType,
	amount, price uint64,
) (uint64, error) {
	info, ok, err := k.pairs.Get(p)
	switch {
	case err != nil:
		return 0, err
	case !ok:
		return 0, fmt.Errorf("%w: %s", ErrUnknownPair, p)
	case !info.Online:
		return 0, fmt.Errorf("%w: %s", ErrPairOffline, p)
	case class == Market:
		return 0, ErrUnsupportedMarket
	case class != Limit:
		return 0, fmt.Errorf("%w: class %s", ErrInvalidOrder, class)
	case side != types.Buy && side != types.Sell:
		return 0, fmt.Errorf("%w: side %s", ErrInvalidOrder, side)
	case amount == 0 || price == 0:
		return 0, fmt.Errorf("%w: amount and price must be positive", ErrInvalidOrder)
	}

	up := userPair{User: user, Pair: p}
	index, err := k.lastOrder.GetOrDefault(up)
	if err != nil {
		return 0, err
	}
	order := Order{
		Pair:      p,
		User:      user,
		Index:     index,
		Side:      side,
		Class:     class,
		Price:     price,
		Amount:    amount,
		Status:    FillNone,
		CreatedAt: height,
	}

	token, reserve, err := order.reservation()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	if err := k.assets.Lock(user, token, reserve); err != nil {
		return 0, err
	}

	next, err := libmath.SafeAddUint64(index, 1)
	if err != nil {
		return 0, err
	}
	if err := k.lastOrder.Set(up, next); err != nil {
		return 0, err
	}
	if err := k.orders.Set(order.Key(), order); err != nil {
		return 0, err
	}
	if err := k.pushCommand(Command{User: user, Pair: p, Index: index, Type: Match}); err != nil {
		return 0, err
	}

	k.emitter.Emit(PutOrderEvent{
		User: user, Pair: p, Index: index, Side: side, Class: class,
		Price: price, Amount: amount, Block: height,
	})
	k.logger.Debug("put order", "order", order.Key(), "side", side, "price", price, "amount", amount)
	return index, nil
}

// CancelOrder cancels a live order, unlocks its remaining reservation and
// queues a Cancel command so the engine takes it off the book.
func (k *Keeper) CancelOrder(height int64, user types.AccountID, p types.Pair, index uint64) error {
	key := OrderKey{User: user, Pair: p, Index: index}
	order, ok, err := k.orders.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, key)
	}
	if !order.Status.Live() {
		return fmt.Errorf("%w: %s is %s", ErrOrderNotLive, key, order.Status)
	}

	token, reserve, err := order.reservation()
	if err != nil {
		return err
	}
	if err := k.assets.Unlock(user, token, reserve); err != nil {
		return err
	}

	if order.Status == FillPart {
		order.Status = FillPartAndCancel
	} else {
		order.Status = Cancel
	}
	if err := k.orders.Set(key, order); err != nil {
		return err
	}
	if err := k.pushCommand(Command{User: user, Pair: p, Index: index, Type: CancelCmd}); err != nil {
		return err
	}

	k.emitter.Emit(CancelOrderEvent{User: user, Pair: p, Index: index, Unlocked: reserve, Block: height})
	return nil
}

func (k *Keeper) pushCommand(cmd Command) error {
	last, err := k.maxCommand.GetOrDefault()
	if err != nil {
		return err
	}
	id, err := libmath.SafeAddUint64(last, 1)
	if err != nil {
		return err
	}
	if err := k.commands.Set(id, cmd); err != nil {
		return err
	}
	return k.maxCommand.Set(id)
}

// MaxCommandID returns the id of the last queued command. Command ids start
// at 1.
func (k *Keeper) MaxCommandID() (uint64, error) {
	return k.maxCommand.GetOrDefault()
}

// CommandOf returns the queued command with the given id.
func (k *Keeper) CommandOf(id uint64) (Command, bool, error) {
	return k.commands.Get(id)
}

// OrderOf returns the order a command refers to.
func (k *Keeper) OrderOf(key OrderKey) (Order, bool, error) {
	return k.orders.Get(key)
}

// UpdateCommandOf resolves command id to a bid id. Missing commands are
// ignored.
func (k *Keeper) UpdateCommandOf(id, bidID uint64) error {
	cmd, ok, err := k.commands.Get(id)
	if err != nil || !ok {
		return err
	}
	cmd.BidID = bidID
	return k.commands.Set(id, cmd)
}

// ClearCommand drops every queued command.
func (k *Keeper) ClearCommand() error {
	last, err := k.maxCommand.GetOrDefault()
	if err != nil {
		return err
	}
	for id := uint64(1); id <= last; id++ {
		if err := k.commands.Delete(id); err != nil {
			return err
		}
	}
	return k.maxCommand.Kill()
}
