package pendingorders

import (
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
	"github.com/chainx-org/ChainX-sub003/types"
)

// FillOrder settles req at height. Either every balance and order update
// of the fill is written or, on error, none is.
func (k *Keeper) FillOrder(height int64, req FillRequest) error {
	cache := kv.NewCacheStore(k.store)
	fill, err := k.withStore(cache).fillOrder(height, req)
	if err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}

	k.emitter.Emit(FillOrderEvent{Fill: fill})
	k.logger.Debug("fill order", "pair", req.Pair, "maker", req.Maker, "taker", req.Taker,
		"price", req.Price, "amount", req.Amount)
	return nil
}

func (k *Keeper) liveOrder(key OrderKey, amount uint64) (Order, error) {
	order, ok, err := k.orders.Get(key)
	switch {
	case err != nil:
		return Order{}, err
	case !ok:
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, key)
	case !order.Status.Live():
		return Order{}, fmt.Errorf("%w: %s is %s", ErrOrderNotLive, key, order.Status)
	case order.Remaining() < amount:
		return Order{}, fmt.Errorf("%w: %s has %d left, filling %d", ErrOverfill, key, order.Remaining(), amount)
	}
	return order, nil
}

func (k *Keeper) fillOrder(height int64, req FillRequest) (Fill, error) {
	if req.Amount == 0 {
		return Fill{}, fmt.Errorf("%w: zero fill", ErrInvalidOrder)
	}
	maker, err := k.liveOrder(OrderKey{User: req.Maker, Pair: req.Pair, Index: req.MakerOrder}, req.Amount)
	if err != nil {
		return Fill{}, err
	}
	taker, err := k.liveOrder(OrderKey{User: req.Taker, Pair: req.Pair, Index: req.TakerOrder}, req.Amount)
	if err != nil {
		return Fill{}, err
	}
	if maker.Side == taker.Side {
		return Fill{}, ErrSameSide
	}

	buyer, seller := &taker, &maker
	if maker.Side == types.Buy {
		buyer, seller = &maker, &taker
	}
	if req.Price > buyer.Price || req.Price < seller.Price {
		return Fill{}, fmt.Errorf("%w: price %d outside [%d, %d]", ErrInvalidOrder, req.Price, seller.Price, buyer.Price)
	}

	base, quote := types.Token(req.Pair.Base), types.Token(req.Pair.Quote)
	if err := k.assets.MoveLocked(seller.User, buyer.User, base, req.Amount); err != nil {
		return Fill{}, err
	}
	cost, err := libmath.SafeMulUint64(req.Amount, req.Price)
	if err != nil {
		return Fill{}, err
	}
	if err := k.assets.MoveLocked(buyer.User, seller.User, quote, cost); err != nil {
		return Fill{}, err
	}
	if buyer.Price > req.Price {
		// the buyer locked at its limit, release what the better price saved
		refund, err := libmath.SafeMulUint64(req.Amount, buyer.Price-req.Price)
		if err != nil {
			return Fill{}, err
		}
		if err := k.assets.Unlock(buyer.User, quote, refund); err != nil {
			return Fill{}, err
		}
	}
	if err := k.chargeFee(req.Maker, quote, req.MakerFee); err != nil {
		return Fill{}, err
	}
	if err := k.chargeFee(req.Taker, quote, req.TakerFee); err != nil {
		return Fill{}, err
	}

	index, err := k.lastFill.GetOrDefault(req.Pair)
	if err != nil {
		return Fill{}, err
	}
	next, err := libmath.SafeAddUint64(index, 1)
	if err != nil {
		return Fill{}, err
	}
	fill := Fill{
		Pair:       req.Pair,
		Index:      index,
		Maker:      req.Maker,
		Taker:      req.Taker,
		MakerOrder: req.MakerOrder,
		TakerOrder: req.TakerOrder,
		Price:      req.Price,
		Amount:     req.Amount,
		MakerFee:   req.MakerFee,
		TakerFee:   req.TakerFee,
		Height:     height,
	}
	if err := k.fills.Set(fillKey{Pair: req.Pair, Index: index}, fill); err != nil {
		return Fill{}, err
	}
	if err := k.lastFill.Set(req.Pair, next); err != nil {
		return Fill{}, err
	}

	for _, o := range []*Order{&maker, &taker} {
		o.HasFill += req.Amount
		o.Fills = append(o.Fills, index)
		if o.HasFill == o.Amount {
			o.Status = FillAll
		} else {
			o.Status = FillPart
		}
		if err := k.orders.Set(o.Key(), *o); err != nil {
			return Fill{}, err
		}
	}
	return fill, nil
}

func (k *Keeper) chargeFee(acc types.AccountID, token types.Token, fee uint64) error {
	if fee == 0 {
		return nil
	}
	return k.assets.Move(acc, k.feeAccount, token, fee)
}
