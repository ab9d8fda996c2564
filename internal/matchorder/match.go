package matchorder

import (
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
)

// doMatch walks the opposite side of taker's book from its best level and
// fills taker against every level its price crosses, oldest order first.
// taker.Amount is reduced by what was matched. Fully drained levels are
// removed once the walk ends. It returns the number of levels visited.
//
// A fill the ledger fails to settle is reported as a MatchFail event; the
// book keeps the result of the attempted match.
func (e *Engine) doMatch(height int64, taker *BidDetail) (int, error) {
	key := BookKey{Pair: taker.Pair, Side: taker.Side.Opposite()}
	need := taker.Amount

	idx, ok, err := e.book.Head(key)
	if err != nil {
		return 0, err
	}

	var (
		drained []uint64
		walked  int
	)
	for ok && need != 0 {
		n, err := e.loadLevel(idx)
		if err != nil {
			return walked, err
		}
		level := &n.Data
		if !crosses(taker.Side, taker.Price, level.Price) {
			break
		}
		walked++

		fill := libmath.MinUint64(need, level.Sum)
		if fill == level.Sum {
			drained = append(drained, level.Price)
		}
		if need, err = libmath.SafeSubUint64(need, fill); err != nil {
			return walked, err
		}
		if taker.Amount, err = libmath.SafeSubUint64(taker.Amount, fill); err != nil {
			return walked, err
		}
		if level.Sum, err = libmath.SafeSubUint64(level.Sum, fill); err != nil {
			return walked, err
		}

		var consumed []uint64
		for _, makerID := range level.List {
			if fill == 0 {
				break
			}
			maker, ok, err := e.bidOf.Get(makerID)
			if err != nil {
				return walked, err
			}
			if !ok {
				consumed = append(consumed, makerID)
				continue
			}

			amount := libmath.MinUint64(fill, maker.Amount)
			fill -= amount
			maker.Amount -= amount
			if maker.Amount == 0 {
				consumed = append(consumed, makerID)
			} else if err := e.bidOf.Set(makerID, maker); err != nil {
				return walked, err
			}

			e.settle(height, taker, maker, amount)
		}
		if fill != 0 {
			return walked, fmt.Errorf("level %d of %s: sum exceeds its orders by %d", level.NodeID, key, fill)
		}

		if err := e.removeFromBidList(n, consumed); err != nil {
			return walked, err
		}
		idx, ok = n.NextIndex()
	}

	if err := e.RemoveFromBid(key, drained); err != nil {
		return walked, err
	}
	return walked, nil
}

// settle reports one fill at the maker's price to the ledger.
func (e *Engine) settle(height int64, taker *BidDetail, maker BidDetail, amount uint64) {
	req := pendingorders.FillRequest{
		Pair:       taker.Pair,
		Maker:      maker.User,
		Taker:      taker.User,
		MakerOrder: maker.OrderIndex,
		TakerOrder: taker.OrderIndex,
		Price:      maker.Price,
		Amount:     amount,
	}
	pair := taker.Pair.String()

	if err := e.orders.FillOrder(height, req); err != nil {
		e.metrics.MatchFails.With("pair", pair).Add(1)
		e.logger.Error("fill failed",
			"pair", pair, "maker", maker.User, "taker", taker.User,
			"price", maker.Price, "amount", amount, "err", err)
		e.emitter.Emit(MatchFailEvent{
			BidID:       taker.ID,
			Pair:        taker.Pair,
			Maker:       maker.User,
			Taker:       taker.User,
			MakerIndex:  maker.OrderIndex,
			TakerIndex:  taker.OrderIndex,
			Price:       maker.Price,
			MakerAmount: amount,
			TakerAmount: amount,
			FeeMaker:    req.MakerFee,
			FeeTaker:    req.TakerFee,
			Block:       height,
			Reason:      err.Error(),
		})
		return
	}

	e.metrics.Fills.With("pair", pair).Add(1)
	e.metrics.FilledAmount.With("pair", pair).Add(float64(amount))
	e.logger.Debug("filled", "pair", pair, "maker", maker.User, "taker", taker.User,
		"price", maker.Price, "amount", amount)
}
