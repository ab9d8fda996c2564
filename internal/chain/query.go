package chain

import (
	"github.com/chainx-org/ChainX-sub003/internal/assets"
	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/internal/matchorder"
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/types"
)

// The queries below read the last committed state.

func (app *App) query() modules {
	return app.modules(app.backend, events.NopEmitter(), DefaultFeeAccount)
}

// Book returns the price levels of one side of a pair's book, best price
// first.
func (app *App) Book(p types.Pair, side types.Side) ([]matchorder.Bid, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().engine.BookLevels(p, side)
}

// Bid returns a resting bid.
func (app *App) Bid(id uint64) (matchorder.BidDetail, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().engine.BidDetail(id)
}

// BidOfOrder returns the id of the bid an order rests as.
func (app *App) BidOfOrder(key pendingorders.OrderKey) (uint64, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().engine.BidOfUserOrder(key)
}

func (app *App) MatchFee() (uint64, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().engine.MatchFee()
}

func (app *App) Balance(account types.AccountID, token types.Token) (assets.Balance, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().assets.Balance(account, token)
}

func (app *App) Order(key pendingorders.OrderKey) (pendingorders.Order, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().orders.Order(key)
}

func (app *App) PairInfo(p types.Pair) (pendingorders.PairInfo, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().orders.PairInfo(p)
}

// Fill returns the index-th fill of a pair.
func (app *App) Fill(p types.Pair, index uint64) (pendingorders.Fill, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return app.query().orders.Fill(p, index)
}
