package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainx-org/ChainX-sub003/internal/assets"
	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/internal/eventsink"
	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	"github.com/chainx-org/ChainX-sub003/types"
)

var btcUSDT = types.Pair{Base: "BTC", Quote: "USDT"}

type recordingSink struct {
	heights []int64
	blocks  [][]events.Envelope
	err     error
}

func (s *recordingSink) Publish(_ context.Context, height int64, evs []events.Envelope) error {
	s.heights = append(s.heights, height)
	s.blocks = append(s.blocks, evs)
	return s.err
}

func (s *recordingSink) Type() eventsink.Type { return eventsink.LOG }

func (s *recordingSink) Stop() error { return nil }

func testGenesis() *Genesis {
	return &Genesis{
		MatchFee: 5,
		Pairs:    []GenesisPair{{Pair: btcUSDT, Precision: 2, Online: true}},
		Balances: []GenesisBalance{
			{Account: "alice", Token: "USDT", Amount: 1_000_000},
			{Account: "bob", Token: "BTC", Amount: 1000},
		},
	}
}

func newTestApp(t *testing.T, backend kv.Backend) (*App, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	app := NewApp(backend, WithSink(sink), WithLogger(log.TestingLogger()))
	_, err := app.InitChain(context.Background(), testGenesis())
	require.NoError(t, err)
	return app, sink
}

func putOrder(account types.AccountID, side string, amount, price uint64) Tx {
	return Tx{
		Type:    TxPutOrder,
		Account: account,
		Pair:    btcUSDT.String(),
		Side:    side,
		Amount:  amount,
		Price:   price,
	}
}

func cancelOrder(account types.AccountID, index uint64) Tx {
	return Tx{Type: TxCancelOrder, Account: account, Pair: btcUSDT.String(), Index: index}
}

// testBlocks has bob rest a sell that alice partly takes, then bob cancels
// the rest next to txs that are rejected.
func testBlocks() []Block {
	return []Block{
		{Height: 1, Txs: []Tx{
			putOrder("bob", "sell", 10, 100),
			putOrder("alice", "buy", 4, 120),
		}},
		{Height: 2, Txs: []Tx{
			cancelOrder("bob", 0),
			putOrder("carol", "buy", 1, 100),
			{Type: "bogus"},
			putOrder("alice", "up", 1, 100),
		}},
	}
}

func eventTypes(envs []events.Envelope) []string {
	out := make([]string, 0, len(envs))
	for _, env := range envs {
		out = append(out, env.Type)
	}
	return out
}

func balance(t *testing.T, app *App, account types.AccountID, token types.Token) assets.Balance {
	t.Helper()
	b, err := app.Balance(account, token)
	require.NoError(t, err)
	return b
}

func TestInitChain(t *testing.T) {
	ctx := context.Background()
	app, sink := newTestApp(t, kv.NewMemStore())

	state, ok, err := app.Info()
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 0, state.Height)
	assert.Len(t, state.AppHash, 32)
	assert.Equal(t, DefaultFeeAccount, state.FeeAccount)

	info, ok, err := app.PairInfo(btcUSDT)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, info.Online)
	assert.EqualValues(t, 2, info.Precision)

	fee, err := app.MatchFee()
	require.NoError(t, err)
	assert.EqualValues(t, 5, fee)

	assert.Equal(t, assets.Balance{Free: 1_000_000}, balance(t, app, "alice", "USDT"))
	assert.Equal(t, assets.Balance{Free: 1000}, balance(t, app, "bob", "BTC"))

	require.Equal(t, []int64{0}, sink.heights)
	assert.Equal(t, []string{"RegisterPair", "SetMatchFee"}, eventTypes(sink.blocks[0]))

	_, err = app.InitChain(ctx, testGenesis())
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitChainRejectsInvalidGenesis(t *testing.T) {
	app := NewApp(kv.NewMemStore())
	g := testGenesis()
	g.Balances[0].Amount = 0

	_, err := app.InitChain(context.Background(), g)
	require.Error(t, err)

	_, ok, err := app.Info()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinalizeBlockMatchesAndSettles(t *testing.T) {
	app, sink := newTestApp(t, kv.NewMemStore())

	res, err := app.FinalizeBlock(context.Background(), testBlocks()[0])
	require.NoError(t, err)
	require.Len(t, res.TxResults, 2)
	for _, r := range res.TxResults {
		assert.True(t, r.IsOK(), r.Log)
	}
	assert.Equal(t,
		[]string{"PutOrder", "PutOrder", "AddBid", "AddBid", "FillOrder"},
		eventTypes(res.Events))
	assert.Equal(t, res.Events, sink.blocks[1])

	// alice locked 4*120 and paid 4*100
	assert.Equal(t, assets.Balance{Free: 999_600}, balance(t, app, "alice", "USDT"))
	assert.Equal(t, assets.Balance{Free: 4}, balance(t, app, "alice", "BTC"))
	assert.Equal(t, assets.Balance{Free: 990, Locked: 6}, balance(t, app, "bob", "BTC"))
	assert.Equal(t, assets.Balance{Free: 400}, balance(t, app, "bob", "USDT"))

	sells, err := app.Book(btcUSDT, types.Sell)
	require.NoError(t, err)
	require.Len(t, sells, 1)
	assert.EqualValues(t, 100, sells[0].Price)
	assert.EqualValues(t, 6, sells[0].Sum)

	buys, err := app.Book(btcUSDT, types.Buy)
	require.NoError(t, err)
	assert.Empty(t, buys)

	fill, ok, err := app.Fill(btcUSDT, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 100, fill.Price)
	assert.EqualValues(t, 4, fill.Amount)
	assert.EqualValues(t, 1, fill.Height)

	order, ok, err := app.Order(pendingorders.OrderKey{User: "bob", Pair: btcUSDT, Index: 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pendingorders.FillPart, order.Status)
	assert.EqualValues(t, 4, order.HasFill)

	bidID, ok, err := app.BidOfOrder(order.Key())
	require.NoError(t, err)
	require.True(t, ok)
	bid, ok, err := app.Bid(bidID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 6, bid.Amount)
}

func TestRejectedTxsAreRolledBack(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, kv.NewMemStore())
	blocks := testBlocks()

	_, err := app.FinalizeBlock(ctx, blocks[0])
	require.NoError(t, err)
	res, err := app.FinalizeBlock(ctx, blocks[1])
	require.NoError(t, err)

	codes := make([]uint32, 0, len(res.TxResults))
	for _, r := range res.TxResults {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []uint32{CodeTypeOK, CodeTypeRejected, CodeTypeEncodingError, CodeTypeEncodingError}, codes)
	assert.Equal(t, []string{"CancelOrder", "CancelBid"}, eventTypes(res.Events))

	assert.Equal(t, assets.Balance{Free: 996}, balance(t, app, "bob", "BTC"))
	assert.Equal(t, assets.Balance{}, balance(t, app, "carol", "USDT"))

	count, err := app.query().orders.OrderCount("carol", btcUSDT)
	require.NoError(t, err)
	assert.Zero(t, count)

	sells, err := app.Book(btcUSDT, types.Sell)
	require.NoError(t, err)
	assert.Empty(t, sells)

	order, _, err := app.Order(pendingorders.OrderKey{User: "bob", Pair: btcUSDT, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, pendingorders.FillPartAndCancel, order.Status)
}

func TestFinalizeBlockHeights(t *testing.T) {
	ctx := context.Background()

	_, err := NewApp(kv.NewMemStore()).FinalizeBlock(ctx, Block{Height: 1})
	assert.ErrorIs(t, err, ErrNotInitialized)

	app, _ := newTestApp(t, kv.NewMemStore())
	_, err = app.FinalizeBlock(ctx, Block{Height: 2})
	assert.ErrorIs(t, err, ErrUnexpectedHeight)

	res, err := app.FinalizeBlock(ctx, Block{Height: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Events)

	_, err = app.FinalizeBlock(ctx, Block{Height: 1})
	assert.ErrorIs(t, err, ErrUnexpectedHeight)
}

func TestAppHashIsDeterministic(t *testing.T) {
	ctx := context.Background()

	pebble, err := kv.NewPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { pebble.Close() })

	a, _ := newTestApp(t, kv.NewMemStore())
	b, _ := newTestApp(t, pebble)

	for _, block := range testBlocks() {
		ra, err := a.FinalizeBlock(ctx, block)
		require.NoError(t, err)
		rb, err := b.FinalizeBlock(ctx, block)
		require.NoError(t, err)
		assert.Equal(t, ra.AppHash, rb.AppHash)
		assert.Equal(t, ra.Events, rb.Events)
	}

	// a different history diverges
	c, _ := newTestApp(t, kv.NewMemStore())
	rc, err := c.FinalizeBlock(ctx, Block{Height: 1, Txs: []Tx{putOrder("bob", "sell", 10, 101)}})
	require.NoError(t, err)
	sa, _, err := a.Info()
	require.NoError(t, err)
	assert.NotEqual(t, sa.AppHash, rc.AppHash)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemStore()
	app, _ := newTestApp(t, backend)

	res, err := app.FinalizeBlock(ctx, testBlocks()[0])
	require.NoError(t, err)

	restarted := NewApp(backend)
	state, ok, err := restarted.Info()
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, state.Height)
	assert.Equal(t, res.AppHash, state.AppHash)
	assert.Equal(t, assets.Balance{Free: 990, Locked: 6}, balance(t, restarted, "bob", "BTC"))

	_, err = restarted.FinalizeBlock(ctx, testBlocks()[1])
	require.NoError(t, err)
}

func TestPublishFailureDoesNotFailBlock(t *testing.T) {
	app, sink := newTestApp(t, kv.NewMemStore())
	sink.err = errors.New("broker unreachable")

	res, err := app.FinalizeBlock(context.Background(), testBlocks()[0])
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Height)

	state, _, err := app.Info()
	require.NoError(t, err)
	assert.EqualValues(t, 1, state.Height)
}
