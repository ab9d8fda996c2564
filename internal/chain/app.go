// Package chain executes blocks of exchange txs against a persistent store.
//
// Every block runs on a CacheStore over the backend. Each tx gets its own
// nested overlay so that a rejected tx leaves no trace, and the matching
// engine runs once all txs are applied. The block's writes then reach the
// backend in a single batch, together with the new chain state, and the
// block's events are handed to the event sink.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chainx-org/ChainX-sub003/internal/assets"
	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/internal/eventsink"
	"github.com/chainx-org/ChainX-sub003/internal/kv"
	"github.com/chainx-org/ChainX-sub003/internal/matchorder"
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	"github.com/chainx-org/ChainX-sub003/types"
)

var (
	ErrNotInitialized     = errors.New("chain is not initialized")
	ErrAlreadyInitialized = errors.New("chain is already initialized")
	ErrUnexpectedHeight   = errors.New("unexpected block height")
	ErrInvalidTx          = errors.New("invalid tx")
)

const stateKey = "chain/state"

// State is the chain state committed with every block.
type State struct {
	Height     int64           `json:"height"`
	AppHash    []byte          `json:"app_hash"`
	FeeAccount types.AccountID `json:"fee_account"`
}

func stateCell(store kv.Store) kv.Value[State] {
	return kv.NewValue[State](store, stateKey)
}

// App is the exchange state machine. It is safe for concurrent use; blocks
// and queries are serialized.
type App struct {
	mtx sync.Mutex

	backend kv.Backend
	sink    eventsink.EventSink
	logger  log.Logger // handed to the modules

	chainLogger log.Logger

	metrics       *Metrics
	engineMetrics *matchorder.Metrics
}

// AppOption sets an optional parameter on the App.
type AppOption func(*App)

// WithSink sets the sink the events of committed blocks go to.
func WithSink(s eventsink.EventSink) AppOption {
	return func(app *App) { app.sink = s }
}

// WithLogger sets the logger handed to the app and its modules.
func WithLogger(l log.Logger) AppOption {
	return func(app *App) { app.logger = l }
}

// WithMetrics sets the metrics of the app and of the matching engine.
func WithMetrics(m *Metrics, em *matchorder.Metrics) AppOption {
	return func(app *App) {
		app.metrics = m
		app.engineMetrics = em
	}
}

// NewApp returns an App over backend.
func NewApp(backend kv.Backend, options ...AppOption) *App {
	app := &App{
		backend:       backend,
		sink:          eventsink.NewNullSink(),
		logger:        log.NewNopLogger(),
		metrics:       NopMetrics(),
		engineMetrics: matchorder.NopMetrics(),
	}
	for _, opt := range options {
		opt(app)
	}
	app.chainLogger = app.logger.With("module", "chain")
	return app
}

type modules struct {
	assets *assets.Keeper
	orders *pendingorders.Keeper
	engine *matchorder.Engine
}

func (app *App) modules(store kv.Store, em events.Emitter, feeAccount types.AccountID) modules {
	orders := pendingorders.NewKeeper(store,
		pendingorders.WithFeeAccount(feeAccount),
		pendingorders.WithEmitter(em),
		pendingorders.WithLogger(app.logger),
	)
	engine := matchorder.NewEngine(store, orders,
		matchorder.WithEmitter(em),
		matchorder.WithLogger(app.logger),
		matchorder.WithMetrics(app.engineMetrics),
	)
	return modules{assets: assets.NewKeeper(store), orders: orders, engine: engine}
}

// Info returns the last committed state. ok is false before InitChain.
func (app *App) Info() (State, bool, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()
	return stateCell(app.backend).Get()
}

// InitChain writes the genesis state as the block at height 0.
func (app *App) InitChain(ctx context.Context, g *Genesis) (*BlockResult, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	if _, ok, err := stateCell(app.backend).Get(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	if err := g.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	start := time.Now()
	state := State{FeeAccount: g.feeAccount()}
	blockStore := kv.NewCacheStore(app.backend)
	buf := events.NewBuffer(len(g.Pairs) + 1)
	m := app.modules(blockStore, buf, state.FeeAccount)

	for _, p := range g.Pairs {
		info := pendingorders.PairInfo{Pair: p.Pair, Precision: p.Precision, Online: p.Online}
		if err := m.orders.RegisterPair(info); err != nil {
			return nil, fmt.Errorf("registering pair %s: %w", p.Pair, err)
		}
	}
	for _, b := range g.Balances {
		if err := m.assets.Issue(b.Account, b.Token, b.Amount); err != nil {
			return nil, fmt.Errorf("issuing %d %s to %s: %w", b.Amount, b.Token, b.Account, err)
		}
	}
	if err := m.engine.SetMatchFee(g.MatchFee); err != nil {
		return nil, err
	}

	return app.commit(ctx, blockStore, buf, state, 0, nil, start)
}

// FinalizeBlock applies the txs of block in order, runs the matching engine
// and commits the result. A rejected tx is rolled back and reported in its
// TxResult. Any other error aborts the block and nothing is written.
func (app *App) FinalizeBlock(ctx context.Context, block Block) (*BlockResult, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	state, ok, err := stateCell(app.backend).Get()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if block.Height != state.Height+1 {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnexpectedHeight, block.Height, state.Height+1)
	}

	start := time.Now()
	blockStore := kv.NewCacheStore(app.backend)
	buf := events.NewBuffer(len(block.Txs))

	results := make([]TxResult, len(block.Txs))
	for i, tx := range block.Txs {
		res, err := app.deliverTx(blockStore, buf, state.FeeAccount, block.Height, tx)
		if err != nil {
			return nil, fmt.Errorf("tx %d of block %d: %w", i, block.Height, err)
		}
		results[i] = res
	}

	m := app.modules(blockStore, buf, state.FeeAccount)
	if err := m.engine.OnFinalize(block.Height); err != nil {
		return nil, fmt.Errorf("finalizing block %d: %w", block.Height, err)
	}

	return app.commit(ctx, blockStore, buf, state, block.Height, results, start)
}

// deliverTx runs tx on its own overlay of parent. The returned error is
// only set when the overlay cannot be written back.
func (app *App) deliverTx(
	parent kv.Store,
	buf *events.Buffer,
	feeAccount types.AccountID,
	height int64,
	tx Tx,
) (TxResult, error) {
	txStore := kv.NewCacheStore(parent)
	mark := buf.Mark()

	res, err := app.applyTx(app.modules(txStore, buf, feeAccount), height, tx)
	if err != nil {
		buf.Rollback(mark)
		txStore.Discard()
		app.chainLogger.Debug("tx rejected", "height", height, "type", tx.Type, "account", tx.Account, "err", err)

		code := CodeTypeRejected
		if errors.Is(err, ErrInvalidTx) {
			code = CodeTypeEncodingError
		}
		return TxResult{Code: code, Log: err.Error()}, nil
	}
	return res, txStore.Write()
}

func (app *App) applyTx(m modules, height int64, tx Tx) (TxResult, error) {
	switch tx.Type {
	case TxPutOrder:
		if tx.Account == "" {
			return TxResult{}, fmt.Errorf("%w: empty account", ErrInvalidTx)
		}
		pair, err := types.ParsePair(tx.Pair)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: %v", ErrInvalidTx, err)
		}
		side, err := types.ParseSide(tx.Side)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: %v", ErrInvalidTx, err)
		}
		class, err := pendingorders.ParseOrderType(tx.OrderType)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: %v", ErrInvalidTx, err)
		}
		index, err := m.orders.PutOrder(height, tx.Account, pair, side, class, tx.Amount, tx.Price)
		if err != nil {
			return TxResult{}, err
		}
		return TxResult{OrderIndex: index}, nil

	case TxCancelOrder:
		if tx.Account == "" {
			return TxResult{}, fmt.Errorf("%w: empty account", ErrInvalidTx)
		}
		pair, err := types.ParsePair(tx.Pair)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: %v", ErrInvalidTx, err)
		}
		if err := m.orders.CancelOrder(height, tx.Account, pair, tx.Index); err != nil {
			return TxResult{}, err
		}
		return TxResult{OrderIndex: tx.Index}, nil

	case TxSetMatchFee:
		return TxResult{}, m.engine.SetMatchFee(tx.Fee)

	default:
		return TxResult{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTx, tx.Type)
	}
}

// commit writes the block's overlay and the new state in one batch, then
// publishes the block's events.
func (app *App) commit(
	ctx context.Context,
	blockStore *kv.CacheStore,
	buf *events.Buffer,
	state State,
	height int64,
	results []TxResult,
	start time.Time,
) (*BlockResult, error) {
	envs, err := events.EncodeAll(height, buf.Events())
	if err != nil {
		return nil, err
	}

	changes := blockStore.Changes()
	state.Height = height
	state.AppHash = nextAppHash(state.AppHash, height, changes)
	if err := stateCell(blockStore).Set(state); err != nil {
		return nil, err
	}

	batch := app.backend.NewBatch()
	defer batch.Close()
	if err := blockStore.WriteBatch(batch); err != nil {
		return nil, fmt.Errorf("staging block %d: %w", height, err)
	}
	if err := batch.WriteSync(); err != nil {
		return nil, fmt.Errorf("committing block %d: %w", height, err)
	}

	failed := 0
	for _, r := range results {
		if !r.IsOK() {
			failed++
		}
	}
	app.metrics.Height.Set(float64(height))
	app.metrics.Txs.Add(float64(len(results)))
	app.metrics.FailedTxs.Add(float64(failed))
	app.metrics.BlockWrites.Observe(float64(len(changes)))
	app.metrics.BlockProcessingTime.Observe(float64(time.Since(start).Milliseconds()))

	if err := app.sink.Publish(ctx, height, envs); err != nil {
		app.metrics.PublishFailures.Add(1)
		app.chainLogger.Error("failed to publish block events",
			"height", height, "sink", app.sink.Type(), "err", err)
	} else {
		app.metrics.Events.Add(float64(len(envs)))
	}

	app.chainLogger.Info("committed block",
		"height", height,
		"txs", len(results),
		"failed_txs", failed,
		"events", len(envs),
		"writes", len(changes),
		"app_hash", fmt.Sprintf("%X", state.AppHash),
	)

	return &BlockResult{
		Height:    height,
		AppHash:   state.AppHash,
		TxResults: results,
		Events:    envs,
	}, nil
}
