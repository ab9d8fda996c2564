package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/internal/chain"
	"github.com/chainx-org/ChainX-sub003/internal/eventsink"
	"github.com/chainx-org/ChainX-sub003/internal/matchorder"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	spos "github.com/chainx-org/ChainX-sub003/libs/os"
)

// MakeReplayCommand returns the command that executes the blocks of a
// script on top of the stored chain, initializing it from the genesis file
// first if needed.
func MakeReplayCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <blocks.toml>",
		Short: "Execute the blocks of a script and commit them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd.Context(), conf, logger, args[0], cmd.OutOrStdout())
		},
	}
}

func replay(ctx context.Context, conf *config.Config, logger log.Logger, path string, out io.Writer) error {
	script, err := chain.LoadScript(path)
	if err != nil {
		return err
	}

	backend, err := config.DefaultDBProvider(&config.DBContext{ID: "state", Config: conf})
	if err != nil {
		return err
	}
	defer backend.Close()

	sink, err := eventsink.FromConfig(conf.Events, logger)
	if err != nil {
		return err
	}
	defer sink.Stop()

	spos.TrapSignal(logger, func() {
		if err := sink.Stop(); err != nil {
			logger.Error("error stopping event sink", "err", err)
		}
		if err := backend.Close(); err != nil {
			logger.Error("error closing database", "err", err)
		}
	})

	opts := []chain.AppOption{chain.WithSink(sink), chain.WithLogger(logger)}
	if conf.Instrumentation.Prometheus {
		srv := startPrometheusServer(conf.Instrumentation.PrometheusListenAddr, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Error("prometheus HTTP server Shutdown", "err", err)
			}
		}()
		ns := conf.Instrumentation.Namespace
		opts = append(opts, chain.WithMetrics(chain.PrometheusMetrics(ns), matchorder.PrometheusMetrics(ns)))
	}
	app := chain.NewApp(backend, opts...)

	state, ok, err := app.Info()
	if err != nil {
		return err
	}
	if !ok {
		genesis, err := chain.LoadGenesis(conf.GenesisFile())
		if err != nil {
			return err
		}
		res, err := app.InitChain(ctx, genesis)
		if err != nil {
			return err
		}
		printBlock(out, res)
		state.Height = res.Height
	}

	for i, b := range script.Blocks {
		res, err := app.FinalizeBlock(ctx, chain.Block{Height: state.Height + int64(i) + 1, Txs: b.Txs})
		if err != nil {
			return err
		}
		printBlock(out, res)
	}
	return nil
}

func printBlock(out io.Writer, res *chain.BlockResult) {
	failed := 0
	for _, r := range res.TxResults {
		if !r.IsOK() {
			failed++
		}
	}
	fmt.Fprintf(out, "height=%d txs=%d failed=%d events=%d app_hash=%X\n",
		res.Height, len(res.TxResults), failed, len(res.Events), res.AppHash)
	for i, r := range res.TxResults {
		if !r.IsOK() {
			fmt.Fprintf(out, "  tx %d: code=%d %s\n", i, r.Code, r.Log)
		}
	}
}

// startPrometheusServer starts a Prometheus HTTP server, listening for
// metrics collectors on addr.
func startPrometheusServer(addr string, logger log.Logger) *http.Server {
	srv := &http.Server{
		Addr: addr,
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{},
			),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Error starting or closing listener:
			logger.Error("prometheus HTTP server ListenAndServe", "err", err)
		}
	}()
	return srv
}
