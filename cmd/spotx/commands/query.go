package commands

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/internal/chain"
	"github.com/chainx-org/ChainX-sub003/internal/pendingorders"
	"github.com/chainx-org/ChainX-sub003/types"
)

// MakeQueryCommand returns the command reading the committed state.
func MakeQueryCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the committed exchange state",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "book <pair> <buy|sell>",
			Short: "Show one side of a pair's order book, best price first",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pair, err := types.ParsePair(args[0])
				if err != nil {
					return err
				}
				side, err := types.ParseSide(args[1])
				if err != nil {
					return err
				}
				return withApp(conf, func(app *chain.App) error {
					return queryBook(app, cmd.OutOrStdout(), pair, side)
				})
			},
		},
		&cobra.Command{
			Use:   "bid <id>",
			Short: "Show a resting bid",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid bid id %q: %w", args[0], err)
				}
				return withApp(conf, func(app *chain.App) error {
					return queryBid(app, cmd.OutOrStdout(), id)
				})
			},
		},
		&cobra.Command{
			Use:   "balance <account> <token>",
			Short: "Show the free and locked balance of an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				account, token := types.AccountID(args[0]), types.Token(args[1])
				return withApp(conf, func(app *chain.App) error {
					b, err := app.Balance(account, token)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s free=%d locked=%d\n", account, token, b.Free, b.Locked)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "order <account> <pair> <index>",
			Short: "Show an order",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				pair, err := types.ParsePair(args[1])
				if err != nil {
					return err
				}
				index, err := strconv.ParseUint(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid order index %q: %w", args[2], err)
				}
				key := pendingorders.OrderKey{User: types.AccountID(args[0]), Pair: pair, Index: index}
				return withApp(conf, func(app *chain.App) error {
					return queryOrder(app, cmd.OutOrStdout(), key)
				})
			},
		},
	)
	return cmd
}

func withApp(conf *config.Config, fn func(*chain.App) error) error {
	backend, err := config.DefaultDBProvider(&config.DBContext{ID: "state", Config: conf})
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(chain.NewApp(backend))
}

func precisionOf(app *chain.App, p types.Pair) (uint32, error) {
	info, ok, err := app.PairInfo(p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", pendingorders.ErrUnknownPair, p)
	}
	return info.Precision, nil
}

func queryBook(app *chain.App, out io.Writer, p types.Pair, side types.Side) error {
	precision, err := precisionOf(app, p)
	if err != nil {
		return err
	}
	levels, err := app.Book(p, side)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s: %d levels\n", p, side, len(levels))
	for _, l := range levels {
		fmt.Fprintf(out, "%s\t%d\tbids=%v\n", formatPrice(l.Price, precision), l.Sum, l.List)
	}
	return nil
}

func queryBid(app *chain.App, out io.Writer, id uint64) error {
	bid, ok, err := app.Bid(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bid %d not found", id)
	}
	precision, err := precisionOf(app, bid.Pair)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "bid %d: %s %s %s amount=%d price=%s order=%d block=%d\n",
		bid.ID, bid.User, bid.Pair, bid.Side, bid.Amount, formatPrice(bid.Price, precision), bid.OrderIndex, bid.Time)
	return nil
}

func queryOrder(app *chain.App, out io.Writer, key pendingorders.OrderKey) error {
	order, ok, err := app.Order(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", pendingorders.ErrOrderNotFound, key)
	}
	precision, err := precisionOf(app, key.Pair)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "order %s: %s %s amount=%d filled=%d price=%s status=%s\n",
		key, order.Side, order.Class, order.Amount, order.HasFill, formatPrice(order.Price, precision), order.Status)
	return nil
}

// formatPrice renders an integer price with precision decimal places.
func formatPrice(price uint64, precision uint32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(price), -int32(precision)).StringFixed(int32(precision))
}
