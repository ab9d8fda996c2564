package commands

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/internal/chain"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	spos "github.com/chainx-org/ChainX-sub003/libs/os"
	"github.com/chainx-org/ChainX-sub003/types"
)

// MakeInitCommand returns the command that writes a starter genesis file.
// The config file and directories are created by the root command.
func MakeInitCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initializes a spotx home directory with a genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initFiles(conf, logger)
		},
	}
}

func defaultGenesis() *chain.Genesis {
	return &chain.Genesis{
		FeeAccount: chain.DefaultFeeAccount,
		Pairs: []chain.GenesisPair{
			{Pair: types.Pair{Base: "BTC", Quote: "USDT"}, Precision: 2, Online: true},
		},
		Balances: []chain.GenesisBalance{
			{Account: "alice", Token: "USDT", Amount: 100_000_000},
			{Account: "bob", Token: "BTC", Amount: 10_000},
		},
	}
}

func initFiles(conf *config.Config, logger log.Logger) error {
	genFile := conf.GenesisFile()
	if spos.FileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(defaultGenesis()); err != nil {
		return err
	}
	if err := spos.WriteFile(genFile, buf.Bytes(), 0644); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile)
	return nil
}
