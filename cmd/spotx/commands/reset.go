package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/libs/log"
	spos "github.com/chainx-org/ChainX-sub003/libs/os"
)

// MakeResetCommand constructs a command that removes the database of the
// spotx home.
func MakeResetCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Removes all blocks and state so the chain restarts from genesis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ResetState(conf.DBDir(), logger)
		},
	}
}

// ResetState removes the database directory and recreates it empty.
func ResetState(dbDir string, logger log.Logger) error {
	if err := os.RemoveAll(dbDir); err != nil {
		logger.Error("error removing all chain state", "dir", dbDir, "err", err)
		return err
	}
	logger.Info("Removed all chain state", "dir", dbDir)
	return spos.EnsureDir(dbDir, 0700)
}
