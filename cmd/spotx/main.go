package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chainx-org/ChainX-sub003/cmd/spotx/commands"
	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/libs/log"
)

func main() {
	conf := config.DefaultConfig()

	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf, logger),
		commands.MakeReplayCommand(conf, logger),
		commands.MakeQueryCommand(conf),
		commands.MakeResetCommand(conf, logger),
		commands.VersionCmd,
	)

	if err := rcmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
