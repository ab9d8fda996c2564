package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chainx-org/ChainX-sub003/version"
)

var verbose bool

// VersionCmd prints the version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}
		values, err := json.MarshalIndent(struct {
			Spotx        string `json:"spotx"`
			StateVersion uint64 `json:"state_version"`
			Go           string `json:"go"`
		}{
			Spotx:        version.Version,
			StateVersion: version.StateVersion,
			Go:           runtime.Version(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show state and go versions")
}
