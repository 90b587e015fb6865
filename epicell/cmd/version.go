package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the version of the tool. It is overridden at link time.
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of EpiCell.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "epicell version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
