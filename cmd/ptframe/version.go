package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at link time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ptframe",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ptframe version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
