package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"honnef.co/go/ptframe/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ptframe",
	Short: "ptframe computes rotation-minimizing frames along curves",
	Long: `ptframe lays out frames along a curve using parallel transport and reports,
for every sample, a translation, a rotation and a volume-preserving scale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	s, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
