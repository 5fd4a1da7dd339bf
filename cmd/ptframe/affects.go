package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"honnef.co/go/ptframe"
)

var affectsCmd = &cobra.Command{
	Use:   "affects",
	Short: "Print which inputs affect which outputs",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, in := range ptframe.AllInputs {
			var outs []string
			for _, out := range ptframe.Affects(in) {
				outs = append(outs, out.String())
			}
			fmt.Fprintf(w, "%-14s %s\n", in, strings.Join(outs, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(affectsCmd)
}
