package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"honnef.co/go/ptframe/internal/rigfile"
)

var evalCmd = &cobra.Command{
	Use:   "eval FILE",
	Short: "Evaluate a rig file",
	Long: `Evaluates the rig described by a YAML or JSON file and prints the outputs of
every sample. Files ending in .json are read as JSON, everything else as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		degrees, _ := cmd.Flags().GetBool("degrees")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		rig, err := rigfile.Load(args[0])
		if err != nil {
			return err
		}
		logger.Debug("loaded rig", "rig", rig.Name, "path", args[0])
		ev, err := rig.Evaluate(degrees)
		if err != nil {
			return fmt.Errorf("failed to evaluate %s: %w", rig.Name, err)
		}
		return writeEvaluation(cmd.OutOrStdout(), ev, format)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
	evalCmd.Flags().Bool("degrees", false, "Report rotations in degrees")
}

func writeEvaluation(w io.Writer, ev rigfile.Evaluation, format string) error {
	switch strings.ToLower(format) {
	case "table":
		printTable(w, ev)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ev); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printTable(w io.Writer, ev rigfile.Evaluation) {
	p := termenv.EnvColorProfile()
	title := p.String(fmt.Sprintf("%s (%s, %s)", ev.Rig, ev.RotateOrder, ev.Units)).
		Foreground(p.Color("#818cf8")).Bold()
	header := p.String(fmt.Sprintf("%4s  %10s  %-32s  %-32s  %8s", "#", "param", "translate", "rotate", "scale")).
		Foreground(p.Color("#a78bfa"))

	fmt.Fprintln(w, title)
	fmt.Fprintln(w, header)
	for i, s := range ev.Samples {
		fmt.Fprintf(w, "%4d  %10.4f  %-32s  %-32s  %8.4f\n",
			i, s.Param, triple(s.Translate), triple(s.Rotate), s.Scale)
	}
}

func triple(v [3]float64) string {
	return fmt.Sprintf("%9.4f %9.4f %9.4f", v[0], v[1], v[2])
}
