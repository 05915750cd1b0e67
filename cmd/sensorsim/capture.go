package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/uns-lab/sensorsim/cmd/sensorsim/commands"
)

func newCaptureCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "capture",
		Short: "Inspect capture files",
	}
	c.AddCommand(
		newCaptureViewCommand(),
		newCaptureStatsCommand(),
		newCaptureExportCommand(),
		newCaptureFilterCommand(),
	)
	return c
}

func addFilterFlags(f *pflag.FlagSet, opts *commands.FilterOptions) {
	f.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	f.StringVar(&opts.AssetID, "asset", "", "Filter by asset")
	f.StringVar(&opts.Sensor, "sensor", "", "Filter publish events by sensor")
	f.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, wire, simulation)")
	f.StringVar(&opts.Category, "category", "", "Filter by category (publish, state, error)")
	f.StringVar(&opts.Outcome, "outcome", "", "Filter publish events by outcome (delivered, failed)")
	f.StringVar(&opts.TimeStart, "time-start", "", "Only events at or after this RFC 3339 time")
	f.StringVar(&opts.TimeEnd, "time-end", "", "Only events before this RFC 3339 time")
}

func newCaptureViewCommand() *cobra.Command {
	var opts commands.FilterOptions
	c := &cobra.Command{
		Use:   "view FILE",
		Short: "View capture file in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunView(args[0], opts, cmd.OutOrStdout())
		},
	}
	addFilterFlags(c.Flags(), &opts)
	return c
}

func newCaptureStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Show statistics about the capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func newCaptureExportCommand() *cobra.Command {
	var (
		opts   commands.FilterOptions
		format string
		output string
	)
	c := &cobra.Command{
		Use:   "export FILE",
		Short: "Export capture file to JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunExport(args[0], format, output, opts, cmd.OutOrStdout())
		},
	}
	c.Flags().StringVar(&format, "format", "jsonl", "Output format (jsonl, csv)")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	addFilterFlags(c.Flags(), &opts)
	return c
}

func newCaptureFilterCommand() *cobra.Command {
	var (
		opts   commands.FilterOptions
		output string
	)
	c := &cobra.Command{
		Use:   "filter FILE",
		Short: "Filter capture file and write to new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunFilter(args[0], output, opts, cmd.OutOrStdout())
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (required)")
	_ = c.MarkFlagRequired("output")
	addFilterFlags(c.Flags(), &opts)
	return c
}
