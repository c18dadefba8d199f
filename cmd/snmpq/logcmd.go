package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/snmp-query/snmpq-go/cmd/snmpq/commands"
)

func newLogCmd(out io.Writer) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect query event files written with --events",
		Long: `Inspect CBOR query event files.

Available subcommands:
  view   - Print events in human-readable form
  export - Convert events to jsonl or csv
  filter - Copy matching events into a new file
  stats  - Summarize requests, errors and latency`,
	}

	bindFilter := func(cmd *cobra.Command, o *commands.FilterOptions) {
		f := cmd.Flags()
		f.StringVar(&o.RequestID, "request-id", "", "Only events of this request ID")
		f.StringVar(&o.Target, "target", "", "Only events for this host:port")
		f.StringVar(&o.TimeStart, "time-start", "", "Only events at or after this RFC3339 time")
		f.StringVar(&o.TimeEnd, "time-end", "", "Only events at or before this RFC3339 time")
		f.StringVar(&o.Stage, "stage", "", "Only events of this stage (resolve, execute, normalize)")
		f.StringVar(&o.Direction, "direction", "", "Only events of this direction (in, out, local)")
		f.StringVar(&o.Category, "category", "", "Only events of this category (request, response, error)")
	}

	var viewOpts commands.FilterOptions
	view := &cobra.Command{
		Use:   "view FILE",
		Short: "Print events in human-readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := viewOpts.Build()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, out)
		},
	}
	bindFilter(view, &viewOpts)

	var exportOpts commands.FilterOptions
	var exportFormat string
	exp := &cobra.Command{
		Use:   "export FILE",
		Short: "Convert events to jsonl or csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := exportOpts.Build()
			if err != nil {
				return err
			}
			return commands.RunExport(args[0], exportFormat, filter, out)
		},
	}
	bindFilter(exp, &exportOpts)
	exp.Flags().StringVar(&exportFormat, "format", "jsonl", "Export format: jsonl, csv")

	var filterOpts commands.FilterOptions
	var filterOut string
	filter := &cobra.Command{
		Use:   "filter FILE",
		Short: "Copy matching events into a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunFilter(args[0], filterOut, filterOpts, out)
		},
	}
	bindFilter(filter, &filterOpts)
	filter.Flags().StringVar(&filterOut, "out", "", "Output event file")
	_ = filter.MarkFlagRequired("out")

	stats := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize requests, errors and latency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], out)
		},
	}

	logCmd.AddCommand(view, exp, filter, stats)
	return logCmd
}
