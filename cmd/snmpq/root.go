package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/export"
	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/transport"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "snmpq",
		Short: "Query SNMP agents and print records",
		Long: `snmpq resolves MIB symbols or numeric OIDs, queries SNMP v1/v2c agents,
and prints the variable bindings regrouped into one record per row index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogging(a.opts.logLevel, a.opts.logFormat)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	f := root.PersistentFlags()
	f.Uint16VarP(&a.opts.port, "port", "p", query.DefaultPort, "Agent UDP port")
	f.StringVarP(&a.opts.version, "snmp-version", "V", "2c", "Protocol version (1 or 2c)")
	f.StringVarP(&a.opts.community, "community", "c", "public", "Community string")
	f.DurationVarP(&a.opts.timeout, "timeout", "t", transport.DefaultTimeout, "Per-attempt response timeout")
	f.IntVarP(&a.opts.retries, "retries", "r", transport.DefaultRetries, "Retransmissions per request (0 disables)")
	f.Uint32Var(&a.opts.maxRepetitions, "max-repetitions", transport.DefaultMaxRepetitions, "GETBULK max-repetitions")
	f.StringSliceVar(&a.opts.mibs, "mibs", nil, "Extra MIB symbol tables (YAML files or directories)")
	f.StringVarP(&a.opts.output, "output", "o", "text", "Output format: text, json, jsonl, yaml, cbor, csv")
	f.StringVar(&a.opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&a.opts.logFormat, "log-format", "text", "Log format: text, json")
	f.StringVar(&a.opts.trace, "trace", "none", "Query event trace sink: none, slog, zap")
	f.StringVar(&a.opts.eventsPath, "events", "", "Append query events to this CBOR file")
	f.BoolVar(&a.opts.debugWire, "debug-wire", false, "Log gosnmp packet traces at debug level")

	root.AddCommand(
		newQueryCmd(a, wire.KindGet),
		newQueryCmd(a, wire.KindWalk),
		newQueryCmd(a, wire.KindBulkWalk),
		newNameCmd(a),
		newUptimeCmd(a),
		newInterfacesCmd(a),
		newPollCmd(a),
		newShellCmd(a),
		newLogCmd(a.out),
	)
	return root
}

var queryUsage = map[wire.Kind]struct{ use, short string }{
	wire.KindGet:      {"get", "Fetch exact instances"},
	wire.KindWalk:     {"walk", "Walk subtrees with GET-NEXT"},
	wire.KindBulkWalk: {"bulkwalk", "Walk subtrees with GETBULK (v2c only)"},
}

func newQueryCmd(a *app, kind wire.Kind) *cobra.Command {
	u := queryUsage[kind]
	return &cobra.Command{
		Use:   u.use + " HOST ID...",
		Short: u.short,
		Long: u.short + `.

Each ID is either a dotted numeric OID (1.3.6.1.2.1.1.5.0) or a MIB symbol
in MODULE::symbol form with an optional numeric index (IF-MIB::ifDescr.2).`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := ident.ParseSpecs(args[1:])
			if err != nil {
				return err
			}
			dev, err := a.openDevice(args[0])
			if err != nil {
				return err
			}
			rows, err := runQuery(cmd.Context(), dev, kind, specs)
			if err != nil {
				return err
			}
			return a.write(rows)
		},
	}
}

func runQuery(ctx context.Context, dev *device.Device, kind wire.Kind, specs []ident.Spec) (normalize.Collection, error) {
	switch kind {
	case wire.KindGet:
		return dev.Get(ctx, specs...)
	case wire.KindWalk:
		return dev.Walk(ctx, specs...)
	case wire.KindBulkWalk:
		return dev.BulkWalk(ctx, specs...)
	default:
		return nil, fmt.Errorf("query kind %s: %w", kind, wire.ErrNotSupported)
	}
}

func newNameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "name HOST",
		Short: "Print the agent's sysName",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := a.openDevice(args[0])
			if err != nil {
				return err
			}
			name, err := dev.Name(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, name)
			return nil
		},
	}
}

func newUptimeCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "uptime HOST",
		Short: "Print the agent's sysUpTime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := a.openDevice(args[0])
			if err != nil {
				return err
			}
			up, err := dev.Uptime(cmd.Context())
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(a.out, int64(up/(10*time.Millisecond)))
				return nil
			}
			fmt.Fprintln(a.out, up)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "ticks", false, "Print hundredths of a second instead of a duration")
	return cmd
}

func newInterfacesCmd(a *app) *cobra.Command {
	var columns []string
	var walkMode string
	cmd := &cobra.Command{
		Use:   "interfaces HOST",
		Short: "Print the agent's interface table",
		Long: `Print one record per interface from IF-MIB::ifTable, keyed by ifIndex and
tagged with the queried host. --columns restricts the IF-MIB columns fetched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []device.Option
			if cmd.Flags().Changed("columns") {
				specs, err := interfaceColumns(columns)
				if err != nil {
					return err
				}
				extra = append(extra, device.WithInterfaceSymbols(specs))
			}
			if walkMode != "" && walkMode != "auto" {
				k, err := wire.ParseKind(walkMode)
				if err != nil {
					return err
				}
				extra = append(extra, device.WithWalkMode(k))
			}
			dev, err := a.openDevice(args[0], extra...)
			if err != nil {
				return err
			}
			rows, err := dev.Interfaces(cmd.Context())
			if err != nil {
				return err
			}
			return a.write(rows)
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "IF-MIB columns to fetch (e.g. ifDescr,ifOperStatus)")
	cmd.Flags().StringVar(&walkMode, "walk-mode", "auto", "Walk mode: auto, walk, bulkwalk")
	return cmd
}

// interfaceColumns maps bare column names onto IF-MIB symbols. Names that
// already carry a module are parsed as given.
func interfaceColumns(names []string) ([]ident.Spec, error) {
	specs := make([]ident.Spec, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if !strings.Contains(n, "::") {
			n = "IF-MIB::" + n
		}
		s, err := ident.ParseSpec(n)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func (a *app) openDevice(host string, extra ...device.Option) (*device.Device, error) {
	exec, err := a.executor()
	if err != nil {
		return nil, err
	}
	return a.device(host, exec, extra...)
}

func (a *app) write(rows normalize.Collection) error {
	f, err := export.ParseFormat(a.opts.output)
	if err != nil {
		return err
	}
	return export.Write(a.out, f, rows)
}
