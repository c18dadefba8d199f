// Package interactive provides the query shell behind snmpq shell.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/export"
	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
)

// Shell runs queries against one device, one command per line.
type Shell struct {
	dev    *device.Device
	format export.Format
	out    io.Writer
}

// New creates a Shell that writes results to out.
func New(dev *device.Device, format export.Format, out io.Writer) *Shell {
	return &Shell{dev: dev, format: format, out: out}
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.dev.Host() + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryLimit:    500,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
		if s.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line. It returns true when the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "get", "g":
		s.cmdQuery(ctx, args, s.dev.Get)

	case "walk", "w":
		s.cmdQuery(ctx, args, s.dev.Walk)

	case "bulkwalk", "bw":
		s.cmdQuery(ctx, args, s.dev.BulkWalk)

	case "name":
		s.cmdName(ctx)

	case "uptime":
		s.cmdUptime(ctx)

	case "interfaces", "if":
		s.cmdInterfaces(ctx)

	case "format", "f":
		s.cmdFormat(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
snmpq Shell Commands:
  Queries:
    get <id>...        - Fetch exact instances
    walk <id>...       - Walk subtrees with GET-NEXT
    bulkwalk <id>...   - Walk subtrees with GETBULK (v2c)

  Device:
    name               - Show sysName
    uptime             - Show sysUpTime
    interfaces         - Show the interface table

  General:
    format [name]      - Show or set the output format (text, json, jsonl, yaml, csv)
    help               - Show this help
    quit               - Exit shell

  Identifier Format:
    numeric OID        - e.g., 1.3.6.1.2.1.1.5.0
    MIB symbol         - e.g., SNMPv2-MIB::sysName.0 or IF-MIB::ifDescr`)
}

type queryFunc func(ctx context.Context, specs ...ident.Spec) (normalize.Collection, error)

func (s *Shell) cmdQuery(ctx context.Context, args []string, run queryFunc) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: get|walk|bulkwalk <id>...")
		fmt.Fprintln(s.out, "  Example: walk IF-MIB::ifDescr")
		return
	}
	specs, err := ident.ParseSpecs(args)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid identifier: %v\n", err)
		return
	}
	rows, err := run(ctx, specs...)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.print(rows)
}

func (s *Shell) cmdName(ctx context.Context) {
	name, err := s.dev.Name(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "sysName = %s\n", name)
}

func (s *Shell) cmdUptime(ctx context.Context) {
	up, err := s.dev.Uptime(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "sysUpTime = %s\n", up)
}

func (s *Shell) cmdInterfaces(ctx context.Context) {
	rows, err := s.dev.Interfaces(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.print(rows)
}

func (s *Shell) cmdFormat(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "Output format: %s\n", s.format)
		return
	}
	f, err := export.ParseFormat(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.format = f
	fmt.Fprintf(s.out, "Output format set to %s\n", f)
}

func (s *Shell) print(rows normalize.Collection) {
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "(no rows)")
		return
	}
	if err := export.Write(s.out, s.format, rows); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}
