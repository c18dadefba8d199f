package main

import (
	"github.com/spf13/cobra"

	"github.com/snmp-query/snmpq-go/cmd/snmpq/interactive"
	"github.com/snmp-query/snmpq-go/pkg/export"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell HOST",
		Short: "Interactive query shell for one device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(a.opts.output)
			if err != nil {
				return err
			}
			dev, err := a.openDevice(args[0])
			if err != nil {
				return err
			}
			return interactive.New(dev, format, a.out).Run(cmd.Context())
		},
	}
}
