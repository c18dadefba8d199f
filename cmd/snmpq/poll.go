package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/snmp-query/snmpq-go/pkg/config"
	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/export"
	"github.com/snmp-query/snmpq-go/pkg/metrics"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
	"github.com/snmp-query/snmpq-go/pkg/poller"
	"github.com/snmp-query/snmpq-go/pkg/query"
)

type pollOptions struct {
	configPath  string
	metricsAddr string
	once        bool
}

func newPollCmd(a *app) *cobra.Command {
	var po pollOptions
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the interface table of every configured device",
		Long: `Poll loads a YAML inventory, fetches IF-MIB::ifTable from every device in
parallel and prints the rows, once or every poll.interval. With a metrics
address it also serves Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(po.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.applyConfig(cmd, cfg)
			if !cmd.Flags().Changed("output") {
				a.opts.output = export.FormatJSONLines.String()
			}
			if po.metricsAddr == "" {
				po.metricsAddr = cfg.Metrics.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runPoll(ctx, cfg, po)
		},
	}
	cmd.Flags().StringVar(&po.configPath, "config", "snmpq.yaml", "Inventory file")
	cmd.Flags().StringVar(&po.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&po.once, "once", false, "Poll a single round and exit")
	return cmd
}

// applyConfig lets the inventory's log section fill in flags the user did
// not set.
func (a *app) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	level, format := a.opts.logLevel, a.opts.logFormat
	if !flags.Changed("log-level") {
		level = cfg.Log.Level
	}
	if !flags.Changed("log-format") {
		format = cfg.Log.Format
	}
	if err := a.setupLogging(level, format); err != nil {
		a.logger.Warn("ignoring log config", "error", err)
	}
	if !flags.Changed("events") && cfg.Log.Events != "" {
		a.opts.eventsPath = cfg.Log.Events
	}
	a.opts.mibs = append(append([]string{}, cfg.MIBs...), a.opts.mibs...)
}

func (a *app) runPoll(ctx context.Context, cfg *config.Config, po pollOptions) error {
	format, err := export.ParseFormat(a.opts.output)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	observer, err := metrics.New(reg)
	if err != nil {
		return err
	}

	exec, err := a.executor(query.WithObserver(observer))
	if err != nil {
		return err
	}

	devices := make([]*device.Device, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		dev, err := dc.NewDevice(exec, device.WithLogger(a.logger))
		if err != nil {
			return err
		}
		devices = append(devices, dev)
	}

	if po.metricsAddr != "" {
		shutdown, err := a.serveMetrics(po.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	p := poller.New(poller.Config{
		Concurrency: cfg.Poll.Concurrency,
		Timeout:     cfg.Poll.Timeout,
		Logger:      a.logger,
	})

	var writeErr error
	sink := func(reports []poller.Report) {
		observer.ObservePoll(reports)
		if err := export.Write(a.out, format, pollRows(reports)); err != nil && writeErr == nil {
			writeErr = err
		}
		a.logger.Info("poll round complete",
			"devices", len(reports),
			"failed", len(poller.Failed(reports)))
	}

	if po.once {
		reports := p.Poll(ctx, devices, poller.Interfaces)
		sink(reports)
		if writeErr != nil {
			return writeErr
		}
		if failed := poller.Failed(reports); len(failed) == len(reports) && len(reports) > 0 {
			return fmt.Errorf("all %d devices failed: %w", len(reports), failed[0].Err)
		}
		return nil
	}

	err = p.Run(ctx, cfg.Poll.Interval, devices, poller.Interfaces, sink)
	if writeErr != nil {
		return writeErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func pollRows(reports []poller.Report) normalize.Collection {
	var rows normalize.Collection
	for _, r := range reports {
		rows = append(rows, r.Rows...)
	}
	return rows
}

// serveMetrics starts the metrics listener and returns its shutdown func.
func (a *app) serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
