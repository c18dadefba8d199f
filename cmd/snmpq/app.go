package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/log"
	"github.com/snmp-query/snmpq-go/pkg/mib"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/transport"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// options are the persistent flags shared by every query command.
type options struct {
	port           uint16
	version        string
	community      string
	timeout        time.Duration
	retries        int
	maxRepetitions uint32
	mibs           []string
	output         string

	logLevel   string
	logFormat  string
	trace      string
	eventsPath string
	debugWire  bool
}

// app carries the wiring shared by the commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	opts   options

	// engine overrides the gosnmp client; used by tests.
	engine query.Engine

	logger  *slog.Logger
	closers []func() error
}

func newApp(out, errOut io.Writer, engine query.Engine) *app {
	return &app{out: out, errOut: errOut, engine: engine}
}

// setupLogging builds the operational logger from --log-level and
// --log-format.
func (a *app) setupLogging(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		a.logger = slog.New(slog.NewTextHandler(a.errOut, handlerOpts))
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(a.errOut, handlerOpts))
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", format)
	}
	return nil
}

// eventLogger builds the query event sink from --trace and --events.
func (a *app) eventLogger() (log.Logger, error) {
	var loggers []log.Logger

	switch strings.ToLower(a.opts.trace) {
	case "", "none":
	case "slog":
		loggers = append(loggers, log.NewSlogAdapter(a.logger))
	case "zap":
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(a.errOut),
			zapcore.DebugLevel,
		)
		zl := zap.New(core)
		a.closers = append(a.closers, func() error {
			_ = zl.Sync()
			return nil
		})
		loggers = append(loggers, log.NewZapAdapter(zl))
	default:
		return nil, fmt.Errorf("invalid trace sink: %s (must be none, slog, or zap)", a.opts.trace)
	}

	if a.opts.eventsPath != "" {
		fl, err := log.NewFileLogger(a.opts.eventsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open event file: %w", err)
		}
		a.closers = append(a.closers, fl.Close)
		loggers = append(loggers, fl)
	}

	if len(loggers) == 0 {
		return log.NoopLogger{}, nil
	}
	return log.NewMultiLogger(loggers...), nil
}

// table returns the embedded symbol table plus any --mibs paths.
func (a *app) table(paths []string) (*mib.Table, error) {
	t, err := mib.Default()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		sub, err := loadTablePath(p)
		if err != nil {
			return nil, err
		}
		if err := t.Merge(sub); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return t, nil
}

func loadTablePath(p string) (*mib.Table, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("mibs: %w", err)
	}
	if fi.IsDir() {
		return mib.LoadDir(p)
	}
	return mib.LoadFile(p)
}

func (a *app) newEngine() query.Engine {
	if a.engine != nil {
		return a.engine
	}
	cfg := transport.Config{
		Timeout:        a.opts.timeout,
		Retries:        a.opts.retries,
		MaxRepetitions: a.opts.maxRepetitions,
	}
	if a.opts.debugWire {
		cfg.Logger = a.logger
	}
	return transport.NewClient(cfg)
}

// executor builds the executor for ad-hoc commands.
func (a *app) executor(extra ...query.Option) (*query.Executor, error) {
	table, err := a.table(a.opts.mibs)
	if err != nil {
		return nil, err
	}
	events, err := a.eventLogger()
	if err != nil {
		return nil, err
	}
	opts := append([]query.Option{query.WithLogger(events)}, extra...)
	return query.NewExecutor(a.newEngine(), table, opts...), nil
}

// device builds the Device for host from the persistent flags.
func (a *app) device(host string, exec *query.Executor, extra ...device.Option) (*device.Device, error) {
	v, err := wire.ParseVersion(a.opts.version)
	if err != nil {
		return nil, err
	}
	creds, err := wire.NewCredentials(v, a.opts.community)
	if err != nil {
		return nil, err
	}
	opts := []device.Option{
		device.WithPort(a.opts.port),
		device.WithTimeout(a.opts.timeout),
		device.WithRetries(a.opts.retries),
		device.WithMaxRepetitions(a.opts.maxRepetitions),
		device.WithLogger(a.logger),
	}
	return device.New(host, creds, exec, append(opts, extra...)...)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
