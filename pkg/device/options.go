package device

import (
	"log/slog"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Option configures a Device.
type Option func(*Device)

// WithPort sets the agent port (default 161).
func WithPort(port uint16) Option {
	return func(d *Device) {
		d.session.Target.Port = port
	}
}

// WithTimeout sets the per-attempt response timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		d.session.Options.Timeout = timeout
	}
}

// WithRetries sets the number of retransmissions. Zero disables them.
func WithRetries(retries int) Option {
	return func(d *Device) {
		d.session.Options.Retries = &retries
	}
}

// WithMaxRepetitions sets the GETBULK max-repetitions.
func WithMaxRepetitions(n uint32) Option {
	return func(d *Device) {
		d.session.Options.MaxRepetitions = n
	}
}

// WithInterfaceSymbols replaces the columns fetched by Interfaces. An empty
// list makes Interfaces return no rows.
func WithInterfaceSymbols(specs []ident.Spec) Option {
	return func(d *Device) {
		d.ifSymbols = append([]ident.Spec{}, specs...)
	}
}

// WithWalkMode forces the query kind used by Interfaces. By default v1
// agents are walked with GET-NEXT and v2c agents with GETBULK.
func WithWalkMode(kind wire.Kind) Option {
	return func(d *Device) {
		d.walkMode = kind
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}
