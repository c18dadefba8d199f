package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Standard scalar symbols.
var (
	SysName   = ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.0"}
	SysUpTime = ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysUpTime.0"}
)

// HostField is the field Interfaces adds to every row.
const HostField = "host"

// interfaceColumns are the IF-MIB columns fetched by Interfaces, in order.
var interfaceColumns = []string{
	"ifIndex",
	"ifName",
	"ifType",
	"ifAdminStatus",
	"ifOperStatus",
	"ifHCInOctets",
	"ifHCInUcastPkts",
	"ifHCInMulticastPkts",
	"ifHCInBroadcastPkts",
	"ifHCOutOctets",
	"ifHCOutUcastPkts",
	"ifHCOutMulticastPkts",
	"ifHCOutBroadcastPkts",
	"ifInDiscards",
	"ifInErrors",
	"ifInUnknownProtos",
	"ifOutDiscards",
	"ifOutErrors",
}

// InterfaceSymbols returns the default interface columns.
func InterfaceSymbols() []ident.Spec {
	out := make([]ident.Spec, len(interfaceColumns))
	for i, c := range interfaceColumns {
		out[i] = ident.Symbol{Namespace: "IF-MIB", Field: c}
	}
	return out
}

// ErrUnexpectedValue is returned when a standard scalar has the wrong type
// or is missing.
var ErrUnexpectedValue = errors.New("unexpected value")

// Device runs the standard queries against one agent.
type Device struct {
	host      string
	session   query.Session
	exec      *query.Executor
	ifSymbols []ident.Spec
	walkMode  wire.Kind
	logger    *slog.Logger
}

// New creates a Device. The protocol version is taken from creds; only
// community credentials are supported.
func New(host string, creds wire.Credentials, exec *query.Executor, opts ...Option) (*Device, error) {
	if host == "" {
		return nil, fmt.Errorf("device: host is required")
	}
	if exec == nil {
		return nil, fmt.Errorf("device: executor is required")
	}
	if _, ok := creds.(wire.Community); !ok {
		return nil, fmt.Errorf("device %s: credentials %T: %w", host, creds, wire.ErrNotSupported)
	}

	d := &Device{
		host: host,
		session: query.Session{
			Target:      query.Target{Host: host},
			Credentials: creds,
		},
		exec:      exec,
		ifSymbols: InterfaceSymbols(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.walkMode == 0 {
		d.walkMode = wire.KindWalk
		if creds.Version().SupportsBulk() {
			d.walkMode = wire.KindBulkWalk
		}
	}
	if d.walkMode == wire.KindGet || !d.walkMode.IsValid() {
		return nil, fmt.Errorf("device %s: walk mode %s: %w", host, d.walkMode, wire.ErrNotSupported)
	}
	if d.walkMode == wire.KindBulkWalk && !creds.Version().SupportsBulk() {
		return nil, fmt.Errorf("device %s: bulk walk over %s: %w", host, creds.Version(), wire.ErrNotSupported)
	}
	return d, nil
}

// Host returns the configured host.
func (d *Device) Host() string {
	return d.host
}

// Target returns the agent address.
func (d *Device) Target() query.Target {
	return d.session.Target
}

// Name returns SNMPv2-MIB::sysName.0.
func (d *Device) Name(ctx context.Context) (string, error) {
	_, raw, err := d.scalar(ctx, SysName)
	if err != nil {
		return "", err
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return fmt.Sprint(raw), nil
}

// Uptime returns SNMPv2-MIB::sysUpTime.0. The agent reports hundredths of a
// second.
func (d *Device) Uptime(ctx context.Context) (time.Duration, error) {
	v, _, err := d.scalar(ctx, SysUpTime)
	if err != nil {
		return 0, err
	}
	switch ticks := v.(type) {
	case int64:
		return time.Duration(ticks) * 10 * time.Millisecond, nil
	case uint64:
		return time.Duration(ticks) * 10 * time.Millisecond, nil
	}
	return 0, fmt.Errorf("%s: %w: %v", SysUpTime, ErrUnexpectedValue, v)
}

// Interfaces walks the interface columns and returns one row per
// interface, each carrying the device name under HostField.
func (d *Device) Interfaces(ctx context.Context) (normalize.Collection, error) {
	if len(d.ifSymbols) == 0 {
		return normalize.Collection{}, nil
	}

	bindings, err := d.execute(ctx, d.walkMode, d.ifSymbols)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 {
		return normalize.Collection{}, nil
	}

	name, err := d.Name(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := normalize.New(normalize.WithInject(HostField, name)).Collection(bindings)
	if err != nil {
		return nil, err
	}
	d.debugLog("interfaces fetched", "host", d.host, "rows", len(rows), "mode", d.walkMode)
	return rows, nil
}

// Get fetches exactly the given instances.
func (d *Device) Get(ctx context.Context, specs ...ident.Spec) (normalize.Collection, error) {
	return d.records(ctx, wire.KindGet, specs)
}

// Walk walks the given roots with GET-NEXT.
func (d *Device) Walk(ctx context.Context, specs ...ident.Spec) (normalize.Collection, error) {
	return d.records(ctx, wire.KindWalk, specs)
}

// BulkWalk walks the given roots with GETBULK, one root at a time.
func (d *Device) BulkWalk(ctx context.Context, specs ...ident.Spec) (normalize.Collection, error) {
	return d.records(ctx, wire.KindBulkWalk, specs)
}

func (d *Device) records(ctx context.Context, kind wire.Kind, specs []ident.Spec) (normalize.Collection, error) {
	bindings, err := d.execute(ctx, kind, specs)
	if err != nil {
		return nil, err
	}
	return normalize.Records(bindings)
}

// scalar fetches one instance and returns its coerced value along with the
// value exactly as the agent sent it.
func (d *Device) scalar(ctx context.Context, spec ident.Symbol) (any, any, error) {
	bindings, err := d.execute(ctx, wire.KindGet, []ident.Spec{spec})
	if err != nil {
		return nil, nil, err
	}

	res, err := normalize.New(normalize.WithCollapse()).Normalize(bindings)
	if err != nil {
		return nil, nil, err
	}
	rec, ok := res.(normalize.Record)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w: %d rows", spec, ErrUnexpectedValue, len(res.Records()))
	}

	symbol, _, _ := strings.Cut(spec.Field, ".")
	v, ok := rec[symbol]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w: not returned", spec, ErrUnexpectedValue)
	}
	if _, isException := bindingException(bindings); isException {
		return nil, nil, fmt.Errorf("%s: %w: %v", spec, ErrUnexpectedValue, v)
	}
	return v, bindings[0].Value, nil
}

func (d *Device) execute(ctx context.Context, kind wire.Kind, specs []ident.Spec) ([]wire.Binding, error) {
	descs, err := ident.Resolve(specs)
	if err != nil {
		return nil, err
	}
	d.debugLog("query", "host", d.host, "kind", kind, "descriptors", len(descs))
	return d.exec.Execute(ctx, kind, descs, d.session)
}

func (d *Device) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func bindingException(bindings []wire.Binding) (wire.Exception, bool) {
	for _, b := range bindings {
		if e, ok := b.Value.(wire.Exception); ok {
			return e, true
		}
	}
	return 0, false
}
