package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Default exchange parameters, used when neither Config nor the session
// options set a value.
const (
	DefaultTimeout        = 2 * time.Second
	DefaultRetries        = 3
	DefaultMaxRepetitions = 25
)

// Config configures a Client.
type Config struct {
	// Transport is "udp" (default) or "tcp".
	Transport string

	// Timeout is the per-attempt response timeout (default: 2s).
	Timeout time.Duration

	// Retries is the number of retransmissions (default: 3). A negative
	// value disables retransmission. Sessions that carry their own
	// Options.Retries override it, zero included.
	Retries int

	// MaxRepetitions is the GETBULK max-repetitions (default: 25).
	MaxRepetitions uint32

	// MaxOids caps the number of OIDs per PDU. Larger requests are split.
	MaxOids int

	// ExponentialTimeout doubles the timeout on every retry.
	ExponentialTimeout bool

	// Logger receives gosnmp's packet-level debug output. Nil disables it.
	Logger *slog.Logger
}

// Client is a query.Engine backed by gosnmp.
type Client struct {
	config Config
}

// NewClient creates a new Client.
func NewClient(config Config) *Client {
	if config.Transport == "" {
		config.Transport = "udp"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Retries < 0 {
		config.Retries = 0
	} else if config.Retries == 0 {
		config.Retries = DefaultRetries
	}
	if config.MaxRepetitions == 0 {
		config.MaxRepetitions = DefaultMaxRepetitions
	}
	if config.MaxOids <= 0 {
		config.MaxOids = gosnmp.MaxOids
	}
	return &Client{config: config}
}

// Get implements query.Engine.
func (c *Client) Get(ctx context.Context, sess query.Session, oids []string) ([]wire.Binding, error) {
	return c.request(ctx, sess, oids, (*gosnmp.GoSNMP).Get)
}

// GetNext implements query.Engine.
func (c *Client) GetNext(ctx context.Context, sess query.Session, oids []string) ([]wire.Binding, error) {
	return c.request(ctx, sess, oids, (*gosnmp.GoSNMP).GetNext)
}

// BulkWalk implements query.Engine.
func (c *Client) BulkWalk(ctx context.Context, sess query.Session, root string) ([]wire.Binding, error) {
	if !sess.Version().SupportsBulk() {
		return nil, fmt.Errorf("bulk walk over %s: %w", sess.Version(), wire.ErrNotSupported)
	}

	g, err := c.connect(ctx, sess)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	pdus, err := g.BulkWalkAll(root)
	if err != nil {
		return nil, fmt.Errorf("bulk walk %s: %w", root, err)
	}
	return convertPDUs(pdus), nil
}

type pduRequest func(g *gosnmp.GoSNMP, oids []string) (*gosnmp.SnmpPacket, error)

// request sends oids in as few PDUs as MaxOids allows, over one socket.
func (c *Client) request(ctx context.Context, sess query.Session, oids []string, send pduRequest) ([]wire.Binding, error) {
	g, err := c.connect(ctx, sess)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	out := make([]wire.Binding, 0, len(oids))
	for start := 0; start < len(oids); start += c.config.MaxOids {
		end := min(start+c.config.MaxOids, len(oids))
		pkt, err := send(g, oids[start:end])
		if err != nil {
			return nil, err
		}
		if err := packetError(pkt, start); err != nil {
			return nil, err
		}
		out = append(out, convertPDUs(pkt.Variables)...)
	}
	return out, nil
}

func (c *Client) connect(ctx context.Context, sess query.Session) (*gosnmp.GoSNMP, error) {
	g, err := c.newSession(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", sess.Target, err)
	}
	return g, nil
}

// newSession builds the gosnmp handle for one call. Only community-based
// credentials are supported.
func (c *Client) newSession(ctx context.Context, sess query.Session) (*gosnmp.GoSNMP, error) {
	community, ok := sess.Credentials.(wire.Community)
	if !ok {
		return nil, fmt.Errorf("credentials %T: %w", sess.Credentials, wire.ErrNotSupported)
	}
	version, err := snmpVersion(community.Version())
	if err != nil {
		return nil, err
	}

	port := sess.Target.Port
	if port == 0 {
		port = query.DefaultPort
	}

	g := &gosnmp.GoSNMP{
		Target:             sess.Target.Host,
		Port:               port,
		Transport:          c.config.Transport,
		Community:          community.Secret,
		Version:            version,
		Context:            ctx,
		Timeout:            c.config.Timeout,
		Retries:            c.config.Retries,
		ExponentialTimeout: c.config.ExponentialTimeout,
		MaxOids:            c.config.MaxOids,
		MaxRepetitions:     c.config.MaxRepetitions,
	}
	if sess.Options.Timeout > 0 {
		g.Timeout = sess.Options.Timeout
	}
	if r := sess.Options.Retries; r != nil {
		g.Retries = max(*r, 0)
	}
	if sess.Options.MaxRepetitions > 0 {
		g.MaxRepetitions = sess.Options.MaxRepetitions
	}
	if c.config.Logger != nil {
		g.Logger = gosnmp.NewLogger(&slogPrinter{logger: c.config.Logger})
	}
	return g, nil
}

func snmpVersion(v wire.Version) (gosnmp.SnmpVersion, error) {
	switch v {
	case wire.Version1:
		return gosnmp.Version1, nil
	case wire.Version2c:
		return gosnmp.Version2c, nil
	default:
		return 0, fmt.Errorf("protocol version %s: %w", v, wire.ErrNotSupported)
	}
}

// packetError maps a non-zero error-status to *query.StatusError. offset
// shifts the agent's error-index back into the caller's OID list.
func packetError(pkt *gosnmp.SnmpPacket, offset int) error {
	if pkt == nil {
		return fmt.Errorf("empty response")
	}
	if pkt.Error == gosnmp.NoError {
		return nil
	}
	index := int(pkt.ErrorIndex)
	if index > 0 {
		index += offset
	}
	return &query.StatusError{Status: wire.ErrorStatus(pkt.Error), Index: index}
}

func convertPDUs(pdus []gosnmp.SnmpPDU) []wire.Binding {
	out := make([]wire.Binding, len(pdus))
	for i, pdu := range pdus {
		out[i] = wire.Binding{
			Name:  strings.TrimPrefix(pdu.Name, "."),
			Value: convertValue(pdu),
		}
	}
	return out
}

func convertValue(pdu gosnmp.SnmpPDU) any {
	switch pdu.Type {
	case gosnmp.NoSuchObject:
		return wire.NoSuchObject
	case gosnmp.NoSuchInstance:
		return wire.NoSuchInstance
	case gosnmp.EndOfMibView:
		return wire.EndOfMibView
	case gosnmp.Null:
		return nil
	case gosnmp.ObjectIdentifier:
		if s, ok := pdu.Value.(string); ok {
			return strings.TrimPrefix(s, ".")
		}
	}
	return pdu.Value
}

// slogPrinter adapts slog to gosnmp's Print/Printf logger.
type slogPrinter struct {
	logger *slog.Logger
}

func (p *slogPrinter) Print(v ...interface{}) {
	p.logger.Debug(strings.TrimSpace(fmt.Sprint(v...)), "component", "gosnmp")
}

func (p *slogPrinter) Printf(format string, v ...interface{}) {
	p.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "gosnmp")
}

// Compile-time interface satisfaction check.
var _ query.Engine = (*Client)(nil)
