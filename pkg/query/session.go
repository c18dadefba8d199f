package query

import (
	"net"
	"strconv"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// DefaultPort is the standard SNMP agent port.
const DefaultPort uint16 = 161

// Target is the agent transport address.
type Target struct {
	Host string
	Port uint16
}

// String returns host:port, using DefaultPort when Port is zero.
func (t Target) String() string {
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(int(port)))
}

// Options tune the engine exchange. Zero values leave the engine defaults.
type Options struct {
	Timeout time.Duration

	// Retries is the number of retransmissions. Nil leaves the engine
	// default; zero disables retransmission.
	Retries *int

	MaxRepetitions uint32
}

// Session is everything the engine needs for one call.
type Session struct {
	Target      Target
	Credentials wire.Credentials
	Options     Options
}

// Version returns the protocol version implied by the credentials.
func (s Session) Version() wire.Version {
	if s.Credentials == nil {
		return 0
	}
	return s.Credentials.Version()
}
