// Package transport provides the network engine behind query.Executor.
//
// Client implements query.Engine on top of gosnmp. Every call opens its own
// UDP (or TCP) socket and closes it before returning, so a Client carries no
// per-agent state and is safe for concurrent use.
//
// # Value mapping
//
// Values are handed to the caller with as little interpretation as
// possible:
//
//	OCTET STRING        []byte
//	OBJECT IDENTIFIER   string, numeric, without leading dot
//	IpAddress           string
//	INTEGER             int
//	Counter32, Gauge32  uint
//	TimeTicks           uint32
//	Counter64           uint64
//	noSuchObject        wire.NoSuchObject
//	noSuchInstance      wire.NoSuchInstance
//	endOfMibView        wire.EndOfMibView
//	NULL                nil
//
// An agent error-status is reported as *query.StatusError.
package transport
