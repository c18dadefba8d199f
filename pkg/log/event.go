package log

import (
	"strings"
	"time"

	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Event represents a query log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint" json:"timestamp"`

	// RequestID correlates the events of one Execute call (UUID).
	RequestID string `cbor:"2,keyasint" json:"request_id"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint" json:"direction"`

	// Stage where the event was captured.
	Stage Stage `cbor:"4,keyasint" json:"stage"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint" json:"category"`

	// Target is the agent address (host:port).
	Target string `cbor:"6,keyasint,omitempty" json:"target,omitempty"`

	// Kind is the query operation.
	Kind wire.Kind `cbor:"7,keyasint,omitempty" json:"kind,omitempty"`

	// Version is the protocol version used.
	Version wire.Version `cbor:"8,keyasint,omitempty" json:"version,omitempty"`

	// Type-specific payload (one of these will be set).
	Request  *RequestEvent   `cbor:"10,keyasint,omitempty" json:"request,omitempty"`
	Response *ResponseEvent  `cbor:"11,keyasint,omitempty" json:"response,omitempty"`
	Error    *ErrorEventData `cbor:"12,keyasint,omitempty" json:"error,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionOut indicates a request sent to the agent.
	DirectionOut Direction = 0
	// DirectionIn indicates a response received from the agent.
	DirectionIn Direction = 1
	// DirectionLocal indicates an event with no network exchange.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "OUT"
	case DirectionIn:
		return "IN"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Stage indicates which pipeline stage captured the event.
type Stage uint8

const (
	// StageResolve is identifier resolution and OID expansion.
	StageResolve Stage = 0
	// StageExecute is the engine round trip.
	StageExecute Stage = 1
	// StageNormalize is result reshaping.
	StageNormalize Stage = 2
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "RESOLVE"
	case StageExecute:
		return "EXECUTE"
	case StageNormalize:
		return "NORMALIZE"
	default:
		return "UNKNOWN"
	}
}

// ParseStage parses a stage name, case-insensitively.
func ParseStage(s string) (Stage, bool) {
	switch strings.ToLower(s) {
	case "resolve":
		return StageResolve, true
	case "execute":
		return StageExecute, true
	case "normalize":
		return StageNormalize, true
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRequest indicates an outgoing query.
	CategoryRequest Category = 0
	// CategoryResponse indicates a completed query.
	CategoryResponse Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRequest:
		return "REQUEST"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RequestEvent captures what was sent.
type RequestEvent struct {
	// OIDs are the numeric roots or instances requested.
	OIDs []string `cbor:"1,keyasint" json:"oids"`

	// SubRequests is how many engine calls the query was split into.
	SubRequests int `cbor:"2,keyasint,omitempty" json:"sub_requests,omitempty"`
}

// ResponseEvent captures what came back.
type ResponseEvent struct {
	// Bindings is the number of variable bindings returned.
	Bindings int `cbor:"1,keyasint" json:"bindings"`

	// Duration is the wall time of the whole query.
	Duration time.Duration `cbor:"2,keyasint" json:"duration"`

	// Untranslated counts bindings whose OID had no symbol in the table.
	Untranslated int `cbor:"3,keyasint,omitempty" json:"untranslated,omitempty"`
}

// ErrorEventData captures a failure.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint" json:"message"`

	// Status is the agent error-status, when the agent reported one.
	Status *wire.ErrorStatus `cbor:"2,keyasint,omitempty" json:"status,omitempty"`

	// Context gives additional detail (e.g. the OID being expanded).
	Context string `cbor:"3,keyasint,omitempty" json:"context,omitempty"`
}
