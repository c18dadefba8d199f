package wire

// Exception is the value an agent reports in place of data for a variable
// it cannot return (SNMPv2 exception values).
type Exception uint8

const (
	NoSuchObject   Exception = 1
	NoSuchInstance Exception = 2
	EndOfMibView   Exception = 3
)

// String returns the agent text conventionally shown for the exception.
func (e Exception) String() string {
	switch e {
	case NoSuchObject:
		return "No Such Object currently exists at this OID"
	case NoSuchInstance:
		return "No Such Instance currently exists at this OID"
	case EndOfMibView:
		return "No more variables left in this MIB View"
	default:
		return "Unknown exception"
	}
}

// IsEndOfMibView reports whether v is the EndOfMibView exception.
func IsEndOfMibView(v any) bool {
	e, ok := v.(Exception)
	return ok && e == EndOfMibView
}
