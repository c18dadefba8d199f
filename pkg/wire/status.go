package wire

// ErrorStatus is the error-status field of an SNMP response PDU.
type ErrorStatus uint8

const (
	StatusNoError             ErrorStatus = 0
	StatusTooBig              ErrorStatus = 1
	StatusNoSuchName          ErrorStatus = 2
	StatusBadValue            ErrorStatus = 3
	StatusReadOnly            ErrorStatus = 4
	StatusGenErr              ErrorStatus = 5
	StatusNoAccess            ErrorStatus = 6
	StatusWrongType           ErrorStatus = 7
	StatusWrongLength         ErrorStatus = 8
	StatusWrongEncoding       ErrorStatus = 9
	StatusWrongValue          ErrorStatus = 10
	StatusNoCreation          ErrorStatus = 11
	StatusInconsistentValue   ErrorStatus = 12
	StatusResourceUnavailable ErrorStatus = 13
	StatusCommitFailed        ErrorStatus = 14
	StatusUndoFailed          ErrorStatus = 15
	StatusAuthorizationError  ErrorStatus = 16
	StatusNotWritable         ErrorStatus = 17
	StatusInconsistentName    ErrorStatus = 18
)

var statusNames = [...]string{
	"noError",
	"tooBig",
	"noSuchName",
	"badValue",
	"readOnly",
	"genErr",
	"noAccess",
	"wrongType",
	"wrongLength",
	"wrongEncoding",
	"wrongValue",
	"noCreation",
	"inconsistentValue",
	"resourceUnavailable",
	"commitFailed",
	"undoFailed",
	"authorizationError",
	"notWritable",
	"inconsistentName",
}

// String returns the RFC 3416 name of the status.
func (s ErrorStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsSuccess returns true if the status indicates success.
func (s ErrorStatus) IsSuccess() bool {
	return s == StatusNoError
}

// IsError returns true if the status indicates an error.
func (s ErrorStatus) IsError() bool {
	return s != StatusNoError
}
