package query

import (
	"errors"
	"fmt"

	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// ErrQueryFailed is wrapped by every engine-reported failure.
var ErrQueryFailed = errors.New("query failed")

// Error is returned by Execute when the exchange with the agent failed.
type Error struct {
	Kind   wire.Kind
	Target string

	// Indication is the engine's error text.
	Indication string

	// Status is set when the agent reported an error-status.
	Status *wire.ErrorStatus

	// Err is the underlying engine error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Kind, e.Target, ErrQueryFailed, e.Indication)
}

// Unwrap exposes both ErrQueryFailed and the engine error to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrQueryFailed}
	}
	return []error{ErrQueryFailed, e.Err}
}

func queryFailed(kind wire.Kind, target string, err error) *Error {
	qe := &Error{Kind: kind, Target: target, Indication: err.Error(), Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		status := se.Status
		qe.Status = &status
	}
	return qe
}
