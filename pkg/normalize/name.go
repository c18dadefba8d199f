package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snmp-query/snmpq-go/pkg/mib"
)

// ErrMalformedIdentifier is returned when a binding name is not of the
// form MODULE::symbol[.index].
var ErrMalformedIdentifier = errors.New("malformed identifier")

// Error reports the binding name that could not be parsed.
type Error struct {
	Name   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.Name, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedIdentifier).
func (e *Error) Unwrap() error {
	return ErrMalformedIdentifier
}

// SplitName splits MODULE::symbol.index into its parts. The index is
// everything after the first dot and may itself contain dots; hasIndex
// distinguishes "sym" from "sym." (which is malformed).
func SplitName(full string) (module, symbol, index string, hasIndex bool, err error) {
	module, field, ok := strings.Cut(full, mib.Separator)
	if !ok {
		return "", "", "", false, &Error{Name: full, Reason: "missing " + mib.Separator}
	}
	if module == "" {
		return "", "", "", false, &Error{Name: full, Reason: "empty module"}
	}

	symbol, index, hasIndex = strings.Cut(field, ".")
	if symbol == "" {
		return "", "", "", false, &Error{Name: full, Reason: "empty symbol"}
	}
	if hasIndex && index == "" {
		return "", "", "", false, &Error{Name: full, Reason: "empty index"}
	}
	return module, symbol, index, hasIndex, nil
}

// ShortName returns the symbol part of MODULE::symbol.index.
func ShortName(full string) (string, error) {
	_, symbol, _, _, err := SplitName(full)
	return symbol, err
}
