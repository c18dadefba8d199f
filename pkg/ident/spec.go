package ident

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snmp-query/snmpq-go/pkg/mib"
)

// ErrInvalidIdentifier is returned for identifiers that do not match the
// raw path or (namespace, field[.index]) shapes.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Error describes why one identifier was rejected.
type Error struct {
	Input  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidIdentifier).
func (e *Error) Unwrap() error {
	return ErrInvalidIdentifier
}

func invalid(input, format string, args ...any) error {
	return &Error{Input: input, Reason: fmt.Sprintf(format, args...)}
}

// Spec is an identifier specification. It is implemented only by RawPath and
// Symbol.
type Spec interface {
	fmt.Stringer
	isSpec()
}

// RawPath is a literal dotted numeric OID.
type RawPath string

func (RawPath) isSpec() {}

// String returns the path as given.
func (p RawPath) String() string {
	return string(p)
}

// Symbol is a (namespace, field) pair. Field may be "symbol" or
// "symbol.index".
type Symbol struct {
	Namespace string
	Field     string
}

func (Symbol) isSpec() {}

// String returns the textual NAMESPACE::field form.
func (s Symbol) String() string {
	return s.Namespace + mib.Separator + s.Field
}

// ParseSpec parses the textual forms accepted on command lines and in
// configuration files:
//
//	1.3.6.1.2.1.1.5.0
//	.1.3.6.1.2.1.1.5.0
//	SNMPv2-MIB::sysName.0
//	IF-MIB::ifIndex
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, invalid(s, "empty identifier")
	}

	if ns, field, ok := strings.Cut(s, mib.Separator); ok {
		if ns == "" || field == "" {
			return nil, invalid(s, "expected NAMESPACE::field")
		}
		return Symbol{Namespace: ns, Field: field}, nil
	}

	if _, err := mib.ParseOID(s); err != nil {
		return nil, invalid(s, "neither a numeric OID nor NAMESPACE::field")
	}
	return RawPath(s), nil
}

// ParseSpecs parses each string with ParseSpec, stopping at the first error.
func ParseSpecs(in []string) ([]Spec, error) {
	out := make([]Spec, 0, len(in))
	for _, s := range in {
		spec, err := ParseSpec(s)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}
