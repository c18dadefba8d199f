package ident

import (
	"strings"

	"github.com/snmp-query/snmpq-go/pkg/mib"
)

// Descriptor is the resolved, engine-ready form of one Spec. The zero value
// is not useful; descriptors are built by Resolve.
type Descriptor struct {
	raw       mib.OID
	namespace string
	symbol    string
	index     string
	indexed   bool
}

// IsRaw reports whether the descriptor wraps a numeric OID.
func (d Descriptor) IsRaw() bool {
	return d.raw != nil
}

// OID returns a copy of the numeric OID of a raw descriptor, or nil.
func (d Descriptor) OID() mib.OID {
	if d.raw == nil {
		return nil
	}
	return d.raw.Append()
}

// Namespace returns the MIB module of a symbolic descriptor.
func (d Descriptor) Namespace() string {
	return d.namespace
}

// Symbol returns the symbol name of a symbolic descriptor, without index.
func (d Descriptor) Symbol() string {
	return d.symbol
}

// Index returns the explicit instance index and whether one was given.
func (d Descriptor) Index() (string, bool) {
	return d.index, d.indexed
}

// String renders the descriptor the way it would be written by hand.
func (d Descriptor) String() string {
	if d.IsRaw() {
		return d.raw.String()
	}
	var b strings.Builder
	b.WriteString(d.namespace)
	b.WriteString(mib.Separator)
	b.WriteString(d.symbol)
	if d.indexed {
		b.WriteByte('.')
		b.WriteString(d.index)
	}
	return b.String()
}

// Resolve converts specs into descriptors, preserving order. It fails on
// the first invalid spec and returns no partial result.
func Resolve(specs []Spec) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(specs))
	for _, spec := range specs {
		d, err := resolveOne(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func resolveOne(spec Spec) (Descriptor, error) {
	switch s := spec.(type) {
	case RawPath:
		oid, err := mib.ParseOID(string(s))
		if err != nil {
			return Descriptor{}, invalid(string(s), "not a dotted numeric path")
		}
		return Descriptor{raw: oid}, nil

	case Symbol:
		return resolveSymbol(s)

	case *Symbol:
		if s == nil {
			return Descriptor{}, invalid("", "nil identifier")
		}
		return resolveSymbol(*s)

	case nil:
		return Descriptor{}, invalid("", "nil identifier")

	default:
		return Descriptor{}, invalid(spec.String(), "unsupported identifier form %T", spec)
	}
}

func resolveSymbol(s Symbol) (Descriptor, error) {
	if s.Namespace == "" {
		return Descriptor{}, invalid(s.String(), "namespace is required")
	}

	parts := strings.Split(s.Field, ".")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Descriptor{}, invalid(s.String(), "field is required")
		}
		return Descriptor{namespace: s.Namespace, symbol: parts[0]}, nil

	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Descriptor{}, invalid(s.String(), "field and index must both be non-empty")
		}
		return Descriptor{
			namespace: s.Namespace,
			symbol:    parts[0],
			index:     parts[1],
			indexed:   true,
		}, nil

	default:
		return Descriptor{}, invalid(s.String(), "field must contain at most one '.', got %d", len(parts)-1)
	}
}
