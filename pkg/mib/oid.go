package mib

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOID is returned when a string is not a dotted numeric OID.
var ErrInvalidOID = errors.New("invalid OID")

// OID is a sequence of arc values.
type OID []uint32

// ParseOID parses a dotted numeric OID. A single leading dot is accepted,
// as produced by most SNMP engines.
func ParseOID(s string) (OID, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), ".")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
	}

	parts := strings.Split(trimmed, ".")
	oid := make(OID, 0, len(parts))
	for _, p := range parts {
		arc, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
		}
		oid = append(oid, uint32(arc))
	}
	return oid, nil
}

// MustParseOID is like ParseOID but panics on error. Intended for constants.
func MustParseOID(s string) OID {
	oid, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// String returns the dotted form without a leading dot.
func (o OID) String() string {
	var b strings.Builder
	for i, arc := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(arc), 10))
	}
	return b.String()
}

// HasPrefix reports whether prefix is an ancestor of, or equal to, o.
func (o OID) HasPrefix(prefix OID) bool {
	if len(prefix) > len(o) {
		return false
	}
	for i := range prefix {
		if o[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Append returns a new OID with arcs appended; o is not modified.
func (o OID) Append(arcs ...uint32) OID {
	out := make(OID, 0, len(o)+len(arcs))
	out = append(out, o...)
	return append(out, arcs...)
}

// Equal reports whether two OIDs have the same arcs.
func (o OID) Equal(other OID) bool {
	return len(o) == len(other) && o.HasPrefix(other)
}
