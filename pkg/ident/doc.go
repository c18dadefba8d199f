// Package ident turns heterogeneous identifier specifications into
// normalized query descriptors.
//
// An identifier is either a raw dotted numeric path (RawPath) or a symbolic
// pair (Symbol) of a MIB module and a field. The field may carry a single
// instance index after a dot:
//
//	ident.RawPath("1.3.6.1.2.1.1.5.0")
//	ident.Symbol{Namespace: "IF-MIB", Field: "ifIndex"}
//	ident.Symbol{Namespace: "SNMPv2-MIB", Field: "sysName.0"}
//
// Resolve never performs network I/O. A field with more than one dot is
// rejected with ErrInvalidIdentifier.
package ident
