// Package normalize reshapes query bindings into records keyed by short
// field names.
//
// Bindings named MODULE::symbol.index are grouped by index. Each group
// becomes one Record mapping symbol to the coerced value, and records come
// out in the order their index was first seen:
//
//	IF-MIB::ifIndex.1 = 1          [{ifIndex: 1, ifName: "eth0"},
//	IF-MIB::ifName.1  = "eth0"  ->  {ifIndex: 2, ifName: "eth1"}]
//	IF-MIB::ifIndex.2 = 2
//	IF-MIB::ifName.2  = "eth1"
//
// Scalars without an index share one synthetic group.
//
// The result is always a Collection unless WithCollapse is given, in which
// case a single group comes back as a bare Record.
package normalize
