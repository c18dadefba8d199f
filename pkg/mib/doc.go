// Package mib provides the read-only symbol table used to translate between
// symbolic SNMP names (MODULE::symbol) and numeric object identifiers.
//
// The table is pre-resolved: it is a flat list of (module, symbol, OID)
// triples loaded from YAML. No MIB compilation happens here. The standard
// SNMPv2-SMI, SNMPv2-MIB and IF-MIB symbols are embedded; extra tables can be
// merged from files supplied by the caller's environment.
//
// Table files look like:
//
//	module: IF-MIB
//	symbols:
//	  ifIndex: 1.3.6.1.2.1.2.2.1.1
//	  ifName: 1.3.6.1.2.1.31.1.1.1.1
//
// A Table is safe for concurrent reads once built.
package mib
