// Command snmpq queries SNMP agents and prints the results as records.
//
// Usage:
//
//	snmpq <command> [flags]
//
// Commands:
//
//	get          Fetch exact instances
//	walk         Walk subtrees with GET-NEXT
//	bulkwalk     Walk subtrees with GETBULK
//	name         Print a device's sysName
//	uptime       Print a device's sysUpTime
//	interfaces   Print a device's interface table
//	poll         Poll every device of a config file
//	shell        Interactive query shell for one device
//	log          View, export, filter and summarize query event files
//
// Examples:
//
//	snmpq get 192.0.2.1 SNMPv2-MIB::sysName.0 1.3.6.1.2.1.1.3.0
//	snmpq walk -V 1 192.0.2.1 IF-MIB::ifDescr
//	snmpq interfaces -o csv 192.0.2.1
//	snmpq poll --config snmpq.yaml --metrics-addr :9116
//	snmpq log stats queries.qlog
package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr, nil)
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
