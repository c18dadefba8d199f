// Package device provides the standard queries against one SNMP agent:
// its name, its uptime and its interface table.
//
// A Device is bound to one host and one set of credentials at construction
// and never changes afterwards. All network work goes through the
// query.Executor it was given, so many Devices can share one Executor.
//
//	exec := query.NewExecutor(transport.NewClient(transport.Config{}), nil)
//	creds, _ := wire.NewCredentials(wire.Version2c, "public")
//	dev, _ := device.New("192.0.2.1", creds, exec)
//	rows, err := dev.Interfaces(ctx)
package device
