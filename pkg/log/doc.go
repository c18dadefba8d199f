// Package log provides structured query event logging.
//
// This package defines the Logger interface and Event types for capturing
// every exchange the query layer has with an agent: the outgoing request,
// the incoming response and any error, at the stage where it happened
// (resolve, execute, normalize). It is separate from operational logging
// (slog) - the event trace is machine readable and can be replayed with
// `snmpq log`.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	exec := query.NewExecutor(engine, table, query.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/snmpq/queries.qlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// Applications already standardised on zap can use NewZapAdapter instead of
// NewSlogAdapter.
//
// # File Format
//
// Log files use CBOR encoding with integer keys and the .qlog extension.
package log
