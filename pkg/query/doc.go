// Package query executes GET, GET-NEXT walk and BULK-WALK queries through an
// external protocol engine.
//
// The Executor expands resolved descriptors into numeric OIDs using a
// symbol table, drives the Engine, and translates the numeric names in the
// reply back to MODULE::symbol.index form. It never retries: any engine
// failure is reported once as an *Error wrapping ErrQueryFailed, and no
// partial bindings are returned alongside it.
//
//	exec := query.NewExecutor(transport.NewEngine(), mib.MustDefault())
//	bindings, err := exec.Execute(ctx, wire.KindBulkWalk, descs, query.Session{
//	    Target:      query.Target{Host: "router1", Port: 161},
//	    Credentials: creds,
//	})
//
// Sessions are passed per call; the Executor holds no connection state and
// is safe for concurrent use.
package query
