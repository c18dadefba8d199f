package query

import (
	"context"
	"fmt"

	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Engine performs the actual network exchange. OIDs are passed and
// returned in numeric dotted form; values are passed through untouched.
//
// Implementations report an agent error-status as a *StatusError and
// represent SNMPv2 exception values as wire.Exception.
type Engine interface {
	// Get fetches exactly the given instances in one request.
	Get(ctx context.Context, sess Session, oids []string) ([]wire.Binding, error)

	// GetNext returns, for each OID, the lexicographically next instance,
	// in request order.
	GetNext(ctx context.Context, sess Session, oids []string) ([]wire.Binding, error)

	// BulkWalk retrieves every instance under root.
	BulkWalk(ctx context.Context, sess Session, root string) ([]wire.Binding, error)
}

// StatusError is returned by engines when the agent answered with a non-zero
// error-status.
type StatusError struct {
	Status wire.ErrorStatus
	Index  int
}

func (e *StatusError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("agent error-status %s at index %d", e.Status, e.Index)
	}
	return fmt.Sprintf("agent error-status %s", e.Status)
}
