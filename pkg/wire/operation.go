package wire

import "fmt"

// Kind represents a query operation.
type Kind uint8

const (
	// KindGet fetches exactly the requested instances.
	KindGet Kind = 1

	// KindWalk walks every requested root with GET-NEXT, all roots in
	// lock step, stopping each root once the agent leaves its subtree.
	KindWalk Kind = 2

	// KindBulkWalk walks each requested root with GET-BULK, one root per
	// sub-request.
	KindBulkWalk Kind = 3
)

// String returns the operation name.
func (k Kind) String() string {
	switch k {
	case KindGet:
		return "Get"
	case KindWalk:
		return "Walk"
	case KindBulkWalk:
		return "BulkWalk"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the kind is a known query operation.
func (k Kind) IsValid() bool {
	return k >= KindGet && k <= KindBulkWalk
}

// ParseKind parses the names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "get", "Get", "GET":
		return KindGet, nil
	case "walk", "next", "getnext", "Walk", "WALK":
		return KindWalk, nil
	case "bulkwalk", "bulk", "BulkWalk", "BULKWALK":
		return KindBulkWalk, nil
	default:
		return 0, fmt.Errorf("unknown query kind %q (use: get, walk, bulkwalk)", s)
	}
}
