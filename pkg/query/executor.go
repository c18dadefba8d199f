package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/snmp-query/snmpq-go/pkg/ident"
	"github.com/snmp-query/snmpq-go/pkg/log"
	"github.com/snmp-query/snmpq-go/pkg/mib"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// DefaultMaxWalkSteps bounds the number of GET-NEXT round trips in one walk.
const DefaultMaxWalkSteps = 100_000

// Observer receives one callback per Execute call that reached the engine.
type Observer interface {
	ObserveQuery(kind wire.Kind, target string, bindings int, elapsed time.Duration, err error)
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the query event logger.
func WithLogger(l log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithMaxWalkSteps overrides DefaultMaxWalkSteps.
func WithMaxWalkSteps(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxWalkSteps = n
		}
	}
}

// Executor runs queries against an Engine.
type Executor struct {
	engine       Engine
	table        *mib.Table
	logger       log.Logger
	observer     Observer
	maxWalkSteps int
	now          func() time.Time
}

// NewExecutor creates an Executor. A nil table selects the embedded
// standard table.
func NewExecutor(engine Engine, table *mib.Table, opts ...Option) *Executor {
	if table == nil {
		table = mib.MustDefault()
	}
	e := &Executor{
		engine:       engine,
		table:        table,
		logger:       log.NoopLogger{},
		maxWalkSteps: DefaultMaxWalkSteps,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the symbol table used for expansion and translation.
func (e *Executor) Table() *mib.Table {
	return e.table
}

// Execute runs one query and returns the agent's bindings with textual
// names, in the order the agent produced them. Zero descriptors yield zero
// bindings without contacting the agent.
func (e *Executor) Execute(ctx context.Context, kind wire.Kind, descs []ident.Descriptor, sess Session) ([]wire.Binding, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("query kind %d: %w", kind, wire.ErrNotSupported)
	}
	if sess.Credentials == nil {
		return nil, fmt.Errorf("no credentials for %s: %w", sess.Target, wire.ErrNotSupported)
	}

	reqID := uuid.NewString()
	target := sess.Target.String()

	roots := make([]mib.OID, 0, len(descs))
	for _, d := range descs {
		oid, err := e.expand(d)
		if err != nil {
			e.logError(reqID, log.StageResolve, kind, sess, err, d.String())
			return nil, err
		}
		roots = append(roots, oid)
	}
	if len(roots) == 0 {
		return []wire.Binding{}, nil
	}

	subRequests := 1
	if kind == wire.KindBulkWalk {
		subRequests = len(roots)
	}
	e.logger.Log(log.Event{
		Timestamp: e.now(),
		RequestID: reqID,
		Direction: log.DirectionOut,
		Stage:     log.StageExecute,
		Category:  log.CategoryRequest,
		Target:    target,
		Kind:      kind,
		Version:   sess.Version(),
		Request:   &log.RequestEvent{OIDs: oidStrings(roots), SubRequests: subRequests},
	})

	start := e.now()
	var (
		raw []wire.Binding
		err error
	)
	switch kind {
	case wire.KindGet:
		raw, err = e.engine.Get(ctx, sess, oidStrings(roots))
	case wire.KindWalk:
		raw, err = e.walk(ctx, sess, roots)
	case wire.KindBulkWalk:
		raw, err = e.bulkWalk(ctx, sess, roots)
	}
	elapsed := e.now().Sub(start)

	if err != nil {
		qe := queryFailed(kind, target, err)
		e.observe(kind, target, 0, elapsed, qe)
		e.logger.Log(log.Event{
			Timestamp: e.now(),
			RequestID: reqID,
			Direction: log.DirectionIn,
			Stage:     log.StageExecute,
			Category:  log.CategoryError,
			Target:    target,
			Kind:      kind,
			Version:   sess.Version(),
			Error:     &log.ErrorEventData{Message: qe.Indication, Status: qe.Status},
		})
		return nil, qe
	}

	bindings, untranslated := e.translate(raw)
	e.observe(kind, target, len(bindings), elapsed, nil)
	e.logger.Log(log.Event{
		Timestamp: e.now(),
		RequestID: reqID,
		Direction: log.DirectionIn,
		Stage:     log.StageExecute,
		Category:  log.CategoryResponse,
		Target:    target,
		Kind:      kind,
		Version:   sess.Version(),
		Response:  &log.ResponseEvent{Bindings: len(bindings), Duration: elapsed, Untranslated: untranslated},
	})
	return bindings, nil
}

// expand turns a descriptor into the numeric OID the engine expects.
func (e *Executor) expand(d ident.Descriptor) (mib.OID, error) {
	if d.IsRaw() {
		return d.OID(), nil
	}

	entry, ok := e.table.Lookup(d.Namespace(), d.Symbol())
	if !ok {
		return nil, &ident.Error{Input: d.String(), Reason: "symbol not found in table"}
	}

	idx, indexed := d.Index()
	if !indexed {
		return entry.OID, nil
	}
	arc, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return nil, &ident.Error{Input: d.String(), Reason: "instance index must be numeric"}
	}
	return entry.OID.Append(uint32(arc)), nil
}

// walk advances every root with GET-NEXT in lock step. A root drops out when
// the agent leaves its subtree or reports endOfMibView; the walk ends when
// all roots have dropped out. Bindings come out one row at a time.
func (e *Executor) walk(ctx context.Context, sess Session, roots []mib.OID) ([]wire.Binding, error) {
	cursors := make([]mib.OID, len(roots))
	copy(cursors, roots)
	active := make([]int, len(roots))
	for i := range active {
		active[i] = i
	}

	var out []wire.Binding
	for steps := 0; len(active) > 0; steps++ {
		if steps >= e.maxWalkSteps {
			return nil, fmt.Errorf("walk did not finish within %d requests", e.maxWalkSteps)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		oids := make([]string, len(active))
		for j, i := range active {
			oids[j] = cursors[i].String()
		}

		resp, err := e.engine.GetNext(ctx, sess, oids)
		if err != nil {
			// SNMPv1 agents report the end of their view as noSuchName on
			// the offending variable.
			if pos, ok := v1EndOfView(sess, err, len(active)); ok {
				active = append(active[:pos:pos], active[pos+1:]...)
				continue
			}
			return nil, err
		}
		if len(resp) != len(oids) {
			return nil, fmt.Errorf("agent returned %d bindings for %d requested", len(resp), len(oids))
		}

		next := active[:0:0]
		for j, i := range active {
			b := resp[j]
			if wire.IsEndOfMibView(b.Value) {
				continue
			}
			oid, err := mib.ParseOID(b.Name)
			if err != nil {
				return nil, fmt.Errorf("engine returned unparseable name %q", b.Name)
			}
			if !oid.HasPrefix(roots[i]) || oid.Equal(roots[i]) {
				continue
			}
			if compareOIDs(oid, cursors[i]) <= 0 {
				return nil, fmt.Errorf("agent returned non-increasing OID %s after %s", oid, cursors[i])
			}
			out = append(out, wire.Binding{Name: oid.String(), Value: b.Value})
			cursors[i] = oid
			next = append(next, i)
		}
		active = next
	}
	return out, nil
}

// v1EndOfView reports which of n active roots an SNMPv1 noSuchName error
// points at. An error without an index ends the walk only for a single root.
func v1EndOfView(sess Session, err error, n int) (int, bool) {
	if sess.Version() != wire.Version1 {
		return 0, false
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != wire.StatusNoSuchName {
		return 0, false
	}
	switch {
	case se.Index >= 1 && se.Index <= n:
		return se.Index - 1, true
	case n == 1:
		return 0, true
	}
	return 0, false
}

// bulkWalk issues one sub-request per root, sequentially. A single bulk
// walk cannot interleave unrelated roots without bleeding rows across them.
func (e *Executor) bulkWalk(ctx context.Context, sess Session, roots []mib.OID) ([]wire.Binding, error) {
	var out []wire.Binding
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := e.engine.BulkWalk(ctx, sess, root.String())
		if err != nil {
			return nil, err
		}
		for _, b := range resp {
			if wire.IsEndOfMibView(b.Value) {
				continue
			}
			oid, err := mib.ParseOID(b.Name)
			if err != nil {
				return nil, fmt.Errorf("engine returned unparseable name %q", b.Name)
			}
			if !oid.HasPrefix(root) || oid.Equal(root) {
				continue
			}
			out = append(out, wire.Binding{Name: oid.String(), Value: b.Value})
		}
	}
	return out, nil
}

// translate renders numeric names as MODULE::symbol.index. Names the table
// cannot place are kept numeric and counted.
func (e *Executor) translate(raw []wire.Binding) ([]wire.Binding, int) {
	out := make([]wire.Binding, len(raw))
	untranslated := 0
	for i, b := range raw {
		out[i] = b
		oid, err := mib.ParseOID(b.Name)
		if err != nil {
			continue
		}
		if name, ok := e.table.Translate(oid); ok {
			out[i].Name = name
			continue
		}
		untranslated++
	}
	return out, untranslated
}

func (e *Executor) observe(kind wire.Kind, target string, n int, elapsed time.Duration, err error) {
	if e.observer != nil {
		e.observer.ObserveQuery(kind, target, n, elapsed, err)
	}
}

func (e *Executor) logError(reqID string, stage log.Stage, kind wire.Kind, sess Session, err error, detail string) {
	e.logger.Log(log.Event{
		Timestamp: e.now(),
		RequestID: reqID,
		Direction: log.DirectionLocal,
		Stage:     stage,
		Category:  log.CategoryError,
		Target:    sess.Target.String(),
		Kind:      kind,
		Version:   sess.Version(),
		Error:     &log.ErrorEventData{Message: err.Error(), Context: detail},
	})
}

func oidStrings(oids []mib.OID) []string {
	out := make([]string, len(oids))
	for i, o := range oids {
		out[i] = o.String()
	}
	return out
}

func compareOIDs(a, b mib.OID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// IsQueryFailed reports whether err came from the engine exchange.
func IsQueryFailed(err error) bool {
	return errors.Is(err, ErrQueryFailed)
}
