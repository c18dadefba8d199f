package normalize

import (
	"time"

	"github.com/snmp-query/snmpq-go/pkg/log"
	"github.com/snmp-query/snmpq-go/pkg/value"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Record maps short field names to coerced values for one instance index.
type Record map[string]any

// Collection is an ordered list of records.
type Collection []Record

// Result is either a Record or a Collection. Only normalizers built with
// WithCollapse return a bare Record.
type Result interface {
	// Records returns the result as a Collection.
	Records() Collection
	isResult()
}

func (Record) isResult()     {}
func (Collection) isResult() {}

// Records wraps r in a one-element Collection.
func (r Record) Records() Collection { return Collection{r} }

// Records returns c.
func (c Collection) Records() Collection { return c }

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCollapse makes Normalize return a bare Record when the bindings
// produce exactly one record.
func WithCollapse() Option {
	return func(n *Normalizer) {
		n.collapse = true
	}
}

// WithInject adds key=value to every record. Injected fields take
// precedence over fields of the same name from the bindings.
func WithInject(key string, v any) Option {
	return func(n *Normalizer) {
		n.inject = append(n.inject, field{key: key, value: v})
	}
}

// WithLogger reports malformed batches to l.
func WithLogger(l log.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

type field struct {
	key   string
	value any
}

// Normalizer groups bindings into records. It holds no per-call state and
// is safe for concurrent use.
type Normalizer struct {
	collapse bool
	inject   []field
	logger   log.Logger
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{logger: log.NoopLogger{}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize groups bindings by index. A malformed name aborts the whole
// batch.
func (n *Normalizer) Normalize(bindings []wire.Binding) (Result, error) {
	records, err := n.group(bindings)
	if err != nil {
		n.logger.Log(log.Event{
			Timestamp: time.Now(),
			Direction: log.DirectionLocal,
			Stage:     log.StageNormalize,
			Category:  log.CategoryError,
			Error:     &log.ErrorEventData{Message: err.Error(), Context: "normalize"},
		})
		return nil, err
	}
	if n.collapse && len(records) == 1 {
		return records[0], nil
	}
	return records, nil
}

// Collection is Normalize without the collapse option.
func (n *Normalizer) Collection(bindings []wire.Binding) (Collection, error) {
	res, err := n.Normalize(bindings)
	if err != nil {
		return nil, err
	}
	return res.Records(), nil
}

func (n *Normalizer) group(bindings []wire.Binding) (Collection, error) {
	out := Collection{}
	byIndex := make(map[string]int)

	for _, b := range bindings {
		_, symbol, index, _, err := SplitName(b.Name)
		if err != nil {
			return nil, err
		}

		pos, seen := byIndex[index]
		if !seen {
			pos = len(out)
			byIndex[index] = pos
			out = append(out, make(Record, len(n.inject)+1))
		}
		out[pos][symbol] = value.Coerce(b.Value)
	}

	for _, r := range out {
		for _, f := range n.inject {
			r[f.key] = f.value
		}
	}
	return out, nil
}

// Records normalizes bindings into a Collection with default options.
func Records(bindings []wire.Binding) (Collection, error) {
	return New().Collection(bindings)
}
