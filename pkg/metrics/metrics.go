// Package metrics exports query and poll statistics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snmp-query/snmpq-go/pkg/poller"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Observer records query.Executor and poller outcomes.
type Observer struct {
	queries  *prometheus.CounterVec
	bindings *prometheus.CounterVec
	duration *prometheus.HistogramVec
	up       *prometheus.GaugeVec
	rows     *prometheus.GaugeVec
}

// New creates an Observer and registers its collectors on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snmpq_queries_total",
			Help: "Queries executed, by kind and result.",
		}, []string{"kind", "result"}),
		bindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snmpq_bindings_total",
			Help: "Variable bindings returned by agents.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snmpq_query_duration_seconds",
			Help:    "Wall time of one query including all sub-requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"kind"}),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "snmpq_device_up",
			Help: "1 if the last poll of the device succeeded.",
		}, []string{"host"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "snmpq_device_rows",
			Help: "Records returned by the last poll of the device.",
		}, []string{"host"}),
	}

	for _, c := range []prometheus.Collector{o.queries, o.bindings, o.duration, o.up, o.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveQuery implements query.Observer.
func (o *Observer) ObserveQuery(kind wire.Kind, _ string, bindings int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.queries.WithLabelValues(kind.String(), result).Inc()
	o.bindings.WithLabelValues(kind.String()).Add(float64(bindings))
	o.duration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

// ObservePoll records the outcome of one poll round.
func (o *Observer) ObservePoll(reports []poller.Report) {
	for _, r := range reports {
		if r.Err != nil {
			o.up.WithLabelValues(r.Host).Set(0)
			continue
		}
		o.up.WithLabelValues(r.Host).Set(1)
		o.rows.WithLabelValues(r.Host).Set(float64(len(r.Rows)))
	}
}

// Handler serves /metrics from g and a /healthz liveness endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Compile-time interface satisfaction check.
var _ query.Observer = (*Observer)(nil)
