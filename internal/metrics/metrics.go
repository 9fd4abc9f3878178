// Package metrics exposes Prometheus instruments for collection reads and mutations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ordered_list"

	ResultSuccess = "success"
	ResultFailure = "failure"

	QueryUnfiltered = "unfiltered"
	QueryFiltered   = "filtered"
)

// Metrics groups the instruments of one collection. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Mutations        *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec
	Queries          *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	Records          prometheus.Gauge
	Selected         prometheus.Gauge
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "mutations_total",
			Help:      "Mutations applied to the collection, by kind and result",
		}, []string{"kind", "result"}),
		MutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "mutation_duration_seconds",
			Help:      "Time spent applying a mutation, lock wait included",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"kind"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "queries_total",
			Help:      "Page queries served, by filter mode",
		}, []string{"mode"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "query_duration_seconds",
			Help:      "Time spent serving a page query",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"mode"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "records",
			Help:      "Number of records in the collection",
		}),
		Selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "selected_records",
			Help:      "Number of ids in the selection",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Mutations, m.MutationDuration, m.Queries, m.QueryDuration, m.Records, m.Selected)
	}
	return m
}

// ObserveMutation records one applied or rejected mutation.
func (m *Metrics) ObserveMutation(kind, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(kind, result).Inc()
	m.MutationDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// ObserveQuery records one served page.
func (m *Metrics) ObserveQuery(filtered bool, took time.Duration) {
	if m == nil {
		return
	}
	mode := QueryUnfiltered
	if filtered {
		mode = QueryFiltered
	}
	m.Queries.WithLabelValues(mode).Inc()
	m.QueryDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// SetSizes publishes the current record and selection counts.
func (m *Metrics) SetSizes(records, selected int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(records))
	m.Selected.Set(float64(selected))
}
