// Package metrics holds the Prometheus collectors shared across layers.
// Label sets are kept small: resource kind, upstream endpoint name, and
// status class. Raw ids never appear in labels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by resource kind and result (hit, miss, error).",
		},
		[]string{"kind", "result"},
	)

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream attempts by endpoint and status (HTTP code, or \"error\").",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Upstream retries by endpoint.",
		},
		[]string{"endpoint"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of single upstream attempts in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	StoreUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_upserts_total",
			Help: "Durable store upserts by entity and result.",
		},
		[]string{"entity", "result"},
	)

	SingleflightShared = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "singleflight_shared_total",
			Help: "Requests that reused an in-flight fetch instead of calling upstream.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		CacheLookups,
		UpstreamRequests,
		UpstreamRetries,
		UpstreamLatency,
		StoreUpserts,
		SingleflightShared,
	)
}
