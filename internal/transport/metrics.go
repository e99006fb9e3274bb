package transport

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts completed requests by method and status code.
	// Transport failures are counted with code "error".
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agraph_requests_total",
			Help: "Total number of requests sent to the store",
		},
		[]string{"method", "code"},
	)

	// RequestDuration tracks request latency by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agraph_request_duration_seconds",
			Help:    "Latency of requests sent to the store",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
}
