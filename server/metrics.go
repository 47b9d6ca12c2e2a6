package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Package-level so handlers and middleware share the same collectors.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towertrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "towertrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	syncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "towertrack_syncs_total",
			Help: "Total number of completion syncs, by outcome",
		},
		[]string{"outcome"},
	)

	badgesIndexed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "towertrack_badges_indexed",
			Help: "Number of badges in the catalog index",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(syncsTotal)
	prometheus.MustRegister(badgesIndexed)
}
