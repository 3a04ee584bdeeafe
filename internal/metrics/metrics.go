package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeclient_requests_total",
			Help: "Total number of REST requests issued (by exchange and method).",
		},
		[]string{"exchange", "method"},
	)

	RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeclient_request_errors_total",
			Help: "Total number of failed REST requests (by exchange and error kind).",
		},
		[]string{"exchange", "kind"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradeclient_request_duration_seconds",
			Help:    "REST request latency in seconds (by exchange).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"exchange"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeclient_orders_submitted_total",
			Help: "Total number of orders submitted (by exchange and side).",
		},
		[]string{"exchange", "side"},
	)

	OrdersCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeclient_orders_canceled_total",
			Help: "Total number of orders canceled (by exchange).",
		},
		[]string{"exchange"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestErrors, RequestDuration, OrdersSubmitted, OrdersCanceled)
}
