package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Auth
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"}, // ok|failed
	)

	// Content
	PostsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total posts created",
		},
	)

	// Password reset mail
	ResetMailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reset_mail_total",
			Help: "Password reset emails by outcome",
		},
		[]string{"outcome"}, // sent|failed
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(PostsCreatedTotal)
	prometheus.MustRegister(ResetMailTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
