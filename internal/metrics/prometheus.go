package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OnboardingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_requests_total",
			Help: "Total number of onboarding requests accepted by the intake",
		},
		[]string{"tier"},
	)

	PoolsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_pools_created_total",
			Help: "Total number of tenant-tier identity pools created",
		},
		[]string{"tier"},
	)

	WorkerProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_deliveries_processed_total",
			Help: "Total number of workflow deliveries processed by workers",
		},
		[]string{"outcome"},
	)

	WorkerActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_active_goroutines",
			Help: "Number of active onboarding worker goroutines",
		},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_queue_depth",
			Help: "Current depth of the onboarding workflow queue",
		},
	)
)

// Init registers metrics with Prometheus
func Init() {
	prometheus.MustRegister(OnboardingRequests)
	prometheus.MustRegister(PoolsCreated)
	prometheus.MustRegister(WorkerProcessed)
	prometheus.MustRegister(WorkerActive)
	prometheus.MustRegister(QueueDepth)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
