package metrics

import (
	"sync"

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

	// Point operations
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "point_operations_total",
			Help: "Point operations by kind and result",
		},
		[]string{"kind", "result"}, // charge|use ; ok|invalid_amount|limit_exceeded|insufficient_balance|user_not_found|error
	)
	CriticalSectionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "point_critical_section_seconds",
			Help:    "Time spent holding a user lock.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"kind"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "point_cache_lookups_total",
			Help: "Balance cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// /metrics endpoint handler
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(OperationsTotal)
		prometheus.MustRegister(CriticalSectionSeconds)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}

// RegisterLockCount exports the number of per-user locks held by the registry.
func RegisterLockCount(count func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "point_user_locks",
			Help: "Number of per-user locks created",
		},
		func() float64 { return float64(count()) },
	))
}
