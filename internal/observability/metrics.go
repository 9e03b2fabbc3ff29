package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_matriculas_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks cache hits/misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_matriculas_cache_hits_total",
			Help: "Number of cache lookups by result",
		},
		[]string{"operation", "result"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_matriculas_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// CPFGuardChecks tracks uniqueness guard outcomes
	CPFGuardChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_matriculas_cpf_guard_checks_total",
			Help: "Number of CPF uniqueness checks by outcome",
		},
		[]string{"outcome"},
	)

	// OperationDuration tracks duration of long-running operations
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "app_matriculas_operation_duration_seconds",
			Help:    "Duration of long-running operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"operation", "checkpoint"},
	)

	// NormalizedCPFs counts stored CPFs by normalization outcome
	NormalizedCPFs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_matriculas_normalized_cpfs_total",
			Help: "Number of stored CPFs seen by the normalization job, by outcome",
		},
		[]string{"outcome"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_matriculas_active_connections",
			Help: "Number of active connections",
		},
	)
)

// CPF guard outcomes
const (
	CPFGuardSkipped  = "skipped"
	CPFGuardInvalid  = "invalid"
	CPFGuardConflict = "conflict"
	CPFGuardPassed   = "passed"
	CPFGuardError    = "error"
	// CPFGuardBackstop counts conflicts caught only by the storage unique index
	CPFGuardBackstop = "backstop"
)
