package documents

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts document operations.
	// Labels: operation (create, search, list, get, delete, modify), result (success, error)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qdocs",
			Subsystem: "documents",
			Name:      "operations_total",
			Help:      "Total number of document operations",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks the round trip to the vector store per operation.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qdocs",
			Subsystem: "documents",
			Name:      "operation_duration_seconds",
			Help:      "Duration of document operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// IDCollisionsTotal counts generated ids that were already taken.
	IDCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qdocs",
			Subsystem: "documents",
			Name:      "id_collisions_total",
			Help:      "Total number of generated document ids found already in use",
		},
	)
)

// recordOperation records the outcome and duration of one operation.
func recordOperation(operation string, start time.Time, err error) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		OperationsTotal.WithLabelValues(operation, "error").Inc()
		return
	}
	OperationsTotal.WithLabelValues(operation, "success").Inc()
}
