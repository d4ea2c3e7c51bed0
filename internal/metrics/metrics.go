// Package metrics declares the Prometheus collectors of the report
// lifecycle core. Collectors register with the default registry and are
// served by the ops server on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

var (
	// operationsTotal counts core operations by name and error kind.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_operations_total",
		Help: "Total lifecycle operations by operation and result kind",
	}, []string{"operation", "result"})

	// operationDuration tracks operation latency including the transaction.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reports_operation_duration_seconds",
		Help:    "Lifecycle operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"operation"})

	// transitionsTotal counts committed status transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_status_transitions_total",
		Help: "Committed status transitions by table and edge",
	}, []string{"table", "from", "to"})

	// cascadeRecords tracks how many rows one delete or undelete touched.
	cascadeRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reports_cascade_records",
		Help:    "Records soft-deleted or restored per cascade",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"operation"})

	// snapshotResults counts finalized export snapshots.
	snapshotResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_snapshot_results_total",
		Help: "Finalized export snapshots by outcome",
	}, []string{"outcome"})

	// httpDuration tracks ops server request latency.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reports_http_request_duration_seconds",
		Help:    "Ops server request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "code"})
)

// ObserveOperation records the outcome and latency of one operation.
func ObserveOperation(operation string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = domain.KindOf(err)
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Transition counts a committed status change.
func Transition(table, from, to string) {
	transitionsTotal.WithLabelValues(table, from, to).Inc()
}

// Cascade records the number of rows touched by a delete or undelete.
func Cascade(operation string, records int) {
	cascadeRecords.WithLabelValues(operation).Observe(float64(records))
}

// SnapshotResult counts a finalized snapshot.
func SnapshotResult(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	snapshotResults.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one ops server request.
func ObserveHTTP(path string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
