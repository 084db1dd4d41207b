package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	PartitionOperations *prometheus.CounterVec
	PartitionLatency    *prometheus.HistogramVec
	FanoutFailures      *prometheus.CounterVec
	FallbackScans       prometheus.Counter

	StatusTransitions    *prometheus.CounterVec
	ComplaintsCreated    *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	NotificationsPushed  prometheus.Counter
}

// Default is registered once with the global prometheus registry.
var Default = NewMetrics("grievance")

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PartitionOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_operations_total",
			Help:      "Total number of complaint partition operations",
		}, []string{"partition", "operation", "status"}),
		PartitionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "partition_operation_duration_seconds",
			Help:      "Duration of complaint partition operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		FanoutFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_failures_total",
			Help:      "Scatter-gather queries aborted by a partition error",
		}, []string{"operation"}),
		FallbackScans: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_fallback_scans_total",
			Help:      "Complaint lookups that fell back to scanning every partition",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Complaint status transitions by source and target status",
		}, []string{"from", "to"}),
		ComplaintsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "complaints_created_total",
			Help:      "Complaints filed per department",
		}, []string{"department"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be stored or delivered",
		}),
		NotificationsPushed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_pushed_total",
			Help:      "Notifications pushed to connected websocket clients",
		}),
	}
}

func (m *Metrics) ObservePartition(partition, operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PartitionOperations.WithLabelValues(partition, operation, status).Inc()
	m.PartitionLatency.WithLabelValues(operation).Observe(seconds)
}
