package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the engine's Prometheus collectors. A nil *Metrics is a
// valid no-op sink so tests and library callers can skip registration.
type Metrics struct {
	assignments       *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	notifyQueueDepth  prometheus.GaugeFunc
}

// New creates and registers the engine collectors. If reg is nil the
// default registerer is used. queueDepth may be nil when no notification
// dispatcher is wired.
func New(reg prometheus.Registerer, queueDepth func() int) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduler_assignments_total",
				Help: "Assignment outcomes per operation",
			},
			[]string{"operation", "result"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scheduler_operation_duration_seconds",
				Help:    "Duration of assignment operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.assignments, m.operationDuration)

	if queueDepth != nil {
		m.notifyQueueDepth = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "scheduler_notification_queue_depth",
				Help: "Events waiting in the notification queue",
			},
			func() float64 { return float64(queueDepth()) },
		)
		reg.MustRegister(m.notifyQueueDepth)
	}
	return m
}

func (m *Metrics) CountAssignment(operation, result string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
