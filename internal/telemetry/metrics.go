package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every Prometheus collector the Manager exposes for the
// FSM/service layer. Fields are exported collectors; no manager or fsm
// code path constructs a Metrics or records into its collectors.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	PendingRequests prometheus.Gauge
	InvokeLatency   *prometheus.HistogramVec
	Associations    prometheus.Counter
	Disassociations *prometheus.CounterVec
}

// NewMetrics registers every collector against the default registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcd_manager_fsm_transitions_total",
			Help: "Count of FSM state transitions, labelled by from/to state.",
		}, []string{"from", "to"}),
		PendingRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pcd_manager_pending_requests",
			Help: "Current depth of the pending-request table across all connections.",
		}),
		InvokeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcd_manager_invoke_latency_seconds",
			Help:    "Round-trip latency between a ROIV request and its RORS/ROER/RORJ response.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		Associations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcd_manager_associations_total",
			Help: "Count of associations successfully reaching Operating.",
		}),
		Disassociations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcd_manager_disassociations_total",
			Help: "Count of disassociations, labelled by reason.",
		}, []string{"reason"}),
	}
}
