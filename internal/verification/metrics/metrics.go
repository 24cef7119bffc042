package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the verification workflow.
type Metrics struct {
	RequestsCreated     prometheus.Counter
	ValidationFailures  prometheus.Counter
	VerificationResults *prometheus.CounterVec
	SequenceConflicts   prometheus.Counter
	AnchorSubmitSeconds prometheus.Histogram
}

// New creates and registers all verification metrics on the default
// registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on an explicit registry; tests pass a fresh one so
// repeated construction never collides.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "anchorid_verification_requests_created_total",
			Help: "Verification requests successfully created and anchored",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "anchorid_statement_validation_failures_total",
			Help: "Create-request calls rejected by statement validation",
		}),
		VerificationResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorid_presentation_results_total",
			Help: "Verify-presentation outcomes by result",
		}, []string{"result"}),
		SequenceConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "anchorid_sequence_conflicts_total",
			Help: "Account sequence number conflicts observed on submission",
		}),
		AnchorSubmitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "anchorid_anchor_submit_seconds",
			Help:    "Latency of anchor transaction submission including retry",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
