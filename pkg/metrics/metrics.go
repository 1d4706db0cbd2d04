package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking metrics
	BookingsTotal    *prometheus.CounterVec
	BookingLatency   prometheus.Histogram
	PatientsCreated  prometheus.Counter
	PatientsMatched  prometheus.Counter
	RemindersLogged  *prometheus.CounterVec
	IntakeSubmission *prometheus.CounterVec

	// Storage metrics
	StorageOperations *prometheus.CounterVec
	StorageLatency    *prometheus.HistogramVec
}

// Booking outcomes used as label values.
const (
	OutcomeBooked      = "booked"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by doctor and outcome",
		}, []string{"doctor", "outcome"}),
		BookingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_duration_seconds",
			Help:      "Time spent scanning and rewriting the ledger for one booking",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		PatientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_created_total",
			Help:      "Patients appended to the directory",
		}),
		PatientsMatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_matched_total",
			Help:      "Intake submissions that matched an existing patient",
		}),
		RemindersLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "communications_logged_total",
			Help:      "Simulated messages written to the communications log",
		}, []string{"subject"}),
		IntakeSubmission: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_submissions_total",
			Help:      "Intake form submissions by outcome",
		}, []string{"outcome"}),

		StorageOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Flat file reads and writes",
		}, []string{"table", "operation", "status"}),
		StorageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Duration of flat file reads and writes",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"table", "operation"}),
	}
}

// New creates unregistered metrics, for tests and tools that do not expose them.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, prometheus.NewRegistry())
}
