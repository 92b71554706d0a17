// Package metrics provides Prometheus metrics for the course client.
// Metrics are organized by concern: API calls, store transitions and controller intents.
// They live on a private registry so a CLI run can dump exactly what it recorded.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "videobelajar"
)

// Registry holds every metric in this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// API metrics - track backend calls by operation and outcome
	APIRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of course API calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	APIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Course API call duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)

	// Store metrics - track reducer transitions
	StoreTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "transitions_total",
			Help:      "Total number of events applied to the course store",
		},
		[]string{"event"},
	)

	StoreCourses = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "courses",
			Help:      "Number of courses currently held by the store",
		},
	)

	// Controller metrics - track user intents
	IntentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "intents_total",
			Help:      "Total number of user intents by kind and outcome",
		},
		[]string{"intent", "outcome"},
	)

	MutationsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "mutations_in_flight",
			Help:      "Number of create/update/delete calls currently in flight (0 or 1)",
		},
	)
)

// ObserveAPICall records one backend call.
func ObserveAPICall(op string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	APIRequestsTotal.WithLabelValues(op, outcome).Inc()
	APIRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveTransition records an applied store event and the resulting list size.
func ObserveTransition(event string, courses int) {
	StoreTransitionsTotal.WithLabelValues(event).Inc()
	StoreCourses.Set(float64(courses))
}

// ObserveIntent records the outcome of a controller intent.
func ObserveIntent(intent, outcome string) {
	IntentsTotal.WithLabelValues(intent, outcome).Inc()
}

// Timer is a helper for measuring operation duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer was created.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// WriteText writes every gathered metric family in the Prometheus text format.
func WriteText(w io.Writer) error {
	mfs, err := Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
