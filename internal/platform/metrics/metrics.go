// Package metrics owns the Prometheus registry and the application's collectors.
//
// All recording methods are safe to call on a nil *Metrics, so services can
// be constructed without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes recorded by BookingOutcome.
const (
	OutcomeBooked           = "booked"
	OutcomeClassFull        = "class_full"
	OutcomeWeeklyLimit      = "weekly_limit"
	OutcomeNoMembership     = "no_membership"
	OutcomeAlreadyBooked    = "already_booked"
	OutcomeUnavailable      = "unavailable"
	OutcomeBookingError     = "error"
	OutcomeBookingCancelled = "cancelled"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bookingsTotal       *prometheus.CounterVec
	paymentsSettled     *prometheus.CounterVec
	progressUpdates     prometheus.Counter
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of response latency (seconds) for HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		bookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Booking attempts and cancellations by outcome",
			},
			[]string{"outcome"},
		),
		paymentsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_settled_total",
				Help: "Payments moved to a terminal status",
			},
			[]string{"status"},
		),
		progressUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "competition_progress_updates_total",
			Help: "Competition progress updates recorded",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.bookingsTotal,
		m.paymentsSettled,
		m.progressUpdates,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. route is the matched route pattern,
// not the raw path, to bound label cardinality.
func (m *Metrics) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// BookingOutcome counts a booking attempt or cancellation.
func (m *Metrics) BookingOutcome(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// PaymentSettled counts a payment reaching status.
func (m *Metrics) PaymentSettled(status string) {
	if m == nil {
		return
	}
	m.paymentsSettled.WithLabelValues(status).Inc()
}

// ProgressRecorded counts a competition progress update.
func (m *Metrics) ProgressRecorded() {
	if m == nil {
		return
	}
	m.progressUpdates.Inc()
}
