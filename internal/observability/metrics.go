package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	requests           *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	errors             *prometheus.CounterVec
	appointmentsBooked prometheus.Counter
	slotConflicts      prometheus.Counter
	logins             *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_errors_total",
			Help: "Errors rendered by the API, by error code.",
		}, []string{"method", "route", "code"}),
		appointmentsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_appointments_booked_total",
			Help: "Appointments successfully booked.",
		}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_appointment_conflicts_total",
			Help: "Bookings rejected because the doctor slot was taken.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.errors, m.appointmentsBooked, m.slotConflicts, m.logins,
	)
	return m
}

// RecordRequest counts and times a request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// AppointmentBooked counts a committed booking.
func (m *Metrics) AppointmentBooked() {
	if m == nil {
		return
	}
	m.appointmentsBooked.Inc()
}

// SlotConflict counts a booking rejected for an occupied slot.
func (m *Metrics) SlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

// LoginAttempt counts a login by outcome (ok, unknown_user, bad_password, locked, invalid).
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format through fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
