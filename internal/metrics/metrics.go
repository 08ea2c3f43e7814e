package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AppointmentsBooked counts booking attempts by result (booked, slot_unavailable, error).
	AppointmentsBooked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_appointment_bookings_total",
			Help: "Appointment booking attempts by result",
		},
		[]string{"result"},
	)

	// AppointmentStatusChanges counts status overwrites by new status.
	AppointmentStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_appointment_status_changes_total",
			Help: "Appointment status changes by new status",
		},
		[]string{"status"},
	)

	// PrescriptionsCreated counts created prescriptions.
	PrescriptionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_prescriptions_created_total",
			Help: "Prescriptions created",
		},
	)

	// StockDecrements counts medicine units taken out of stock by prescriptions.
	StockDecrements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_medicine_stock_decrements_total",
			Help: "Medicine stock decrements by outcome (applied, medicine_missing)",
		},
		[]string{"outcome"},
	)

	// InvoicesCreated counts issued invoices.
	InvoicesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_invoices_created_total",
			Help: "Invoices created",
		},
	)

	// PaymentsApplied counts payments by resulting invoice status.
	PaymentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_invoice_payments_total",
			Help: "Payments applied by resulting invoice status",
		},
		[]string{"status"},
	)

	// NotificationFailures counts emails that could not be delivered.
	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_notification_failures_total",
			Help: "Notifications that failed to send, by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		AppointmentsBooked,
		AppointmentStatusChanges,
		PrescriptionsCreated,
		StockDecrements,
		InvoicesCreated,
		PaymentsApplied,
		NotificationFailures,
	)
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
