package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	// Dashboard view counter
	DashboardQueryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_dashboard_queries_total",
			Help: "Total number of dashboard view queries",
		},
		[]string{"view"}, // view can be "stats", "activity", "properties", "volume"
	)

	// Admin operation counter
	AdminOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_admin_operations_total",
			Help: "Total number of admin CRUD operations",
		},
		[]string{"entity", "operation"},
	)

	// Booking proxy counter
	BookingCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_bookings_total",
			Help: "Total number of booking proxy calls",
		},
		[]string{"outcome"}, // outcome can be "booked", "rejected", "error"
	)

	// Waitlist counter
	WaitlistCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_waitlist_signups_total",
			Help: "Total number of waitlist submissions",
		},
		[]string{"outcome"}, // outcome can be "accepted", "invalid", "error"
	)

	// Schema compatibility fallback counter
	SchemaFallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_schema_fallbacks_total",
			Help: "Total number of queries retried without an optional column",
		},
		[]string{"table"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_info",
			Help: "Information about the leasing portal service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(DashboardQueryCounter)
	prometheus.MustRegister(AdminOperationCounter)
	prometheus.MustRegister(BookingCounter)
	prometheus.MustRegister(WaitlistCounter)
	prometheus.MustRegister(SchemaFallbackCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordDashboardQuery increments the dashboard view counter
func RecordDashboardQuery(view string) {
	DashboardQueryCounter.With(prometheus.Labels{"view": view}).Inc()
}

// RecordAdminOperation increments the admin CRUD counter
func RecordAdminOperation(entity, operation string) {
	AdminOperationCounter.With(prometheus.Labels{"entity": entity, "operation": operation}).Inc()
}

// RecordBookingOutcome increments the booking proxy counter
func RecordBookingOutcome(outcome string) {
	BookingCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordWaitlistOutcome increments the waitlist counter
func RecordWaitlistOutcome(outcome string) {
	WaitlistCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordSchemaFallback increments the schema compatibility counter
func RecordSchemaFallback(table string) {
	SchemaFallbackCounter.With(prometheus.Labels{"table": table}).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware captures request metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HTTPRequestCounter.WithLabelValues(path, method, status).Inc()
			RequestDuration.WithLabelValues(path, method, status).Observe(duration)

			return err
		}
	}
}
